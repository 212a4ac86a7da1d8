package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/pulse/internal/hooks"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Handle agent hook events",
}

func hookRun(event string) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		hooks.Handle(event, os.Stdin)
	}
}

func init() {
	hookCmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Handle SessionStart hook",
		Run:   hookRun("start"),
	})
	hookCmd.AddCommand(&cobra.Command{
		Use:   "submit",
		Short: "Handle UserPromptSubmit hook",
		Run:   hookRun("submit"),
	})
	hookCmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Handle Stop hook",
		Run:   hookRun("stop"),
	})
	hookCmd.AddCommand(&cobra.Command{
		Use:   "end",
		Short: "Handle SessionEnd hook",
		Run:   hookRun("end"),
	})
}
