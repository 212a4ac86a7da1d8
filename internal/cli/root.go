package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/lazypower/pulse/internal/di"
)

var (
	configFile string
	verbose    bool
	jsonLog    bool
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Wellbeing analytics over your agent conversations",
	Long: "Pulse captures the messages you exchange with your coding agent and reads them for " +
		"stress triggers, fatigue, sleep, cognitive and emotional signals.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json", false, "Log in JSON format")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(stressCmd)
	rootCmd.AddCommand(causeCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(importCmd)
}

// newContainer builds the dependency container from the persistent flags.
func newContainer() (*dig.Container, error) {
	return di.BuildContainer(di.Flags{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONLog:    jsonLog,
		Version:    VersionString(),
	})
}
