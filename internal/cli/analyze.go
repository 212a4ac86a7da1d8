package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lazypower/pulse/internal/di"
	"github.com/lazypower/pulse/internal/engine"
)

var (
	analysisDays   int
	profileRefresh bool
)

var analyzeCmd = &cobra.Command{
	Use:       "analyze <fatigue|sleep|cognitive|emotion|work-stress>",
	Short:     "Score one wellbeing domain",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"fatigue", "sleep", "cognitive", "emotion", "work-stress"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *engine.Engine) (any, error) {
			return eng.RunDomainAnalysis(ctx, args[0], analysisDays)
		})
	},
}

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Rank stress triggers in recent messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *engine.Engine) (any, error) {
			return eng.RunStressTriggerAnalysis(ctx, analysisDays)
		})
	},
}

var causeCmd = &cobra.Command{
	Use:   "cause <question>",
	Short: "Rank likely causes for a question like \"why am I so tired?\"",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		return withEngine(cmd, func(ctx context.Context, eng *engine.Engine) (any, error) {
			return eng.RunCauseAnalysis(ctx, question, analysisDays)
		})
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run stress and every domain analysis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *engine.Engine) (any, error) {
			return eng.RunFullSweep(ctx, analysisDays)
		})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the cached self-profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, eng *engine.Engine) (any, error) {
			return eng.RunSelfProfile(ctx, profileRefresh)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{analyzeCmd, stressCmd, causeCmd, sweepCmd} {
		c.Flags().IntVarP(&analysisDays, "days", "d", 0, "Timeframe in days (0 uses the configured default)")
	}
	profileCmd.Flags().BoolVar(&profileRefresh, "refresh", false, "Recompute instead of reading the cache")
}

// withEngine resolves the engine from the container, runs fn and prints
// its result as indented JSON.
func withEngine(cmd *cobra.Command, fn func(context.Context, *engine.Engine) (any, error)) error {
	container, err := newContainer()
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}
	defer di.Close(container)

	return container.Invoke(func(eng *engine.Engine) error {
		result, err := fn(cmd.Context(), eng)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
