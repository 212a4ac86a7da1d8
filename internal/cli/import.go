package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lazypower/pulse/internal/di"
	"github.com/lazypower/pulse/internal/store"
	"github.com/lazypower/pulse/internal/transcript"
)

var importProject string

var importCmd = &cobra.Command{
	Use:   "import <transcript.jsonl>...",
	Short: "Import messages from JSONL conversation transcripts",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importProject, "project", "p", "", "Project for sessions whose transcript names none")
}

func runImport(cmd *cobra.Command, args []string) error {
	container, err := newContainer()
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}
	defer di.Close(container)

	return container.Invoke(func(db *store.DB, logger *zap.Logger) error {
		ctx := cmd.Context()
		var total int
		for _, path := range args {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat transcript: %w", err)
			}
			entries, err := transcript.ParseFile(path)
			if err != nil {
				return err
			}

			fallback := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			sessions := transcript.Sessions(entries, fallback, importProject)
			for _, s := range sessions {
				if _, err := db.InitSession(ctx, s.ID, s.Project); err != nil {
					return fmt.Errorf("init session %s: %w", s.ID, err)
				}
			}

			msgs := transcript.Messages(entries, fallback, info.ModTime())
			for _, m := range msgs {
				if _, err := db.AddMessage(ctx, m); err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
			}
			for _, s := range sessions {
				if err := db.CompleteSession(ctx, s.ID); err != nil {
					logger.Debug("session not completed", zap.String("session_id", s.ID), zap.Error(err))
				}
			}

			logger.Info("transcript imported",
				zap.String("path", path),
				zap.Int("messages", len(msgs)),
				zap.Int("user_messages", transcript.CountUserMessages(entries)))
			total += len(msgs)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d messages from %d transcript(s)\n", total, len(args))
		return nil
	})
}
