// ABOUTME: "corkboard tui" opens the terminal board in the alternate screen.
// ABOUTME: Log output goes to a file in the data directory while the UI owns the terminal.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/corkboard/tui"
)

func newTUICommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the kanban board in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := flags.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			logFile, err := redirectLog(s.cfg.DataDir)
			if err != nil {
				return err
			}
			defer func() {
				log.SetOutput(os.Stderr)
				_ = logFile.Close()
			}()

			p := tea.NewProgram(tui.NewAppModel(ctx, s.board), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("terminal board: %w", err)
			}
			return nil
		},
	}
}

func redirectLog(dataDir string) (*os.File, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dataDir, "corkboard.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}
