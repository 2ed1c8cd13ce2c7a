// ABOUTME: "corkboard import" replaces the board with the cards in a JSON file or stdin.
// ABOUTME: Accepts a bare card array or a snapshot object with an optional version.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newImportCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the board with cards from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}

			s, err := flags.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			imp, err := s.board.Import(cmd.Context(), data)
			if err != nil {
				return err
			}
			cmd.Printf("imported %d cards\n", len(imp.Cards))
			if imp.Version != nil {
				cmd.Printf("shared version set to %d\n", *imp.Version)
			}
			return nil
		},
	}
}
