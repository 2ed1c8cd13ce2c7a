// ABOUTME: "corkboard pull" replaces local cards with the configured shared board.
// ABOUTME: Asks for confirmation on stdin unless --yes is given.
package main

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389-research/corkboard/app"
)

func newPullCommand(flags *globalFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Reload the board from the shared snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := flags.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if !s.board.HasRemote() {
				return app.ErrNoRemote
			}
			if !yes {
				cmd.Print("Replace local cards with the shared board? [y/N] ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					cmd.Println("cancelled")
					return nil
				}
			}

			v, err := s.board.ReloadFromRemote(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("reloaded shared board v%d (%d cards)\n", v, len(s.board.Cards()))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
