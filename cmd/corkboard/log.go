// ABOUTME: "corkboard log" prints recent board activity from the journal in the data directory.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2389-research/corkboard/store"
)

func newLogCommand(flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent board activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			entries, err := store.ReadJournal(journalPath(cfg.DataDir))
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "no activity yet")
				return nil
			}
			for _, e := range entries {
				line := e.At.Local().Format("2006-01-02 15:04") + "  " + e.Action
				if e.Subject != "" {
					line += " " + e.Subject
				}
				if e.Detail != "" {
					line += "  " + e.Detail
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most this many entries (0 for all)")
	return cmd
}
