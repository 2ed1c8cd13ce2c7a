// ABOUTME: "corkboard mcp" exposes the board and decision map as MCP tools over stdio.
package main

import (
	"github.com/spf13/cobra"

	"github.com/2389-research/corkboard/mcpserver"
)

func newMCPCommand(flags *globalFlags, ver string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP tools on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := flags.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			return mcpserver.Serve(cmd.Context(), &mcpserver.Tools{Board: s.board, Maps: s.maps}, ver)
		},
	}
}
