// ABOUTME: "corkboard version" prints the build version.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(ver string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "corkboard %s\n", ver)
		},
	}
}
