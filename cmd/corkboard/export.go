// ABOUTME: "corkboard export" writes the board or the decision map as JSON, YAML, Graphviz DOT, SVG or PNG.
// ABOUTME: Output goes to stdout unless -o names a file; images need the Graphviz dot binary.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/2389-research/corkboard/export"
	"github.com/2389-research/corkboard/render"
)

func newExportCommand(flags *globalFlags) *cobra.Command {
	var (
		format  string
		outPath string
		asMap   bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the board (or the decision map with --map)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := flags.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var out string
			switch {
			case format == "dot", format == "svg", format == "png":
				var data []byte
				data, err = render.Source(cmd.Context(), export.MapDOT(s.maps.Decisions()), format)
				out = string(data)
			case asMap && format == "yaml":
				out, err = export.MapYAML(s.maps.Decisions())
			case asMap && format == "json":
				out, err = indentJSON(s.maps.Decisions())
			case format == "yaml":
				out, err = export.BoardYAML(s.board.Export())
			case format == "json":
				out, err = indentJSON(s.board.Export())
			default:
				return fmt.Errorf("unknown export format %q (want json, yaml, dot, svg or png)", format)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), outPath, out)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json, yaml, dot, svg or png (dot and images always export the decision map)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&asMap, "map", false, "export the decision map instead of the board")
	return cmd
}

func indentJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	return string(data) + "\n", nil
}

func writeOutput(stdout io.Writer, path, out string) error {
	if path == "" {
		_, err := io.WriteString(stdout, out)
		return err
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
