// ABOUTME: Renders DOT text to SVG or PNG with the Graphviz dot binary.
// ABOUTME: DOT output passes through; image formats fail with ErrGraphvizMissing when dot is not installed.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ErrGraphvizMissing is returned for image formats when dot is not on PATH.
var ErrGraphvizMissing = errors.New("graphviz dot binary not found on PATH")

// ErrUnsupportedFormat is returned for formats other than dot, svg and png.
var ErrUnsupportedFormat = errors.New("unsupported render format")

// ContentType returns the HTTP content type for a supported format.
func ContentType(format string) string {
	switch format {
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

// GraphvizAvailable reports whether the dot binary is on PATH.
func GraphvizAvailable() bool {
	_, err := exec.LookPath("dot")
	return err == nil
}

// Source renders DOT text to format.
func Source(ctx context.Context, dotText, format string) ([]byte, error) {
	if dotText == "" {
		return nil, fmt.Errorf("cannot render empty DOT text")
	}
	switch format {
	case "dot":
		return []byte(dotText), nil
	case "svg", "png":
		if !GraphvizAvailable() {
			return nil, ErrGraphvizMissing
		}
		return runDot(ctx, dotText, format)
	default:
		return nil, fmt.Errorf("%w %q: want dot, svg or png", ErrUnsupportedFormat, format)
	}
}

func runDot(ctx context.Context, dotText, format string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "dot", "-T"+format)
	cmd.Stdin = bytes.NewBufferString(dotText)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("graphviz dot -T%s: %w: %s", format, err, stderr.String())
	}
	return stdout.Bytes(), nil
}
