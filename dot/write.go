// ABOUTME: Serializes a Graph to DOT source with deterministic attribute ordering.
// ABOUTME: Values are emitted bare when DOT allows it and double-quoted with escapes otherwise.
package dot

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Serialize renders g as a digraph. Attributes are sorted by key.
func Serialize(g *Graph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", quoteValue(g.Name))

	wroteHeader := false
	for _, block := range []struct {
		kind  string
		attrs map[string]string
	}{
		{"graph", g.Attrs},
		{"node", g.NodeDefaults},
		{"edge", g.EdgeDefaults},
	} {
		if len(block.attrs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s [%s]\n", block.kind, formatAttrs(block.attrs))
		wroteHeader = true
	}
	if wroteHeader && (len(g.Nodes) > 0 || len(g.Edges) > 0) {
		b.WriteString("\n")
	}

	for _, n := range g.Nodes {
		writeStatement(&b, quoteValue(n.ID), n.Attrs)
	}
	if len(g.Nodes) > 0 && len(g.Edges) > 0 {
		b.WriteString("\n")
	}
	for _, e := range g.Edges {
		writeStatement(&b, quoteValue(e.From)+" -> "+quoteValue(e.To), e.Attrs)
	}

	b.WriteString("}\n")
	return b.String()
}

func writeStatement(b *strings.Builder, head string, attrs map[string]string) {
	if len(attrs) == 0 {
		fmt.Fprintf(b, "  %s\n", head)
		return
	}
	fmt.Fprintf(b, "  %s [%s]\n", head, formatAttrs(attrs))
}

func formatAttrs(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+quoteValue(attrs[k]))
	}
	return strings.Join(parts, ", ")
}

// quoteValue leaves lowercase identifiers and numbers bare and quotes the rest.
func quoteValue(val string) string {
	if isBare(val) {
		return val
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, ch := range val {
		switch ch {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(ch)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isBare(val string) bool {
	if val == "" {
		return false
	}
	if isNumber(val) {
		return true
	}
	for i, ch := range val {
		if i == 0 && unicode.IsDigit(ch) {
			return false
		}
		if ch != '_' && !unicode.IsLower(ch) && !unicode.IsDigit(ch) {
			return false
		}
	}
	return true
}

func isNumber(val string) bool {
	s := strings.TrimPrefix(val, "-")
	if s == "" {
		return false
	}
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			digits++
		case s[i] == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}
