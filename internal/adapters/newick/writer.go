package newick

import (
	"strconv"
	"strings"

	"phylorank/internal/domain"
)

const specialChars = "()[]',;: \t\n"

// Format serializes a tree. Internal labels are encoded with FormatLabel;
// leaves are written by name only.
func Format(tree *domain.Tree) string {
	var b strings.Builder
	writeNode(&b, tree.Root)
	b.WriteString(";\n")
	return b.String()
}

func writeNode(b *strings.Builder, n *domain.Node) {
	if n.IsLeaf() {
		b.WriteString(quote(n.Name))
	} else {
		b.WriteByte('(')
		for i, c := range n.Children {
			if i > 0 {
				b.WriteByte(',')
			}
			writeNode(b, c)
		}
		b.WriteByte(')')
		b.WriteString(quote(FormatLabel(n.Label)))
	}

	if n.HasLength {
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(n.Length, 'g', -1, 64))
	}
}

// quote wraps s in single quotes when it contains Newick punctuation
func quote(s string) string {
	if !strings.ContainsAny(s, specialChars) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
