// Package newick reads and writes rooted trees in Newick format. Internal
// node labels carry support values, taxa and auxiliary text.
package newick

import (
	"fmt"
	"strconv"
	"strings"

	"phylorank/internal/domain"
)

// SyntaxError reports malformed Newick input
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("newick: %s at offset %d", e.Msg, e.Offset)
}

// LabelError reports an internal node label that cannot be decoded
type LabelError struct {
	Label  string
	Reason string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("newick: invalid label %q: %s", e.Label, e.Reason)
}

// DuplicateLeafError reports two leaves with the same name
type DuplicateLeafError struct {
	Name string
}

func (e *DuplicateLeafError) Error() string {
	return fmt.Sprintf("newick: duplicate leaf %q", e.Name)
}

type parser struct {
	src string
	pos int
}

// Parse reads the first tree of a Newick string
func Parse(src string) (*domain.Tree, error) {
	p := &parser{src: src}

	p.skip()
	if p.eof() {
		return nil, &SyntaxError{Offset: p.pos, Msg: "empty input"}
	}

	root, err := p.subtree()
	if err != nil {
		return nil, err
	}

	p.skip()
	if p.eof() || p.src[p.pos] != ';' {
		return nil, p.errorf("expected ';'")
	}

	tree := domain.NewTree(root)
	seen := make(map[string]bool)
	for _, leaf := range tree.Leaves() {
		if leaf.Name == "" {
			return nil, &SyntaxError{Offset: p.pos, Msg: "unnamed leaf"}
		}
		if seen[leaf.Name] {
			return nil, &DuplicateLeafError{Name: leaf.Name}
		}
		seen[leaf.Name] = true
	}
	return tree, nil
}

func (p *parser) subtree() (*domain.Node, error) {
	n := &domain.Node{}

	p.skip()
	if !p.eof() && p.src[p.pos] == '(' {
		p.pos++
		for {
			child, err := p.subtree()
			if err != nil {
				return nil, err
			}
			n.AddChild(child)

			p.skip()
			if p.eof() {
				return nil, p.errorf("unexpected end of input")
			}
			switch p.src[p.pos] {
			case ',':
				p.pos++
				continue
			case ')':
				p.pos++
			default:
				return nil, p.errorf("expected ',' or ')'")
			}
			break
		}
	}

	name, err := p.name()
	if err != nil {
		return nil, err
	}
	if n.IsLeaf() {
		n.Name = name
	} else if n.Label, err = ParseLabel(name); err != nil {
		return nil, err
	}

	p.skip()
	if !p.eof() && p.src[p.pos] == ':' {
		p.pos++
		p.skip()
		start := p.pos
		for !p.eof() && !strings.ContainsRune("(),:;[ \t\r\n", rune(p.src[p.pos])) {
			p.pos++
		}
		v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
		if err != nil {
			return nil, &SyntaxError{Offset: start, Msg: fmt.Sprintf("invalid branch length %q", p.src[start:p.pos])}
		}
		n.Length = v
		n.HasLength = true
	}
	return n, nil
}

// name reads an optional quoted or unquoted label
func (p *parser) name() (string, error) {
	p.skip()
	if p.eof() {
		return "", nil
	}

	if p.src[p.pos] == '\'' {
		p.pos++
		var b strings.Builder
		for {
			if p.eof() {
				return "", p.errorf("unterminated quoted label")
			}
			c := p.src[p.pos]
			p.pos++
			if c == '\'' {
				// '' is an escaped quote
				if !p.eof() && p.src[p.pos] == '\'' {
					b.WriteByte('\'')
					p.pos++
					continue
				}
				return b.String(), nil
			}
			b.WriteByte(c)
		}
	}

	start := p.pos
	for !p.eof() && !strings.ContainsRune("(),:;[", rune(p.src[p.pos])) {
		p.pos++
	}
	return strings.TrimSpace(p.src[start:p.pos]), nil
}

// skip consumes whitespace and [bracketed] comments
func (p *parser) skip() {
	for !p.eof() {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			p.pos++
		case c == '[':
			end := strings.IndexByte(p.src[p.pos:], ']')
			if end < 0 {
				p.pos = len(p.src)
				return
			}
			p.pos += end + 1
		default:
			return
		}
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}
