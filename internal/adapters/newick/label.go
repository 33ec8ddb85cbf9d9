package newick

import (
	"strconv"
	"strings"

	"phylorank/internal/domain"
)

const (
	supportSep = ":"
	auxSep     = "|"
	taxaSep    = ";"
)

// ParseLabel decodes an internal node label of the form
// "support:taxa|aux". Every part is optional: a bare number is a support
// value and any other bare text is a list of taxa.
func ParseLabel(s string) (domain.Label, error) {
	var l domain.Label
	s = strings.TrimSpace(s)
	if s == "" {
		return l, nil
	}

	if head, aux, ok := strings.Cut(s, auxSep); ok {
		l.Aux = aux
		s = head
	}

	if support, taxa, ok := strings.Cut(s, supportSep); ok {
		if support != "" {
			v, err := strconv.ParseFloat(strings.TrimSpace(support), 64)
			if err != nil {
				return l, &LabelError{Label: s, Reason: "support is not a number"}
			}
			l.Support = &v
		}
		l.Taxa = splitTaxa(taxa)
		return l, nil
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		l.Support = &v
		return l, nil
	}
	l.Taxa = splitTaxa(s)
	return l, nil
}

func splitTaxa(s string) []string {
	var taxa []string
	for _, t := range strings.Split(s, taxaSep) {
		if t = strings.TrimSpace(t); t != "" {
			taxa = append(taxa, t)
		}
	}
	return taxa
}

// FormatLabel encodes a label, omitting the parts that are not set
func FormatLabel(l domain.Label) string {
	if l.IsEmpty() {
		return ""
	}

	var b strings.Builder
	taxa := strings.Join(l.Taxa, taxaSep+" ")

	if l.Support != nil {
		b.WriteString(strconv.FormatFloat(*l.Support, 'g', -1, 64))
		if taxa != "" {
			b.WriteString(supportSep)
		}
	}
	b.WriteString(taxa)
	if l.Aux != "" {
		b.WriteString(auxSep)
		b.WriteString(l.Aux)
	}
	return b.String()
}
