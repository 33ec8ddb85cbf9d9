package filesystem

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"phylorank/internal/domain"
	"phylorank/internal/ports"
)

// maxLineSize bounds a single taxonomy line
const maxLineSize = 1 << 20

// Repository implements ports.TaxonomyReader and ports.OutputWriter using
// tab-separated text files
type Repository struct{}

var (
	_ ports.TaxonomyReader = (*Repository)(nil)
	_ ports.OutputWriter   = (*Repository)(nil)
)

// NewRepository creates a new filesystem repository
func NewRepository() *Repository {
	return &Repository{}
}

// ExpandPath resolves a leading ~ to the home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

// ReadTaxonomy reads "<id>\t<taxon>;<taxon>;..." lines. Blank lines and
// lines starting with # are ignored; lines without an id or a taxonomy
// string, and repeated ids, are returned as malformed.
func (r *Repository) ReadTaxonomy(path string) (map[string][]string, []string, error) {
	f, err := os.Open(ExpandPath(path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open taxonomy: %w", err)
	}
	defer f.Close()

	records := make(map[string][]string)
	var malformed []string

	err = eachLine(f, func(line string) {
		id, taxa, ok := strings.Cut(line, "\t")
		id = strings.TrimSpace(id)
		if !ok || id == "" || strings.TrimSpace(taxa) == "" {
			malformed = append(malformed, line)
			return
		}
		if _, dup := records[id]; dup {
			malformed = append(malformed, line)
			return
		}

		var record []string
		for _, t := range strings.Split(taxa, ";") {
			record = append(record, strings.TrimSpace(t))
		}
		records[id] = record
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read taxonomy: %w", err)
	}

	return records, malformed, nil
}

// ReadTaxa reads one taxon per line, taking the first whitespace-separated
// column
func (r *Repository) ReadTaxa(path string) (map[string]bool, error) {
	f, err := os.Open(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open taxa list: %w", err)
	}
	defer f.Close()

	taxa := make(map[string]bool)
	err = eachLine(f, func(line string) {
		if fields := strings.Fields(line); len(fields) > 0 {
			taxa[fields[0]] = true
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read taxa list: %w", err)
	}
	return taxa, nil
}

func eachLine(rd io.Reader, fn func(line string)) error {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fn(line)
	}
	return scanner.Err()
}

// WriteStatistics writes the F-measure, precision and recall of each taxon
func (r *Repository) WriteStatistics(path string, stats []domain.PlacementStat) error {
	return writeFile(path, func(w *bufio.Writer) error {
		if _, err := w.WriteString("Taxon\tF-measure\tPrecision\tRecall\n"); err != nil {
			return err
		}
		for _, s := range stats {
			if _, err := fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\n", s.Taxon, s.FMeasure, s.Precision, s.Recall); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteTaxonomy writes "<leaf>\t<taxa joined by "; ">" for each leaf
func (r *Repository) WriteTaxonomy(path string, taxonomy []domain.LeafTaxonomy) error {
	return writeFile(path, func(w *bufio.Writer) error {
		for _, lt := range taxonomy {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", lt.Leaf, strings.Join(lt.Taxa, "; ")); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeFile(path string, fn func(w *bufio.Writer) error) error {
	path = ExpandPath(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
