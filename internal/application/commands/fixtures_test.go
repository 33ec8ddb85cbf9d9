package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"phylorank/internal/application"
	"phylorank/internal/domain"
	"phylorank/internal/ports"
)

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

// node builds a tree node; leaves are nodes without children
func node(name string, children ...*domain.Node) *domain.Node {
	n := &domain.Node{Name: name, Length: 1, HasLength: true}
	for _, c := range children {
		n.AddChild(c)
	}
	return n
}

// records parses "leaf=d__X;p__Y" pairs into taxonomy records
func records(t *testing.T, entries ...string) map[string][]string {
	t.Helper()

	result := make(map[string][]string, len(entries))
	for _, e := range entries {
		id, taxa, ok := strings.Cut(e, "=")
		if !ok {
			t.Fatalf("bad record fixture %q", e)
		}
		result[id] = strings.Split(taxa, ";")
	}
	return result
}

// scenarioTree builds (((A,B)ab,C)abc,D)root with A,B in d__D1/p__P1,
// C in d__D1/p__P2 and D in d__D2.
func scenarioTree(t *testing.T) (*domain.Tree, *domain.Taxonomy, map[string]*domain.Node) {
	t.Helper()

	byName := map[string]*domain.Node{}
	root := node("root",
		node("abc",
			node("ab", node("A"), node("B")),
			node("C"),
		),
		node("D"),
	)
	tree := domain.NewTree(root)
	for _, n := range tree.Preorder() {
		byName[n.Name] = n
	}

	tax := domain.NewTaxonomy(records(t,
		"A=d__D1;p__P1",
		"B=d__D1;p__P1",
		"C=d__D1;p__P2",
		"D=d__D2",
	))
	return tree, tax, byName
}

// tiedTree builds ((A,B)x,(C,D)y)root where genus g__G (A, C) and g__H
// (B, D) each tie between the root and two leaves.
func tiedTree(t *testing.T) (*domain.Tree, *domain.Taxonomy, map[string]*domain.Node) {
	t.Helper()

	root := node("root",
		node("x", node("A"), node("B")),
		node("y", node("C"), node("D")),
	)
	tree := domain.NewTree(root)
	byName := map[string]*domain.Node{}
	for _, n := range tree.Preorder() {
		byName[n.Name] = n
	}

	lineage := "d__D;p__P;c__C;o__O;f__F;"
	tax := domain.NewTaxonomy(records(t,
		"A="+lineage+"g__G",
		"B="+lineage+"g__H",
		"C="+lineage+"g__G",
		"D="+lineage+"g__H",
	))
	return tree, tax, byName
}

// nestedTiedTree is tiedTree with one species per leaf, so every tied
// genus has a candidate already carrying a more specific label.
func nestedTiedTree(t *testing.T) (*domain.Tree, *domain.Taxonomy, map[string]*domain.Node) {
	t.Helper()

	tree, _, byName := tiedTree(t)
	lineage := "d__D;p__P;c__C;o__O;f__F;"
	tax := domain.NewTaxonomy(records(t,
		"A="+lineage+"g__G;s__A",
		"B="+lineage+"g__H;s__B",
		"C="+lineage+"g__G;s__C",
		"D="+lineage+"g__H;s__D",
	))
	return tree, tax, byName
}

// escapeTree places d__D1 on x while most p__P1 leaves sit under y
func escapeTree(t *testing.T) (*domain.Tree, *domain.Taxonomy, map[string]*domain.Node) {
	t.Helper()

	root := node("root",
		node("x", node("A"), node("B"), node("C")),
		node("y", node("D"), node("E"), node("F")),
	)
	tree := domain.NewTree(root)
	byName := map[string]*domain.Node{}
	for _, n := range tree.Preorder() {
		byName[n.Name] = n
	}

	tax := domain.NewTaxonomy(records(t,
		"A=d__D1;p__P1",
		"B=d__D1;p__Q",
		"C=d__D1;p__Q",
		"D=d__D2;p__P1",
		"E=d__D2;p__P1",
		"F=d__D2;p__P1",
	))
	return tree, tax, byName
}

// fixtures lists every tree builder for property tests
var fixtures = []struct {
	name  string
	build func(*testing.T) (*domain.Tree, *domain.Taxonomy, map[string]*domain.Node)
}{
	{"scenario", scenarioTree},
	{"tied", tiedTree},
	{"nested tied", nestedTiedTree},
	{"escape", escapeTree},
}

// refineModes runs the pipeline with and without divergence refinement.
// The estimate only yields a family threshold, so tied genera are settled
// by the floor rule or the last candidate.
var refineModes = []struct {
	name      string
	opts      RefineOptions
	estimator func() ports.DivergenceEstimator
}{
	{"terminal", RefineOptions{SkipRDRefine: true}, func() ports.DivergenceEstimator { return nil }},
	{"refine", RefineOptions{MaxRDDiff: domain.DefaultMaxRDDiff}, func() ports.DivergenceEstimator {
		return &fakeEstimator{estimate: &domain.DivergenceEstimate{
			LineageDists: map[string]map[domain.Rank]map[string]float64{
				"p__P": {domain.RankFamily: {"f__F": 0.5}},
			},
		}}
	}},
}

// fakeEstimator returns a fixed estimate and records the inference set
type fakeEstimator struct {
	estimate  *domain.DivergenceEstimate
	err       error
	inference map[string]bool
}

func (f *fakeEstimator) Estimate(ctx context.Context, tree *domain.Tree, inference map[string]bool, tax *domain.Taxonomy) (*domain.DivergenceEstimate, error) {
	f.inference = inference
	if f.err != nil {
		return nil, f.err
	}
	return f.estimate, nil
}

// fakeCodec serves one tree and captures the written one
type fakeCodec struct {
	tree    *domain.Tree
	readErr error
	written map[string]*domain.Tree
}

func (f *fakeCodec) ReadTree(path string) (*domain.Tree, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.tree, nil
}

func (f *fakeCodec) WriteTree(path string, tree *domain.Tree) error {
	if f.written == nil {
		f.written = map[string]*domain.Tree{}
	}
	f.written[path] = tree
	return nil
}

type fakeReader struct {
	records   map[string][]string
	malformed []string
	trusted   map[string]bool
	err       error
}

func (f *fakeReader) ReadTaxonomy(path string) (map[string][]string, []string, error) {
	return f.records, f.malformed, f.err
}

func (f *fakeReader) ReadTaxa(path string) (map[string]bool, error) {
	if f.trusted == nil {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return f.trusted, nil
}

type fakeWriter struct {
	stats    map[string][]domain.PlacementStat
	taxonomy map[string][]domain.LeafTaxonomy
}

func (f *fakeWriter) WriteStatistics(path string, stats []domain.PlacementStat) error {
	if f.stats == nil {
		f.stats = map[string][]domain.PlacementStat{}
	}
	f.stats[path] = stats
	return nil
}

func (f *fakeWriter) WriteTaxonomy(path string, taxonomy []domain.LeafTaxonomy) error {
	if f.taxonomy == nil {
		f.taxonomy = map[string][]domain.LeafTaxonomy{}
	}
	f.taxonomy[path] = taxonomy
	return nil
}

// memStore is an in-memory placement store
type memStore struct {
	runs       []domain.Run
	placements map[string][]domain.PlacementStat
	leaves     map[string][]domain.LeafTaxonomy
}

var _ ports.PlacementStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		placements: map[string][]domain.PlacementStat{},
		leaves:     map[string][]domain.LeafTaxonomy{},
	}
}

func (s *memStore) Open(path string) error { return nil }
func (s *memStore) Close() error           { return nil }

func (s *memStore) ListRuns() ([]domain.Run, error) {
	runs := append([]domain.Run(nil), s.runs...)
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	return runs, nil
}

func (s *memStore) GetRun(runID string) (*domain.Run, error) {
	for i := range s.runs {
		if s.runs[i].ID == runID {
			return &s.runs[i], nil
		}
	}
	return nil, fmt.Errorf("run %s: %w", runID, application.ErrNotFound)
}

func (s *memStore) LatestRun() (*domain.Run, error) {
	runs, _ := s.ListRuns()
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs: %w", application.ErrNotFound)
	}
	return &runs[0], nil
}

func (s *memStore) ListPlacements(runID string, rank domain.Rank) ([]domain.PlacementStat, error) {
	var result []domain.PlacementStat
	for _, p := range s.placements[runID] {
		if rank == domain.RankUnknown || p.Rank == rank {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *memStore) GetPlacement(runID, taxon string) (*domain.PlacementStat, error) {
	for _, p := range s.placements[runID] {
		if p.Taxon == taxon {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("taxon %s: %w", taxon, application.ErrNotFound)
}

func (s *memStore) GetLeafTaxonomy(runID, leaf string) (*domain.LeafTaxonomy, error) {
	for _, lt := range s.leaves[runID] {
		if lt.Leaf == leaf {
			return &lt, nil
		}
	}
	return nil, fmt.Errorf("leaf %s: %w", leaf, application.ErrNotFound)
}

func (s *memStore) BeginTx() (ports.StoreTx, error) {
	return &memTx{store: s, placements: map[string][]domain.PlacementStat{}, leaves: map[string][]domain.LeafTaxonomy{}}, nil
}

// memTx buffers writes until Commit
type memTx struct {
	store      *memStore
	runs       []domain.Run
	placements map[string][]domain.PlacementStat
	leaves     map[string][]domain.LeafTaxonomy
	done       bool
}

func (tx *memTx) InsertRun(run *domain.Run) error {
	tx.runs = append(tx.runs, *run)
	return nil
}

func (tx *memTx) InsertPlacement(runID string, stat *domain.PlacementStat) error {
	tx.placements[runID] = append(tx.placements[runID], *stat)
	return nil
}

func (tx *memTx) InsertLeafTaxonomy(runID string, lt *domain.LeafTaxonomy) error {
	tx.leaves[runID] = append(tx.leaves[runID], *lt)
	return nil
}

func (tx *memTx) Commit() error {
	if tx.done {
		return fmt.Errorf("transaction already finished")
	}
	tx.done = true
	tx.store.runs = append(tx.store.runs, tx.runs...)
	for id, p := range tx.placements {
		tx.store.placements[id] = append(tx.store.placements[id], p...)
	}
	for id, l := range tx.leaves {
		tx.store.leaves[id] = append(tx.store.leaves[id], l...)
	}
	return nil
}

func (tx *memTx) Rollback() error {
	tx.done = true
	return nil
}
