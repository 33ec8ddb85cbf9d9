package sqlite

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"phylorank/internal/application"
	"phylorank/internal/domain"
)

func openTestStore(t testing.TB) *Store {
	t.Helper()

	s := NewStore()
	if err := s.Open(filepath.Join(t.TempDir(), "placements.db")); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return s
}

func saveRun(t testing.TB, s *Store, run *domain.Run, stats []domain.PlacementStat, extant []domain.LeafTaxonomy) {
	t.Helper()

	tx, err := s.BeginTx()
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	if err := tx.InsertRun(run); err != nil {
		tx.Rollback()
		t.Fatalf("InsertRun failed: %v", err)
	}
	for i := range stats {
		if err := tx.InsertPlacement(run.ID, &stats[i]); err != nil {
			tx.Rollback()
			t.Fatalf("InsertPlacement failed: %v", err)
		}
	}
	for i := range extant {
		if err := tx.InsertLeafTaxonomy(run.ID, &extant[i]); err != nil {
			tx.Rollback()
			t.Fatalf("InsertLeafTaxonomy failed: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
}

func testRun(id string, created time.Time) *domain.Run {
	return &domain.Run{
		ID:           id,
		CreatedAt:    created,
		InputTree:    "in.tree",
		TaxonomyFile: "tax.tsv",
		OutputTree:   "out.tree",
		MaxRDDiff:    0.1,
		NumLeaves:    4,
		Thresholds:   map[domain.Rank]float64{domain.RankPhylum: 0.3, domain.RankClass: 0.45},
	}
}

var testStats = []domain.PlacementStat{
	{Taxon: "d__D1", Rank: domain.RankDomain, NodeID: 1, FMeasure: 1, Precision: 1, Recall: 1, NumCandidates: 1},
	{Taxon: "p__P2", Rank: domain.RankPhylum, NodeID: 5, FMeasure: 1, Precision: 1, Recall: 1, RelDist: 1, NumCandidates: 1},
	{Taxon: "p__P1", Rank: domain.RankPhylum, NodeID: 2, FMeasure: 0.8, Precision: 0.6667, Recall: 1, RelDist: 0.31, NumCandidates: 3},
}

func TestStore_OpenExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s := NewStore()
	if err := s.Open("~/data/placements.db"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	if want := filepath.Join(home, "data", "placements.db"); s.Path() != want {
		t.Errorf("Path() = %q, want %q", s.Path(), want)
	}
}

func TestStore_RunRoundTrip(t *testing.T) {
	s := openTestStore(t)
	created := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	run := testRun("run-1", created)
	saveRun(t, s, run, testStats, nil)

	got, err := s.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range 3 {
		saveRun(t, s, testRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Minute)), nil, nil)
	}

	runs, err := s.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"run-2", "run-1", "run-0"}, ids); diff != "" {
		t.Errorf("run order mismatch (-want +got):\n%s", diff)
	}

	latest, err := s.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if latest.ID != "run-2" || latest.Thresholds[domain.RankClass] != 0.45 {
		t.Errorf("unexpected latest run %+v", latest)
	}
}

func TestStore_Placements(t *testing.T) {
	s := openTestStore(t)
	saveRun(t, s, testRun("run-1", time.Now()), testStats, nil)

	all, err := s.ListPlacements("run-1", domain.RankUnknown)
	if err != nil {
		t.Fatalf("ListPlacements failed: %v", err)
	}
	var taxa []string
	for _, p := range all {
		taxa = append(taxa, p.Taxon)
	}
	if diff := cmp.Diff([]string{"d__D1", "p__P1", "p__P2"}, taxa); diff != "" {
		t.Errorf("placement order mismatch (-want +got):\n%s", diff)
	}

	phyla, err := s.ListPlacements("run-1", domain.RankPhylum)
	if err != nil {
		t.Fatalf("ListPlacements failed: %v", err)
	}
	if len(phyla) != 2 {
		t.Errorf("expected 2 phyla, got %d", len(phyla))
	}

	p, err := s.GetPlacement("run-1", "p__P1")
	if err != nil {
		t.Fatalf("GetPlacement failed: %v", err)
	}
	if diff := cmp.Diff(testStats[2], *p); diff != "" {
		t.Errorf("placement mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_LeafTaxonomy(t *testing.T) {
	s := openTestStore(t)
	extant := []domain.LeafTaxonomy{
		{Leaf: "G1", Taxa: []string{"d__D1", "p__P1", "c__", "o__", "f__", "g__", "s__"}},
	}
	saveRun(t, s, testRun("run-1", time.Now()), nil, extant)

	got, err := s.GetLeafTaxonomy("run-1", "G1")
	if err != nil {
		t.Fatalf("GetLeafTaxonomy failed: %v", err)
	}
	if diff := cmp.Diff(extant[0], *got); diff != "" {
		t.Errorf("leaf taxonomy mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_NotFound(t *testing.T) {
	s := openTestStore(t)

	checks := map[string]error{}
	_, checks["latest"] = s.LatestRun()
	_, checks["run"] = s.GetRun("missing")
	_, checks["placement"] = s.GetPlacement("missing", "p__P")
	_, checks["leaf"] = s.GetLeafTaxonomy("missing", "G1")

	for name, err := range checks {
		if !errors.Is(err, application.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestStore_RollbackDiscardsRun(t *testing.T) {
	s := openTestStore(t)

	tx, err := s.BeginTx()
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	if err := tx.InsertRun(testRun("run-1", time.Now())); err != nil {
		t.Fatalf("InsertRun failed: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	if _, err := s.GetRun("run-1"); !errors.Is(err, application.ErrNotFound) {
		t.Errorf("expected rolled back run to be absent, got %v", err)
	}
}

func BenchmarkSaveRun(b *testing.B) {
	s := openTestStore(b)
	stats := make([]domain.PlacementStat, 500)
	for i := range stats {
		stats[i] = domain.PlacementStat{Taxon: fmt.Sprintf("g__G%d", i), Rank: domain.RankGenus, NodeID: i}
	}

	i := 0
	for b.Loop() {
		saveRun(b, s, testRun(fmt.Sprintf("run-%d", i), time.Now()), stats, nil)
		i++
	}
}
