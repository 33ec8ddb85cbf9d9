package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"phylorank/internal/application"
	"phylorank/internal/domain"
)

func seedStore(t *testing.T) *memStore {
	t.Helper()

	store := newMemStore()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-old", "run-new"} {
		run := &domain.Run{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		stats := []domain.PlacementStat{
			{Taxon: "d__D1", Rank: domain.RankDomain, NodeID: 1, FMeasure: 1},
			{Taxon: "p__P1", Rank: domain.RankPhylum, NodeID: 2, FMeasure: 0.9},
		}
		extant := []domain.LeafTaxonomy{{Leaf: "A", Taxa: []string{"d__D1", "p__P1"}}}
		if _, err := NewSaveRunCommand(store, run, stats, extant).Execute(context.Background()); err != nil {
			t.Fatalf("seeding run: %v", err)
		}
	}
	return store
}

func TestSaveRunCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		run     *domain.Run
		wantErr bool
	}{
		{"nil run", nil, true},
		{"missing id", &domain.Run{}, true},
		{"valid", &domain.Run{ID: "r1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSaveRunCommand(newMemStore(), tt.run, nil, nil).Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestListRunsCommand(t *testing.T) {
	store := seedStore(t)

	runs, err := NewListRunsCommand(store).Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-new" {
		t.Errorf("expected newest run first, got %+v", runs)
	}
}

func TestListPlacementsCommand(t *testing.T) {
	store := seedStore(t)

	tests := []struct {
		name  string
		runID string
		rank  domain.Rank
		want  int
		run   string
	}{
		{"latest run every rank", "", domain.RankUnknown, 2, "run-new"},
		{"explicit run one rank", "run-old", domain.RankPhylum, 1, "run-old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewListPlacementsCommand(store, tt.runID, tt.rank).Execute(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Run.ID != tt.run || len(result.Placements) != tt.want {
				t.Errorf("expected %d placements from %s, got %d from %s",
					tt.want, tt.run, len(result.Placements), result.Run.ID)
			}
		})
	}
}

func TestListPlacementsCommand_UnknownRun(t *testing.T) {
	store := seedStore(t)

	_, err := NewListPlacementsCommand(store, "missing", domain.RankUnknown).Execute(context.Background())
	if !errors.Is(err, application.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPlacementCommand(t *testing.T) {
	store := seedStore(t)

	tests := []struct {
		name    string
		taxon   string
		wantErr error
	}{
		{"found", "p__P1", nil},
		{"not placed", "p__P2", application.ErrNotFound},
		{"no prefix", "Firmicutes", application.ErrInvalidInput},
		{"empty", "", application.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stat, err := NewGetPlacementCommand(store, "", tt.taxon).Execute(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stat.NodeID != 2 {
				t.Errorf("expected node 2, got %d", stat.NodeID)
			}
		})
	}
}

func TestLeafTaxonomyCommand(t *testing.T) {
	store := seedStore(t)

	lt, err := NewLeafTaxonomyCommand(store, "run-old", "A").Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lt.Taxa) != 2 || lt.Taxa[1] != "p__P1" {
		t.Errorf("unexpected taxonomy %v", lt.Taxa)
	}

	if _, err := NewLeafTaxonomyCommand(store, "", "").Execute(context.Background()); !errors.Is(err, application.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty leaf, got %v", err)
	}
}
