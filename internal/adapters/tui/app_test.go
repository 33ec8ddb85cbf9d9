package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"phylorank/internal/adapters/newick"
	"phylorank/internal/adapters/tui/views"
	"phylorank/internal/domain"
)

type stubCodec struct{}

func (stubCodec) ReadTree(string) (*domain.Tree, error) {
	return newick.Parse("((A,B)'g__G',C)'d__D';")
}

func (stubCodec) WriteTree(string, *domain.Tree) error { return nil }

func TestApp_SwitchesViews(t *testing.T) {
	app := NewApp(stubCodec{}, "decorated.tree")
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	app.Update(app.Init()())

	if !strings.Contains(app.View(), "g__G") {
		t.Fatal("expected browser view with the decorated tree")
	}

	app.Update(views.SwitchToHelpMsg{})
	if app.state != ViewHelp || !strings.Contains(app.View(), "PhyloRank Help") {
		t.Fatal("expected help view")
	}

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected close command from help view")
	}
	app.Update(cmd())
	if app.state != ViewBrowser {
		t.Errorf("expected browser view after closing help, got %v", app.state)
	}
}
