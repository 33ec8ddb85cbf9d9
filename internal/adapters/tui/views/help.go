package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"phylorank/internal/adapters/tui/styles"
	"phylorank/internal/domain"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, func() tea.Msg {
				return SwitchToBrowserMsg{}
			}
		}
	}

	return m, nil
}

// View renders the help view
func (m *HelpModel) View() string {
	v := NewViewBuilder().
		Title("PhyloRank Help").
		Subtitle("Decorated tree browser")

	v.Section("Navigation")
	for _, b := range []key.Binding{
		BrowserKeys.Up, BrowserKeys.Down, BrowserKeys.Left, BrowserKeys.Right,
		BrowserKeys.Enter, BrowserKeys.PageUp, BrowserKeys.PageDown, BrowserKeys.Expand,
	} {
		v.Raw(bindingLine(b))
	}
	v.BlankLine()

	v.Section("Actions")
	for _, b := range []key.Binding{BrowserKeys.Copy, BrowserKeys.Search, BrowserKeys.Next} {
		v.Raw(bindingLine(b))
	}
	v.BlankLine()

	v.Section("General")
	v.Raw(bindingLine(BrowserKeys.Help))
	v.Raw(bindingLine(BrowserKeys.Quit))
	v.BlankLine()

	v.Section("Ranks")
	for _, def := range domain.Ranks {
		swatch := lipgloss.NewStyle().Foreground(styles.RankColor(def.Rank)).Render(def.Prefix)
		v.Line("  " + swatch + " " + styles.HelpDesc.Render(def.Name))
	}
	v.Muted("  Labelled nodes take the color of their most specific taxon.")
	v.Muted("  RD is the relative divergence under the tree's own rooting.")
	v.BlankLine()

	return v.Help(HelpKeys.Close).String()
}

func bindingLine(b key.Binding) string {
	h := b.Help()
	return "  " + styles.HelpKey.Render(padRight(h.Key, 12)) + styles.HelpDesc.Render(h.Desc) + "\n"
}

func padRight(s string, length int) string {
	n := lipgloss.Width(s)
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}
