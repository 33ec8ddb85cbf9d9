package views

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"phylorank/internal/adapters/tui/styles"
	"phylorank/internal/domain"
	"phylorank/internal/ports"
)

// BrowserKeyMap defines key bindings for the browser view
type BrowserKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Expand   key.Binding
	Copy     key.Binding
	Search   key.Binding
	Next     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "toggle"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "page down"),
	),
	Expand: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "expand subtree"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy lineage"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "find taxon"),
	),
	Next: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "next match"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// SearchKeys are active while the find prompt has focus
var SearchKeys = struct {
	Submit key.Binding
	Cancel key.Binding
}{
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "find")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

// browserChrome is the number of rows used around the node list
const browserChrome = 12

// BrowserModel is the model for the decorated tree browser
type BrowserModel struct {
	ViewState

	codec ports.TreeCodec
	path  string

	tree     *domain.Tree
	expanded map[*domain.Node]bool
	leaves   map[*domain.Node]int
	visible  []*domain.Node
	pager    *Paginator

	searching bool
	input     textinput.Model
	query     string

	copyText func(string) error
}

// NewBrowserModel creates a browser over the tree stored at path
func NewBrowserModel(codec ports.TreeCodec, path string) *BrowserModel {
	input := textinput.New()
	input.Placeholder = "taxon, e.g. p__Firmicutes"
	input.Prompt = "/ "

	return &BrowserModel{
		codec:    codec,
		path:     path,
		expanded: make(map[*domain.Node]bool),
		pager:    NewPaginator(20),
		input:    input,
		copyText: clipboard.WriteAll,
	}
}

type treeLoadedMsg struct {
	tree *domain.Tree
}

type errMsg struct {
	err error
}

// Init initializes the browser
func (m *BrowserModel) Init() tea.Cmd {
	return m.loadTree
}

func (m *BrowserModel) loadTree() tea.Msg {
	tree, err := m.codec.ReadTree(m.path)
	if err != nil {
		return errMsg{err}
	}
	tree.AssignRelativeDivergence()
	return treeLoadedMsg{tree}
}

// SetTree installs a loaded tree and shows its root expanded
func (m *BrowserModel) SetTree(tree *domain.Tree) {
	m.tree = tree
	m.expanded = map[*domain.Node]bool{tree.Root: true}
	m.leaves = make(map[*domain.Node]int)
	for _, n := range tree.Postorder() {
		if n.IsLeaf() {
			m.leaves[n] = 1
			continue
		}
		for _, c := range n.Children {
			m.leaves[n] += m.leaves[c]
		}
	}
	m.pager.SetCursor(0)
	m.refreshVisible()
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case treeLoadedMsg:
		m.SetTree(msg.tree)
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		m.ClearMessage()

		if key.Matches(msg, BrowserKeys.Quit) {
			return m, tea.Quit
		}
		if m.tree == nil {
			return m, nil
		}

		switch {
		case key.Matches(msg, BrowserKeys.Up):
			m.pager.CursorUp()

		case key.Matches(msg, BrowserKeys.Down):
			m.pager.CursorDown()

		case key.Matches(msg, BrowserKeys.PageUp):
			m.pager.PrevPage()

		case key.Matches(msg, BrowserKeys.PageDown):
			m.pager.NextPage()

		case key.Matches(msg, BrowserKeys.Left):
			if node := m.Selected(); node != nil {
				if m.expanded[node] {
					delete(m.expanded, node)
					m.refreshVisible()
				} else if node.Parent != nil {
					m.selectNode(node.Parent)
				}
			}

		case key.Matches(msg, BrowserKeys.Right), key.Matches(msg, BrowserKeys.Enter):
			if node := m.Selected(); node != nil && !node.IsLeaf() {
				if !m.expanded[node] {
					m.expanded[node] = true
				} else if key.Matches(msg, BrowserKeys.Enter) {
					delete(m.expanded, node)
				}
				m.refreshVisible()
			}

		case key.Matches(msg, BrowserKeys.Expand):
			if node := m.Selected(); node != nil {
				for _, n := range node.Preorder() {
					if !n.IsLeaf() {
						m.expanded[n] = true
					}
				}
				m.refreshVisible()
			}

		case key.Matches(msg, BrowserKeys.Copy):
			m.copySelected()

		case key.Matches(msg, BrowserKeys.Search):
			m.searching = true
			m.input.SetValue("")
			return m, m.input.Focus()

		case key.Matches(msg, BrowserKeys.Next):
			m.findNext()

		case key.Matches(msg, BrowserKeys.Help):
			return m, func() tea.Msg {
				return SwitchToHelpMsg{}
			}
		}
	}

	return m, nil
}

func (m *BrowserModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, SearchKeys.Cancel):
		m.searching = false
		m.input.Blur()
		return m, nil

	case key.Matches(msg, SearchKeys.Submit):
		m.searching = false
		m.input.Blur()
		m.query = strings.TrimSpace(m.input.Value())
		m.findNext()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// findNext moves to the next node in preorder, after the selection, whose
// label or leaf name contains the query, expanding its ancestors.
func (m *BrowserModel) findNext() {
	if m.query == "" || m.tree == nil {
		return
	}

	nodes := m.tree.Preorder()
	start := 0
	if sel := m.Selected(); sel != nil {
		start = slices.Index(nodes, sel) + 1
	}

	q := strings.ToLower(m.query)
	for i := range nodes {
		n := nodes[(start+i)%len(nodes)]
		if !matches(n, q) {
			continue
		}
		for p := n.Parent; p != nil; p = p.Parent {
			m.expanded[p] = true
		}
		m.refreshVisible()
		m.selectNode(n)
		return
	}
	m.SetMessage(fmt.Sprintf("No node matches %q", m.query), true)
}

func matches(n *domain.Node, q string) bool {
	if strings.Contains(strings.ToLower(n.Name), q) {
		return true
	}
	for _, t := range n.Label.Taxa {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func (m *BrowserModel) copySelected() {
	node := m.Selected()
	if node == nil {
		return
	}
	lineage := Lineage(node)
	if len(lineage) == 0 {
		m.SetMessage("Selected node has no taxonomy", true)
		return
	}
	text := strings.Join(lineage, "; ")
	if err := m.copyText(text); err != nil {
		m.SetMessage(fmt.Sprintf("Copy failed: %v", err), true)
		return
	}
	m.SetMessage("Copied "+text, false)
}

// Lineage returns the taxa decorated on the path from the root down to n
func Lineage(n *domain.Node) []string {
	var taxa []string
	for ; n != nil; n = n.Parent {
		for _, t := range slices.Backward(n.Label.Taxa) {
			taxa = append(taxa, t)
		}
	}
	slices.Reverse(taxa)
	return taxa
}

// Selected returns the node under the cursor
func (m *BrowserModel) Selected() *domain.Node {
	c := m.pager.Cursor()
	if c >= 0 && c < len(m.visible) {
		return m.visible[c]
	}
	return nil
}

func (m *BrowserModel) selectNode(n *domain.Node) {
	if i := slices.Index(m.visible, n); i >= 0 {
		m.pager.SetCursor(i)
	}
}

func (m *BrowserModel) refreshVisible() {
	if m.tree == nil {
		return
	}
	selected := m.Selected()

	m.visible = m.visible[:0]
	var walk func(n *domain.Node)
	walk = func(n *domain.Node) {
		m.visible = append(m.visible, n)
		if !m.expanded[n] {
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(m.tree.Root)

	m.pager.SetTotal(len(m.visible))
	if selected != nil {
		// A collapsed ancestor hides the selection; fall back to the
		// nearest visible ancestor.
		for n := selected; n != nil; n = n.Parent {
			if i := slices.Index(m.visible, n); i >= 0 {
				m.pager.SetCursor(i)
				break
			}
		}
	}
}

// View renders the browser
func (m *BrowserModel) View() string {
	v := NewViewBuilder().Title("PhyloRank").Subtitle(m.path)

	if m.tree == nil {
		if m.Message != "" {
			return v.Message(m.Message, m.MessageErr).String()
		}
		return v.Line("Loading...").String()
	}

	if m.Height > 0 {
		m.pager.SetPageSize(m.BodyHeight(browserChrome))
	}
	start, end := m.pager.VisibleRange()
	for i := start; i < end; i++ {
		v.Line(m.renderNode(m.visible[i], i == m.pager.Cursor()))
	}
	v.Muted(fmt.Sprintf("%d/%d", m.pager.Cursor()+1, len(m.visible)))
	v.BlankLine()

	if node := m.Selected(); node != nil {
		v.Line(RenderLabelValue("Lineage", RenderTaxa(Lineage(node))))
		v.Line(RenderLabelValue("Leaves", strconv.Itoa(m.leaves[node])))
	}

	if m.searching {
		v.Line(m.input.View())
	} else {
		v.Message(m.Message, m.MessageErr)
	}

	return v.Help(
		BrowserKeys.Up, BrowserKeys.Down, BrowserKeys.Right, BrowserKeys.Left,
		BrowserKeys.Copy, BrowserKeys.Search, BrowserKeys.Help, BrowserKeys.Quit,
	).String()
}

func (m *BrowserModel) renderNode(node *domain.Node, selected bool) string {
	indent := strings.Repeat("  ", node.Depth())

	var prefix string
	switch {
	case node.IsLeaf():
		prefix = styles.TreeLeaf
	case m.expanded[node]:
		prefix = styles.TreeExpanded
	default:
		prefix = styles.TreeCollapsed
	}

	text, style := nodeText(node)
	var styled string
	switch {
	case selected:
		styled = styles.NodeSelected.Render(text)
	case len(node.Label.Taxa) > 1:
		styled = styles.NodeLabelled.Render(RenderTaxa(node.Label.Taxa))
	default:
		styled = style.Render(text)
	}

	return fmt.Sprintf("%s%s%s %s", indent, styles.TreeBranch.Render(prefix), styled,
		styles.MutedText.Render(nodeDetail(node, m.leaves[node])))
}

func nodeText(node *domain.Node) (string, lipgloss.Style) {
	switch {
	case node.IsLeaf():
		return node.Name, styles.NodeLeaf
	case len(node.Label.Taxa) > 0:
		color := styles.RankColor(node.Label.MostSpecificRank())
		return strings.Join(node.Label.Taxa, "; "), styles.NodeLabelled.Foreground(color)
	default:
		return fmt.Sprintf("node %d", node.ID), styles.NodeUnlabelled
	}
}

func nodeDetail(node *domain.Node, leaves int) string {
	parts := []string{fmt.Sprintf("RD=%.3f", node.RelDist)}
	if node.Label.HasSupport() {
		parts = append(parts, "support="+strconv.FormatFloat(*node.Label.Support, 'g', -1, 64))
	}
	if !node.IsLeaf() {
		parts = append(parts, fmt.Sprintf("leaves=%d", leaves))
	}
	return strings.Join(parts, " ")
}

// Reload reloads the tree from disk
func (m *BrowserModel) Reload() tea.Cmd {
	m.tree = nil
	m.visible = nil
	m.pager.SetTotal(0)
	return m.loadTree
}

// Messages for view switching
type SwitchToHelpMsg struct{}

type SwitchToBrowserMsg struct{}
