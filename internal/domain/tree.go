package domain

import "slices"

// Node is a node of a rooted phylogenetic tree. Leaves carry the extant
// taxon identifier in Name; internal nodes carry a Label.
type Node struct {
	ID        int // preorder index, assigned by Tree.Reindex
	Name      string
	Length    float64
	HasLength bool
	Label     Label
	Parent    *Node
	Children  []*Node

	// Annotations written by the decoration pipeline
	Profile Profile
	RelDist float64
}

// Profile holds the subtree taxon counts of a node
type Profile struct {
	NumLeaves int
	// TaxaCount[rank][taxon] is the number of subtree leaves assigned to taxon
	TaxaCount []map[string]int
	// RankTotal[rank] is the number of subtree leaves classified at rank
	RankTotal []int
}

// Count returns the number of subtree leaves carrying taxon at rank
func (p Profile) Count(rank Rank, taxon string) int {
	if int(rank) < 0 || int(rank) >= len(p.TaxaCount) {
		return 0
	}
	return p.TaxaCount[rank][taxon]
}

// Total returns the number of subtree leaves with any taxon at rank
func (p Profile) Total(rank Rank) int {
	if int(rank) < 0 || int(rank) >= len(p.RankTotal) {
		return 0
	}
	return p.RankTotal[rank]
}

// IsLeaf reports whether the node has no children
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// AddChild attaches child below n
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

func (n *Node) removeChild(child *Node) {
	n.Children = slices.DeleteFunc(n.Children, func(c *Node) bool { return c == child })
}

// Preorder returns the subtree rooted at n in root-to-leaf order
func (n *Node) Preorder() []*Node {
	var result []*Node
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		result = append(result, cur)
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
	return result
}

// Postorder returns the subtree rooted at n with children before parents
func (n *Node) Postorder() []*Node {
	// reversing a root-first walk that visits children right-to-left
	// yields a postorder that visits them left-to-right
	var result []*Node
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		result = append(result, cur)
		stack = append(stack, cur.Children...)
	}
	slices.Reverse(result)
	return result
}

// Leaves returns the leaves below n in preorder
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	for _, d := range n.Preorder() {
		if d.IsLeaf() {
			leaves = append(leaves, d)
		}
	}
	return leaves
}

// Depth returns the number of edges between n and the root
func (n *Node) Depth() int {
	depth := 0
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		depth++
	}
	return depth
}

// IsAncestorOf reports whether n lies strictly above other
func (n *Node) IsAncestorOf(other *Node) bool {
	for cur := other.Parent; cur != nil; cur = cur.Parent {
		if cur == n {
			return true
		}
	}
	return false
}

// Tree is a rooted phylogenetic tree
type Tree struct {
	Root *Node
}

// NewTree wraps root and assigns preorder IDs
func NewTree(root *Node) *Tree {
	t := &Tree{Root: root}
	t.Reindex()
	return t
}

// Reindex assigns node IDs in preorder, starting at 0 for the root
func (t *Tree) Reindex() {
	for i, n := range t.Root.Preorder() {
		n.ID = i
	}
}

// Preorder returns every node in root-to-leaf order
func (t *Tree) Preorder() []*Node {
	return t.Root.Preorder()
}

// Postorder returns every node with children before parents
func (t *Tree) Postorder() []*Node {
	return t.Root.Postorder()
}

// Leaves returns every leaf in preorder
func (t *Tree) Leaves() []*Node {
	return t.Root.Leaves()
}

// MRCA returns the deepest node that is an ancestor of (or equal to)
// every node in nodes. It returns nil for an empty set.
func (t *Tree) MRCA(nodes []*Node) *Node {
	if len(nodes) == 0 {
		return nil
	}

	// path from the first node up to the root
	var path []*Node
	for cur := nodes[0]; cur != nil; cur = cur.Parent {
		path = append(path, cur)
	}
	pos := make(map[*Node]int, len(path))
	for i, n := range path {
		pos[n] = i
	}

	best := 0
	for _, n := range nodes[1:] {
		for cur := n; cur != nil; cur = cur.Parent {
			if i, ok := pos[cur]; ok {
				best = max(best, i)
				break
			}
		}
	}
	return path[best]
}

// Clone returns a deep copy of the tree topology, names, lengths, labels
// and node IDs. Annotations are not copied.
func (t *Tree) Clone() *Tree {
	return &Tree{Root: cloneNode(t.Root, nil)}
}

func cloneNode(n, parent *Node) *Node {
	c := &Node{
		ID:        n.ID,
		Name:      n.Name,
		Length:    n.Length,
		HasLength: n.HasLength,
		Label:     n.Label.Clone(),
		Parent:    parent,
		RelDist:   n.RelDist,
	}
	c.Children = make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		c.Children = append(c.Children, cloneNode(child, c))
	}
	return c
}

// RerootAbove places a new root at the midpoint of the edge above n.
// The previous root is removed if it is left with a single child.
// Node IDs are preserved; the new root gets ID -1.
func (t *Tree) RerootAbove(n *Node) {
	if n.Parent == nil {
		return
	}

	oldRoot := t.Root
	half := n.Length / 2
	parent := n.Parent
	parent.removeChild(n)

	root := &Node{ID: -1}
	root.Children = []*Node{n, parent}
	n.Parent = root
	n.Length, n.HasLength = half, true

	// reverse the parent links on the path from the old parent to the old root
	cur, newParent, length := parent, root, half
	for cur != nil {
		next := cur.Parent
		nextLength := cur.Length
		cur.Parent = newParent
		cur.Length, cur.HasLength = length, true
		if next != nil {
			next.removeChild(cur)
			cur.Children = append(cur.Children, next)
		}
		newParent, length, cur = cur, nextLength, next
	}
	t.Root = root

	if len(oldRoot.Children) == 1 {
		suppress(oldRoot)
	}
}

// suppress splices out a node with a single child
func suppress(n *Node) {
	child := n.Children[0]
	child.Length += n.Length
	child.Parent = n.Parent
	if n.Parent != nil {
		idx := slices.Index(n.Parent.Children, n)
		n.Parent.Children[idx] = child
	}
	n.Children = nil
	n.Parent = nil
}

// LeafByName returns a map from leaf name to leaf node
func (t *Tree) LeafByName() map[string]*Node {
	leaves := make(map[string]*Node)
	for _, l := range t.Leaves() {
		leaves[l.Name] = l
	}
	return leaves
}
