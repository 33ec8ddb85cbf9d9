package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// buildTestTree builds ((A:1,B:1)ab:1,(C:1,D:1)cd:2)root
func buildTestTree(t *testing.T) (*Tree, map[string]*Node) {
	t.Helper()

	nodes := map[string]*Node{}
	mk := func(name string, length float64) *Node {
		n := &Node{Name: name, Length: length, HasLength: true}
		nodes[name] = n
		return n
	}

	root := mk("root", 0)
	root.HasLength = false
	ab := mk("ab", 1)
	cd := mk("cd", 2)
	root.AddChild(ab)
	root.AddChild(cd)
	ab.AddChild(mk("A", 1))
	ab.AddChild(mk("B", 1))
	cd.AddChild(mk("C", 1))
	cd.AddChild(mk("D", 1))

	return NewTree(root), nodes
}

func names(nodes []*Node) []string {
	result := make([]string, len(nodes))
	for i, n := range nodes {
		result[i] = n.Name
	}
	return result
}

func TestTraversalOrder(t *testing.T) {
	tree, _ := buildTestTree(t)

	wantPre := []string{"root", "ab", "A", "B", "cd", "C", "D"}
	if diff := cmp.Diff(wantPre, names(tree.Preorder())); diff != "" {
		t.Errorf("preorder mismatch (-want +got):\n%s", diff)
	}

	wantPost := []string{"A", "B", "ab", "C", "D", "cd", "root"}
	if diff := cmp.Diff(wantPost, names(tree.Postorder())); diff != "" {
		t.Errorf("postorder mismatch (-want +got):\n%s", diff)
	}

	wantLeaves := []string{"A", "B", "C", "D"}
	if diff := cmp.Diff(wantLeaves, names(tree.Leaves())); diff != "" {
		t.Errorf("leaves mismatch (-want +got):\n%s", diff)
	}

	for i, n := range tree.Preorder() {
		if n.ID != i {
			t.Errorf("expected %s to have ID %d, got %d", n.Name, i, n.ID)
		}
	}
}

func TestMRCA(t *testing.T) {
	tree, n := buildTestTree(t)

	tests := []struct {
		name  string
		nodes []*Node
		want  *Node
	}{
		{"single leaf", []*Node{n["A"]}, n["A"]},
		{"sister leaves", []*Node{n["A"], n["B"]}, n["ab"]},
		{"across clades", []*Node{n["A"], n["D"]}, n["root"]},
		{"node and descendant", []*Node{n["cd"], n["C"]}, n["cd"]},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tree.MRCA(tt.nodes); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tree, n := buildTestTree(t)
	n["ab"].Label.Taxa = []string{"p__X"}

	clone := tree.Clone()
	clone.Root.Children[0].Label.Taxa[0] = "p__Y"

	if n["ab"].Label.Taxa[0] != "p__X" {
		t.Error("clone shares label storage with the original")
	}
	if diff := cmp.Diff(names(tree.Preorder()), names(clone.Preorder())); diff != "" {
		t.Errorf("clone topology mismatch (-orig +clone):\n%s", diff)
	}
	for i, c := range clone.Preorder() {
		if c.ID != i {
			t.Errorf("expected clone to keep ID %d, got %d", i, c.ID)
		}
	}
}

func TestRerootAbove(t *testing.T) {
	tree, n := buildTestTree(t)

	tree.RerootAbove(n["C"])

	root := tree.Root
	if len(root.Children) != 2 {
		t.Fatalf("expected new root with 2 children, got %d", len(root.Children))
	}
	if root.Children[0] != n["C"] {
		t.Errorf("expected C as first child of new root, got %s", root.Children[0].Name)
	}
	if n["C"].Length != 0.5 {
		t.Errorf("expected C length 0.5, got %v", n["C"].Length)
	}

	// cd now hangs below the new root with D and ab as children
	cd := root.Children[1]
	if cd != n["cd"] {
		t.Fatalf("expected cd as second child, got %s", cd.Name)
	}
	if cd.Length != 0.5 {
		t.Errorf("expected cd length 0.5, got %v", cd.Length)
	}
	if diff := cmp.Diff([]string{"D", "ab"}, names(cd.Children)); diff != "" {
		t.Errorf("cd children mismatch (-want +got):\n%s", diff)
	}

	// the old root had two children and is suppressed; ab absorbs its edge
	if n["ab"].Parent != cd {
		t.Errorf("expected ab parent to be cd, got %v", n["ab"].Parent.Name)
	}
	if n["ab"].Length != 3 {
		t.Errorf("expected ab length 1+2=3, got %v", n["ab"].Length)
	}

	wantLeaves := []string{"C", "D", "A", "B"}
	if diff := cmp.Diff(wantLeaves, names(tree.Leaves())); diff != "" {
		t.Errorf("leaves mismatch (-want +got):\n%s", diff)
	}
}

func TestIsAncestorOf(t *testing.T) {
	_, n := buildTestTree(t)

	if !n["root"].IsAncestorOf(n["A"]) {
		t.Error("root should be an ancestor of A")
	}
	if n["ab"].IsAncestorOf(n["ab"]) {
		t.Error("a node is not a strict ancestor of itself")
	}
	if n["ab"].IsAncestorOf(n["C"]) {
		t.Error("ab should not be an ancestor of C")
	}
}
