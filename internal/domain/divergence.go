package domain

// AssignRelativeDivergence sets RelDist on every node of the tree. The
// root is 0 and leaves are 1. An internal node at branch length a below a
// parent with divergence x, and with mean path length b to its leaves,
// gets x + a/(a+b)*(1-x).
func (t *Tree) AssignRelativeDivergence() {
	meanDist := make(map[*Node]float64)
	sumDist := make(map[*Node]float64)
	numLeaves := make(map[*Node]int)

	for _, n := range t.Postorder() {
		if n.IsLeaf() {
			numLeaves[n] = 1
			continue
		}
		for _, c := range n.Children {
			sumDist[n] += sumDist[c] + c.Length*float64(numLeaves[c])
			numLeaves[n] += numLeaves[c]
		}
		meanDist[n] = sumDist[n] / float64(numLeaves[n])
	}

	for _, n := range t.Preorder() {
		switch {
		case n.Parent == nil:
			n.RelDist = 0
		case n.IsLeaf():
			n.RelDist = 1
		default:
			x := n.Parent.RelDist
			a, b := n.Length, meanDist[n]
			if a+b == 0 {
				n.RelDist = x
			} else {
				n.RelDist = x + (a/(a+b))*(1-x)
			}
		}
	}
}
