package graph

import "golang.org/x/text/unicode/norm"

// labelKey is the form labels are compared in. Canonically equivalent
// spellings (composed or decomposed accents) resolve to the same node.
func labelKey(label string) string {
	return norm.NFC.String(label)
}

// SameLabel reports whether a and b name the same node.
func SameLabel(a, b string) bool {
	return labelKey(a) == labelKey(b)
}

// Index resolves edge labels to nodes. Build one per snapshot and use it
// for every lookup so all checks agree on what a label means.
type Index struct {
	byLabel map[string]Node
}

// NewIndex indexes nodes by label. When labels collide the first node wins.
func NewIndex(nodes []Node) Index {
	idx := Index{byLabel: make(map[string]Node, len(nodes))}
	for _, n := range nodes {
		key := labelKey(n.Label)
		if _, ok := idx.byLabel[key]; !ok {
			idx.byLabel[key] = n
		}
	}
	return idx
}

// Lookup returns the node for label.
func (idx Index) Lookup(label string) (Node, bool) {
	n, ok := idx.byLabel[labelKey(label)]
	return n, ok
}

// IsSelfLoop reports whether both ends of e resolve to the same node.
// Unresolvable edges are not self-loops.
func (idx Index) IsSelfLoop(e Edge) bool {
	from, ok := idx.Lookup(e.From)
	if !ok {
		return false
	}
	to, ok := idx.Lookup(e.To)
	return ok && from.ID == to.ID
}
