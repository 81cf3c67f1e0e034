package gqlcore

// PathSegment is one element of a response path: either a list index
// or a field/result-key name.
type PathSegment struct {
	Index   int
	Name    string
	IsIndex bool
}

func IndexSegment(i int) PathSegment      { return PathSegment{Index: i, IsIndex: true} }
func NameSegment(name string) PathSegment { return PathSegment{Name: name} }

// PathNode is a backward-linked list of segments: each node points to
// its parent, so constructing a child context is O(1) and never copies
// ancestor data.
type PathNode struct {
	Parent  *PathNode
	Segment PathSegment
}

// WithIndex returns a child path node addressing list element i.
func (p *PathNode) WithIndex(i int) *PathNode {
	return &PathNode{Parent: p, Segment: IndexSegment(i)}
}

// WithName returns a child path node addressing a named field.
func (p *PathNode) WithName(name string) *PathNode {
	return &PathNode{Parent: p, Segment: NameSegment(name)}
}

// ForEach walks from root to this node, invoking fn on each segment in
// root-to-leaf order.
func (p *PathNode) ForEach(fn func(PathSegment)) {
	if p == nil {
		return
	}
	p.Parent.ForEach(fn)
	fn(p.Segment)
}

// ToJSON serializes the path as a JSON array of segments the way
// GraphQL error/defer path reporting expects: strings for names,
// numbers for indices.
func (p *PathNode) ToJSON() []interface{} {
	var out []interface{}
	p.ForEach(func(s PathSegment) {
		if s.IsIndex {
			out = append(out, s.Index)
		} else {
			out = append(out, s.Name)
		}
	})
	return out
}

// FieldName returns the name of the nearest name segment at or above
// this node — used when an error needs "the field currently being
// resolved" without a full path walk.
func (p *PathNode) FieldName() (string, bool) {
	for n := p; n != nil; n = n.Parent {
		if !n.Segment.IsIndex {
			return n.Segment.Name, true
		}
	}
	return "", false
}
