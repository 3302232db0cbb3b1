package routekit

import "fmt"

// route is the payload attached to a terminal trie node: the resource
// handle, its method table, and the template it was registered under.
type route[H any] struct {
	template string
	resource any
	methods  map[string]H
}

// node is one segment of the registration trie. Nodes are identified by raw
// segment text, so templates sharing a prefix of byte-identical segments
// share nodes, while {id} and {id:int} occupy different nodes (and are
// rejected as conflicting siblings). The sentinel root carries no segment
// of its own; depth-zero segments hang off its children.
type node[H any] struct {
	raw      string
	seg      segment
	children []*node[H]
	route    *route[H]
}

// insert threads segs into the trie below n, creating nodes as needed, and
// attaches rt to the final node. Registering the exact same template again
// replaces the payload in place. A new segment that is neither identical to
// nor cleanly distinguishable from an existing sibling fails with
// ErrRouteConflict; nodes already created for earlier segments of the
// failed template remain, but they carry no payload and never match.
func (n *node[H]) insert(segs []segment, rt *route[H]) error {
	cur := n
	for i := range segs {
		seg := segs[i]
		var child *node[H]
		for _, c := range cur.children {
			if c.raw == seg.raw {
				child = c
				break
			}
			if conflicts(c.seg, seg) {
				return fmt.Errorf("%w: segment %q of %q is ambiguous with existing %q",
					ErrRouteConflict, seg.raw, rt.template, c.raw)
			}
		}
		if child == nil {
			child = &node[H]{raw: seg.raw, seg: seg}
			cur.children = append(cur.children, child)
		}
		if i == len(segs)-1 {
			child.route = rt
		} else {
			cur = child
		}
	}
	return nil
}

// conflicts reports whether two segments with different raw text would make
// matching ambiguous if they became siblings. Two simple variables always
// would: both match any value, so only one can ever win. Two complex
// segments collide exactly when their literal skeletons are equal. Static
// segments never conflict with anything, and a variable can always be
// distinguished from a static sibling by the precedence order.
func conflicts(a, b segment) bool {
	switch {
	case a.kind == segSimple && b.kind == segSimple:
		return true
	case a.kind == segComplex && b.kind == segComplex:
		return skeleton(a.raw) == skeleton(b.raw)
	default:
		return false
	}
}

// walk visits every node below n in depth-first registration order.
func (n *node[H]) walk(visit func(*node[H])) {
	for _, c := range n.children {
		visit(c)
		c.walk(visit)
	}
}
