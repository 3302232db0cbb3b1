package routekit

import (
	"fmt"
	"sort"
	"strings"
)

// step is one node of the compiled decision tree. Steps at the same level
// share a depth and are stored in evaluation order: static first, then
// complex, then simple, with registration order preserved inside each kind.
type step[H any] struct {
	seg      segment
	depth    int
	route    *route[H]
	children []*step[H]

	// fastReturn is set when this step's level and every level above it
	// hold only static segments. Matching is then first-match-only: once a
	// static segment has been entered and failed to produce a route, no
	// sibling can possibly match, so the whole search stops.
	fastReturn bool
}

// matcher is an immutable compiled artifact. It shares segments and route
// payloads with the trie revision it was compiled from, but never the trie
// nodes themselves, so later registrations cannot disturb a matcher already
// handed out to concurrent lookups.
type matcher[H any] struct {
	steps  []*step[H]
	routes int
	depth  int
}

// binding is one deferred parameter assignment recorded while descending.
// Bindings become a Params map only after a route has actually won, keeping
// abandoned branches allocation-free.
type binding struct {
	name  string
	value any
}

// compileTree flattens the registration trie into a matcher.
func compileTree[H any](root *node[H]) *matcher[H] {
	m := &matcher[H]{}
	m.steps = m.compileLevel(root.children, 0, true)
	return m
}

func (m *matcher[H]) compileLevel(nodes []*node[H], depth int, fastReturn bool) []*step[H] {
	if len(nodes) == 0 {
		return nil
	}
	if depth+1 > m.depth {
		m.depth = depth + 1
	}

	ordered := make([]*node[H], len(nodes))
	copy(ordered, nodes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].seg.kind < ordered[j].seg.kind
	})

	// Any variable segment at this level forces the full sibling scan, here
	// and below: a path that fails deeper down must be able to back up and
	// try the variable alternative.
	for _, n := range ordered {
		if n.seg.kind != segStatic {
			fastReturn = false
			break
		}
	}

	steps := make([]*step[H], 0, len(ordered))
	for _, n := range ordered {
		st := &step[H]{seg: n.seg, depth: depth, route: n.route, fastReturn: fastReturn}
		st.children = m.compileLevel(n.children, depth+1, fastReturn)
		if n.route != nil {
			m.routes++
		}
		steps = append(steps, st)
	}
	return steps
}

// find resolves a path against the compiled tree. It returns the winning
// route and its parameter bindings, or nil.
func (m *matcher[H]) find(path string) (*route[H], []binding) {
	segs := splitPath(path)
	var bindings []binding
	rt := findLevel(m.steps, segs, &bindings)
	if rt == nil {
		return nil, nil
	}
	return rt, bindings
}

// findLevel tries every step of one level, in order, against the segment at
// the level's depth. A step that matches is entered: deeper levels run
// first, then the step's own payload applies if the path ends exactly here.
// When both fail the step's bindings are rolled back and the scan moves on
// to the next sibling, unless the level allows the fast return.
func findLevel[H any](steps []*step[H], segs []string, bindings *[]binding) *route[H] {
	if len(steps) == 0 || len(segs) <= steps[0].depth {
		return nil
	}
	depth := steps[0].depth
	value := segs[depth]

	for _, st := range steps {
		prev := len(*bindings)

		switch st.seg.kind {
		case segStatic:
			if value != st.seg.raw {
				continue
			}

		case segComplex:
			groups := st.seg.pattern.FindStringSubmatch(value)
			if groups == nil {
				continue
			}
			ok := true
			for i, c := range st.seg.captures {
				text := groups[i+1]
				if c.conv == nil {
					*bindings = append(*bindings, binding{c.name, text})
					continue
				}
				v, converted := c.conv.Convert(text)
				if !converted {
					ok = false
					break
				}
				*bindings = append(*bindings, binding{c.name, v})
			}
			if !ok {
				*bindings = (*bindings)[:prev]
				continue
			}

		case segSimple:
			if rc, isRemainder := st.seg.conv.(RemainderConverter); isRemainder {
				// A remainder field ends the search unconditionally: it
				// either swallows everything left or nothing matches.
				v, converted := rc.ConvertRemainder(segs[depth:])
				if !converted {
					return nil
				}
				*bindings = append(*bindings, binding{st.seg.name, v})
				return st.route
			}
			if st.seg.conv != nil {
				v, converted := st.seg.conv.Convert(value)
				if !converted {
					continue
				}
				*bindings = append(*bindings, binding{st.seg.name, v})
			} else {
				*bindings = append(*bindings, binding{st.seg.name, value})
			}
		}

		if rt := findLevel(st.children, segs, bindings); rt != nil {
			return rt
		}
		if st.route != nil && len(segs) == depth+1 {
			return st.route
		}

		*bindings = (*bindings)[:prev]
		if st.fastReturn {
			return nil
		}
	}
	return nil
}

// splitPath splits a request path into segments, stripping a single leading
// slash. Collapsing duplicate or trailing slashes is the caller's decision;
// empty segments flow through as empty strings and simply never match a
// non-root template.
func splitPath(path string) []string {
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// dump renders the decision tree one step per line, in evaluation order,
// for debugging route precedence.
func (m *matcher[H]) dump() string {
	var b strings.Builder
	dumpSteps(&b, m.steps, 0)
	return b.String()
}

func dumpSteps[H any](b *strings.Builder, steps []*step[H], indent int) {
	kinds := [...]string{segStatic: "static", segComplex: "complex", segSimple: "simple"}
	for _, st := range steps {
		b.WriteString(strings.Repeat("  ", indent))
		fmt.Fprintf(b, "%s %q", kinds[st.seg.kind], st.seg.raw)
		if st.fastReturn {
			b.WriteString(" [fast-return]")
		}
		if st.route != nil {
			fmt.Fprintf(b, " -> %s", st.route.template)
		}
		b.WriteByte('\n')
		dumpSteps(b, st.children, indent+1)
	}
}
