package routekit

import (
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Router maps URI templates to the resources registered under them. It is
// generic over the handler type H carried in method tables, so it can hold
// plain http.Handler values, framework-specific handler funcs, or anything
// else the application dispatches on.
//
// Lookups run against an immutable compiled snapshot and are safe for
// unbounded concurrency. AddRoute invalidates the snapshot; the next Find
// rebuilds it, while lookups already in flight keep the snapshot they
// loaded. Concurrent AddRoute calls are serialized internally.
// RegisterConverter is setup-time only and must happen before any route
// referencing the converter is added.
type Router[H any] struct {
	mu         sync.Mutex
	root       *node[H]
	converters *ConverterRegistry
	compiled   atomic.Pointer[matcher[H]]
	logger     *slog.Logger
}

// Match is the result of a successful lookup.
type Match[H any] struct {
	// Resource is the opaque handle registered with the winning route.
	Resource any

	// Methods is the method table exactly as registered. The router keeps
	// the caller's map without copying it.
	Methods map[string]H

	// Params holds the converted field bindings. It is freshly allocated
	// per lookup and never nil, so callers may mutate it.
	Params Params

	// Template is the URI template the route was registered under, useful
	// for metrics labels and access logs with bounded cardinality.
	Template string
}

// RouteInfo describes one registered route for introspection.
type RouteInfo struct {
	Template string
	Resource any
	Methods  []string
}

// New returns an empty Router.
func New[H any](opts ...Option[H]) *Router[H] {
	r := &Router[H]{
		root:       &node[H]{},
		converters: NewConverterRegistry(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddRoute binds a URI template to a resource and its method table. The
// template is parsed and checked eagerly: syntax problems, unknown or
// misconfigured converters, and conflicts with existing routes are all
// reported now rather than at lookup time. Adding the exact same template
// again replaces the previous resource and method table.
func (r *Router[H]) AddRoute(template string, resource any, methods map[string]H) error {
	segs, err := parseTemplate(template, r.converters)
	if err != nil {
		return err
	}
	rt := &route[H]{template: template, resource: resource, methods: methods}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.root.insert(segs, rt); err != nil {
		return err
	}
	r.compiled.Store(nil)
	r.logger.Debug("route registered", "template", template, "methods", methodNames(methods))
	return nil
}

// RegisterConverter makes a converter available to templates under the
// given name. Built-in names cannot be taken over; registering a name twice
// fails with ErrDuplicateConverter.
func (r *Router[H]) RegisterConverter(name string, factory ConverterFactory) error {
	return r.converters.Register(name, factory)
}

// Find resolves a request path to a registered route. The second return
// value reports whether any route matched; responding to a miss (404 or
// otherwise) is the caller's business. Find never inspects the method, so
// method-not-allowed handling stays in the caller's hands too, via
// Match.Methods.
func (r *Router[H]) Find(path string) (Match[H], bool) {
	rt, bindings := r.snapshot().find(path)
	if rt == nil {
		return Match[H]{}, false
	}
	params := make(Params, len(bindings))
	for _, b := range bindings {
		params[b.name] = b.value
	}
	return Match[H]{
		Resource: rt.resource,
		Methods:  rt.methods,
		Params:   params,
		Template: rt.template,
	}, true
}

// Routes lists every registered route, sorted by template. The method
// names of each route are sorted as well, so the output is stable and
// diffable.
func (r *Router[H]) Routes() []RouteInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	var infos []RouteInfo
	r.root.walk(func(n *node[H]) {
		if n.route == nil {
			return
		}
		infos = append(infos, RouteInfo{
			Template: n.route.template,
			Resource: n.route.resource,
			Methods:  methodNames(n.route.methods),
		})
	})
	sort.Slice(infos, func(i, j int) bool { return infos[i].Template < infos[j].Template })
	return infos
}

// DumpTree renders the compiled decision tree one segment per line, in
// evaluation order. It is meant for debugging why one route shadows
// another.
func (r *Router[H]) DumpTree() string {
	return r.snapshot().dump()
}

// snapshot returns the current compiled matcher, building it on first use
// or after a registration invalidated the previous one. The double-checked
// load keeps steady-state lookups down to a single atomic read.
func (r *Router[H]) snapshot() *matcher[H] {
	if m := r.compiled.Load(); m != nil {
		return m
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m := r.compiled.Load(); m != nil {
		return m
	}
	start := time.Now()
	m := compileTree(r.root)
	r.compiled.Store(m)
	r.logger.Debug("decision tree compiled",
		"routes", m.routes,
		"depth", m.depth,
		"elapsed", time.Since(start))
	return m
}

func methodNames[H any](methods map[string]H) []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
