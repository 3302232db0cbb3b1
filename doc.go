// Package routekit compiles URI templates into a fast, immutable decision
// tree for resolving request paths to resources. It is the routing core
// only: it knows nothing about HTTP methods beyond carrying an opaque
// method table, and nothing about handlers beyond a type parameter, so it
// slots under any dispatch layer.
//
// A Router is generic over the handler type H stored in method tables:
//
//	router := routekit.New[http.HandlerFunc]()
//
//	err := router.AddRoute("/users/{id:int(min=1)}", usersResource, map[string]http.HandlerFunc{
//		"GET": showUser,
//		"PUT": updateUser,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	match, ok := router.Find("/users/42")
//	if ok {
//		id, _ := match.Params.Int("id") // 42, already an int64
//		match.Methods["GET"](w, r)
//	}
//
// # Templates
//
// A template is a '/'-separated path whose segments are either literal
// text, a single field reference, or a mix of both:
//
//	/users                literal segments only
//	/users/{id}           {id} binds the whole segment as a string
//	/users/{id:int}       converted and validated by the int converter
//	/files/{name}.{ext}   complex segment binding two fields
//
// Field names start with a letter, underscore, or hyphen and continue with
// those plus digits. A name may appear only once per template. Templates
// must start with '/', contain no whitespace and no empty segments; the
// sole exception is the bare template "/", which addresses the root path.
//
// # Converters
//
// A field reference may name a converter with optional arguments, in the
// form {field:converter} or {field:converter(arg, key=value)}. The
// converter validates the raw segment text and produces a typed value. A
// rejected value is not an error: the route simply does not match, the
// search backs up to the next alternative, and a path no route accepts
// reports a plain miss.
//
// Five converters are built in:
//
//	int    base-10 integer as int64; options num_digits, min, max
//	float  decimal number as float64; options min, max, finite
//	dt     timestamp as time.Time; option format_string, a time.Parse
//	       layout, default time.RFC3339
//	uuid   RFC 4122 UUID as uuid.UUID, hyphens optional
//	path   the rest of the path as one string, slashes included; only
//	       valid as the final segment
//
// Custom converters are a factory away; see Router.RegisterConverter.
//
// # Matching
//
// Lookups walk the path segment by segment. At every level static segments
// are tried first, then complex, then simple fields, so /users/me always
// beats /users/{id}. When a branch dead-ends the search backs up and tries
// the next alternative, rolling back any field bindings the abandoned
// branch made. Purely static levels skip the backtracking entirely.
//
// A route matches only when the path has exactly as many segments as the
// template; the router never equates /users and /users/. Redirecting or
// rewriting trailing slashes belongs in the layer above.
//
// # Concurrency
//
// Find runs against an immutable compiled snapshot: no locks, no writes,
// safe for any number of goroutines. AddRoute may be called at runtime;
// it invalidates the snapshot and the next Find rebuilds it, while lookups
// already in flight finish on the snapshot they started with.
package routekit
