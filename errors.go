package routekit

import "errors"

// Error variables cover every way route registration can fail. They all
// surface at setup time: a template that cannot be registered is a
// configuration bug and should stop the application before it serves
// traffic. Lookup failures are not errors: Find reports them with
// ok == false, and a converter rejecting a value is an ordinary
// "no match" signal, not a failure.
var (
	// ErrTemplateSyntax indicates a malformed URI template: missing leading
	// slash, embedded whitespace, an empty segment, an invalid or duplicated
	// field name, or a remainder-consuming converter placed anywhere but the
	// final segment.
	ErrTemplateSyntax = errors.New("invalid URI template")

	// ErrRouteConflict indicates a registration that would make matching
	// ambiguous, such as two routes claiming the same segment slot with
	// different field names.
	ErrRouteConflict = errors.New("route conflicts with an existing route")

	// ErrUnknownConverter indicates a template that references a converter
	// name absent from the registry.
	ErrUnknownConverter = errors.New("unknown converter")

	// ErrDuplicateConverter indicates an attempt to register a converter
	// under a name that is already taken.
	ErrDuplicateConverter = errors.New("converter already registered")

	// ErrConverterConfig indicates a converter argument list that cannot be
	// parsed or applied, e.g. {id:int(digits=3)} naming an argument the int
	// converter does not accept.
	ErrConverterConfig = errors.New("invalid converter configuration")
)
