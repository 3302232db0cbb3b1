package routekit

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Converter validates and transforms the raw text captured by a template
// field before it is exposed as a route parameter. Convert returns the
// converted value and true on success, or nil and false when the text does
// not represent a value of the converter's type. A false result is not an
// error: it simply means the route does not match and the search moves on
// to the next candidate.
//
// Implementations must be safe for concurrent use; a configured converter
// is shared by every lookup that touches its route.
type Converter interface {
	Convert(value string) (any, bool)
}

// RemainderConverter is the optional capability of consuming every path
// segment from the field's position to the end of the path, instead of a
// single segment. The path built-in implements it. A field whose converter
// implements RemainderConverter may only appear as the final segment of a
// template, and a matching route accepts any number of trailing segments.
type RemainderConverter interface {
	Converter

	// ConvertRemainder receives the remaining path segments, already split
	// on "/", starting with the segment at the field's own position.
	ConvertRemainder(segments []string) (any, bool)
}

// ConverterFactory builds a configured Converter from the parenthesized
// argument list of a template field reference, e.g. the min=1 in
// {id:int(min=1)}. It is invoked once per field at registration time;
// the resulting Converter is reused for the lifetime of the route.
type ConverterFactory func(args ConverterArgs) (Converter, error)

// ConverterArg is a single argument parsed from a converter reference.
// Name is empty for a bare (positional) argument.
type ConverterArg struct {
	Name  string
	Value string
}

// ConverterArgs is the ordered argument list parsed from a converter
// reference in a URI template. Arguments are either named (key=value) or
// bare; Bind resolves bare arguments against a factory's parameter names
// by position, so {ts:dt("2006-01-02")} and
// {ts:dt(format_string="2006-01-02")} configure the same converter.
type ConverterArgs []ConverterArg

// Bind maps the arguments onto the given parameter names and returns the
// resulting assignment. Bare arguments fill names left to right and must
// not follow named ones; each name may be assigned at most once; names
// outside the given set are rejected. All failures wrap ErrConverterConfig.
func (args ConverterArgs) Bind(names ...string) (ConverterParams, error) {
	params := make(ConverterParams, len(args))
	sawNamed := false
	pos := 0
	for _, arg := range args {
		if arg.Name == "" {
			if sawNamed {
				return nil, fmt.Errorf("%w: positional argument after named argument", ErrConverterConfig)
			}
			if pos >= len(names) {
				return nil, fmt.Errorf("%w: too many arguments (at most %d accepted)", ErrConverterConfig, len(names))
			}
			params[names[pos]] = arg.Value
			pos++
			continue
		}
		sawNamed = true
		if !slices.Contains(names, arg.Name) {
			return nil, fmt.Errorf("%w: unknown argument %q", ErrConverterConfig, arg.Name)
		}
		if _, dup := params[arg.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate argument %q", ErrConverterConfig, arg.Name)
		}
		params[arg.Name] = arg.Value
	}
	return params, nil
}

// ConverterParams is a bound name-to-value assignment produced by
// ConverterArgs.Bind. The typed accessors report whether the parameter was
// present; parse failures wrap ErrConverterConfig.
type ConverterParams map[string]string

// String returns the raw value of the named parameter.
func (p ConverterParams) String(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

// Int parses the named parameter as a base-10 integer.
func (p ConverterParams) Int(name string) (int64, bool, error) {
	raw, ok := p[name]
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %s must be an integer, got %q", ErrConverterConfig, name, raw)
	}
	return v, true, nil
}

// Float parses the named parameter as a decimal number.
func (p ConverterParams) Float(name string) (float64, bool, error) {
	raw, ok := p[name]
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %s must be a number, got %q", ErrConverterConfig, name, raw)
	}
	return v, true, nil
}

// Bool parses the named parameter as a boolean. It accepts the forms
// strconv.ParseBool does, including True and False.
func (p ConverterParams) Bool(name string) (bool, bool, error) {
	raw, ok := p[name]
	if !ok {
		return false, false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, true, fmt.Errorf("%w: %s must be a boolean, got %q", ErrConverterConfig, name, raw)
	}
	return v, true, nil
}

// parseConverterArgs splits the text between the parentheses of a converter
// reference into arguments. Arguments are comma separated; values may be
// single or double quoted to carry commas, equals signs, or parentheses.
// Quotes around a value are stripped.
func parseConverterArgs(argstr string) (ConverterArgs, error) {
	if strings.TrimSpace(argstr) == "" {
		return nil, nil
	}
	var args ConverterArgs
	for _, item := range splitQuoted(argstr, ',') {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, fmt.Errorf("%w: empty argument in %q", ErrConverterConfig, argstr)
		}
		name, value, named := cutUnquoted(item, '=')
		if !named {
			v, err := unquote(item)
			if err != nil {
				return nil, err
			}
			args = append(args, ConverterArg{Value: v})
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" || strings.ContainsAny(name, `'"`) {
			return nil, fmt.Errorf("%w: bad argument name in %q", ErrConverterConfig, item)
		}
		v, err := unquote(strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		args = append(args, ConverterArg{Name: name, Value: v})
	}
	return args, nil
}

// splitQuoted splits s on sep, ignoring separators inside single or double
// quoted runs. Unterminated quotes are tolerated here and rejected later by
// unquote.
func splitQuoted(s string, sep byte) []string {
	var parts []string
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// cutUnquoted cuts s around the first sep that sits outside quotes.
func cutUnquoted(s string, sep byte) (before, after string, found bool) {
	var quote byte
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == sep:
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// unquote strips one layer of matching quotes, if present.
func unquote(s string) (string, error) {
	if len(s) > 0 && (s[0] == '\'' || s[0] == '"') {
		if len(s) < 2 || s[len(s)-1] != s[0] {
			return "", fmt.Errorf("%w: unterminated quote in %q", ErrConverterConfig, s)
		}
		return s[1 : len(s)-1], nil
	}
	if len(s) > 0 && (s[len(s)-1] == '\'' || s[len(s)-1] == '"') {
		return "", fmt.Errorf("%w: unterminated quote in %q", ErrConverterConfig, s)
	}
	return s, nil
}

// intConverter matches whole base-10 integers, optionally constrained to an
// exact digit count and an inclusive range.
type intConverter struct {
	numDigits *int64
	min       *int64
	max       *int64
}

// NewIntConverter is the factory behind the int built-in. It accepts
// num_digits, min, and max.
func NewIntConverter(args ConverterArgs) (Converter, error) {
	params, err := args.Bind("num_digits", "min", "max")
	if err != nil {
		return nil, err
	}
	var c intConverter
	if v, ok, err := params.Int("num_digits"); err != nil {
		return nil, err
	} else if ok {
		if v < 1 {
			return nil, fmt.Errorf("%w: num_digits must be at least 1, got %d", ErrConverterConfig, v)
		}
		c.numDigits = &v
	}
	if v, ok, err := params.Int("min"); err != nil {
		return nil, err
	} else if ok {
		c.min = &v
	}
	if v, ok, err := params.Int("max"); err != nil {
		return nil, err
	} else if ok {
		c.max = &v
	}
	return c, nil
}

func (c intConverter) Convert(value string) (any, bool) {
	if c.numDigits != nil && int64(len(value)) != *c.numDigits {
		return nil, false
	}
	// ParseInt rejects surrounding whitespace and non-decimal forms itself;
	// a leading sign is accepted and counts toward num_digits.
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, false
	}
	if c.min != nil && n < *c.min {
		return nil, false
	}
	if c.max != nil && n > *c.max {
		return nil, false
	}
	return n, true
}

// floatConverter matches decimal numbers, by default only finite ones.
type floatConverter struct {
	min    *float64
	max    *float64
	finite bool
}

// NewFloatConverter is the factory behind the float built-in. It accepts
// min, max, and finite (default true). With finite=False the special
// values nan, inf, and -inf are accepted as well.
func NewFloatConverter(args ConverterArgs) (Converter, error) {
	params, err := args.Bind("min", "max", "finite")
	if err != nil {
		return nil, err
	}
	c := floatConverter{finite: true}
	if v, ok, err := params.Float("min"); err != nil {
		return nil, err
	} else if ok {
		c.min = &v
	}
	if v, ok, err := params.Float("max"); err != nil {
		return nil, err
	} else if ok {
		c.max = &v
	}
	if v, ok, err := params.Bool("finite"); err != nil {
		return nil, err
	} else if ok {
		c.finite = v
	}
	return c, nil
}

func (c floatConverter) Convert(value string) (any, bool) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, false
	}
	if c.finite && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil, false
	}
	if c.min != nil && f < *c.min {
		return nil, false
	}
	if c.max != nil && f > *c.max {
		return nil, false
	}
	return f, true
}

// dateTimeConverter parses timestamps with a time.Parse layout.
type dateTimeConverter struct {
	layout string
}

// NewDateTimeConverter is the factory behind the dt built-in. It accepts a
// single format_string argument holding a time.Parse layout; the default is
// time.RFC3339.
func NewDateTimeConverter(args ConverterArgs) (Converter, error) {
	params, err := args.Bind("format_string")
	if err != nil {
		return nil, err
	}
	c := dateTimeConverter{layout: time.RFC3339}
	if v, ok := params.String("format_string"); ok {
		if v == "" {
			return nil, fmt.Errorf("%w: format_string must not be empty", ErrConverterConfig)
		}
		c.layout = v
	}
	return c, nil
}

func (c dateTimeConverter) Convert(value string) (any, bool) {
	t, err := time.Parse(c.layout, value)
	if err != nil {
		return nil, false
	}
	return t, true
}

// uuidConverter matches RFC 4122 UUIDs in any of the textual forms accepted
// by github.com/google/uuid: canonical hyphenated, bare hex, urn:uuid:
// prefixed, and brace wrapped.
type uuidConverter struct{}

// NewUUIDConverter is the factory behind the uuid built-in. It accepts no
// arguments.
func NewUUIDConverter(args ConverterArgs) (Converter, error) {
	if _, err := args.Bind(); err != nil {
		return nil, err
	}
	return uuidConverter{}, nil
}

func (uuidConverter) Convert(value string) (any, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, false
	}
	return id, true
}

// pathConverter captures text verbatim. As a RemainderConverter it swallows
// every segment from its position onward, rejoined with "/".
type pathConverter struct{}

// NewPathConverter is the factory behind the path built-in. It accepts no
// arguments. A {name:path} field must be the final segment of its template
// and matches the rest of the path, including embedded slashes. The
// remainder may be empty: /static/{p:path} matches the path "/static/"
// with p == "", but does not match "/static".
func NewPathConverter(args ConverterArgs) (Converter, error) {
	if _, err := args.Bind(); err != nil {
		return nil, err
	}
	return pathConverter{}, nil
}

func (pathConverter) Convert(value string) (any, bool) {
	return value, true
}

func (pathConverter) ConvertRemainder(segments []string) (any, bool) {
	return strings.Join(segments, "/"), true
}

// ConverterRegistry resolves the converter names referenced by URI templates
// to configured Converter instances. Every Router owns one, pre-populated
// with the built-ins (int, float, dt, uuid, path). The registry is meant to
// be fully populated during application setup, before routes that use the
// custom names are added; it performs no locking of its own.
type ConverterRegistry struct {
	factories map[string]ConverterFactory
}

// NewConverterRegistry returns a registry holding the built-in converters.
func NewConverterRegistry() *ConverterRegistry {
	return &ConverterRegistry{factories: map[string]ConverterFactory{
		"int":   NewIntConverter,
		"float": NewFloatConverter,
		"dt":    NewDateTimeConverter,
		"uuid":  NewUUIDConverter,
		"path":  NewPathConverter,
	}}
}

// Register adds a converter factory under the given name. Built-in names
// are reserved; registering over any existing name fails with
// ErrDuplicateConverter.
func (r *ConverterRegistry) Register(name string, factory ConverterFactory) error {
	if name == "" {
		return fmt.Errorf("%w: converter name must not be empty", ErrConverterConfig)
	}
	if factory == nil {
		return fmt.Errorf("%w: nil factory for converter %q", ErrConverterConfig, name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateConverter, name)
	}
	r.factories[name] = factory
	return nil
}

// Resolve looks up name and invokes its factory with the parsed argument
// list. It fails with ErrUnknownConverter for unregistered names and wraps
// any factory failure in ErrConverterConfig.
func (r *ConverterRegistry) Resolve(name, argstr string) (Converter, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConverter, name)
	}
	args, err := parseConverterArgs(argstr)
	if err != nil {
		return nil, err
	}
	conv, err := factory(args)
	if err != nil {
		if errors.Is(err, ErrConverterConfig) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %q: %v", ErrConverterConfig, name, err)
	}
	if conv == nil {
		return nil, fmt.Errorf("%w: factory for %q returned no converter", ErrConverterConfig, name)
	}
	return conv, nil
}
