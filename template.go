package routekit

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// fieldPattern recognizes one field reference inside a template segment, in
// any of the three forms {fname}, {fname:cname}, and {fname:cname(argstr)}.
// The argstr cannot contain '}', and no whitespace is allowed around the
// ':' separator.
var fieldPattern = regexp.MustCompile(
	`\{((?P<fname>[^}:]*)((?P<csep>:(?P<cname>[^}(]*))(\((?P<argstr>[^}]*)\))?)?)\}`,
)

var (
	idxFname  = fieldPattern.SubexpIndex("fname")
	idxCSep   = fieldPattern.SubexpIndex("csep")
	idxCname  = fieldPattern.SubexpIndex("cname")
	idxArgstr = fieldPattern.SubexpIndex("argstr")
)

// fieldNamePattern validates field names: a letter, underscore, or hyphen,
// followed by any mix of those and digits.
var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_-][0-9A-Za-z_-]*$`)

// segmentKind classifies one template segment. The numeric order doubles as
// the evaluation precedence among siblings: static segments are tried first,
// then complex, then simple.
type segmentKind uint8

const (
	segStatic segmentKind = iota
	segComplex
	segSimple
)

// capture binds one field of a complex segment: the parameter name and the
// optional configured converter. Captures are stored in field order, which
// is also the order of the pattern's capture groups.
type capture struct {
	name string
	conv Converter
}

// segment is the parsed form of one template path segment.
type segment struct {
	kind segmentKind
	raw  string

	// Simple variable segments bind the whole path segment to one name.
	name string
	conv Converter

	// Complex segments match with a compiled pattern and may bind several
	// names at once.
	pattern  *regexp.Regexp
	captures []capture
}

// consumesRemainder reports whether the segment's converter swallows the
// rest of the path. Only whole-segment fields can; a remainder converter
// embedded in a complex segment is rejected at parse time.
func (s segment) consumesRemainder() bool {
	if s.kind != segSimple || s.conv == nil {
		return false
	}
	_, ok := s.conv.(RemainderConverter)
	return ok
}

// parseTemplate splits a URI template into parsed segments, resolving and
// configuring every converter it references. The template must start with
// '/', contain no whitespace outside converter arguments, and no empty
// segments. Field names must be unique across the whole template.
func parseTemplate(template string, reg *ConverterRegistry) ([]segment, error) {
	if !strings.HasPrefix(template, "/") {
		return nil, fmt.Errorf("%w: %q must start with '/'", ErrTemplateSyntax, template)
	}
	if hasBareWhitespace(template) {
		return nil, fmt.Errorf("%w: %q contains whitespace", ErrTemplateSyntax, template)
	}

	raws := strings.Split(template[1:], "/")
	// "/" parses to a single empty segment and addresses the root route;
	// everywhere else an empty segment means a stray slash.
	if len(raws) > 1 || raws[0] != "" {
		for _, raw := range raws {
			if raw == "" {
				return nil, fmt.Errorf("%w: %q contains an empty segment", ErrTemplateSyntax, template)
			}
		}
	}

	used := make(map[string]struct{})
	segs := make([]segment, 0, len(raws))
	for i, raw := range raws {
		seg, err := parseSegment(raw, reg, used)
		if err != nil {
			return nil, err
		}
		if i < len(raws)-1 && seg.consumesRemainder() {
			return nil, fmt.Errorf("%w: remainder field %q must be the final segment", ErrTemplateSyntax, raw)
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// parseSegment classifies one raw segment and resolves its converters. The
// used set tracks field names claimed by earlier segments of the same
// template.
func parseSegment(raw string, reg *ConverterRegistry, used map[string]struct{}) (segment, error) {
	matches := fieldPattern.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		// No field reference at all, including unpaired braces: the
		// segment matches literally.
		return segment{kind: segStatic, raw: raw}, nil
	}

	caps := make([]capture, 0, len(matches))
	for _, m := range matches {
		fname, _ := matchGroup(raw, m, idxFname)
		if !fieldNamePattern.MatchString(fname) {
			return segment{}, fmt.Errorf("%w: bad field name %q in segment %q", ErrTemplateSyntax, fname, raw)
		}
		if _, dup := used[fname]; dup {
			return segment{}, fmt.Errorf("%w: field name %q used more than once", ErrTemplateSyntax, fname)
		}
		used[fname] = struct{}{}

		var conv Converter
		if _, hasConv := matchGroup(raw, m, idxCSep); hasConv {
			cname, _ := matchGroup(raw, m, idxCname)
			if cname == "" {
				return segment{}, fmt.Errorf("%w: field %q names no converter after ':'", ErrTemplateSyntax, fname)
			}
			argstr, _ := matchGroup(raw, m, idxArgstr)
			var err error
			conv, err = reg.Resolve(cname, argstr)
			if err != nil {
				return segment{}, err
			}
		}
		caps = append(caps, capture{name: fname, conv: conv})
	}

	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(raw) {
		return segment{kind: segSimple, raw: raw, name: caps[0].name, conv: caps[0].conv}, nil
	}

	// Complex segment: literal text mixed with one or more fields.
	for _, c := range caps {
		if _, rem := c.conv.(RemainderConverter); rem {
			return segment{}, fmt.Errorf("%w: remainder converter cannot be embedded in segment %q", ErrTemplateSyntax, raw)
		}
	}
	return segment{
		kind:     segComplex,
		raw:      raw,
		pattern:  regexp.MustCompile(buildSegmentPattern(raw, matches)),
		captures: caps,
	}, nil
}

// buildSegmentPattern assembles the matching pattern for a complex segment:
// literal spans are quoted, each field becomes an anonymous capture group
// accepting anything but a slash. Groups are anonymous because field names
// may contain characters Go's regexp group names cannot; captures pair
// groups back with names by position.
func buildSegmentPattern(raw string, matches [][]int) string {
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(regexp.QuoteMeta(raw[last:m[0]]))
		b.WriteString("([^/]*)")
		last = m[1]
	}
	b.WriteString(regexp.QuoteMeta(raw[last:]))
	return b.String()
}

// skeleton collapses every field reference to a wildcard token. Two complex
// segments with equal skeletons cannot be told apart at match time, which is
// what the conflict check looks for.
func skeleton(raw string) string {
	return fieldPattern.ReplaceAllString(raw, "*")
}

// hasBareWhitespace reports whether the template contains whitespace outside
// field references. Field spans are cut out first so that quoted converter
// arguments, e.g. {ts:dt("2006-01-02 15:04")}, stay legal.
func hasBareWhitespace(template string) bool {
	stripped := fieldPattern.ReplaceAllString(template, "")
	return strings.IndexFunc(stripped, unicode.IsSpace) >= 0
}

// matchGroup extracts one named group from a FindAllStringSubmatchIndex
// match, reporting whether the group participated.
func matchGroup(raw string, m []int, idx int) (string, bool) {
	lo, hi := m[2*idx], m[2*idx+1]
	if lo < 0 {
		return "", false
	}
	return raw[lo:hi], true
}
