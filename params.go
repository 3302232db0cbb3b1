package routekit

import (
	"time"

	"github.com/google/uuid"
)

// Params holds the field values bound by a successful lookup, keyed by field
// name. Values carry whatever type the field's converter produced: int64
// from int, float64 from float, time.Time from dt, uuid.UUID from uuid, and
// string from path. A field without a converter binds the raw segment text
// as a string. Indexing the map directly is fine; the typed accessors just
// save the assertion boilerplate.
type Params map[string]any

// Get returns the value bound to name.
func (p Params) Get(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

// Text returns the string bound to name. It reports false when the field is
// absent or carries a converted non-string value.
func (p Params) Text(name string) (string, bool) {
	v, ok := p[name].(string)
	return v, ok
}

// Int returns the int64 bound to name by the int converter.
func (p Params) Int(name string) (int64, bool) {
	v, ok := p[name].(int64)
	return v, ok
}

// Float returns the float64 bound to name by the float converter.
func (p Params) Float(name string) (float64, bool) {
	v, ok := p[name].(float64)
	return v, ok
}

// Time returns the time.Time bound to name by the dt converter.
func (p Params) Time(name string) (time.Time, bool) {
	v, ok := p[name].(time.Time)
	return v, ok
}

// UUID returns the uuid.UUID bound to name by the uuid converter.
func (p Params) UUID(name string) (uuid.UUID, bool) {
	v, ok := p[name].(uuid.UUID)
	return v, ok
}
