package routekit

import "log/slog"

// Option configures a Router during construction.
type Option[H any] func(*Router[H])

// WithLogger sets the logger for registration and compilation diagnostics,
// emitted at debug level. By default diagnostics are discarded. A nil
// logger is ignored.
func WithLogger[H any](logger *slog.Logger) Option[H] {
	return func(r *Router[H]) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithConverter registers an additional field converter at construction
// time. It panics when registration fails, since a clashing or invalid
// converter name is an application wiring bug; use RegisterConverter to
// handle the error instead.
func WithConverter[H any](name string, factory ConverterFactory) Option[H] {
	return func(r *Router[H]) {
		if err := r.converters.Register(name, factory); err != nil {
			panic(err)
		}
	}
}
