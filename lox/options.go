package lox

// options collects per-call Interpret settings.
type options struct {
	debug bool
}

// Option configures one Interpret call.
type Option func(*options)

// WithDebug enables disassembly-on-compile and trace-execution-on-run,
// both logged through logrus at debug level.
func WithDebug(debug bool) Option {
	return func(o *options) { o.debug = debug }
}
