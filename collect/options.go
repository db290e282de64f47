package collect

// Option configures one combinator call.
type Option func(*Options)

// Options holds the configuration shared by Any and All.
type Options struct {
	// CancelBits, when non-zero, is emitted on the scope's Signal as soon
	// as the first task completes, requesting cooperative termination of
	// the rest. It is a request, not a guarantee: tasks that never reach a
	// cancelable wait run to completion.
	CancelBits uint64

	// PanicAsError converts a panicking task into an error result instead
	// of crashing the process.
	PanicAsError bool

	// Observer receives lifecycle events; nil disables observation.
	Observer Observer

	// MaxConcurrency bounds how many tasks run at once; zero means
	// unbounded.
	MaxConcurrency int
}

func defaultOptions() Options { return Options{PanicAsError: true} }

func buildOptions(optFns []Option) Options {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// WithCancelBits requests the given bits be emitted on the scope's Signal
// when the first task completes.
func WithCancelBits(bits uint64) Option { return func(o *Options) { o.CancelBits = bits } }

// WithPanicAsError controls panic-to-error conversion.
func WithPanicAsError(v bool) Option { return func(o *Options) { o.PanicAsError = v } }

// WithObserver installs a lifecycle observer.
func WithObserver(obs Observer) Option { return func(o *Options) { o.Observer = obs } }

// WithMaxConcurrency bounds concurrent tasks within the call.
func WithMaxConcurrency(n int) Option { return func(o *Options) { o.MaxConcurrency = n } }
