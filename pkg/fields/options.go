package fields

// Unlimited disables the nesting limit so every object level is walked.
const Unlimited = -1

// DefaultMaxDepth flattens one level of nested objects (options.timeout).
const DefaultMaxDepth = 1

// DefaultMaxFields caps how many descriptors one extraction returns.
const DefaultMaxFields = 500

// Options configures extraction.
type Options struct {
	// MaxDepth bounds how many nested object levels are expanded into their own
	// descriptors. Zero keeps nested objects as single text fields; Unlimited
	// walks the whole tree.
	MaxDepth int
	// MaxFields stops the walk once this many descriptors exist. Zero or less
	// disables the cap.
	MaxFields int
	// Heuristics enables name/description keyword overrides.
	Heuristics bool
	// Labeler derives a label from a field name when neither title nor a short
	// description is available.
	Labeler func(string) string
}

// Option mutates Options.
type Option func(*Options)

// WithMaxDepth sets the nesting limit. Negative values mean Unlimited.
func WithMaxDepth(depth int) Option {
	return func(opts *Options) {
		if depth < 0 {
			depth = Unlimited
		}
		opts.MaxDepth = depth
	}
}

// WithMaxFields sets the descriptor cap.
func WithMaxFields(limit int) Option {
	return func(opts *Options) {
		opts.MaxFields = limit
	}
}

// WithHeuristics toggles keyword based kind overrides.
func WithHeuristics(enabled bool) Option {
	return func(opts *Options) {
		opts.Heuristics = enabled
	}
}

// WithLabeler replaces the name based label fallback.
func WithLabeler(labeler func(string) string) Option {
	return func(opts *Options) {
		if labeler != nil {
			opts.Labeler = labeler
		}
	}
}

// NewOptions applies opts over the defaults.
func NewOptions(options ...Option) Options {
	cfg := Options{
		MaxDepth:  DefaultMaxDepth,
		MaxFields: DefaultMaxFields,
		Labeler:   DefaultLabeler,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (o Options) canDescend(level int) bool {
	return o.MaxDepth == Unlimited || level < o.MaxDepth
}

func (o Options) full(n int) bool {
	return o.MaxFields > 0 && n >= o.MaxFields
}
