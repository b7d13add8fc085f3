package artifact

import (
	"github.com/ardnew/kconfgen/log"
	"github.com/ardnew/kconfgen/resolve"
)

// Option configures [Render] and [Generate].
type Option func(*options)

type options struct {
	logger log.Logger
	prefix string
	header string
	jobs   int
}

func makeOptions(opts ...Option) options {
	o := options{
		logger: log.Default(),
		prefix: resolve.DefaultPrefix,
		jobs:   1,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithPrefix sets the prefix of every symbol macro.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithHeader replaces the generated preamble comment with header followed
// by a newline. An empty header keeps the default.
func WithHeader(header string) Option {
	return func(o *options) { o.header = header }
}

// WithJobs sets how many artifacts [Generate] renders and writes at once.
// Values below one mean one.
func WithJobs(n int) Option {
	return func(o *options) { o.jobs = max(n, 1) }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}
