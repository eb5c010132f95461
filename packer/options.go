package packer

import "fmt"

// DefaultChunkSize is the fixed window size files are split into when
// no override is given.
const DefaultChunkSize int64 = 256 << 10

// Options configures a Packer.
type Options struct {
	// Chunker selects the file-splitting strategy, in chunker.FromString's
	// grammar ("default" or "size-N"). Empty means the chunker package's
	// own default.
	Chunker string
	// NoWrap, when the source is a single file, makes the file's own
	// CID the root instead of wrapping it in a synthetic directory.
	NoWrap bool
}

func applyOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a Packer, following the functional-options shape
// used throughout this module (see car.ReadOption/WriteOption).
type Option func(*Options)

// WithChunkSize overrides the fixed chunk window size.
func WithChunkSize(n int64) Option {
	return func(o *Options) { o.Chunker = fmt.Sprintf("size-%d", n) }
}

// WithChunker selects a chunker.FromString-style strategy string
// directly (e.g. "default", "size-131072").
func WithChunker(s string) Option {
	return func(o *Options) { o.Chunker = s }
}

// WithNoWrap controls whether a single-file source is wrapped in a
// synthetic directory.
func WithNoWrap(noWrap bool) Option {
	return func(o *Options) { o.NoWrap = noWrap }
}
