package car

const (
	defaultMaxHeaderLength = 1 << 20 // 1 MiB
	defaultMaxEntryLength  = 4 << 20 // 4 MiB
)

// ReadOptions holds the configured options after applying a number of
// ReadOption funcs. Not used directly; exposed only as a side effect
// of ReadOption, mirroring the reference go-car options shape.
type ReadOptions struct {
	MaxHeaderLength        uint64
	MaxEntryLength         uint64
	ZeroLengthSectionAsEOF bool
}

func applyReadOptions(opts ...ReadOption) ReadOptions {
	ro := ReadOptions{
		MaxHeaderLength: defaultMaxHeaderLength,
		MaxEntryLength:  defaultMaxEntryLength,
	}
	for _, opt := range opts {
		opt(&ro)
	}
	return ro
}

// ReadOption describes an option which affects behavior when parsing
// CAR files.
type ReadOption func(*ReadOptions)

// MaxHeaderLength caps the uvarint-prefixed header's length before
// ErrResourceLimitExceeded is returned, guarding against a corrupt or
// adversarial length prefix forcing a huge allocation.
func MaxHeaderLength(n uint64) ReadOption {
	return func(o *ReadOptions) { o.MaxHeaderLength = n }
}

// MaxEntryLength caps an individual entry's length (CID + block),
// again before any allocation is attempted.
func MaxEntryLength(n uint64) ReadOption {
	return func(o *ReadOptions) { o.MaxEntryLength = n }
}

// ZeroLengthSectionAsEOF allows a reader to treat a zero-length entry
// as end-of-archive rather than an error, for CARs that were padded
// with trailing zero bytes.
func ZeroLengthSectionAsEOF(enable bool) ReadOption {
	return func(o *ReadOptions) { o.ZeroLengthSectionAsEOF = enable }
}

// WriteOptions holds the configured options after applying a number
// of WriteOption funcs.
type WriteOptions struct {
	AllowDuplicatePuts bool
}

func applyWriteOptions(opts ...WriteOption) WriteOptions {
	var wo WriteOptions
	for _, opt := range opts {
		opt(&wo)
	}
	return wo
}

// WriteOption describes an option which affects behavior when
// encoding CAR files.
type WriteOption func(*WriteOptions)

// AllowDuplicatePuts disables the writer's default behavior of
// silently dropping a block whose CID has already been written,
// matching the reference go-car v2 blockstore's
// BlockstoreAllowDuplicatePuts escape hatch. The default is false; the
// packer deduplicates its own blocks before they reach the writer.
func AllowDuplicatePuts(allow bool) WriteOption {
	return func(o *WriteOptions) { o.AllowDuplicatePuts = allow }
}
