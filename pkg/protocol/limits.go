package protocol

// Allocation and nesting limits applied while decoding untrusted input.
const (
	// DefaultMaxAllocation is the default maximum size of a single string or
	// byte span (4MB).
	DefaultMaxAllocation = 4 * 1024 * 1024

	// HardMaxAllocation is the ceiling for allocations (16MB). Configured
	// values above it are clamped.
	HardMaxAllocation = 16 * 1024 * 1024

	// DefaultMaxCollectionCount is the maximum element count of one array.
	DefaultMaxCollectionCount = 100_000

	// DefaultMaxDepth limits nesting of optionals, arrays, records and unions.
	DefaultMaxDepth = 256

	// DefaultMaxFrameSize is the largest payload a 3-byte VarInt can
	// describe, which is what vanilla servers accept.
	DefaultMaxFrameSize = 1<<21 - 1
)

// Limits configures the bounds enforced by decoders and frame buffers.
// Zero fields fall back to the defaults.
type Limits struct {
	MaxAllocation      int
	MaxCollectionCount int
	MaxDepth           int
	MaxFrameSize       int
}

// DefaultLimits returns the default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxAllocation:      DefaultMaxAllocation,
		MaxCollectionCount: DefaultMaxCollectionCount,
		MaxDepth:           DefaultMaxDepth,
		MaxFrameSize:       DefaultMaxFrameSize,
	}
}

// Normalize fills zero fields with defaults and clamps allocations.
func (l Limits) Normalize() Limits {
	d := DefaultLimits()
	if l.MaxAllocation <= 0 {
		l.MaxAllocation = d.MaxAllocation
	}
	if l.MaxAllocation > HardMaxAllocation {
		l.MaxAllocation = HardMaxAllocation
	}
	if l.MaxCollectionCount <= 0 {
		l.MaxCollectionCount = d.MaxCollectionCount
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = d.MaxDepth
	}
	if l.MaxFrameSize <= 0 {
		l.MaxFrameSize = d.MaxFrameSize
	}
	return l
}

// CheckDepth reports ErrMaxDepthExceeded when current is above max.
func CheckDepth(current, max int) error {
	if current > max {
		return ErrMaxDepthExceeded
	}
	return nil
}
