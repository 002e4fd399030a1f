package protocol

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Decoding and encoding errors.
var (
	ErrTruncatedInput      = fmt.Errorf("protocol: truncated input: %w", io.ErrUnexpectedEOF)
	ErrMalformedVarInt     = errors.New("protocol: malformed varint")
	ErrMalformedIdentifier = errors.New("protocol: malformed identifier")
	ErrUnsupportedShape    = errors.New("protocol: unsupported shape")
	ErrIoFailure           = errors.New("protocol: i/o failure")
	ErrEmbeddedDocument    = errors.New("protocol: embedded document error")

	ErrInvalidBool         = errors.New("protocol: invalid boolean value")
	ErrInvalidUTF8         = errors.New("protocol: invalid utf-8 string")
	ErrInvalidLength       = errors.New("protocol: negative length prefix")
	ErrUnknownVariant      = fmt.Errorf("%w: variant index out of range", ErrUnsupportedShape)
	ErrUnknownMetadataKind = errors.New("protocol: unknown metadata kind")
	ErrTrailingData        = errors.New("protocol: trailing data after value")

	ErrAllocationTooLarge = errors.New("protocol: allocation size exceeds limit")
	ErrCollectionTooLarge = errors.New("protocol: collection count exceeds limit")
	ErrMaxDepthExceeded   = errors.New("protocol: maximum nesting depth exceeded")
	ErrFrameTooLarge      = errors.New("protocol: frame payload too large")

	ErrValueMismatch     = errors.New("protocol: value does not match shape")
	ErrLengthOverflow    = errors.New("protocol: length does not fit prefix")
	ErrAmbiguousOptional = errors.New("protocol: present optional encodes as absent sentinel")
	ErrShortOptional     = errors.New("protocol: present optional ends the message in under two bytes")
)

// ErrorKind groups errors into the categories callers act on.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindTruncatedInput
	KindMalformedVarInt
	KindMalformedIdentifier
	KindUnsupportedShape
	KindIoFailure
	KindEmbeddedDocument
	KindMalformedInput
	KindLimitExceeded
	KindValueMismatch
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTruncatedInput:
		return "TruncatedInput"
	case KindMalformedVarInt:
		return "MalformedVarInt"
	case KindMalformedIdentifier:
		return "MalformedIdentifier"
	case KindUnsupportedShape:
		return "UnsupportedShape"
	case KindIoFailure:
		return "IoFailure"
	case KindEmbeddedDocument:
		return "EmbeddedDocument"
	case KindMalformedInput:
		return "MalformedInput"
	case KindLimitExceeded:
		return "LimitExceeded"
	case KindValueMismatch:
		return "ValueMismatch"
	default:
		return "Unknown"
	}
}

// Classify maps err to its ErrorKind. A nil error is KindUnknown.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrEmbeddedDocument):
		// Checked first: document errors may wrap truncation from the
		// collaborator, but the caller cares that the document failed.
		return KindEmbeddedDocument
	case errors.Is(err, ErrIoFailure):
		return KindIoFailure
	case errors.Is(err, ErrTruncatedInput), errors.Is(err, io.ErrUnexpectedEOF):
		return KindTruncatedInput
	case errors.Is(err, ErrMalformedVarInt):
		return KindMalformedVarInt
	case errors.Is(err, ErrMalformedIdentifier):
		return KindMalformedIdentifier
	case errors.Is(err, ErrUnsupportedShape):
		return KindUnsupportedShape
	case errors.Is(err, ErrInvalidBool), errors.Is(err, ErrInvalidUTF8),
		errors.Is(err, ErrInvalidLength), errors.Is(err, ErrUnknownMetadataKind),
		errors.Is(err, ErrTrailingData):
		return KindMalformedInput
	case errors.Is(err, ErrAllocationTooLarge), errors.Is(err, ErrCollectionTooLarge),
		errors.Is(err, ErrMaxDepthExceeded), errors.Is(err, ErrFrameTooLarge):
		return KindLimitExceeded
	case errors.Is(err, ErrValueMismatch), errors.Is(err, ErrLengthOverflow),
		errors.Is(err, ErrAmbiguousOptional), errors.Is(err, ErrShortOptional):
		return KindValueMismatch
	default:
		return KindUnknown
	}
}

// IoError wraps an error from the underlying byte source or sink so that it
// matches ErrIoFailure while keeping the original error reachable.
func IoError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrIoFailure, err)
}

// Error records where in a structured value an encode or decode failed.
type Error struct {
	Op     string // "encode" or "decode"
	Path   string // dotted field path, empty at the root
	Offset int    // byte offset in the buffer when the failure occurred
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	fmt.Fprintf(&b, " at offset %d: %v", e.Offset, e.Err)
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kind returns the classification of the wrapped error.
func (e *Error) Kind() ErrorKind {
	return Classify(e.Err)
}
