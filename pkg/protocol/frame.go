package protocol

import (
	"bufio"
	"errors"
	"io"
)

// AppendFrame appends VarInt(len(payload)) followed by payload to dst.
func AppendFrame(dst, payload []byte) []byte {
	dst = AppendVarInt(dst, int32(len(payload)))
	return append(dst, payload...)
}

// EncodeFrame returns payload prefixed with its VarInt length.
func EncodeFrame(payload []byte) []byte {
	return AppendFrame(make([]byte, 0, VarIntLen(int32(len(payload)))+len(payload)), payload)
}

// DecodeFrame extracts one frame from the start of buf.
//
// It returns the payload (a sub-slice of buf) and the total number of bytes
// the frame occupies. When buf does not yet hold a complete frame it returns
// n == 0 and a nil error; the caller should retry once more bytes arrive.
// maxSize <= 0 means DefaultMaxFrameSize.
func DecodeFrame(buf []byte, maxSize int) (payload []byte, n int, err error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}
	length, hdr := DecodeVarInt(buf)
	switch {
	case hdr == varIncomplete:
		return nil, 0, nil
	case hdr == varMalformed:
		return nil, 0, ErrMalformedVarInt
	case length < 0:
		return nil, 0, ErrInvalidLength
	case int(length) > maxSize:
		return nil, 0, ErrFrameTooLarge
	}
	end := hdr + int(length)
	if len(buf) < end {
		return nil, 0, nil
	}
	return buf[hdr:end], end, nil
}

// FrameBuffer accumulates bytes from a stream and splits them into frames.
// It is owned by a single connection and is not safe for concurrent use.
type FrameBuffer struct {
	buf     []byte
	start   int
	maxSize int
}

// NewFrameBuffer creates a frame buffer that rejects frames above maxSize.
// maxSize <= 0 means DefaultMaxFrameSize.
func NewFrameBuffer(maxSize int) *FrameBuffer {
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}
	return &FrameBuffer{maxSize: maxSize}
}

// Write appends stream bytes to the buffer. It never fails.
func (b *FrameBuffer) Write(p []byte) (int, error) {
	if b.start > 0 && b.start == len(b.buf) {
		b.buf = b.buf[:0]
		b.start = 0
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// Len returns the number of buffered bytes not yet returned as a frame.
func (b *FrameBuffer) Len() int {
	return len(b.buf) - b.start
}

// Buffered returns the unconsumed bytes. The slice is valid until the next
// Write or Next.
func (b *FrameBuffer) Buffered() []byte {
	return b.buf[b.start:]
}

// Next returns the next complete frame payload.
//
// If no complete frame is buffered it returns (nil, false, nil) and consumes
// nothing. On success exactly prefix+length bytes are consumed and the
// returned payload is a copy owned by the caller.
func (b *FrameBuffer) Next() ([]byte, bool, error) {
	payload, n, err := DecodeFrame(b.buf[b.start:], b.maxSize)
	if err != nil {
		return nil, false, err
	}
	if n == 0 {
		return nil, false, nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	b.start += n
	b.compact()
	return out, true, nil
}

// compact drops consumed bytes once they make up most of the buffer.
func (b *FrameBuffer) compact() {
	if b.start == len(b.buf) {
		b.buf = b.buf[:0]
		b.start = 0
		return
	}
	if b.start > 4096 && b.start > len(b.buf)/2 {
		n := copy(b.buf, b.buf[b.start:])
		b.buf = b.buf[:n]
		b.start = 0
	}
}

// ScanFrames is a bufio.SplitFunc that yields frame payloads.
func ScanFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	payload, n, err := DecodeFrame(data, DefaultMaxFrameSize)
	if err != nil {
		return 0, nil, err
	}
	if n > 0 {
		return n, payload, nil
	}
	if atEOF && len(data) > 0 {
		return 0, nil, ErrTruncatedInput
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = ScanFrames

// ReadFrame reads one complete frame payload from r.
//
// A clean end of stream before any byte of the frame returns io.EOF. An end
// of stream inside a frame returns ErrTruncatedInput. Other read failures are
// wrapped with ErrIoFailure.
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}
	var hdr [MaxVarIntLen]byte
	for i := 0; ; i++ {
		if _, err := io.ReadFull(r, hdr[i:i+1]); err != nil {
			if i == 0 && errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, readErr(err)
		}
		length, n := DecodeVarInt(hdr[:i+1])
		if n == varMalformed {
			return nil, ErrMalformedVarInt
		}
		if n == varIncomplete {
			continue
		}
		if length < 0 {
			return nil, ErrInvalidLength
		}
		if int(length) > maxSize {
			return nil, ErrFrameTooLarge
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, readErr(err)
		}
		return payload, nil
	}
}

func readErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncatedInput
	}
	return IoError(err)
}

// WriteFrame writes payload to w with its VarInt length prefix.
func WriteFrame(w io.Writer, payload []byte, maxSize int) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}
	if len(payload) > maxSize {
		return ErrFrameTooLarge
	}
	if _, err := w.Write(EncodeFrame(payload)); err != nil {
		return IoError(err)
	}
	return nil
}
