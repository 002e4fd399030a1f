// Package capture records proxied frames to a file and reads them back.
//
// A capture is a sequence of VarInt frames. Each frame holds one record:
//
//	u8   direction (0 serverbound, 1 clientbound)
//	i64  unix milliseconds
//	u8   phase the frame was sent in
//	...  frame payload with any compression removed
package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vango-dev/mcproto/pkg/catalogue"
	"github.com/vango-dev/mcproto/pkg/codec"
	"github.com/vango-dev/mcproto/pkg/protocol"
	"github.com/vango-dev/mcproto/pkg/schema"
)

// Extension is the file extension used for capture files.
const Extension = ".mccap"

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("capture: writer closed")

var recordShape = schema.MustValidate(schema.Record("CaptureRecord",
	schema.F("direction", schema.Uint8()),
	schema.F("time", schema.Int64()),
	schema.F("phase", schema.Uint8()),
	schema.F("payload", schema.Rest()),
))

// Record is one captured frame.
type Record struct {
	Direction catalogue.Direction `json:"direction"`
	Time      time.Time           `json:"time"`
	Phase     catalogue.Phase     `json:"phase"`
	Payload   []byte              `json:"payload"`
}

func (r Record) value() codec.Record {
	return codec.Record{
		"direction": uint8(r.Direction),
		"time":      r.Time.UnixMilli(),
		"phase":     uint8(r.Phase),
		"payload":   r.Payload,
	}
}

func recordFrom(v any) (Record, error) {
	rec, ok := v.(codec.Record)
	if !ok {
		return Record{}, fmt.Errorf("capture: unexpected record value %T", v)
	}
	dir := rec["direction"].(uint8)
	if dir > uint8(catalogue.Clientbound) {
		return Record{}, fmt.Errorf("capture: bad direction %d", dir)
	}
	return Record{
		Direction: catalogue.Direction(dir),
		Time:      time.UnixMilli(rec["time"].(int64)),
		Phase:     catalogue.Phase(rec["phase"].(uint8)),
		Payload:   rec["payload"].([]byte),
	}, nil
}

// Writer appends records to a stream. It is safe for concurrent use, so the
// two directions of a proxied connection can share one Writer.
type Writer struct {
	mu     sync.Mutex
	w      *bufio.Writer
	c      io.Closer
	enc    *protocol.Encoder
	codec  *codec.Codec
	count  int
	closed bool
}

// NewWriter returns a Writer on w. If w is an io.Closer, Close closes it.
func NewWriter(w io.Writer) *Writer {
	cw := &Writer{
		w:     bufio.NewWriter(w),
		enc:   protocol.NewEncoder(),
		codec: codec.Default(),
	}
	if c, ok := w.(io.Closer); ok {
		cw.c = c
	}
	return cw
}

// Write appends one record.
func (w *Writer) Write(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	w.enc.Reset()
	if err := w.codec.EncodeTo(w.enc, r.value(), recordShape); err != nil {
		return err
	}
	if err := protocol.WriteFrame(w.w, w.enc.Bytes(), protocol.HardMaxAllocation); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Flush writes buffered records to the underlying stream.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Flush()
}

// Close flushes and closes the underlying stream.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.w.Flush()
	if w.c != nil {
		if cerr := w.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Reader reads records written by Writer.
type Reader struct {
	r     *bufio.Reader
	codec *codec.Codec
}

// NewReader returns a Reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r), codec: codec.Default()}
}

// Next returns the next record, or io.EOF at a clean end of the capture.
func (r *Reader) Next() (Record, error) {
	frame, err := protocol.ReadFrame(r.r, protocol.HardMaxAllocation)
	if err != nil {
		return Record{}, err
	}
	v, err := r.codec.Decode(frame, recordShape)
	if err != nil {
		return Record{}, err
	}
	return recordFrom(v)
}

// All reads every remaining record.
func (r *Reader) All() ([]Record, error) {
	var out []Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}
