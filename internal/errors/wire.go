package errors

import (
	stderrors "errors"

	"github.com/vango-dev/mcproto/pkg/protocol"
)

var wireCodes = map[protocol.ErrorKind]string{
	protocol.KindTruncatedInput:      "M160",
	protocol.KindMalformedVarInt:     "M161",
	protocol.KindMalformedIdentifier: "M162",
	protocol.KindUnsupportedShape:    "M163",
	protocol.KindIoFailure:           "M164",
	protocol.KindEmbeddedDocument:    "M165",
	protocol.KindMalformedInput:      "M166",
	protocol.KindLimitExceeded:       "M167",
	protocol.KindValueMismatch:       "M168",
}

// WireCode returns the registered code for a codec error kind.
func WireCode(k protocol.ErrorKind) string {
	if code, ok := wireCodes[k]; ok {
		return code
	}
	return "M169"
}

// FromWire converts a codec or framing error into a Diagnostic carrying the
// failing field path and byte offset when the error records them.
func FromWire(err error) *Diagnostic {
	if err == nil {
		return nil
	}
	var d *Diagnostic
	if stderrors.As(err, &d) {
		return d
	}

	d = New(WireCode(protocol.Classify(err))).Wrap(err)
	var pe *protocol.Error
	if stderrors.As(err, &pe) {
		d.Path = pe.Path
		d.Offset = pe.Offset
	}
	return d
}
