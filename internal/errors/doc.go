// Package errors provides structured, actionable error messages for the
// mcproto command line.
//
// Every diagnostic has a code (e.g., "M160") that maps to a short message and
// a longer explanation. Config errors carry the file position, wire errors
// carry the failing field path and byte offset.
//
// # Error Categories
//
//   - config: mcproto.toml could not be loaded or validated (M100-M119)
//   - cli: bad flags or arguments (M140-M149)
//   - capture: capture files and uploads (M150-M159)
//   - wire: codec and framing failures, one code per error kind (M160-M179)
//
// # Usage
//
//	if _, err := codec.Decode(b, shape); err != nil {
//	    errors.PrintError(errors.FromWire(err))
//	}
//
//	// ERROR M160: Truncated input
//	//
//	//   JoinGame.level_type at byte 9
//	//
//	//   The input ended before the value was complete.
package errors
