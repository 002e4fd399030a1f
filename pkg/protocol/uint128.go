package protocol

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// Uint128 is an unsigned 128-bit integer.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// Uint128FromBytes interprets b as a 128-bit integer using order.
func Uint128FromBytes(b [16]byte, order binary.ByteOrder) Uint128 {
	if isLittleEndian(order) {
		return Uint128{Lo: order.Uint64(b[:8]), Hi: order.Uint64(b[8:])}
	}
	return Uint128{Hi: order.Uint64(b[:8]), Lo: order.Uint64(b[8:])}
}

// Bytes lays u out in 16 bytes using order. It inverts Uint128FromBytes.
func (u Uint128) Bytes(order binary.ByteOrder) [16]byte {
	var b [16]byte
	if isLittleEndian(order) {
		order.PutUint64(b[:8], u.Lo)
		order.PutUint64(b[8:], u.Hi)
		return b
	}
	order.PutUint64(b[:8], u.Hi)
	order.PutUint64(b[8:], u.Lo)
	return b
}

// isLittleEndian probes order rather than comparing it, so that
// binary.NativeEndian is recognised on little-endian hosts.
func isLittleEndian(order binary.ByteOrder) bool {
	var probe [2]byte
	order.PutUint16(probe[:], 1)
	return probe[0] == 1
}

// Big returns u as a big.Int.
func (u Uint128) Big() *big.Int {
	v := new(big.Int).SetUint64(u.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(u.Lo))
}

// String returns the decimal representation of u.
func (u Uint128) String() string {
	return u.Big().String()
}

// MarshalText implements encoding.TextMarshaler.
func (u Uint128) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Uint128) UnmarshalText(text []byte) error {
	v, ok := new(big.Int).SetString(string(text), 10)
	if !ok || v.Sign() < 0 || v.BitLen() > 128 {
		return fmt.Errorf("protocol: invalid uint128 %q", text)
	}
	lo := new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0)))
	u.Lo = lo.Uint64()
	u.Hi = new(big.Int).Rsh(v, 64).Uint64()
	return nil
}
