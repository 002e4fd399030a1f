// Package catalogue holds the packet shapes of each connection phase.
//
// Every phase and direction is one union shape whose variant index is the
// packet id, so decoding a frame payload against Lookup(phase, dir) yields a
// codec.Variant naming the packet.
package catalogue

import (
	"fmt"
	"strings"

	"github.com/vango-dev/mcproto/pkg/codec"
	"github.com/vango-dev/mcproto/pkg/schema"
)

// Phase is the connection state that selects the packet set.
type Phase uint8

const (
	Handshake Phase = iota
	Status
	Login
	Play
)

var phaseNames = [...]string{
	Handshake: "handshake",
	Status:    "status",
	Login:     "login",
	Play:      "play",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePhase parses a phase name, ignoring case.
func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if strings.EqualFold(s, name) {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("catalogue: unknown phase %q", s)
}

// Direction is the side that sends a packet.
type Direction uint8

const (
	Serverbound Direction = iota // client to server
	Clientbound                  // server to client
)

func (d Direction) String() string {
	switch d {
	case Serverbound:
		return "serverbound"
	case Clientbound:
		return "clientbound"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDirection accepts "serverbound"/"clientbound" and the short forms
// "server"/"client", "c2s"/"s2c".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "serverbound", "server", "c2s":
		return Serverbound, nil
	case "clientbound", "client", "s2c":
		return Clientbound, nil
	}
	return 0, fmt.Errorf("catalogue: unknown direction %q", s)
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Serverbound {
		return Clientbound
	}
	return Serverbound
}

type key struct {
	phase Phase
	dir   Direction
}

var tables = map[key]*schema.Shape{
	{Handshake, Serverbound}: schema.MustValidate(handshakeToServer),
	{Status, Serverbound}:    schema.MustValidate(statusToServer),
	{Status, Clientbound}:    schema.MustValidate(statusToClient),
	{Login, Serverbound}:     schema.MustValidate(loginToServer),
	{Login, Clientbound}:     schema.MustValidate(loginToClient),
	{Play, Serverbound}:      schema.MustValidate(playToServer),
	{Play, Clientbound}:      schema.MustValidate(playToClient),
}

// Lookup returns the packet union for a phase and direction, or nil when the
// direction sends nothing in that phase.
func Lookup(p Phase, d Direction) *schema.Shape {
	return tables[key{p, d}]
}

// Packet describes one catalogue entry.
type Packet struct {
	ID    int           `json:"id"`
	Name  string        `json:"name"`
	Shape *schema.Shape `json:"-"`
}

// Packets lists the packets of a phase and direction in id order.
func Packets(p Phase, d Direction) []Packet {
	s := Lookup(p, d)
	if s == nil {
		return nil
	}
	out := make([]Packet, len(s.Variants))
	for i, v := range s.Variants {
		out[i] = Packet{ID: i, Name: v.Name, Shape: v.Payload}
	}
	return out
}

// PacketName returns the name of packet id, or "" if there is none.
func PacketName(p Phase, d Direction, id int) string {
	s := Lookup(p, d)
	if s == nil || id < 0 || id >= len(s.Variants) {
		return ""
	}
	return s.Variants[id].Name
}

// NextPhase reports the phase that follows pkt, a decoded packet sent in
// phase p by d. The handshake switches to the requested next state and a
// login success switches to play; every other packet keeps the phase.
func NextPhase(p Phase, d Direction, pkt codec.Variant) (Phase, bool) {
	switch {
	case p == Handshake && d == Serverbound && pkt.Name == "Handshake":
		rec, ok := pkt.Payload.(codec.Record)
		if !ok {
			return p, false
		}
		next, ok := rec["next_state"].(codec.Variant)
		if !ok {
			return p, false
		}
		switch next.Name {
		case "Status":
			return Status, true
		case "Login":
			return Login, true
		}
	case p == Login && d == Clientbound && pkt.Name == "LoginSuccess":
		return Play, true
	}
	return p, false
}
