package transport

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrTextMessage is returned when the peer sends a text message; the stream
// carries binary messages only.
var ErrTextMessage = errors.New("transport: unexpected websocket text message")

// WebSocketStream presents the binary messages of a WebSocket as one
// continuous byte stream. Message boundaries carry no meaning: frames may
// span messages and a message may hold several frames.
type WebSocketStream struct {
	ws *websocket.Conn

	r io.Reader // current message

	wmu sync.Mutex
}

// NewWebSocketStream wraps ws.
func NewWebSocketStream(ws *websocket.Conn) *WebSocketStream {
	return &WebSocketStream{ws: ws}
}

// Read reads from the current binary message, moving to the next one when
// it is exhausted. A normal close from the peer reads as io.EOF.
func (s *WebSocketStream) Read(p []byte) (int, error) {
	for {
		if s.r == nil {
			mt, r, err := s.ws.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, err
			}
			if mt != websocket.BinaryMessage {
				return 0, ErrTextMessage
			}
			s.r = r
		}
		n, err := s.r.Read(p)
		if errors.Is(err, io.EOF) {
			s.r = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

// Write sends p as one binary message.
func (s *WebSocketStream) Write(p []byte) (int, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if err := s.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *WebSocketStream) SetReadDeadline(t time.Time) error {
	return s.ws.SetReadDeadline(t)
}

func (s *WebSocketStream) SetWriteDeadline(t time.Time) error {
	return s.ws.SetWriteDeadline(t)
}

// Close sends a close message and closes the connection.
func (s *WebSocketStream) Close() error {
	s.wmu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	s.wmu.Unlock()
	return s.ws.Close()
}
