package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/mcproto/pkg/catalogue"
	"github.com/vango-dev/mcproto/pkg/protocol"
)

func TestWebSocketStreamIgnoresMessageBoundaries(t *testing.T) {
	frames := make(chan []byte, 8)
	errs := make(chan error, 1)

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			errs <- err
			return
		}
		conn := NewConn(NewWebSocketStream(ws), catalogue.Serverbound)
		defer conn.Close()
		for {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			p, err := conn.ReadFrame(ctx)
			cancel()
			if err != nil {
				errs <- err
				return
			}
			frames <- p
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	client := NewWebSocketStream(ws)

	// Two frames in one message, then one frame split over two messages.
	both := protocol.AppendFrame(protocol.EncodeFrame([]byte("a")), []byte("bc"))
	_, err = client.Write(both)
	require.NoError(t, err)
	third := protocol.EncodeFrame([]byte("defg"))
	_, err = client.Write(third[:2])
	require.NoError(t, err)
	_, err = client.Write(third[2:])
	require.NoError(t, err)

	for _, want := range []string{"a", "bc", "defg"} {
		select {
		case got := <-frames:
			assert.Equal(t, want, string(got))
		case err := <-errs:
			t.Fatalf("server: %v", err)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for frame")
		}
	}

	require.NoError(t, client.Close())
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not see close")
	}
}

func TestWebSocketStreamRejectsText(t *testing.T) {
	errs := make(chan error, 1)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			errs <- err
			return
		}
		defer ws.Close()
		_, err = NewWebSocketStream(ws).Read(make([]byte, 16))
		errs <- err
	}))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer ws.Close()
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("hello")))

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrTextMessage)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}
