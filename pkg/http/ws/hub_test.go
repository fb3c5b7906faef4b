package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// dialPair returns the server and client ends of a live WebSocket connection.
func dialPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()

	serverSide := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		serverSide <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case conn := <-serverSide:
		return conn, client
	case <-time.After(time.Second):
		t.Fatal("server never saw the connection")
		return nil, nil
	}
}

func TestBroadcastAllDelivers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	serverConn, client := dialPair(t)

	conn := NewConnection(serverConn, zerolog.Nop())
	id := hub.Register(conn)
	go conn.WritePump()
	defer hub.Unregister(id)

	assert.Equal(t, 1, hub.Subscribers())

	payload, _ := json.Marshal(map[string]string{"hello": "world"})
	err := hub.BroadcastAll(Message{Type: TypeScoreboardUpdate, Payload: payload})
	assert.NoError(t, err)

	client.SetReadDeadline(time.Now().Add(time.Second))
	var msg Message
	assert.NoError(t, client.ReadJSON(&msg))
	assert.Equal(t, TypeScoreboardUpdate, msg.Type)
	assert.JSONEq(t, `{"hello":"world"}`, string(msg.Payload))
}

func TestUnregisterRemovesSubscriber(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	serverConn, _ := dialPair(t)

	conn := NewConnection(serverConn, zerolog.Nop())
	id := hub.Register(conn)
	assert.Equal(t, 1, hub.Subscribers())

	hub.Unregister(id)
	assert.Equal(t, 0, hub.Subscribers())

	// Unregistering twice is harmless.
	hub.Unregister(id)
	assert.Equal(t, 0, hub.Subscribers())
}

func TestSendOnClosedConnection(t *testing.T) {
	serverConn, _ := dialPair(t)
	conn := NewConnection(serverConn, zerolog.Nop())
	conn.Close()

	err := conn.Send(Message{Type: TypeScoreboardUpdate})
	assert.Equal(t, ErrConnectionClosed, err)

	// Closing twice must not panic on the closed channel.
	conn.Close()
}

func TestSendQueueFull(t *testing.T) {
	serverConn, _ := dialPair(t)
	conn := NewConnection(serverConn, zerolog.Nop())
	// No WritePump running, so the queue only fills.

	var err error
	for i := 0; i < 65; i++ {
		err = conn.Send(Message{Type: TypeScoreboardUpdate})
		if err != nil {
			break
		}
	}
	assert.Equal(t, ErrSendQueueFull, err)
}
