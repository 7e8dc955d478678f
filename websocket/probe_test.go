package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatServer answers every text message with the given replies, then closes
// the socket when closeAfter is set
func chatServer(t *testing.T, replies []string, closeAfter bool) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "text" {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","content":"bad message"}`))
			return
		}

		for _, reply := range replies {
			conn.WriteMessage(websocket.TextMessage, []byte(reply))
		}
		if closeAfter {
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
			conn.ReadMessage()
			return
		}
		// hold the socket open until the client gives up
		conn.ReadMessage()
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestProbeCollectsUntilClose(t *testing.T) {
	srv := chatServer(t, []string{
		`{"type":"typing","content":""}`,
		`{"type":"text","content":"Olá! Temos a bota em estoque."}`,
		`not json`,
	}, true)
	defer srv.Close()

	exchange, err := NewProbe(wsURL(srv), 5*time.Second).Run(context.Background(), "Tem bota 42?")
	require.NoError(t, err)

	assert.True(t, exchange.Closed)
	require.Len(t, exchange.Replies, 3)
	assert.Equal(t, "typing", exchange.Replies[0].Type)
	assert.Equal(t, Message{Type: "raw", Content: "not json"}, exchange.Replies[2])
	assert.Equal(t, "Olá! Temos a bota em estoque.", exchange.Text())
	assert.Equal(t, "Tem bota 42?", exchange.Sent.Content)
}

func TestProbeStopsAtMaxReplies(t *testing.T) {
	srv := chatServer(t, []string{
		`{"type":"text","content":"one"}`,
		`{"type":"text","content":"two"}`,
	}, false)
	defer srv.Close()

	probe := NewProbe(wsURL(srv), 5*time.Second)
	probe.MaxReplies = 1

	exchange, err := probe.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.False(t, exchange.Closed)
	assert.Equal(t, "one", exchange.Text())
}

func TestProbeDeadline(t *testing.T) {
	srv := chatServer(t, []string{`{"type":"text","content":"only"}`}, false)
	defer srv.Close()

	exchange, err := NewProbe(wsURL(srv), 200*time.Millisecond).Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Len(t, exchange.Replies, 1)
	assert.False(t, exchange.Closed)
}

func TestProbeDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewProbe(wsURL(srv), time.Second).Run(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
