// Package websocket drives the backend's agent chat socket the way the web
// client does: one text message in, replies collected until a deadline.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Message is the envelope exchanged with the chat socket
type Message struct {
	Type      string `json:"type"` // "text", "code", "typing", "error"
	Content   string `json:"content"`
	Language  string `json:"language,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type Exchange struct {
	Sent     Message       `json:"sent"`
	Replies  []Message     `json:"replies"`
	Closed   bool          `json:"closed"`
	Duration time.Duration `json:"duration"`
}

// Text joins the content of every text reply
func (e *Exchange) Text() string {
	var out string
	for _, m := range e.Replies {
		if m.Type != "text" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += m.Content
	}
	return out
}

type Probe struct {
	URL    string
	Header http.Header
	// Timeout bounds the wait for replies after the message is sent.
	Timeout time.Duration
	// MaxReplies stops reading once that many replies arrived; 0 reads until Timeout.
	MaxReplies int
	Dialer     *websocket.Dialer
}

func NewProbe(url string, timeout time.Duration) *Probe {
	return &Probe{
		URL:     url,
		Header:  http.Header{},
		Timeout: timeout,
		Dialer:  websocket.DefaultDialer,
	}
}

// Run sends content as a text message and collects replies
func (p *Probe) Run(ctx context.Context, content string) (*Exchange, error) {
	conn, resp, err := p.Dialer.DialContext(ctx, p.URL, p.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to dial chat socket: status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to dial chat socket: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	conn.SetReadLimit(10 * 1024 * 1024)

	start := time.Now()
	exchange := &Exchange{Sent: Message{Type: "text", Content: content}}

	payload, err := json.Marshal(exchange.Sent)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	slog.Info("Chat message sent", "url", p.URL, "content_length", len(content))

	conn.SetReadDeadline(time.Now().Add(p.Timeout))
	for p.MaxReplies == 0 || len(exchange.Replies) < p.MaxReplies {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var netErr net.Error
			switch {
			case errors.As(err, &netErr) && netErr.Timeout():
				slog.Debug("Chat probe deadline reached", "replies", len(exchange.Replies))
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				exchange.Closed = true
			case ctx.Err() != nil:
				return nil, ctx.Err()
			default:
				return nil, fmt.Errorf("failed to read reply: %w", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			msg = Message{Type: "raw", Content: string(data)}
		}
		slog.Info("Chat reply received", "type", msg.Type, "content_length", len(msg.Content))
		exchange.Replies = append(exchange.Replies, msg)
	}

	exchange.Duration = time.Since(start)
	return exchange, nil
}
