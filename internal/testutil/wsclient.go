package testutil

import (
	"encoding/json"
	"errors"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// WSClient is a simple websocket test client for integration testing.
type WSClient struct {
	conn *websocket.Conn
	t    *testing.T
}

// NewWSClient dials the given test server as the given player and returns
// a connected client.
//
// Precondition: srv must serve the websocket gateway at its root path.
// Postcondition: Returns a connected WSClient or fails the test.
func NewWSClient(t *testing.T, srv *httptest.Server, playerID string) *WSClient {
	t.Helper()
	start := time.Now()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?playerId=" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", url, err, time.Since(start))
	}

	t.Cleanup(func() {
		conn.Close()
	})

	client := &WSClient{conn: conn, t: t}
	t.Logf("websocket client %s connected [%s]", playerID, time.Since(start))
	return client
}

// SendIntent writes one intent frame to the server.
//
// Postcondition: The JSON-encoded frame is written, or the test fails.
func (c *WSClient) SendIntent(intentType, roomID string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	err := c.conn.WriteJSON(map[string]string{
		"type":   intentType,
		"roomId": roomID,
	})
	if err != nil {
		c.t.Fatalf("sending %s intent: %v", intentType, err)
	}
}

// ReadFrame reads the next frame from the server and decodes it into v.
//
// Postcondition: v holds the decoded frame, or the test fails on timeout.
func (c *WSClient) ReadFrame(v any, timeout time.Duration) {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	_, payload, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("reading frame: %v", err)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		c.t.Fatalf("decoding frame %q: %v", payload, err)
	}
}

// ExpectClosed waits for the server to close the connection. Our own
// read deadline expiring does not count as a close.
//
// Postcondition: The next read failed within the timeout, or the test fails.
func (c *WSClient) ExpectClosed(timeout time.Duration) {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	_, payload, err := c.conn.ReadMessage()
	if err == nil {
		c.t.Fatalf("expected connection close, read frame %q", payload)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		c.t.Fatalf("connection still open after %s", timeout)
	}
}

// Close closes the underlying connection.
func (c *WSClient) Close() {
	c.conn.Close()
}
