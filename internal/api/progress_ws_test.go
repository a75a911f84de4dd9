package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(s.SolveWSHandler))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestSolveWSHandshake(t *testing.T) {
	s := newTestServer(t)
	conn := dialWS(t, s)

	if err := conn.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		t.Fatal(err)
	}
	var m wsMessage
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.Type != "connection_ack" {
		t.Fatalf("expected connection_ack, got %q", m.Type)
	}
}

func TestSolveWSRejectsDuplicateSubscriberID(t *testing.T) {
	s := newTestServer(t)
	conn := dialWS(t, s)

	if err := conn.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		t.Fatal(err)
	}
	var m wsMessage
	if err := conn.ReadJSON(&m); err != nil || m.Type != "connection_ack" {
		t.Fatalf("handshake: %v %q", err, m.Type)
	}

	sub := wsMessage{Type: "subscribe", ID: "1", Payload: []byte(`{"solutionId":"sol_1"}`)}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatal(err)
	}
	// same id again while the first subscription is live
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.Type != "error" || m.ID != "1" {
		t.Fatalf("expected error for duplicate id, got %q (id %q)", m.Type, m.ID)
	}
}
