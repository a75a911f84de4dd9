// Package main runs a demo WebSocket client for solve progress events.
//
// It stores a small problem, starts an async solve, then subscribes to the
// solution's event stream over /v1/solve/ws and prints what arrives.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const demoProblem = `{
  "plan": {"jobs": [
    {"id": "job_1", "deliveries": [{"places": [{"location": {"lat": 52.52, "lng": 13.40}, "duration": 120}], "demand": [1]}]},
    {"id": "job_2", "deliveries": [{"places": [{"location": {"lat": 52.50, "lng": 13.45}, "duration": 120}], "demand": [1]}]}
  ]},
  "fleet": {"vehicles": [{
    "typeId": "van", "vehicleIds": ["van_1"],
    "costs": {"distance": 1},
    "shifts": [{"start": {"earliest": "2019-07-04T09:00:00Z", "location": {"lat": 52.51, "lng": 13.42}}}],
    "capacity": [10]
  }]}
}`

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Store a problem
	body := []byte(`{"tenantId":"t_demo","name":"ws demo","problem":` + demoProblem + `}`)
	var created struct {
		ID string `json:"id"`
	}
	if err := post(base+"/v1/problems", body, &created); err != nil {
		log.Fatal(err)
	}
	log.Printf("Problem ID: %s", created.ID)

	// Start an async solve
	solveBody := []byte(fmt.Sprintf(`{"problemId":%q,"maxGenerations":2000,"async":true}`, created.ID))
	var solve struct {
		SolutionID string `json:"solutionId"`
	}
	if err := post(base+"/v1/solve", solveBody, &solve); err != nil {
		log.Fatal(err)
	}
	log.Printf("Solution ID: %s", solve.SolutionID)

	// Connect WS
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/solve/ws"}
	hdr := http.Header{}
	hdr.Set("X-Tenant-Id", "t_demo")
	hdr.Set("X-Role", "admin")
	c, _, err := websocket.DefaultDialer.Dial(u.String(), hdr)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	// connection_init
	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		log.Fatal(err)
	}
	// subscribe to the solution's events
	pl, _ := json.Marshal(map[string]any{"solutionId": solve.SolutionID})
	if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil {
		log.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s: %s", m.Type, string(m.Payload))
			if m.Type == "complete" {
				return
			}
		}
	}()

	select {
	case <-time.After(30 * time.Second):
	case <-done:
	}
}

func post(url string, body []byte, out any) error {
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-Id", "t_demo")
	req.Header.Set("X-Role", "admin")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
