package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// event is one broadcast message: a collision warning or guard-zone alert
// (spec.md §6: "the runtime receives ... notifications"), rendered to the
// demo's websocket clients as JSON.
type event struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

// hub fans events out to every connected websocket client, the demo
// runtime's stand-in for the "SignalK REST/WebSocket binding" external
// collaborator spec.md §1 names without pulling it into the core.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("hub: accept failed: %v", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "done")
	}()

	// The demo never reads from the client; block on the request context
	// until the client disconnects.
	ctx := r.Context()
	<-ctx.Done()
}

func (h *hub) broadcast(ev event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("hub: marshal event: %v", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			log.Printf("hub: write failed, dropping client: %v", err)
			delete(h.clients, conn)
		}
		cancel()
	}
}
