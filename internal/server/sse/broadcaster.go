// Package sse pushes collection-change events to connected browsers over
// Server-Sent Events.
package sse

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Event types pushed to clients.
const (
	EventConnected       = "connected"
	EventPlantIdentified = "plant_identified"
	EventHistoryChanged  = "history_changed"
	EventGardenChanged   = "garden_changed"
	EventSuggestions     = "suggestions"
)

// Event is a single message on the event stream.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// clientBuffer bounds how many events a slow client can fall behind before it
// is dropped.
const clientBuffer = 16

// Broadcaster fans events out to every connected client. Each client gets a
// buffered channel; a client that stops draining it is disconnected rather
// than allowed to stall the rest.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[int]chan []byte
	nextID  int
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[int]chan []byte)}
}

// Publish sends the event to all connected clients. Marshal failures are
// logged and dropped; slow clients are disconnected.
func (b *Broadcaster) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal event")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.clients {
		select {
		case ch <- data:
		default:
			log.Debug().Int("clientId", id).Msg("Dropping slow SSE client")
			delete(b.clients, id)
			close(ch)
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *Broadcaster) subscribe() (int, chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	ch := make(chan []byte, clientBuffer)
	b.clients[b.nextID] = ch
	return b.nextID, ch
}

func (b *Broadcaster) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.clients[id]; ok {
		delete(b.clients, id)
		close(ch)
	}
}

// ServeHTTP streams events to one client until it disconnects.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	id, ch := b.subscribe()
	defer b.unsubscribe(id)
	log.Debug().Int("clientId", id).Msg("SSE client connected")

	fmt.Fprintf(w, "data: {\"type\":%q}\n\n", EventConnected)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			log.Debug().Int("clientId", id).Msg("SSE client disconnected")
			return
		case data, open := <-ch:
			if !open {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
