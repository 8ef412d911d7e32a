// Package analytics provides an optional, read-only side channel that
// broadcasts solve activity to websocket subscribers and serves a JSON
// snapshot over HTTP. It never participates in solving a position: it
// only ever receives already-computed connect4.SolveEvent values from the
// driver and fans them out.
package analytics

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/thekrainbow-style/c4solver/connect4"
)

// wsMessage is the envelope every websocket frame is wrapped in, tagged
// by Type so a client can dispatch on it without guessing.
type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// solveEventDTO is the wire form of a connect4.SolveEvent.
type solveEventDTO struct {
	Line         string `json:"line"`
	Score        int    `json:"score"`
	Nodes        uint64 `json:"nodes"`
	Microseconds int64  `json:"microseconds"`
}

func toDTO(e connect4.SolveEvent) solveEventDTO {
	return solveEventDTO{
		Line:         e.Line,
		Score:        e.Score,
		Nodes:        e.Nodes,
		Microseconds: e.Microseconds,
	}
}

// client is one connected websocket subscriber: a send buffer drained by
// its own writer goroutine, so one slow client can never block the hub.
type client struct {
	send chan []byte
}

// Hub fans out solved-line events to every connected client and keeps a
// running tally for the HTTP snapshot endpoint. Safe for concurrent use;
// Publish is called from the driver's main goroutine while Run drains the
// broadcast channel on its own.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}

	broadcast chan connect4.SolveEvent

	startedAt   time.Time
	linesSolved uint64
	totalNodes  uint64
	lastTTStats connect4.TTStats
}

// NewHub constructs an idle Hub. Call Run to start fanning out events.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*client]struct{}),
		broadcast: make(chan connect4.SolveEvent, 64),
		startedAt: time.Now(),
	}
}

// Run drains the broadcast channel until done is closed, forwarding each
// event to every registered client. Intended to run in its own goroutine
// for the lifetime of the process.
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case event := <-h.broadcast:
			h.record(event)
			h.fanOut(event)
		}
	}
}

func (h *Hub) record(event connect4.SolveEvent) {
	h.mu.Lock()
	h.linesSolved++
	h.totalNodes += event.Nodes
	h.mu.Unlock()
}

func (h *Hub) fanOut(event connect4.SolveEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}
	payload, err := json.Marshal(toDTO(event))
	if err != nil {
		return
	}
	msg, err := json.Marshal(wsMessage{Type: "solve", Payload: payload})
	if err != nil {
		return
	}
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Slow subscriber: drop rather than block the hub.
		}
	}
}

// Publish hands an event to the hub for recording and broadcast. It never
// blocks: the broadcast channel is buffered, and if it is ever full the
// event is dropped rather than stalling the solver's caller.
func (h *Hub) Publish(event connect4.SolveEvent) {
	select {
	case h.broadcast <- event:
	default:
	}
}

// SetTTStats records the most recent transposition table occupancy for
// the snapshot endpoint. Called by the driver after each solve.
func (h *Hub) SetTTStats(stats connect4.TTStats) {
	h.mu.Lock()
	h.lastTTStats = stats
	h.mu.Unlock()
}

// Snapshot is the JSON body served by GET /api/stats.
type Snapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	LinesSolved   uint64  `json:"lines_solved"`
	TotalNodes    uint64  `json:"total_nodes"`
	TTCapacity    int     `json:"tt_capacity"`
	TTUsed        int     `json:"tt_used"`
	TTFillRatio   float64 `json:"tt_fill_ratio"`
}

// Snapshot returns the current aggregate stats.
func (h *Hub) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Snapshot{
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		LinesSolved:   h.linesSolved,
		TotalNodes:    h.totalNodes,
		TTCapacity:    h.lastTTStats.Capacity,
		TTUsed:        h.lastTTStats.Used,
		TTFillRatio:   h.lastTTStats.FillRatio(),
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}
