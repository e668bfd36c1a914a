// Package sse implements a Server-Sent Events broker that pushes login,
// progress and ontology updates to connected dashboards.
package sse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// Event types.
const (
	TypeUserLogin        = "user.login"
	TypeUserLogout       = "user.logout"
	TypeProgressUpdated  = "progress.updated"
	TypeStatsUpdated     = "stats.updated"
	TypeOntologyReloaded = "ontology.reloaded"
)

// Event is broadcast to dashboards. An event with a UserID only reaches
// clients watching that user or watching everyone.
type Event struct {
	Type   string `json:"type"`
	UserID string `json:"-"`
	Data   any    `json:"data"`
}

// StatsFunc returns the summary attached to stats.updated events.
type StatsFunc func() any

// Option configures a Broker.
type Option func(*Broker)

// WithStatsThrottle sets the minimum gap between stats.updated events.
func WithStatsThrottle(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.statsMin = d
		}
	}
}

// WithStats attaches fn's result to every stats.updated event.
func WithStats(fn StatsFunc) Option {
	return func(b *Broker) { b.stats = fn }
}

// WithHeartbeat sets how often idle streams get a keep-alive comment.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.heartbeat = d
		}
	}
}

const (
	clientBuffer = 64
	retryMillis  = 3000
)

type client struct {
	ch     chan []byte
	userID string
}

func (c *client) wants(e Event) bool {
	return c.userID == "" || e.UserID == "" || c.userID == e.UserID
}

// Broker fans events out to SSE clients.
//
// One loop goroutine owns the client set, the event sequence and the stats
// throttle. Everything else reaches it over channels.
type Broker struct {
	statsMin  time.Duration
	heartbeat time.Duration
	stats     StatsFunc

	joinCh  chan *client
	leaveCh chan chan []byte
	eventCh chan Event
	countCh chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. By default stats.updated is sent at most every
// two seconds and idle streams are pinged every 30 seconds.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		statsMin:  2 * time.Second,
		heartbeat: 30 * time.Second,
		joinCh:    make(chan *client),
		leaveCh:   make(chan chan []byte),
		eventCh:   make(chan Event, 256),
		countCh:   make(chan chan int),
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.loop()
	return b
}

// frame renders one event in the text/event-stream format.
func frame(id uint64, e Event) ([]byte, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "id: %d\nevent: %s\n", id, e.Type)
	for _, line := range strings.Split(string(payload), "\n") {
		fmt.Fprintf(&buf, "data: %s\n", line)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (b *Broker) loop() {
	defer close(b.stopped)

	clients := make(map[chan []byte]*client)
	var (
		seq       uint64
		lastStats time.Time
	)

	send := func(e Event) {
		seq++
		raw, err := frame(seq, e)
		if err != nil {
			return
		}
		for _, c := range clients {
			if !c.wants(e) {
				continue
			}
			select {
			case c.ch <- raw:
			default:
				// Full buffer: this client misses the event.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case c := <-b.joinCh:
			clients[c.ch] = c

		case ch := <-b.leaveCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case e := <-b.eventCh:
			send(e)
			if e.UserID == "" {
				continue
			}
			if now := time.Now(); now.Sub(lastStats) >= b.statsMin {
				lastStats = now
				data := map[string]any{"clients": len(clients)}
				if b.stats != nil {
					data["summary"] = b.stats()
				}
				send(Event{Type: TypeStatsUpdated, Data: data})
			}

		case resp := <-b.countCh:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client. With a non-empty userID the client only gets
// that user's events plus global ones.
func (b *Broker) Subscribe(userID string) chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.joinCh <- &client{ch: ch, userID: userID}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leaveCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish broadcasts e. Events carrying a UserID are followed by a
// throttled stats.updated.
func (b *Broker) Publish(e Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.eventCh <- e:
	case <-b.stopped:
	}
}

// PublishUserEvent publishes a login, logout or progress event for userID.
func (b *Broker) PublishUserEvent(kind, userID string) {
	b.Publish(Event{Type: kind, UserID: userID, Data: map[string]string{"user_id": userID}})
}

// ServeHTTP streams events (GET /api/events?user_id=).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe(strings.TrimSpace(r.URL.Query().Get("user_id")))
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.heartbeat)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
