package progress

import (
	"log/slog"
	"sync"

	"github.com/lexfield/docpipe/constants"
)

// Event is a single progress update for one document.
type Event struct {
	DocumentID string
	Stage      constants.Stage
	Progress   int // 0-100, never decreases within a job
	Message    string
	PageNumber int // 1-based, zero when not page-scoped
	TotalPages int
}

// Handler receives events synchronously in emission order. Handlers must not
// block; slow consumers should hand off to their own goroutine.
type Handler func(Event)

// Publisher fans progress events out to subscribers. Per-document progress is
// clamped so subscribers never observe a decreasing percentage. There is no
// replay buffer: a subscriber sees only events emitted after it subscribed.
type Publisher struct {
	logger *slog.Logger

	mu       sync.Mutex
	nextID   int
	subs     map[int]subscription
	lastPct  map[string]int
	terminal map[string]bool
}

type subscription struct {
	handler    Handler
	documentID string // "" = all documents
}

func NewPublisher(logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		logger:   logger,
		subs:     make(map[int]subscription),
		lastPct:  make(map[string]int),
		terminal: make(map[string]bool),
	}
}

// Subscribe registers a handler for every document's events.
// The returned function removes the subscription.
func (p *Publisher) Subscribe(h Handler) func() {
	return p.subscribe(h, "")
}

// SubscribeDocument registers a handler for a single document's events.
func (p *Publisher) SubscribeDocument(documentID string, h Handler) func() {
	return p.subscribe(h, documentID)
}

func (p *Publisher) subscribe(h Handler, documentID string) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.subs[id] = subscription{handler: h, documentID: documentID}
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Publish delivers the event to matching subscribers. Progress below the
// document's high-water mark is raised to it; events after a terminal stage
// (completed or error) are dropped.
func (p *Publisher) Publish(ev Event) {
	p.mu.Lock()
	if p.terminal[ev.DocumentID] {
		p.mu.Unlock()
		return
	}
	if last, ok := p.lastPct[ev.DocumentID]; ok && ev.Progress < last {
		ev.Progress = last
	}
	p.lastPct[ev.DocumentID] = ev.Progress

	if ev.Stage == constants.StageCompleted || ev.Stage == constants.StageError {
		p.terminal[ev.DocumentID] = true
		// job is gone; no need to keep its high-water mark
		delete(p.lastPct, ev.DocumentID)
	}

	handlers := make([]Handler, 0, len(p.subs))
	for _, sub := range p.subs {
		if sub.documentID == "" || sub.documentID == ev.DocumentID {
			handlers = append(handlers, sub.handler)
		}
	}
	p.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// Reset clears the terminal marker for a document so its ID can be reused.
func (p *Publisher) Reset(documentID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.terminal, documentID)
	delete(p.lastPct, documentID)
}
