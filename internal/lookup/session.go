package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekamauln/livo-next/internal/upstream"
)

var ErrSessionNotFound = errors.New("lookup session not found")

// SSE event types sent to a lookup stream.
const (
	EventConnected = "connected"
	EventResults   = "results"
	EventError     = "lookup_error"
)

// Result is the payload of a results event. Seq identifies the keystroke it
// answers; only the latest issued sequence is ever sent.
type Result struct {
	Seq   uint64 `json:"seq"`
	Term  string `json:"term"`
	Items []Item `json:"items"`
}

type errorPayload struct {
	Seq     uint64 `json:"seq"`
	Message string `json:"message"`
}

type keystroke struct {
	seq  uint64
	term string
}

// Session is one open autocomplete stream.
type Session struct {
	ID     string
	UserID string
	Kind   string
	Client *Client

	issued    atomic.Uint64
	debouncer *Debouncer[keystroke]
	ctx       context.Context
}

// Issue assigns the next sequence number to a keystroke.
func (s *Session) Issue() uint64 {
	return s.issued.Add(1)
}

// Current reports whether seq is the latest issued sequence.
func (s *Session) Current(seq uint64) bool {
	return s.issued.Load() == seq
}

type Options struct {
	Delay    time.Duration
	MinChars int
	Limit    int
}

// Manager owns lookup sessions: it debounces keystrokes, searches, and streams
// the results of the latest keystroke to the session's SSE client.
type Manager struct {
	hub      *Hub
	searches map[string]SearchFunc
	cache    *Cache
	opts     Options
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(hub *Hub, searches map[string]SearchFunc, cache *Cache, opts Options, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	return &Manager{
		hub:      hub,
		searches: searches,
		cache:    cache,
		opts:     opts,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Open registers a stream for userID. ctx bounds the session's searches and
// should be the stream request's context. The upstream token is taken from ctx.
func (m *Manager) Open(ctx context.Context, userID, kind string) (*Session, error) {
	if _, ok := m.searches[kind]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	s := &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		Kind:   kind,
		ctx:    ctx,
	}
	s.Client = &Client{ID: s.ID, UserID: userID, Events: make(chan Event, 16)}
	s.debouncer = NewDebouncer(m.opts.Delay, func(k keystroke) { m.search(s, k) })

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.hub.Register(s.Client)
	return s, nil
}

// Close stops pending lookups and unregisters the stream.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return
	}
	s.debouncer.Stop()
	m.hub.Unregister(id)
}

// Key feeds one keystroke (the full current term) into session id.
func (m *Manager) Key(id, userID, term string) (uint64, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok || s.UserID != userID {
		return 0, ErrSessionNotFound
	}
	seq := s.Issue()
	s.debouncer.Trigger(keystroke{seq: seq, term: term})
	return seq, nil
}

func (m *Manager) search(s *Session, k keystroke) {
	if !s.Current(k.seq) {
		return
	}
	term := strings.TrimSpace(k.term)
	if len([]rune(term)) < m.opts.MinChars {
		m.publish(s, EventResults, Result{Seq: k.seq, Term: term, Items: []Item{}})
		return
	}

	items, err := m.lookup(s.ctx, s.Kind, term)
	if !s.Current(k.seq) {
		m.logger.Debug("stale lookup discarded", zap.String("session", s.ID), zap.Uint64("seq", k.seq))
		return
	}
	if err != nil {
		m.logger.Warn("lookup failed", zap.String("kind", s.Kind), zap.Error(err))
		m.publish(s, EventError, errorPayload{Seq: k.seq, Message: upstream.UserMessage(err)})
		return
	}
	m.publish(s, EventResults, Result{Seq: k.seq, Term: term, Items: items})
}

func (m *Manager) lookup(ctx context.Context, kind, term string) ([]Item, error) {
	if m.cache != nil {
		items, ok, err := m.cache.Get(ctx, kind, term, m.opts.Limit)
		if err != nil {
			m.logger.Warn("lookup cache read failed", zap.Error(err))
		}
		if ok {
			return items, nil
		}
	}
	items, err := m.searches[kind](ctx, term, m.opts.Limit)
	if err != nil {
		return nil, err
	}
	if m.cache != nil {
		if err := m.cache.Set(ctx, kind, term, m.opts.Limit, items); err != nil {
			m.logger.Warn("lookup cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

func (m *Manager) publish(s *Session, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		m.logger.Error("encode lookup event", zap.Error(err))
		return
	}
	m.hub.Send(s.ID, Event{EventType: eventType, Data: string(data)})
}
