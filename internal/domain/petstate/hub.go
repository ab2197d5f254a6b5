package petstate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"cat-virtual/internal/platform/logger"
)

var ErrHubClosed = errors.New("hub closed")

// Hub mantiene una Session por principal (o una sola para el dispositivo).
// Las crea y arranca bajo demanda; con IdleTimeout > 0 cierra las que
// quedan sin uso ni suscriptores.
type Hub struct {
	records RecordStore
	device  DeviceStore
	opts    SessionOptions

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*hubEntry
	closed   bool
}

type hubEntry struct {
	sess     *Session
	lastUsed time.Time
}

func NewHub(records RecordStore, device DeviceStore, opts SessionOptions) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		records:  records,
		device:   device,
		opts:     opts.withDefaults(),
		ctx:      ctx,
		cancel:   cancel,
		sessions: map[string]*hubEntry{},
	}
	if h.opts.IdleTimeout > 0 {
		tick, stop := h.opts.NewTicker(h.opts.IdleTimeout)
		go h.janitor(tick, stop)
	}
	return h
}

func sessionKey(p *Principal) string {
	if p == nil || strings.TrimSpace(p.UserID) == "" {
		return "device"
	}
	return "user:" + strings.TrimSpace(p.UserID)
}

// Session devuelve la sesión del principal; nil = dispositivo.
func (h *Hub) Session(p *Principal) (*Session, error) {
	if p != nil && strings.TrimSpace(p.UserID) == "" {
		p = nil
	}
	key := sessionKey(p)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	now := h.opts.Now()
	if e, ok := h.sessions[key]; ok {
		e.lastUsed = now
		return e.sess, nil
	}

	store := NewStore(p, h.records, h.device, StoreOptions{Name: h.opts.Name, Now: h.opts.Now})
	s := NewSession(p, store, h.opts)
	s.Start(h.ctx)
	h.sessions[key] = &hubEntry{sess: s, lastUsed: now}
	return s, nil
}

// EvictIdle cierra (con flush) las sesiones sin uso desde hace IdleTimeout
// y sin suscriptores. Devuelve cuántas cerró.
func (h *Hub) EvictIdle() int {
	if h.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := h.opts.Now().Add(-h.opts.IdleTimeout)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return 0
	}
	var idle []*Session
	for key, e := range h.sessions {
		if e.lastUsed.After(cutoff) || e.sess.Subscribers() > 0 {
			continue
		}
		idle = append(idle, e.sess)
		delete(h.sessions, key)
	}
	h.mu.Unlock()

	closeAll(idle)
	return len(idle)
}

func (h *Hub) janitor(tick <-chan time.Time, stop func()) {
	defer stop()
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-tick:
			if n := h.EvictIdle(); n > 0 {
				h.opts.Logger.Debug("idle pet sessions closed", logger.Fields{"count": n})
			}
		}
	}
}

// Len es el número de sesiones activas.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close detiene todas las sesiones (timers + flush de saves pendientes).
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for _, e := range h.sessions {
		sessions = append(sessions, e.sess)
	}
	h.sessions = map[string]*hubEntry{}
	h.mu.Unlock()

	closeAll(sessions)
	h.cancel()
}

func closeAll(sessions []*Session) {
	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Close()
		}(s)
	}
	wg.Wait()
}
