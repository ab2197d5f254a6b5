package petstate

import (
	"context"
	"errors"
	"sync"
	"time"

	"cat-virtual/internal/platform/logger"
)

const (
	DefaultDecayInterval = time.Minute
	DefaultLoadTimeout   = 10 * time.Second
	DefaultSaveTimeout   = 5 * time.Second
)

var ErrSessionClosed = errors.New("session closed")

// Cause indica qué produjo un cambio de estado.
type Cause string

const (
	CauseLoad  Cause = "load"
	CauseDecay Cause = "decay"
	CauseFeed  Cause = "feed"
	CausePet   Cause = "pet"
	CauseReset Cause = "reset"
)

// Change es lo que reciben los publishers externos (MQTT, etc.).
type Change struct {
	Principal *Principal
	Cause     Cause
	State     State
	At        time.Time
}

type Publisher interface {
	Publish(ctx context.Context, c Change) error
}

type SessionOptions struct {
	Interval    time.Duration
	LoadTimeout time.Duration
	SaveTimeout time.Duration

	Name string // nombre si el load falla y usamos el estado inicial

	Now       func() time.Time
	NewTicker func(d time.Duration) (<-chan time.Time, func())

	Logger    logger.Logger
	Publisher Publisher

	// IdleTimeout lo usa el Hub: pasado ese tiempo sin requests ni
	// suscriptores la sesión se cierra. 0 = nunca.
	IdleTimeout time.Duration
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.Interval <= 0 {
		o.Interval = DefaultDecayInterval
	}
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = DefaultLoadTimeout
	}
	if o.SaveTimeout <= 0 {
		o.SaveTimeout = DefaultSaveTimeout
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.NewTicker == nil {
		o.NewTicker = func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		}
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	return o
}

type pendingSave struct {
	state State
	cause Cause
	at    time.Time
}

// Session es el único dueño del estado de una mascota.
// Todas las lecturas y mutaciones pasan por acá; la persistencia es write-behind
// con un único writer, así un save viejo nunca pisa uno más nuevo.
type Session struct {
	principal *Principal
	store     Store
	opts      SessionOptions
	log       logger.Logger

	mu      sync.Mutex
	state   State
	loading bool
	pending *pendingSave
	closed  bool
	started bool
	cancel  context.CancelFunc

	ready chan struct{}
	wake  chan struct{}
	done  chan struct{}

	subsMu     sync.Mutex
	subs       map[int]chan State
	nextSub    int
	subsClosed bool
}

func NewSession(principal *Principal, store Store, opts SessionOptions) *Session {
	opts = opts.withDefaults()

	fields := logger.Fields{"mode": "device"}
	if principal != nil {
		fields = logger.Fields{"mode": "remote", "user_id": principal.UserID}
	}

	return &Session{
		principal: principal,
		store:     store,
		opts:      opts,
		log:       opts.Logger.With(fields),
		state:     New(opts.Name, opts.Now()),
		loading:   true,
		ready:     make(chan struct{}),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		subs:      map[int]chan State{},
	}
}

// Start lanza el load (asíncrono) y, cuando termina, el timer de decay.
// ctx controla la vida de la sesión; Close también la termina.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	go s.run(ctx)
}

// Close detiene el timer, espera al writer y hace flush del último estado pendiente.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.doneIfStarted()
		return
	}
	s.closed = true
	started := s.started
	cancel := s.cancel
	s.mu.Unlock()

	if started {
		cancel()
		<-s.done
	}

	s.subsMu.Lock()
	s.subsClosed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.subsMu.Unlock()
}

func (s *Session) doneIfStarted() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return s.done
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	s.load(ctx)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx)
	}()

	tick, stop := s.opts.NewTicker(s.opts.Interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			<-writerDone
			s.flush()
			return
		case <-tick:
			_, _ = s.apply(CauseDecay, nil, Decay)
		}
	}
}

func (s *Session) load(ctx context.Context) {
	loadCtx, cancel := context.WithTimeout(ctx, s.opts.LoadTimeout)
	defer cancel()

	st, err := s.store.Load(loadCtx)
	if err != nil {
		// No es fatal: seguimos con el estado inicial en memoria, sin persistirlo todavía.
		s.log.Warn("load pet state failed, using initial state", logger.Fields{"error": err})
		st = New(s.opts.Name, s.opts.Now())
	} else {
		s.log.Debug("pet state loaded", logger.Fields{"pet_id": st.ID, "alive": st.IsAlive})
	}

	s.mu.Lock()
	s.state = st
	s.loading = false
	s.subsMu.Lock()
	s.mu.Unlock()
	close(s.ready)

	s.notifyLocked(st)
	s.subsMu.Unlock()
	s.publish(Change{Principal: s.principal, Cause: CauseLoad, State: st, At: s.opts.Now()})
}

func (s *Session) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			s.flush()
		}
	}
}

// flush persiste el último estado encolado. Los errores se loguean y se descartan.
func (s *Session) flush() {
	s.mu.Lock()
	p := s.pending
	s.pending = nil
	s.mu.Unlock()

	if p == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.SaveTimeout)
	defer cancel()

	if err := s.store.Save(ctx, p.state); err != nil {
		s.log.Error("save pet state failed", logger.Fields{
			"error":  err,
			"cause":  string(p.cause),
			"pet_id": p.state.ID,
		})
	}

	s.publish(Change{Principal: s.principal, Cause: p.cause, State: p.state, At: p.at})
}

func (s *Session) publish(c Change) {
	if s.opts.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.SaveTimeout)
	defer cancel()
	if err := s.opts.Publisher.Publish(ctx, c); err != nil {
		s.log.Warn("publish pet state failed", logger.Fields{"error": err, "cause": string(c.Cause)})
	}
}

// apply corre fn sobre el estado actual. Si check rechaza el estado (ya con
// el decay hasta now), no se aplica nada y se devuelve ese error. Después de
// Close no se aplica nada: el último flush ya puede haber salido.
// subsMu se toma antes de soltar mu: las notificaciones salen en el mismo
// orden en que se aplicaron los cambios.
func (s *Session) apply(cause Cause, check Check, fn func(State, time.Time) State) (State, error) {
	s.mu.Lock()
	if s.closed {
		cur := s.state
		s.mu.Unlock()
		return cur, ErrSessionClosed
	}
	now := s.opts.Now()
	if check != nil {
		if err := check(Decay(s.state, now)); err != nil {
			cur := s.state
			s.mu.Unlock()
			return cur, err
		}
	}
	next := fn(s.state, now)
	s.state = next
	s.pending = &pendingSave{state: next, cause: cause, at: now}
	s.subsMu.Lock()
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}

	s.notifyLocked(next)
	s.subsMu.Unlock()
	return next, nil
}

func (s *Session) waitReady(ctx context.Context) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSessionClosed
	}

	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) act(ctx context.Context, cause Cause, checks []Check, action func(State, time.Time) State) (State, error) {
	if err := s.waitReady(ctx); err != nil {
		return s.Current(), err
	}
	// Primero el decay hasta now, si no la acción partiría de un valor viejo.
	return s.apply(cause, allOf(checks), func(st State, now time.Time) State {
		return action(Decay(st, now), now)
	})
}

func allOf(checks []Check) Check {
	if len(checks) == 0 {
		return nil
	}
	return func(st State) error {
		for _, c := range checks {
			if c == nil {
				continue
			}
			if err := c(st); err != nil {
				return err
			}
		}
		return nil
	}
}

// Feed alimenta a la mascota. Los checks se evalúan sobre el estado ya
// decaído, en la misma sección crítica que la acción.
func (s *Session) Feed(ctx context.Context, checks ...Check) (State, error) {
	return s.act(ctx, CauseFeed, checks, Feed)
}

func (s *Session) Pet(ctx context.Context, checks ...Check) (State, error) {
	return s.act(ctx, CausePet, checks, Pet)
}

func (s *Session) Reset(ctx context.Context) (State, error) {
	if err := s.waitReady(ctx); err != nil {
		return s.Current(), err
	}
	return s.apply(CauseReset, nil, Reset)
}

// Tick aplica un decay fuera del timer (p. ej. al refrescar la vista).
func (s *Session) Tick(ctx context.Context) (State, error) {
	if err := s.waitReady(ctx); err != nil {
		return s.Current(), err
	}
	return s.apply(CauseDecay, nil, Decay)
}

func (s *Session) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Principal devuelve nil en modo anónimo.
func (s *Session) Principal() *Principal {
	if s.principal == nil {
		return nil
	}
	p := *s.principal
	return &p
}

// Ready se cierra cuando termina el load inicial.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Subscribe devuelve un canal con el último estado publicado. Si el lector
// se atrasa, se descartan los valores intermedios y queda solo el más nuevo.
func (s *Session) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.subsMu.Lock()
	if s.subsClosed {
		s.subsMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	cancel := func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
	return ch, cancel
}

// Subscribers es la cantidad de suscriptores activos.
func (s *Session) Subscribers() int {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return len(s.subs)
}

// notifyLocked requiere subsMu tomado.
func (s *Session) notifyLocked(st State) {
	for _, ch := range s.subs {
		select {
		case ch <- st:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}
