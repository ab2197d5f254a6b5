package petstate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cat-virtual/internal/middleware"
	"cat-virtual/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

func RegisterRoutes(r chi.Router, hub *Hub, log logger.Logger) {
	h := &handlers{hub: hub, log: log}
	if h.log == nil {
		h.log = logger.Nop()
	}

	r.Route("/pet", func(pr chi.Router) {
		pr.Get("/", h.getPet)
		pr.Post("/feed", h.feedPet)
		pr.Post("/pet", h.petCat)
		pr.Post("/reset", h.resetPet)
		pr.Get("/stream", h.stream)
	})

	r.Get("/me", h.me)
}

type handlers struct {
	hub *Hub
	log logger.Logger
}

// petStateResponse es el estado de la mascota tal como lo ve la UI.
type petStateResponse struct {
	ID         string    `json:"id,omitempty"`
	Name       string    `json:"name"`
	Hunger     float64   `json:"hunger"`
	Happiness  float64   `json:"happiness"`
	LastFed    time.Time `json:"last_fed"`
	LastPetted time.Time `json:"last_petted"`
	IsAlive    bool      `json:"is_alive"`
}

type principalResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// petViewResponse agrega lo que la UI necesita para habilitar botones.
type petViewResponse struct {
	State          petStateResponse   `json:"state"`
	Loading        bool               `json:"loading"`
	CanFeed        bool               `json:"can_feed"`
	CanPet         bool               `json:"can_pet"`
	Mood           Mood               `json:"mood"`
	HungerLevel    Level              `json:"hunger_level"`
	HappinessLevel Level              `json:"happiness_level"`
	Principal      *principalResponse `json:"principal"`
}

// getPet godoc
// @Summary Estado actual de la mascota
// @Description Devuelve el estado en memoria. Con usuario (Bearer o `X-Debug-User-ID` en dev) se usa el registro remoto; sin usuario, el almacenamiento del dispositivo. `loading` es true hasta que termina la carga inicial.
// @Tags pet
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token"
// @Success 200 {object} petViewResponse
// @Failure 503 {string} string "service unavailable"
// @Router /pet [get]
func (h *handlers) getPet(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toView(sess, sess.Current()))
}

// feedPet godoc
// @Summary Alimentar a la mascota
// @Description Suma 25 de hambre (tope 100). Se rechaza si la mascota está muerta o hunger >= 95.
// @Tags pet
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token"
// @Success 200 {object} petViewResponse
// @Failure 409 {string} string "pet is dead / pet is not hungry"
// @Failure 503 {string} string "service unavailable"
// @Router /pet/feed [post]
func (h *handlers) feedPet(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, CauseFeed, func(sess *Session, ctx context.Context) (State, error) {
		return sess.Feed(ctx, CheckFeed)
	})
}

// petCat godoc
// @Summary Acariciar a la mascota
// @Description Suma 20 de felicidad (tope 100). Se rechaza si la mascota está muerta o happiness >= 95.
// @Tags pet
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token"
// @Success 200 {object} petViewResponse
// @Failure 409 {string} string "pet is dead / pet is already happy"
// @Failure 503 {string} string "service unavailable"
// @Router /pet/pet [post]
func (h *handlers) petCat(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, CausePet, func(sess *Session, ctx context.Context) (State, error) {
		return sess.Pet(ctx, CheckPet)
	})
}

// resetPet godoc
// @Summary Reiniciar la mascota
// @Description Vuelve a los valores iniciales (80/80, viva) conservando el ID del registro.
// @Tags pet
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token"
// @Success 200 {object} petViewResponse
// @Failure 503 {string} string "service unavailable"
// @Router /pet/reset [post]
func (h *handlers) resetPet(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, CauseReset, (*Session).Reset)
}

// me godoc
// @Summary Usuario actual
// @Tags pet
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param Authorization header string false "Bearer token"
// @Success 200 {object} principalResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me [get]
func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	if p == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, principalResponse{UserID: p.UserID, Email: p.Email})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// stream manda el estado por websocket cada vez que cambia (load, decay, acciones).
func (h *handlers) stream(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade ya respondió con el error HTTP.
		h.log.Debug("websocket upgrade failed", logger.Fields{"error": err})
		return
	}
	defer conn.Close()

	// Los timeouts del http.Server siguen aplicados a la conexión hijackeada.
	_ = conn.SetReadDeadline(time.Time{})

	updates, cancel := sess.Subscribe()
	defer cancel()

	// El cliente no manda nada; leemos solo para detectar el cierre.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := writeFrame(conn, toView(sess, sess.Current())); err != nil {
		return
	}

	for {
		select {
		case <-gone:
			return
		case st, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(time.Second))
				return
			}
			if err := writeFrame(conn, toView(sess, st)); err != nil {
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, v petViewResponse) error {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(v)
}

func (h *handlers) act(
	w http.ResponseWriter,
	r *http.Request,
	cause Cause,
	action func(*Session, context.Context) (State, error),
) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	st, err := action(sess, r.Context())
	if errors.Is(err, ErrSessionClosed) {
		// La sesión se cerró por inactividad entre el lookup y la acción.
		if sess, ok = h.session(w, r); !ok {
			return
		}
		st, err = action(sess, r.Context())
	}
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toView(sess, st))
	case errors.Is(err, ErrPetDead), errors.Is(err, ErrNotHungry), errors.Is(err, ErrAlreadyHappy):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		h.log.Warn("pet action failed", logger.Fields{"cause": string(cause), "error": err})
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}
}

func (h *handlers) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := h.hub.Session(principalFrom(r.Context()))
	if err != nil {
		if !errors.Is(err, ErrHubClosed) {
			h.log.Error("get pet session failed", logger.Fields{"error": err})
		}
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	return sess, true
}

func principalFrom(ctx context.Context) *Principal {
	claims, ok := middleware.GetClaims(ctx)
	if !ok {
		return nil
	}
	return &Principal{UserID: claims.UserID, Email: claims.Email}
}

func toView(sess *Session, s State) petViewResponse {
	v := petViewResponse{
		State: petStateResponse{
			ID:         s.ID,
			Name:       s.Name,
			Hunger:     s.Hunger,
			Happiness:  s.Happiness,
			LastFed:    s.LastFed,
			LastPetted: s.LastPetted,
			IsAlive:    s.IsAlive,
		},
		Loading:        sess.IsLoading(),
		CanFeed:        CanFeed(s),
		CanPet:         CanPet(s),
		Mood:           MoodOf(s),
		HungerLevel:    LevelOf(s.Hunger),
		HappinessLevel: LevelOf(s.Happiness),
	}
	if p := sess.Principal(); p != nil {
		v.Principal = &principalResponse{UserID: p.UserID, Email: p.Email}
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
