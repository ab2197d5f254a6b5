package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cat-virtual/internal/platform/httpclient"
	"cat-virtual/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("supabase auth not configured")
	ErrUpstream      = errors.New("supabase auth upstream error")
)

const userPath = "/auth/v1/user"

type Config struct {
	URL     string // https://<project>.supabase.co
	AnonKey string
	Timeout time.Duration

	// Transport opcional (tests).
	Transport http.RoundTripper
}

// Verifier implementa auth.AuthVerifier preguntándole a Supabase Auth
// quién es el dueño del access token (equivalente a auth.getUser()).
type Verifier struct {
	client *httpclient.Client
}

func NewVerifier(cfg Config) (*Verifier, error) {
	if strings.TrimSpace(cfg.URL) == "" || strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, ErrNotConfigured
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	c, err := httpclient.New(cfg.URL, timeout, cfg.Transport)
	if err != nil {
		return nil, err
	}
	c.Header.Set("apikey", strings.TrimSpace(cfg.AnonKey))

	return &Verifier{client: c}, nil
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, auth.ErrUnauthorized
	}

	var out userResponse
	err := v.client.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   userPath,
		Header: http.Header{"Authorization": []string{"Bearer " + token}},
		Out:    &out,
	})
	if err != nil {
		if httpclient.IsStatus(err, http.StatusUnauthorized, http.StatusForbidden) {
			return auth.Claims{}, auth.ErrUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out.ID = strings.TrimSpace(out.ID)
	if out.ID == "" {
		return auth.Claims{}, errors.New("supabase user response missing id")
	}

	return auth.Claims{
		UserID: out.ID,
		Email:  strings.TrimSpace(out.Email),
		Role:   strings.TrimSpace(out.Role),
	}, nil
}
