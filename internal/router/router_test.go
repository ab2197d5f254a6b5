package router_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	mem "cat-virtual/internal/adapters/storage/memory"
	"cat-virtual/internal/domain/petstate"
	"cat-virtual/internal/router"

	"github.com/gorilla/websocket"
)

var t0 = time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

type petView struct {
	State struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		Hunger    float64 `json:"hunger"`
		Happiness float64 `json:"happiness"`
		IsAlive   bool    `json:"is_alive"`
	} `json:"state"`
	Loading   bool   `json:"loading"`
	CanFeed   bool   `json:"can_feed"`
	CanPet    bool   `json:"can_pet"`
	Mood      string `json:"mood"`
	Principal *struct {
		UserID string `json:"user_id"`
	} `json:"principal"`
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func newServer(t *testing.T, records *mem.PetStateRepo) *httptest.Server {
	t.Helper()
	return newServerWithClock(t, records, &testClock{now: t0})
}

// newServerWithClock no tiene ticks: el estado solo cambia por requests.
func newServerWithClock(t *testing.T, records *mem.PetStateRepo, clock *testClock) *httptest.Server {
	t.Helper()
	if records == nil {
		records = mem.NewPetStateRepo()
	}
	hub := petstate.NewHub(records, mem.NewDeviceStore(), petstate.SessionOptions{
		Now:       clock.Now,
		NewTicker: func(time.Duration) (<-chan time.Time, func()) { return nil, func() {} },
	})
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil, Hub: hub}))
	t.Cleanup(func() {
		ts.Close()
		hub.Close()
	})
	return ts
}

func TestHTTP_DeviceMode_FeedPetAndGuards(t *testing.T) {
	ts := newServer(t, nil)

	v := waitLoaded(t, ts.URL, "")
	if v.State.Hunger != 80 || v.State.Happiness != 80 || !v.State.IsAlive {
		t.Fatalf("expected initial 80/80 alive, got %+v", v.State)
	}
	if v.State.ID != "" || v.Principal != nil {
		t.Fatalf("device mode must not have id or principal: %+v", v)
	}
	if !v.CanFeed || !v.CanPet {
		t.Fatalf("expected feed and pet enabled at 80/80")
	}

	// 1) Feed: 80 + 25 => 100
	{
		st, body := doReq(t, ts.URL, "POST", "/pet/feed", "")
		if st != http.StatusOK {
			t.Fatalf("expected 200 feed, got %d body=%s", st, string(body))
		}
		v := decodeView(t, body)
		if v.State.Hunger != 100 || v.CanFeed {
			t.Fatalf("expected hunger 100 and feed disabled, got %+v", v)
		}
	}

	// 2) Segundo feed: no tiene hambre
	{
		st, body := doReq(t, ts.URL, "POST", "/pet/feed", "")
		if st != http.StatusConflict || !strings.Contains(string(body), "not hungry") {
			t.Fatalf("expected 409 not hungry, got %d body=%s", st, string(body))
		}
	}

	// 3) Pet: 80 + 20 => 100, luego 409
	{
		st, body := doReq(t, ts.URL, "POST", "/pet/pet", "")
		if st != http.StatusOK {
			t.Fatalf("expected 200 pet, got %d body=%s", st, string(body))
		}
		if v := decodeView(t, body); v.State.Happiness != 100 {
			t.Fatalf("expected happiness 100, got %v", v.State.Happiness)
		}

		st, body = doReq(t, ts.URL, "POST", "/pet/pet", "")
		if st != http.StatusConflict || !strings.Contains(string(body), "already happy") {
			t.Fatalf("expected 409 already happy, got %d body=%s", st, string(body))
		}
	}

	// 4) Reset vuelve a 80/80
	{
		st, body := doReq(t, ts.URL, "POST", "/pet/reset", "")
		if st != http.StatusOK {
			t.Fatalf("expected 200 reset, got %d body=%s", st, string(body))
		}
		if v := decodeView(t, body); v.State.Hunger != 80 || v.State.Happiness != 80 {
			t.Fatalf("expected 80/80 after reset, got %+v", v.State)
		}
	}
}

func TestHTTP_UserMode_RecordIsCreatedAndKeptAcrossReset(t *testing.T) {
	ts := newServer(t, nil)

	v := waitLoaded(t, ts.URL, "user-1")
	if v.State.ID == "" {
		t.Fatalf("expected remote record id")
	}
	if v.Principal == nil || v.Principal.UserID != "user-1" {
		t.Fatalf("expected principal user-1, got %+v", v.Principal)
	}

	st, body := doReq(t, ts.URL, "POST", "/pet/reset", "user-1")
	if st != http.StatusOK {
		t.Fatalf("expected 200 reset, got %d body=%s", st, string(body))
	}
	if after := decodeView(t, body); after.State.ID != v.State.ID {
		t.Fatalf("reset changed id: %q -> %q", v.State.ID, after.State.ID)
	}

	// Otro usuario tiene su propia mascota.
	other := waitLoaded(t, ts.URL, "user-2")
	if other.State.ID == "" || other.State.ID == v.State.ID {
		t.Fatalf("expected distinct record for user-2, got %q", other.State.ID)
	}
}

func TestHTTP_DeadPetOnlyAcceptsReset(t *testing.T) {
	records := mem.NewPetStateRepo()
	err := records.Create(context.Background(), "ghost", petstate.State{
		ID: "pet-dead", Name: "Anlo", Hunger: 0, Happiness: 50,
		LastFed: t0, LastPetted: t0,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	ts := newServer(t, records)

	v := waitLoaded(t, ts.URL, "ghost")
	if v.State.IsAlive || v.CanFeed || v.CanPet || v.Mood != "dead" {
		t.Fatalf("expected dead pet with actions disabled, got %+v", v)
	}

	for _, path := range []string{"/pet/feed", "/pet/pet"} {
		st, body := doReq(t, ts.URL, "POST", path, "ghost")
		if st != http.StatusConflict || !strings.Contains(string(body), "dead") {
			t.Fatalf("%s: expected 409 pet is dead, got %d body=%s", path, st, string(body))
		}
	}

	st, body := doReq(t, ts.URL, "POST", "/pet/reset", "ghost")
	if st != http.StatusOK {
		t.Fatalf("expected 200 reset, got %d body=%s", st, string(body))
	}
	if after := decodeView(t, body); !after.State.IsAlive || after.State.ID != "pet-dead" {
		t.Fatalf("expected revived pet with same id, got %+v", after.State)
	}

	stored, err := waitStored(records, "ghost", func(s petstate.State) bool { return s.IsAlive })
	if err != nil {
		t.Fatalf("expected reset persisted: %v (last=%+v)", err, stored)
	}
}

func TestHTTP_PetThatDiedSinceLastTickCannotBeFed(t *testing.T) {
	clock := &testClock{now: t0}
	ts := newServerWithClock(t, nil, clock)

	if v := waitLoaded(t, ts.URL, ""); !v.State.IsAlive {
		t.Fatalf("expected alive pet at t0, got %+v", v.State)
	}

	// 81 minutos sin tick: hunger 80-81 => 0.
	clock.Set(t0.Add(81 * time.Minute))

	for _, path := range []string{"/pet/feed", "/pet/pet"} {
		st, body := doReq(t, ts.URL, "POST", path, "")
		if st != http.StatusConflict || !strings.Contains(string(body), "dead") {
			t.Fatalf("%s: expected 409 pet is dead, got %d body=%s", path, st, string(body))
		}
	}

	st, body := doReq(t, ts.URL, "POST", "/pet/reset", "")
	if st != http.StatusOK {
		t.Fatalf("expected 200 reset, got %d body=%s", st, string(body))
	}
	if v := decodeView(t, body); !v.State.IsAlive || v.State.Hunger != 80 {
		t.Fatalf("expected revived pet after reset, got %+v", v.State)
	}
}

func TestHTTP_Me(t *testing.T) {
	ts := newServer(t, nil)

	st, _ := doReq(t, ts.URL, "GET", "/me", "")
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", st)
	}

	st, body := doReq(t, ts.URL, "GET", "/me", "user-9")
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, string(body))
	}
	var me struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(body, &me); err != nil || me.UserID != "user-9" {
		t.Fatalf("unexpected /me body %s (err=%v)", string(body), err)
	}
}

func TestHTTP_HealthAndSwagger(t *testing.T) {
	ts := newServer(t, nil)

	if st, body := doReq(t, ts.URL, "GET", "/health", ""); st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", st, string(body))
	}

	st, body := doReq(t, ts.URL, "GET", "/swagger/doc.json", "")
	if st != http.StatusOK || !strings.Contains(string(body), "/pet/feed") {
		t.Fatalf("expected swagger doc with /pet/feed, got %d", st)
	}
}

func TestHTTP_StreamPushesChanges(t *testing.T) {
	ts := newServer(t, nil)
	waitLoaded(t, ts.URL, "streamer")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/pet/stream"
	header := http.Header{}
	header.Set("X-Debug-User-ID", "streamer")

	conn, res, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer res.Body.Close()
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first petView
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read first frame: %v", err)
	}
	if first.State.Hunger != 80 {
		t.Fatalf("expected current state first, got %+v", first.State)
	}

	if st, body := doReq(t, ts.URL, "POST", "/pet/feed", "streamer"); st != http.StatusOK {
		t.Fatalf("feed: %d %s", st, string(body))
	}

	for {
		var v petView
		if err := conn.ReadJSON(&v); err != nil {
			t.Fatalf("read update: %v", err)
		}
		if v.State.Hunger == 100 {
			break
		}
	}
}

// --- helpers ---

func waitLoaded(t *testing.T, baseURL, debugUserID string) petView {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		st, body := doReq(t, baseURL, "GET", "/pet", debugUserID)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get pet, got %d body=%s", st, string(body))
		}
		v := decodeView(t, body)
		if !v.Loading {
			return v
		}
		if time.Now().After(deadline) {
			t.Fatalf("pet still loading")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func waitStored(records *mem.PetStateRepo, owner string, ok func(petstate.State) bool) (petstate.State, error) {
	deadline := time.Now().Add(2 * time.Second)
	for {
		s, err := records.GetByOwner(context.Background(), owner)
		if err == nil && ok(s) {
			return s, nil
		}
		if time.Now().After(deadline) {
			if err == nil {
				err = context.DeadlineExceeded
			}
			return s, err
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func decodeView(t *testing.T, body []byte) petView {
	t.Helper()
	var v petView
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json unmarshal: %v body=%s", err, string(body))
	}
	return v
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, baseURL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
