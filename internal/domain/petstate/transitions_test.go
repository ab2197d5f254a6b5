package petstate

import (
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

func minutes(n float64) time.Duration {
	return time.Duration(n * float64(time.Minute))
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func assertConsistent(t *testing.T, s State) {
	t.Helper()
	if s.Hunger < 0 || s.Hunger > 100 {
		t.Fatalf("hunger out of range: %v", s.Hunger)
	}
	if s.Happiness < 0 || s.Happiness > 100 {
		t.Fatalf("happiness out of range: %v", s.Happiness)
	}
	if s.IsAlive != (s.Hunger > 0 && s.Happiness > 0) {
		t.Fatalf("is_alive=%v inconsistent with hunger=%v happiness=%v", s.IsAlive, s.Hunger, s.Happiness)
	}
}

func TestNew_InitialValues(t *testing.T) {
	s := New("", t0)

	if s.Name != DefaultName {
		t.Fatalf("expected default name %q, got %q", DefaultName, s.Name)
	}
	if s.Hunger != 80 || s.Happiness != 80 {
		t.Fatalf("expected 80/80, got %v/%v", s.Hunger, s.Happiness)
	}
	if !s.LastFed.Equal(t0) || !s.LastPetted.Equal(t0) {
		t.Fatalf("expected timestamps = creation time")
	}
	if !s.IsAlive {
		t.Fatalf("expected alive")
	}
	if s.ID != "" {
		t.Fatalf("expected no id, got %q", s.ID)
	}
}

func TestDecay_HungerClampsAndPetDies(t *testing.T) {
	s := Decay(New("Anlo", t0), t0.Add(100*time.Minute))

	if s.Hunger != 0 {
		t.Fatalf("expected hunger 0 (clamped), got %v", s.Hunger)
	}
	if !approx(s.Happiness, 30) {
		t.Fatalf("expected happiness 30, got %v", s.Happiness)
	}
	if s.IsAlive {
		t.Fatalf("expected dead pet")
	}
	if !s.LastFed.Equal(t0) || !s.LastPetted.Equal(t0) {
		t.Fatalf("decay must not touch action timestamps")
	}
}

func TestDecay_RatesAreIndependent(t *testing.T) {
	s := New("Anlo", t0)
	s = Feed(s, t0.Add(10*time.Minute)) // 80 -> 100 (clamp) en t0+10

	got := Decay(s, t0.Add(30*time.Minute))

	// hambre: 20 min desde el feed => 100-20
	if !approx(got.Hunger, 80) {
		t.Fatalf("expected hunger 80, got %v", got.Hunger)
	}
	// felicidad: 30 min desde t0 => 80-15
	if !approx(got.Happiness, 65) {
		t.Fatalf("expected happiness 65, got %v", got.Happiness)
	}
}

func TestDecay_IdempotentForSameNow(t *testing.T) {
	now := t0.Add(minutes(37.5))
	s := New("Anlo", t0)

	once := Decay(s, now)
	twice := Decay(once, now)

	if once != twice {
		t.Fatalf("decay not idempotent:\n once=%+v\ntwice=%+v", once, twice)
	}
}

func TestDecay_RepeatedTicksDoNotCompound(t *testing.T) {
	s := New("Anlo", t0)
	for i := 1; i <= 10; i++ {
		s = Decay(s, t0.Add(time.Duration(i)*time.Minute))
	}

	if !approx(s.Hunger, 70) {
		t.Fatalf("expected hunger 70 after 10 one-minute ticks, got %v", s.Hunger)
	}
	if !approx(s.Happiness, 75) {
		t.Fatalf("expected happiness 75 after 10 one-minute ticks, got %v", s.Happiness)
	}
}

func TestDecay_ClockBeforeLastActionIsNoop(t *testing.T) {
	s := New("Anlo", t0)
	got := Decay(s, t0.Add(-time.Hour))

	if got.Hunger != s.Hunger || got.Happiness != s.Happiness {
		t.Fatalf("expected no decay for negative elapsed, got %v/%v", got.Hunger, got.Happiness)
	}
}

func TestDecay_EarlierClockNeverRaisesStats(t *testing.T) {
	later := Decay(New("Anlo", t0), t0.Add(100*time.Minute))
	if later.IsAlive {
		t.Fatalf("expected dead pet at t0+100m, got %+v", later)
	}

	for _, back := range []time.Duration{50 * time.Minute, time.Minute, -time.Hour} {
		got := Decay(later, t0.Add(back))
		if got.Hunger > later.Hunger || got.Happiness > later.Happiness {
			t.Fatalf("decay at t0+%v raised stats: %v/%v -> %v/%v",
				back, later.Hunger, later.Happiness, got.Hunger, got.Happiness)
		}
		if got.IsAlive {
			t.Fatalf("decay at t0+%v revived the pet", back)
		}
		assertConsistent(t, got)
	}

	// Volviendo al mismo now el resultado no cambia.
	if again := Decay(later, t0.Add(100*time.Minute)); again != later {
		t.Fatalf("expected idempotent decay, got %+v", again)
	}
}

func TestDecay_StateWithoutAnchorsDecaysFromCurrent(t *testing.T) {
	s := State{Name: "Anlo", Hunger: 40, Happiness: 60, LastFed: t0, LastPetted: t0, IsAlive: true}

	got := Decay(s, t0.Add(10*time.Minute))
	if !approx(got.Hunger, 30) || !approx(got.Happiness, 55) {
		t.Fatalf("expected 30/55, got %v/%v", got.Hunger, got.Happiness)
	}
}

func TestFeed_AddsHungerAndStampsLastFed(t *testing.T) {
	s := State{ID: "pet-1", Name: "Anlo", Hunger: 10, Happiness: 50, LastFed: t0, LastPetted: t0, IsAlive: true}
	now := t0.Add(5 * time.Minute)

	got := Feed(s, now)

	if got.Hunger != 35 {
		t.Fatalf("expected hunger 35, got %v", got.Hunger)
	}
	if got.Happiness != 50 {
		t.Fatalf("feed must not change happiness, got %v", got.Happiness)
	}
	if !got.IsAlive {
		t.Fatalf("expected alive")
	}
	if !got.LastFed.Equal(now) {
		t.Fatalf("expected last_fed=%v, got %v", now, got.LastFed)
	}
	if !got.LastPetted.Equal(t0) {
		t.Fatalf("feed must not touch last_petted")
	}
	if got.ID != "pet-1" {
		t.Fatalf("feed must carry id, got %q", got.ID)
	}
}

func TestFeed_ClampsAt100(t *testing.T) {
	s := New("Anlo", t0)
	s.Hunger = 90

	got := Feed(s, t0)
	if got.Hunger != 100 {
		t.Fatalf("expected hunger 100, got %v", got.Hunger)
	}
}

func TestFeed_NoHiddenGuardOnDeadPet(t *testing.T) {
	s := State{Name: "Anlo", Hunger: 0, Happiness: 40, LastFed: t0, LastPetted: t0}

	got := Feed(s, t0.Add(time.Minute))
	if got.Hunger != 25 {
		t.Fatalf("expected hunger 25, got %v", got.Hunger)
	}
	assertConsistent(t, got)
}

func TestPet_SymmetricToFeed(t *testing.T) {
	s := State{Name: "Anlo", Hunger: 50, Happiness: 10, LastFed: t0, LastPetted: t0, IsAlive: true}
	now := t0.Add(time.Minute)

	got := Pet(s, now)
	if got.Happiness != 30 {
		t.Fatalf("expected happiness 30, got %v", got.Happiness)
	}
	if got.Hunger != 50 {
		t.Fatalf("pet must not change hunger, got %v", got.Hunger)
	}
	if !got.LastPetted.Equal(now) || !got.LastFed.Equal(t0) {
		t.Fatalf("unexpected timestamps: fed=%v petted=%v", got.LastFed, got.LastPetted)
	}

	s.Happiness = 95
	if got := Pet(s, now); got.Happiness != 100 {
		t.Fatalf("expected happiness clamped to 100, got %v", got.Happiness)
	}
}

func TestReset_RevivesAndKeepsID(t *testing.T) {
	dead := State{ID: "pet-9", Name: "Anlo", Hunger: 0, Happiness: 0, LastFed: t0, LastPetted: t0}
	now := t0.Add(3 * time.Hour)

	got := Reset(dead, now)

	if got.Hunger != 80 || got.Happiness != 80 {
		t.Fatalf("expected 80/80, got %v/%v", got.Hunger, got.Happiness)
	}
	if !got.IsAlive {
		t.Fatalf("expected alive after reset")
	}
	if got.ID != "pet-9" {
		t.Fatalf("expected id preserved, got %q", got.ID)
	}
	if !got.LastFed.Equal(now) || !got.LastPetted.Equal(now) {
		t.Fatalf("expected timestamps reset to now")
	}
}

func TestTimestamps_NeverMoveBackwards(t *testing.T) {
	s := New("Anlo", t0)
	steps := []struct {
		op  func(State, time.Time) State
		now time.Time
	}{
		{Feed, t0.Add(5 * time.Minute)},
		{Decay, t0.Add(20 * time.Minute)},
		{Pet, t0.Add(time.Minute)}, // reloj atrasado
		{Feed, t0.Add(2 * time.Minute)},
		{Reset, t0.Add(-time.Hour)},
		{Pet, t0.Add(30 * time.Minute)},
	}

	prevFed, prevPetted := s.LastFed, s.LastPetted
	for i, st := range steps {
		s = st.op(s, st.now)
		if s.LastFed.Before(prevFed) {
			t.Fatalf("step %d: last_fed moved backwards: %v -> %v", i, prevFed, s.LastFed)
		}
		if s.LastPetted.Before(prevPetted) {
			t.Fatalf("step %d: last_petted moved backwards: %v -> %v", i, prevPetted, s.LastPetted)
		}
		assertConsistent(t, s)
		prevFed, prevPetted = s.LastFed, s.LastPetted
	}
}

func TestTransitions_KeepInvariantsOverRandomWalk(t *testing.T) {
	ops := []func(State, time.Time) State{Decay, Feed, Pet, Decay, Decay, Reset}
	s := New("Anlo", t0)
	now := t0

	for i := 0; i < 500; i++ {
		now = now.Add(minutes(float64(i%17) * 1.5))
		before := s
		s = ops[(i*7)%len(ops)](s, now)
		assertConsistent(t, s)

		switch (i * 7) % len(ops) {
		case 1:
			if s.Hunger < before.Hunger || s.Happiness != before.Happiness {
				t.Fatalf("feed changed stats unexpectedly: %+v -> %+v", before, s)
			}
		case 2:
			if s.Happiness < before.Happiness || s.Hunger != before.Hunger {
				t.Fatalf("pet changed stats unexpectedly: %+v -> %+v", before, s)
			}
		}
	}
}

func TestNormalize_RecomputesAliveAndClamps(t *testing.T) {
	s := Normalize(State{Name: "", Hunger: 120, Happiness: -4, IsAlive: true})

	if s.Hunger != 100 || s.Happiness != 0 {
		t.Fatalf("expected clamped 100/0, got %v/%v", s.Hunger, s.Happiness)
	}
	if s.IsAlive {
		t.Fatalf("stored is_alive must not be trusted")
	}
	if s.Name != DefaultName {
		t.Fatalf("expected default name, got %q", s.Name)
	}
	if s.HungerAtFed != 100 {
		t.Fatalf("expected anchor filled from hunger, got %v", s.HungerAtFed)
	}
}
