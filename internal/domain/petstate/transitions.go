package petstate

import (
	"math"
	"time"
)

// Las transiciones son funciones puras: reciben un estado y devuelven uno nuevo.
// No validan umbrales de UI (hunger >= 95, mascota muerta, etc.); eso lo decide el consumidor.

// Decay aplica el paso del tiempo. El tiempo se mide desde LastFed y LastPetted,
// no desde el decay anterior, por eso es idempotente para un mismo now.
// Nunca sube un stat: un now anterior al decay previo no deshace lo ya perdido.
func Decay(s State, now time.Time) State {
	out := s
	out.HungerAtFed = anchor(s.HungerAtFed, s.Hunger)
	out.HappinessAtPetted = anchor(s.HappinessAtPetted, s.Happiness)
	out.Hunger = math.Min(clamp(s.Hunger), clamp(out.HungerAtFed-elapsedMinutes(s.LastFed, now)*HungerDecayRate))
	out.Happiness = math.Min(clamp(s.Happiness), clamp(out.HappinessAtPetted-elapsedMinutes(s.LastPetted, now)*HappinessDecayRate))
	out.IsAlive = alive(out.Hunger, out.Happiness)
	return out
}

// Feed suma FeedAmount al hambre (tope 100) y marca LastFed.
func Feed(s State, now time.Time) State {
	out := s
	out.Hunger = clamp(s.Hunger + FeedAmount)
	out.HungerAtFed = out.Hunger
	out.LastFed = latest(s.LastFed, now)
	out.IsAlive = alive(out.Hunger, out.Happiness)
	return out
}

// Pet suma PetAmount a la felicidad (tope 100) y marca LastPetted.
func Pet(s State, now time.Time) State {
	out := s
	out.Happiness = clamp(s.Happiness + PetAmount)
	out.HappinessAtPetted = out.Happiness
	out.LastPetted = latest(s.LastPetted, now)
	out.IsAlive = alive(out.Hunger, out.Happiness)
	return out
}

// Reset vuelve a los valores iniciales. Conserva el ID (y el nombre, que es inmutable).
func Reset(s State, now time.Time) State {
	out := New(s.Name, now)
	out.ID = s.ID
	out.LastFed = latest(s.LastFed, now)
	out.LastPetted = latest(s.LastPetted, now)
	return out
}

// Normalize deja un estado leído de un store en forma válida:
// stats dentro de [0,100], anchors completos e IsAlive recalculado
// (no se confía en el flag persistido).
func Normalize(s State) State {
	out := s
	out.Hunger = clamp(s.Hunger)
	out.Happiness = clamp(s.Happiness)
	out.HungerAtFed = anchor(s.HungerAtFed, out.Hunger)
	out.HappinessAtPetted = anchor(s.HappinessAtPetted, out.Happiness)

	if out.Name == "" {
		out.Name = DefaultName
	}
	out.IsAlive = alive(out.Hunger, out.Happiness)
	return out
}

// anchor nunca queda por debajo del valor actual: un estado sin anchor
// (por ejemplo uno guardado por una versión vieja) decae desde su valor actual.
func anchor(at, current float64) float64 {
	if at < current {
		at = current
	}
	return clamp(at)
}

func elapsedMinutes(from, now time.Time) float64 {
	if from.IsZero() || !now.After(from) {
		return 0
	}
	return now.Sub(from).Minutes()
}

func latest(prev, now time.Time) time.Time {
	if now.Before(prev) {
		return prev
	}
	return now
}
