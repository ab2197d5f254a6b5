package petstate

import "errors"

// Reglas de la capa de presentación. El modelo no las aplica:
// Feed/Pet cambian el estado siempre que se los llame.

// Umbral a partir del cual la UI no ofrece alimentar / acariciar.
const ActionThreshold = 95.0

var (
	ErrPetDead      = errors.New("pet is dead")
	ErrNotHungry    = errors.New("pet is not hungry")
	ErrAlreadyHappy = errors.New("pet is already happy")
)

func CanFeed(s State) bool { return s.IsAlive && s.Hunger < ActionThreshold }
func CanPet(s State) bool  { return s.IsAlive && s.Happiness < ActionThreshold }

// Check decide si una acción se permite sobre un estado; nil = permitida.
type Check func(State) error

// CheckFeed es CanFeed con el motivo del rechazo.
func CheckFeed(s State) error {
	if !s.IsAlive {
		return ErrPetDead
	}
	if !CanFeed(s) {
		return ErrNotHungry
	}
	return nil
}

// CheckPet es CanPet con el motivo del rechazo.
func CheckPet(s State) error {
	if !s.IsAlive {
		return ErrPetDead
	}
	if !CanPet(s) {
		return ErrAlreadyHappy
	}
	return nil
}

type Mood string

const (
	MoodDead    Mood = "dead"
	MoodHungry  Mood = "hungry"
	MoodContent Mood = "content" // lleno y feliz
	MoodHappy   Mood = "happy"
	MoodNormal  Mood = "normal"
)

// MoodOf elige la imagen/ánimo que muestra la UI.
func MoodOf(s State) Mood {
	switch {
	case !s.IsAlive:
		return MoodDead
	case s.Hunger < 30:
		return MoodHungry
	case s.Hunger > 80 && s.Happiness > 80:
		return MoodContent
	case s.Happiness > 70:
		return MoodHappy
	default:
		return MoodNormal
	}
}

// Level es la etiqueta de una barra de estado.
type Level string

const (
	LevelPerfect  Level = "perfect"
	LevelGood     Level = "good"
	LevelFair     Level = "fair"
	LevelBad      Level = "bad"
	LevelCritical Level = "critical"
)

func LevelOf(v float64) Level {
	switch {
	case v > 80:
		return LevelPerfect
	case v > 60:
		return LevelGood
	case v > 40:
		return LevelFair
	case v > 20:
		return LevelBad
	default:
		return LevelCritical
	}
}
