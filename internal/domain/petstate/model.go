package petstate

import "time"

const (
	DefaultName = "Anlo"

	InitialHunger    = 80.0
	InitialHappiness = 80.0

	MinStat = 0.0
	MaxStat = 100.0

	// Puntos por minuto.
	HungerDecayRate    = 1.0
	HappinessDecayRate = 0.5

	FeedAmount = 25.0
	PetAmount  = 20.0
)

// State es el estado completo de la mascota.
// Hunger: 100 = lleno, 0 = muriendo de hambre.
// Happiness: 100 = muy feliz, 0 = triste.
type State struct {
	ID   string // vacío si no viene del store remoto
	Name string

	Hunger    float64
	Happiness float64

	LastFed    time.Time
	LastPetted time.Time

	IsAlive bool

	// Nivel justo después de la última acción. Decay descuenta desde acá,
	// así aplicarlo dos veces con el mismo now da lo mismo que una.
	HungerAtFed       float64
	HappinessAtPetted float64
}

// New crea el estado inicial de una mascota.
func New(name string, now time.Time) State {
	if name == "" {
		name = DefaultName
	}
	return State{
		Name:              name,
		Hunger:            InitialHunger,
		Happiness:         InitialHappiness,
		LastFed:           now,
		LastPetted:        now,
		IsAlive:           true,
		HungerAtFed:       InitialHunger,
		HappinessAtPetted: InitialHappiness,
	}
}

// Principal es la identidad bajo la cual se guarda el registro remoto.
// nil = modo anónimo (solo almacenamiento local).
type Principal struct {
	UserID string
	Email  string
}

func alive(hunger, happiness float64) bool {
	return hunger > 0 && happiness > 0
}

func clamp(v float64) float64 {
	if v < MinStat {
		return MinStat
	}
	if v > MaxStat {
		return MaxStat
	}
	return v
}
