// Package mqtt publica los cambios de estado de la mascota en un broker MQTT.
package mqtt

import (
	"encoding/json"
	"time"

	"cat-virtual/internal/domain/petstate"
)

// DefaultTopic es el topic base; cada mensaje va a <topic>/<owner>.
const DefaultTopic = "catvirtual/pet/state"

// Payload es el JSON publicado por cada cambio.
type Payload struct {
	Timestamp  string  `json:"timestamp"`
	Cause      string  `json:"cause"`
	Owner      string  `json:"owner"`
	PetID      string  `json:"pet_id,omitempty"`
	Name       string  `json:"name"`
	Hunger     float64 `json:"hunger"`
	Happiness  float64 `json:"happiness"`
	LastFed    string  `json:"last_fed"`
	LastPetted string  `json:"last_petted"`
	IsAlive    bool    `json:"is_alive"`
}

// owner es el sufijo del topic: el user id o "device".
func owner(c petstate.Change) string {
	if c.Principal == nil || c.Principal.UserID == "" {
		return "device"
	}
	return c.Principal.UserID
}

// FormatPayload arma el JSON de un cambio.
func FormatPayload(c petstate.Change) ([]byte, error) {
	return json.Marshal(Payload{
		Timestamp:  c.At.UTC().Format(time.RFC3339),
		Cause:      string(c.Cause),
		Owner:      owner(c),
		PetID:      c.State.ID,
		Name:       c.State.Name,
		Hunger:     c.State.Hunger,
		Happiness:  c.State.Happiness,
		LastFed:    c.State.LastFed.UTC().Format(time.RFC3339),
		LastPetted: c.State.LastPetted.UTC().Format(time.RFC3339),
		IsAlive:    c.State.IsAlive,
	})
}

// TopicFor devuelve el topic de un cambio.
func TopicFor(base string, c petstate.Change) string {
	if base == "" {
		base = DefaultTopic
	}
	return base + "/" + owner(c)
}
