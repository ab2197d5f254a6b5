package petstate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// deviceRecord es el formato guardado en el almacenamiento local.
// Mantiene los nombres de campo que usaba el widget web (lastFed, lastPetted, isAlive).
type deviceRecord struct {
	ID                string    `json:"id,omitempty"`
	Name              string    `json:"name"`
	Hunger            float64   `json:"hunger"`
	Happiness         float64   `json:"happiness"`
	LastFed           epochTime `json:"lastFed"`
	LastPetted        epochTime `json:"lastPetted"`
	IsAlive           bool      `json:"isAlive"`
	HungerAtFed       *float64  `json:"hungerAtFed,omitempty"`
	HappinessAtPetted *float64  `json:"happinessAtPetted,omitempty"`
}

func encodeDevice(s State) ([]byte, error) {
	hf, hp := s.HungerAtFed, s.HappinessAtPetted
	return json.Marshal(deviceRecord{
		ID:                s.ID,
		Name:              s.Name,
		Hunger:            s.Hunger,
		Happiness:         s.Happiness,
		LastFed:           epochTime(s.LastFed),
		LastPetted:        epochTime(s.LastPetted),
		IsAlive:           s.IsAlive,
		HungerAtFed:       &hf,
		HappinessAtPetted: &hp,
	})
}

func decodeDevice(raw []byte) (State, error) {
	var rec deviceRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return State{}, fmt.Errorf("decode device state: %w", err)
	}

	s := State{
		ID:         rec.ID,
		Name:       rec.Name,
		Hunger:     rec.Hunger,
		Happiness:  rec.Happiness,
		LastFed:    time.Time(rec.LastFed),
		LastPetted: time.Time(rec.LastPetted),
		IsAlive:    rec.IsAlive,
	}
	if rec.HungerAtFed != nil {
		s.HungerAtFed = *rec.HungerAtFed
	}
	if rec.HappinessAtPetted != nil {
		s.HappinessAtPetted = *rec.HappinessAtPetted
	}
	return s, nil
}

// epochTime se escribe como RFC3339 y acepta también milisegundos epoch
// (formato de Date.now() en los estados guardados por el widget).
type epochTime time.Time

func (t epochTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(time.RFC3339Nano))
}

func (t *epochTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*t = epochTime(time.Time{})
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
		*t = epochTime(parsed)
		return nil
	}

	ms, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s", string(b))
	}
	// float64(math.MaxInt64) redondea a 2^63, que ya no entra en int64.
	if ms >= math.MaxInt64 || ms < math.MinInt64 {
		return fmt.Errorf("timestamp out of range %s", string(b))
	}
	*t = epochTime(time.UnixMilli(int64(ms)).UTC())
	return nil
}
