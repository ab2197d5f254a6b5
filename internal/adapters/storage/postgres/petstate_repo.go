package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"cat-virtual/internal/domain/petstate"
)

type PetStateRepo struct {
	db *sql.DB
}

func NewPetStateRepo(db *sql.DB) *PetStateRepo {
	return &PetStateRepo{db: db}
}

var _ petstate.RecordStore = (*PetStateRepo)(nil)

func (r *PetStateRepo) GetByOwner(ctx context.Context, ownerUserID string) (petstate.State, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return petstate.State{}, petstate.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id::text, name,
			hunger, happiness,
			hunger_at_fed, happiness_at_petted,
			last_fed, last_petted,
			is_alive
		FROM pet_state
		WHERE user_id = $1
	`, ownerUserID)

	var (
		s      petstate.State
		hf, hp sql.NullFloat64
	)
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Hunger,
		&s.Happiness,
		&hf,
		&hp,
		&s.LastFed,
		&s.LastPetted,
		&s.IsAlive,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return petstate.State{}, petstate.ErrNotFound
		}
		return petstate.State{}, err
	}

	// Filas creadas por el widget viejo no tienen anchors.
	if hf.Valid {
		s.HungerAtFed = hf.Float64
	}
	if hp.Valid {
		s.HappinessAtPetted = hp.Float64
	}
	s.LastFed = s.LastFed.UTC()
	s.LastPetted = s.LastPetted.UTC()

	return s, nil
}

// Create inserta el registro inicial. Si ya hay uno para el usuario no inserta
// nada y devuelve ErrConflict (el caller recarga el existente).
func (r *PetStateRepo) Create(ctx context.Context, ownerUserID string, s petstate.State) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO pet_state (
			id, user_id, name,
			hunger, happiness,
			hunger_at_fed, happiness_at_petted,
			last_fed, last_petted,
			is_alive
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (user_id) DO NOTHING
	`,
		s.ID,
		strings.TrimSpace(ownerUserID),
		s.Name,
		s.Hunger,
		s.Happiness,
		s.HungerAtFed,
		s.HappinessAtPetted,
		s.LastFed,
		s.LastPetted,
		s.IsAlive,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return petstate.ErrConflict
	}
	return nil
}

// Update pisa stats y timestamps por id (scoped al dueño). name no se toca.
func (r *PetStateRepo) Update(ctx context.Context, ownerUserID string, s petstate.State) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pet_state
		SET
			hunger = $3,
			happiness = $4,
			hunger_at_fed = $5,
			happiness_at_petted = $6,
			last_fed = $7,
			last_petted = $8,
			is_alive = $9,
			updated_at = now()
		WHERE id = $1 AND user_id = $2
	`,
		s.ID,
		strings.TrimSpace(ownerUserID),
		s.Hunger,
		s.Happiness,
		s.HungerAtFed,
		s.HappinessAtPetted,
		s.LastFed,
		s.LastPetted,
		s.IsAlive,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return petstate.ErrNotFound
	}
	return nil
}
