package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"cat-virtual/internal/domain/petstate"
)

// PetStateRepo es el store remoto en memoria (modo dev y tests).
type PetStateRepo struct {
	mu      sync.RWMutex
	byOwner map[string]petstate.State
}

func NewPetStateRepo() *PetStateRepo {
	return &PetStateRepo{
		byOwner: make(map[string]petstate.State),
	}
}

var _ petstate.RecordStore = (*PetStateRepo)(nil)

func (r *PetStateRepo) GetByOwner(ctx context.Context, ownerUserID string) (petstate.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byOwner[strings.TrimSpace(ownerUserID)]
	if !ok {
		return petstate.State{}, petstate.ErrNotFound
	}
	return s, nil
}

func (r *PetStateRepo) Create(ctx context.Context, ownerUserID string, s petstate.State) error {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" || strings.TrimSpace(s.ID) == "" {
		return errors.New("owner and id required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byOwner[ownerUserID]; exists {
		return petstate.ErrConflict
	}
	r.byOwner[ownerUserID] = s
	return nil
}

func (r *PetStateRepo) Update(ctx context.Context, ownerUserID string, s petstate.State) error {
	ownerUserID = strings.TrimSpace(ownerUserID)

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byOwner[ownerUserID]
	if !ok || cur.ID != s.ID {
		return petstate.ErrNotFound
	}
	// name e id no cambian después de creados.
	s.Name = cur.Name
	r.byOwner[ownerUserID] = s
	return nil
}
