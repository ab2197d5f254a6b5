package petstate

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// RecordStore es el store remoto: una fila por usuario.
type RecordStore interface {
	GetByOwner(ctx context.Context, ownerUserID string) (State, error)
	// Create devuelve ErrConflict si ya existe un registro para ownerUserID.
	Create(ctx context.Context, ownerUserID string, s State) error
	// Update actualiza por ID; ErrNotFound si no hay fila (ID, owner).
	Update(ctx context.Context, ownerUserID string, s State) error
}

// DeviceStore es el almacenamiento local del dispositivo (clave -> valor).
type DeviceStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
