package petstate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeviceKey es la única clave que se usa en el almacenamiento local.
const DeviceKey = "tamagotchi-state"

var (
	// ErrMissingID: Save con principal pero sin ID (no hubo load/create exitoso antes).
	ErrMissingID = errors.New("pet state has no id")
	ErrNoBackend = errors.New("persistence backend not configured")
)

// Store es el contrato de persistencia que usa la sesión.
// Load nunca devuelve un estado inválido: ante error el caller usa New().
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
}

type StoreOptions struct {
	Name string           // nombre para la mascota nueva
	Now  func() time.Time // default time.Now
}

// NewStore elige backend según haya principal o no.
func NewStore(principal *Principal, records RecordStore, device DeviceStore, opts StoreOptions) Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if strings.TrimSpace(opts.Name) == "" {
		opts.Name = DefaultName
	}

	if principal != nil && strings.TrimSpace(principal.UserID) != "" {
		return &remoteStore{
			owner:   strings.TrimSpace(principal.UserID),
			records: records,
			opts:    opts,
		}
	}
	return &deviceStore{device: device, opts: opts}
}

type remoteStore struct {
	owner   string
	records RecordStore
	opts    StoreOptions
}

func (r *remoteStore) Load(ctx context.Context) (State, error) {
	if r.records == nil {
		return State{}, ErrNoBackend
	}

	s, err := r.records.GetByOwner(ctx, r.owner)
	if err == nil {
		return Normalize(s), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return State{}, fmt.Errorf("load pet state: %w", err)
	}

	// Primer uso: crear el registro con valores iniciales.
	fresh := New(r.opts.Name, r.opts.Now())
	fresh.ID = uuid.NewString()

	if err := r.records.Create(ctx, r.owner, fresh); err != nil {
		if !errors.Is(err, ErrConflict) {
			return State{}, fmt.Errorf("create pet state: %w", err)
		}
		// Otro load concurrente lo creó primero: usamos ese.
		existing, err := r.records.GetByOwner(ctx, r.owner)
		if err != nil {
			return State{}, fmt.Errorf("reload pet state: %w", err)
		}
		return Normalize(existing), nil
	}

	return fresh, nil
}

func (r *remoteStore) Save(ctx context.Context, s State) error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrMissingID
	}
	if r.records == nil {
		return ErrNoBackend
	}
	if err := r.records.Update(ctx, r.owner, s); err != nil {
		return fmt.Errorf("save pet state: %w", err)
	}
	return nil
}

type deviceStore struct {
	device DeviceStore
	opts   StoreOptions
}

func (d *deviceStore) Load(ctx context.Context) (State, error) {
	if d.device == nil {
		return State{}, ErrNoBackend
	}

	raw, err := d.device.Get(ctx, DeviceKey)
	if errors.Is(err, ErrNotFound) || (err == nil && len(raw) == 0) {
		return New(d.opts.Name, d.opts.Now()), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read device state: %w", err)
	}

	s, err := decodeDevice(raw)
	if err != nil {
		return State{}, err
	}
	return Normalize(s), nil
}

// Save pisa el valor guardado sin merge (gana el último).
func (d *deviceStore) Save(ctx context.Context, s State) error {
	if d.device == nil {
		return ErrNoBackend
	}
	raw, err := encodeDevice(s)
	if err != nil {
		return err
	}
	if err := d.device.Put(ctx, DeviceKey, raw); err != nil {
		return fmt.Errorf("write device state: %w", err)
	}
	return nil
}
