package memory

import (
	"context"
	"sync"

	"cat-virtual/internal/domain/petstate"
)

// DeviceStore es un almacenamiento local en memoria (clave -> bytes).
type DeviceStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewDeviceStore() *DeviceStore {
	return &DeviceStore{data: make(map[string][]byte)}
}

var _ petstate.DeviceStore = (*DeviceStore)(nil)

func (d *DeviceStore) Get(ctx context.Context, key string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	v, ok := d.data[key]
	if !ok {
		return nil, petstate.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (d *DeviceStore) Put(ctx context.Context, key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.data[key] = append([]byte(nil), value...)
	return nil
}
