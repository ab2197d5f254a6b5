package mqtt

import (
	"context"
	"sync"

	"cat-virtual/internal/domain/petstate"
)

// FakePublisher guarda lo publicado para los asserts de los tests.
type FakePublisher struct {
	mu sync.Mutex

	Topic string

	// Changes y Payloads crecen en el orden de publicación.
	Changes  []petstate.Change
	Payloads [][]byte
	Topics   []string

	// PublishError, si está seteado, lo devuelve Publish.
	PublishError error
}

var _ petstate.Publisher = (*FakePublisher)(nil)

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Topic: DefaultTopic}
}

func (f *FakePublisher) Publish(ctx context.Context, c petstate.Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatPayload(c)
	if err != nil {
		return err
	}
	f.Changes = append(f.Changes, c)
	f.Payloads = append(f.Payloads, payload)
	f.Topics = append(f.Topics, TopicFor(f.Topic, c))
	return nil
}

// Snapshot devuelve una copia de los cambios publicados.
func (f *FakePublisher) Snapshot() []petstate.Change {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]petstate.Change(nil), f.Changes...)
}
