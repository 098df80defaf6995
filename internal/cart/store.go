package cart

import (
	"context"
	"sync"
)

const (
	EventUpdated = "updated"
	EventCleared = "cleared"
)

// Store persiste le panier sérialisé d'une session. Get renvoie nil, nil
// quand rien n'a encore été enregistré.
type Store interface {
	Get(ctx context.Context, cartID string) ([]byte, error)
	Set(ctx context.Context, cartID string, data []byte) error
	Clear(ctx context.Context, cartID string) error
}

// Publisher notifie les onglets ouverts d'un changement de panier
type Publisher interface {
	Publish(ctx context.Context, cartID, event string) error
}

type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, cartID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.carts[cartID]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Set(_ context.Context, cartID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.carts[cartID] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, cartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, cartID)
	return nil
}
