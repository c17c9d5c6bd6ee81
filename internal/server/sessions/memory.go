package sessions

import (
	"context"
	"sync"

	"github.com/dbocharov/newsletter/internal/common"
	"github.com/dbocharov/newsletter/internal/server/models"
)

// MemoryBackend is an in-memory session backend for tests.
type MemoryBackend struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string]models.Session)}
}

func (b *MemoryBackend) Save(ctx context.Context, sess *models.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[sess.ID] = *sess
	return nil
}

func (b *MemoryBackend) Get(ctx context.Context, id string) (*models.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sess, ok := b.sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if !sess.Expires.After(timeNow()) {
		delete(b.sessions, id)
		return nil, common.ErrorNotFound
	}
	return &sess, nil
}

func (b *MemoryBackend) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, id)
	return nil
}
