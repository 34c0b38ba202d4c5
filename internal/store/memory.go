package store

import (
	"context"
	"sync"
	"time"

	"hirescore/internal/types"
)

// MemoryStore keeps applications in process memory
type MemoryStore struct {
	mu   sync.RWMutex
	apps map[string]types.Application
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{apps: make(map[string]types.Application)}
}

func (m *MemoryStore) CreateApplication(_ context.Context, app *types.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.apps[app.ID]; exists {
		return dbError("application id already exists", nil)
	}
	m.apps[app.ID] = *app
	return nil
}

func (m *MemoryStore) GetApplication(_ context.Context, id string) (*types.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.apps[id]
	if !ok {
		return nil, notFound(id)
	}
	return &app, nil
}

func (m *MemoryStore) SaveQuizResult(_ context.Context, id string, quiz types.QuizResult, verification types.SkillVerification, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[id]
	if !ok {
		return notFound(id)
	}
	if app.QuizSubmittedAt != nil {
		return alreadySubmitted(id)
	}

	app.Quiz = &quiz
	app.Verification = &verification
	app.QuizSubmittedAt = &at
	m.apps[id] = app
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() {}
