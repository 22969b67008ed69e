package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"keystroke-lab/backend/internal/models"
)

// Memory is an in-memory Store used by handler tests.
type Memory struct {
	mu       sync.RWMutex
	users    map[int]models.User
	sessions map[int]models.Session
	nextUser int
	nextSess int
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[int]models.User),
		sessions: make(map[int]models.Session),
		nextUser: 1,
		nextSess: 1,
	}
}

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
	}

	u.ID = m.nextUser
	u.CreatedAt = time.Now()
	m.nextUser++
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) UserByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (m *Memory) UserByID(ctx context.Context, id int) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

// DeleteUser removes a user row; tests use it to simulate an account deleted
// after token issuance.
func (m *Memory) DeleteUser(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

func (m *Memory) CreateSession(ctx context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.ID = m.nextSess
	s.CreatedAt = time.Now()
	m.nextSess++
	m.sessions[s.ID] = *s
	return nil
}

func (m *Memory) SessionByID(ctx context.Context, id int) (models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return models.Session{}, ErrNotFound
	}
	return s, nil
}

func (m *Memory) SessionsByUser(ctx context.Context, userID int) ([]models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := []models.Session{}
	for _, s := range m.sessions {
		if s.UserID == userID {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID > sessions[j].ID
		}
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	if len(sessions) > ListLimit {
		sessions = sessions[:ListLimit]
	}
	return sessions, nil
}
