package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	repo "fittrack/internal/repository/interfaces"
)

// SessionStore хранит refresh-сессии в памяти.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]repo.RefreshSession
	Now      func() time.Time
}

var _ repo.SessionStore = (*SessionStore)(nil)

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]repo.RefreshSession),
		Now:      time.Now,
	}
}

func (s *SessionStore) Save(_ context.Context, session repo.RefreshSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*repo.RefreshSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok || !session.ExpiresAt.After(s.Now()) {
		return nil, repo.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return repo.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) DeleteAllForUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

// CountForUser возвращает число активных сессий пользователя.
func (s *SessionStore) CountForUser(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, session := range s.sessions {
		if session.UserID == userID {
			n++
		}
	}
	return n
}
