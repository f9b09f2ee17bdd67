// Package storage holds in-memory state that only lives for the process
// lifetime: active study sessions and the learner's chat.
package storage

import (
	"sync"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

// SessionStorage provides in-memory storage for active study sessions keyed
// by chat ID. Starting a new session replaces any previous one for the chat.
type SessionStorage struct {
	mu       sync.RWMutex
	sessions map[int64]*entities.StudySession
}

// NewSessionStorage creates a new SessionStorage.
func NewSessionStorage() *SessionStorage {
	return &SessionStorage{
		sessions: make(map[int64]*entities.StudySession),
	}
}

// Store saves the active session for a chat.
func (s *SessionStorage) Store(chatID int64, session *entities.StudySession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = session
}

// Get retrieves the active session for a chat.
func (s *SessionStorage) Get(chatID int64) (*entities.StudySession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[chatID]
	return session, ok
}

// Delete removes the active session for a chat.
func (s *SessionStorage) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}
