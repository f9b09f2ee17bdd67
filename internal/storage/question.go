package storage

import (
	"sync"
	"time"

	"github.com/adilbekov/gre-vocab-bot/internal/domain/entities"
)

// PendingQuestion is the question currently shown in a chat, with the moment
// it was presented so answer time can be measured.
type PendingQuestion struct {
	Question *entities.Question
	ShownAt  time.Time
	Revealed bool // flashcard: definition already shown
}

// QuestionStorage provides in-memory storage for the question awaiting an
// answer in each chat.
type QuestionStorage struct {
	mu      sync.RWMutex
	pending map[int64]*PendingQuestion
}

// NewQuestionStorage creates a new QuestionStorage.
func NewQuestionStorage() *QuestionStorage {
	return &QuestionStorage{
		pending: make(map[int64]*PendingQuestion),
	}
}

// Store saves the pending question for a chat.
func (s *QuestionStorage) Store(chatID int64, q *PendingQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[chatID] = q
}

// Get retrieves the pending question for a chat.
func (s *QuestionStorage) Get(chatID int64) (*PendingQuestion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.pending[chatID]
	return q, ok
}

// Delete removes the pending question for a chat.
func (s *QuestionStorage) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, chatID)
}
