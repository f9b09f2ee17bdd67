package storage

import "sync"

// ChatStorage remembers the learner's chat so the reminder ticker knows where
// to send nudges. Single-learner application, so a single slot suffices.
type ChatStorage struct {
	mu     sync.RWMutex
	chatID int64
	set    bool
}

func NewChatStorage() *ChatStorage {
	return &ChatStorage{}
}

// Store records the most recently active chat.
func (s *ChatStorage) Store(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatID = chatID
	s.set = true
}

// Get returns the learner's chat, or false if the learner has not written yet.
func (s *ChatStorage) Get() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chatID, s.set
}
