package chat

import (
	"sync"
	"time"
)

// TypingTracker holds ephemeral per-user per-conversation typing state.
// Entries are advisory: they are removed on explicit stop and wiped on
// disconnect, never expired server-side.
type TypingTracker struct {
	mu     sync.Mutex
	active map[string]map[string]time.Time // user id -> chat id -> started
}

func NewTypingTracker() *TypingTracker {
	return &TypingTracker{active: map[string]map[string]time.Time{}}
}

func (t *TypingTracker) Start(userID, chatID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active[userID] == nil {
		t.active[userID] = map[string]time.Time{}
	}
	t.active[userID][chatID] = time.Now()
}

func (t *TypingTracker) Stop(userID, chatID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if chats, ok := t.active[userID]; ok {
		delete(chats, chatID)
		if len(chats) == 0 {
			delete(t.active, userID)
		}
	}
}

// Clear drops every entry for a user; used on disconnect.
func (t *TypingTracker) Clear(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, userID)
}

func (t *TypingTracker) IsTyping(userID, chatID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[userID][chatID]
	return ok
}
