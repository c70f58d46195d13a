package chat

import "sync"

// Presence tracks which users currently hold live connections. The hub
// broadcasts online/offline on every connect and disconnect, mirroring the
// single-connection-per-user assumption; with two concurrent connections for
// one user the broadcasts will flicker. The per-user count is kept so that a
// reference-counted fix stays a local change.
type Presence struct {
	mu    sync.Mutex
	conns map[string]int // user id -> live connection count
}

func NewPresence() *Presence {
	return &Presence{conns: map[string]int{}}
}

// Connect records a connection and reports whether it is the user's first.
func (p *Presence) Connect(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns[userID]++
	return p.conns[userID] == 1
}

// Disconnect records a drop and reports whether it was the user's last.
func (p *Presence) Disconnect(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conns[userID] <= 1 {
		delete(p.conns, userID)
		return true
	}
	p.conns[userID]--
	return false
}

func (p *Presence) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conns[userID] > 0
}
