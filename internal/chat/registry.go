package chat

import "sync"

// registry is the set of all live connections, used for global broadcasts
// (presence) and to make disconnect teardown idempotent.
type registry struct {
	mu      sync.RWMutex
	clients map[*Client]bool
}

func newRegistry() *registry {
	return &registry{clients: map[*Client]bool{}}
}

func (r *registry) add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = true
}

// remove reports whether the client was still registered, so Disconnect runs
// its teardown at most once per connection.
func (r *registry) remove(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.clients[c] {
		return false
	}
	delete(r.clients, c)
	return true
}

func (r *registry) snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		out = append(out, c)
	}
	return out
}
