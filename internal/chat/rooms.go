package chat

import "sync"

// Rooms maps room ids to the live connections subscribed to them. A room id
// is either a user id (personal room, used for direct delivery) or a group
// id. The double map keeps teardown cheap: leaving all rooms on disconnect
// never scans the full registry.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[*Client]bool // room -> clients
	joined  map[*Client]map[string]bool // client -> rooms
}

func NewRooms() *Rooms {
	return &Rooms{
		members: map[string]map[*Client]bool{},
		joined:  map[*Client]map[string]bool{},
	}
}

func (r *Rooms) Join(c *Client, room string) {
	if room == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[room] == nil {
		r.members[room] = map[*Client]bool{}
	}
	r.members[room][c] = true
	if r.joined[c] == nil {
		r.joined[c] = map[string]bool{}
	}
	r.joined[c][room] = true
}

// Leave is unconditional; leaving a room never joined is a no-op.
func (r *Rooms) Leave(c *Client, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(c, room)
}

func (r *Rooms) LeaveAll(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for room := range r.joined[c] {
		r.leaveLocked(c, room)
	}
}

func (r *Rooms) leaveLocked(c *Client, room string) {
	if set, ok := r.members[room]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.members, room)
		}
	}
	if set, ok := r.joined[c]; ok {
		delete(set, room)
		if len(set) == 0 {
			delete(r.joined, c)
		}
	}
}

// MembershipOf lists the rooms a connection currently receives.
func (r *Rooms) MembershipOf(c *Client) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]string, 0, len(r.joined[c]))
	for room := range r.joined[c] {
		rooms = append(rooms, room)
	}
	return rooms
}

// snapshot copies a room's member set so fan-out happens outside the lock.
func (r *Rooms) snapshot(room string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]*Client, 0, len(r.members[room]))
	for c := range r.members[room] {
		clients = append(clients, c)
	}
	return clients
}

// Broadcast delivers one frame to every connection in the room.
func (r *Rooms) Broadcast(room, event string, data any) {
	frame := encode(event, data)
	for _, c := range r.snapshot(room) {
		c.enqueue(frame)
	}
}

// BroadcastExcept skips one connection, for events the originator must not
// receive back.
func (r *Rooms) BroadcastExcept(room string, except *Client, event string, data any) {
	frame := encode(event, data)
	for _, c := range r.snapshot(room) {
		if c != except {
			c.enqueue(frame)
		}
	}
}
