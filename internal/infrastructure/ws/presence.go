package ws

import (
	"sort"
	"sync"
)

// Presence tracks which shopper identities currently have at least one live
// non-staff connection. Volatile by design: the process restarts empty.
type Presence struct {
	mu     sync.Mutex
	online map[string]map[string]struct{} // identity -> live connection ids
}

func NewPresence() *Presence {
	return &Presence{
		online: make(map[string]map[string]struct{}),
	}
}

// Add records a live connection for the identity and reports whether the
// identity just came online.
func (p *Presence) Add(userID, connectionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	conns, existed := p.online[userID]
	if !existed {
		conns = make(map[string]struct{})
		p.online[userID] = conns
	}
	conns[connectionID] = struct{}{}
	return !existed
}

// Remove drops one connection and reports whether the identity went offline.
// An identity with another live connection stays online.
func (p *Presence) Remove(userID, connectionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	conns, ok := p.online[userID]
	if !ok {
		return false
	}
	delete(conns, connectionID)
	if len(conns) == 0 {
		delete(p.online, userID)
		return true
	}
	return false
}

// Online reports whether the identity has at least one live connection.
func (p *Presence) Online(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.online[userID]
	return ok
}

// Snapshot returns the currently-online identities, sorted for stable output.
func (p *Presence) Snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]string, 0, len(p.online))
	for id := range p.online {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
