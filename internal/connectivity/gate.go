package connectivity

import (
	"sync"

	apperrors "github.com/julianstephens/moodlit/internal/errors"
)

// Gate holds the current online state. Changes are pushed by a Monitor (or a
// test) and fanned out to subscribers; mutating journal operations read the
// state synchronously through Online or Check.
type Gate struct {
	mu     sync.RWMutex
	online bool
	nextID int
	subs   map[int]func(bool)
}

func NewGate(online bool) *Gate {
	return &Gate{online: online, subs: make(map[int]func(bool))}
}

func (g *Gate) Online() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.online
}

// Check returns ErrNetworkUnavailable when the gate is closed.
func (g *Gate) Check(op string) error {
	if !g.Online() {
		return apperrors.New(apperrors.ErrNetworkUnavailable, op, nil)
	}
	return nil
}

// Set updates the state and notifies subscribers when it changed. Callbacks
// run on the caller's goroutine after the lock is released.
func (g *Gate) Set(online bool) {
	g.mu.Lock()
	if g.online == online {
		g.mu.Unlock()
		return
	}
	g.online = online
	subs := make([]func(bool), 0, len(g.subs))
	for _, fn := range g.subs {
		subs = append(subs, fn)
	}
	g.mu.Unlock()

	for _, fn := range subs {
		fn(online)
	}
}

// Subscribe registers fn for state changes and returns a function that
// removes it.
func (g *Gate) Subscribe(fn func(online bool)) (unsubscribe func()) {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.subs[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.subs, id)
		g.mu.Unlock()
	}
}
