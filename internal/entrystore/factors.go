package entrystore

import (
	"sort"
	"sync"
)

// FactorSet records every factor name selected during the session. It only
// grows.
type FactorSet struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

func NewFactorSet() *FactorSet {
	return &FactorSet{names: make(map[string]struct{})}
}

// Add records names.
func (f *FactorSet) Add(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		f.names[n] = struct{}{}
	}
}

func (f *FactorSet) Contains(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.names[name]
	return ok
}

// Names returns the recorded names sorted alphabetically.
func (f *FactorSet) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.names))
	for n := range f.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
