package events

import "sync"

// guildLocks serializes read-modify-write cycles per guild. Event mutations
// are whole-collection replaces, so two in-flight writers on the same guild
// would silently drop one another's update without this. Guild counts are
// small and long-lived; entries are never evicted.
type guildLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newGuildLocks() *guildLocks {
	return &guildLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the guild's mutex and returns the release func.
func (g *guildLocks) acquire(guildID string) func() {
	g.mu.Lock()
	l, ok := g.locks[guildID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[guildID] = l
	}
	g.mu.Unlock()

	l.Lock()
	return l.Unlock
}
