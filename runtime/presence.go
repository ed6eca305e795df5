// Package runtime holds the in-memory state shared by all sessions: the
// presence registry, group membership and the message router.
package runtime

import (
	"hash/fnv"
	"sync"
	"sync/atomic"

	"relay-hub/contract"
)

const presenceShardCount = 32

type presenceEntry struct {
	sink       contract.EventSink
	generation uint64
}

type presenceShard struct {
	mu      sync.RWMutex
	entries map[string]presenceEntry
}

// Presence is the connection registry. It is sharded so that sessions
// registering and resolving recipients under load never contend on a
// single lock. Entries are non-owning: the registry never closes a sink.
type Presence struct {
	shards     [presenceShardCount]*presenceShard
	generation atomic.Uint64
}

func NewPresence() *Presence {
	p := &Presence{}
	for i := range p.shards {
		p.shards[i] = &presenceShard{entries: make(map[string]presenceEntry)}
	}
	return p
}

func (p *Presence) shard(identity string) *presenceShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identity))
	return p.shards[h.Sum32()%presenceShardCount]
}

// Register binds an identity to its sink, unconditionally overwriting
// any previous entry (last-writer-wins). The returned generation must be
// presented back to Unregister.
func (p *Presence) Register(identity string, sink contract.EventSink) uint64 {
	generation := p.generation.Add(1)
	s := p.shard(identity)
	s.mu.Lock()
	s.entries[identity] = presenceEntry{sink: sink, generation: generation}
	s.mu.Unlock()
	return generation
}

// Lookup resolves an identity to its live sink. Absence means
// "currently unreachable", not "unknown user".
func (p *Presence) Lookup(identity string) (contract.EventSink, bool) {
	s := p.shard(identity)
	s.mu.RLock()
	entry, ok := s.entries[identity]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return entry.sink, true
}

// Unregister removes the entry only if it still belongs to the given
// generation. A stale teardown racing a newer session for the same
// identity is a no-op.
func (p *Presence) Unregister(identity string, generation uint64) bool {
	s := p.shard(identity)
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[identity]
	if !ok || entry.generation != generation {
		return false
	}
	delete(s.entries, identity)
	return true
}

// Len reports the number of live entries across all shards.
func (p *Presence) Len() int {
	total := 0
	for _, s := range p.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}
