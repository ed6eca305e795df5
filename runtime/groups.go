package runtime

import (
	"hash/fnv"
	"sync"
)

const groupShardCount = 32

type groupShard struct {
	mu     sync.RWMutex
	groups map[string]map[string]struct{}
}

// Groups is the membership service. Groups are created lazily on first
// join and an empty group is a valid resting state. Sharded by group ID
// for the same contention reasons as Presence.
type Groups struct {
	shards [groupShardCount]*groupShard
}

func NewGroups() *Groups {
	g := &Groups{}
	for i := range g.shards {
		g.shards[i] = &groupShard{groups: make(map[string]map[string]struct{})}
	}
	return g
}

func (g *Groups) shard(groupID string) *groupShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(groupID))
	return g.shards[h.Sum32()%groupShardCount]
}

// Join adds an identity to a group, creating the group if absent.
// Joining twice is idempotent.
func (g *Groups) Join(groupID, identity string) {
	s := g.shard(groupID)
	s.mu.Lock()
	members, ok := s.groups[groupID]
	if !ok {
		members = make(map[string]struct{})
		s.groups[groupID] = members
	}
	members[identity] = struct{}{}
	s.mu.Unlock()
}

// Leave removes an identity if present. Leaving a never-created group or
// one the identity is not a member of is a no-op.
func (g *Groups) Leave(groupID, identity string) {
	s := g.shard(groupID)
	s.mu.Lock()
	if members, ok := s.groups[groupID]; ok {
		delete(members, identity)
	}
	s.mu.Unlock()
}

// Members returns a snapshot of the group's member identities. The copy
// is taken under the shard lock; concurrent joins and leaves land before
// or after it, never during.
func (g *Groups) Members(groupID string) []string {
	s := g.shard(groupID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	members, ok := s.groups[groupID]
	if !ok {
		return nil
	}
	snapshot := make([]string, 0, len(members))
	for identity := range members {
		snapshot = append(snapshot, identity)
	}
	return snapshot
}
