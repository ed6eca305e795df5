package runtime

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"relay-hub/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type nopSink struct {
	name string
}

func (s nopSink) Consume(_ context.Context, _ domain.Outbound) error {
	return nil
}

func TestPresence_RegisterAndLookup(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	identity := uuid.NewString()
	sink := nopSink{name: "a"}

	// Given an empty registry
	_, ok := presence.Lookup(identity)
	req.False(ok)

	// When an identity registers
	presence.Register(identity, sink)

	// Then it resolves to its sink
	got, ok := presence.Lookup(identity)
	req.True(ok)
	req.Equal(sink, got)
	req.Equal(1, presence.Len())
}

func TestPresence_RegisterOverwritesExistingEntry(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	identity := uuid.NewString()

	// Given an identity already registered
	first := presence.Register(identity, nopSink{name: "old"})

	// When a newer session registers the same identity
	second := presence.Register(identity, nopSink{name: "new"})
	req.Greater(second, first)

	// Then lookups resolve to the newer sink, last-writer-wins
	got, ok := presence.Lookup(identity)
	req.True(ok)
	req.Equal(nopSink{name: "new"}, got)
	req.Equal(1, presence.Len())
}

func TestPresence_StaleUnregisterIsANoOp(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	identity := uuid.NewString()

	// Given an old session replaced by a newer one
	oldGen := presence.Register(identity, nopSink{name: "old"})
	presence.Register(identity, nopSink{name: "new"})

	// When the old session tears down with its stale generation
	removed := presence.Unregister(identity, oldGen)

	// Then the newer entry survives
	req.False(removed)
	got, ok := presence.Lookup(identity)
	req.True(ok)
	req.Equal(nopSink{name: "new"}, got)
}

func TestPresence_UnregisterMatchingGeneration(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	identity := uuid.NewString()

	generation := presence.Register(identity, nopSink{})

	req.True(presence.Unregister(identity, generation))
	_, ok := presence.Lookup(identity)
	req.False(ok)

	// Unregistering twice is idempotent
	req.False(presence.Unregister(identity, generation))
}

func TestPresence_ConcurrentChurn(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			identity := fmt.Sprintf("user-%d", n)
			for j := 0; j < 100; j++ {
				generation := presence.Register(identity, nopSink{})
				_, ok := presence.Lookup(identity)
				if !ok {
					t.Errorf("identity %s missing right after register", identity)
					return
				}
				presence.Unregister(identity, generation)
			}
		}(i)
	}
	wg.Wait()

	req.Equal(0, presence.Len())
}
