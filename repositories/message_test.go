package repositories

import (
	"log/slog"
	"testing"

	"relay-hub/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func peerMessage(sender, target, content string, ts int64) domain.MessageDocument {
	return domain.MessageDocument{
		ID:        uuid.New(),
		SenderID:  sender,
		TargetID:  target,
		Content:   lo.ToPtr(content),
		Kind:      "text",
		Timestamp: ts,
	}
}

func groupMessage(sender, group, content string, ts int64) domain.MessageDocument {
	doc := peerMessage(sender, group, content, ts)
	doc.IsGroup = true
	return doc
}

func TestMessageRepository_PeerHistoryIsSharedBothWays(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	// Given messages flowing in both directions
	docs := []domain.MessageDocument{
		peerMessage("alice", "bob", "hi bob", 1000),
		peerMessage("bob", "alice", "hi alice", 2000),
		peerMessage("alice", "bob", "how are you", 3000),
	}
	for _, doc := range docs {
		req.NoError(repository.Store(doc))
	}

	// Then both participants see the same conversation, oldest first
	fromAlice, err := repository.HistoryWithPeer("alice", "bob", 50)
	req.NoError(err)
	fromBob, err := repository.HistoryWithPeer("bob", "alice", 50)
	req.NoError(err)

	req.Equal(docs, fromAlice)
	req.Equal(docs, fromBob)
}

func TestMessageRepository_LimitKeepsNewestMessages(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	docs := []domain.MessageDocument{
		peerMessage("alice", "bob", "first", 1000),
		peerMessage("alice", "bob", "second", 2000),
		peerMessage("alice", "bob", "third", 3000),
	}
	for _, doc := range docs {
		req.NoError(repository.Store(doc))
	}

	// The newest two, returned chronologically
	history, err := repository.HistoryWithPeer("alice", "bob", 2)
	req.NoError(err)
	req.Equal([]domain.MessageDocument{docs[1], docs[2]}, history)
}

func TestMessageRepository_GroupHistory(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	docs := []domain.MessageDocument{
		groupMessage("alice", "team", "standup?", 1000),
		groupMessage("bob", "team", "in five", 2000),
	}
	for _, doc := range docs {
		req.NoError(repository.Store(doc))
	}
	// Noise in another group must not leak in
	req.NoError(repository.Store(groupMessage("eve", "other", "hello", 1500)))

	history, err := repository.HistoryInGroup("team", 50)
	req.NoError(err)
	req.Equal(docs, history)
}

func TestMessageRepository_UserTimeline(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	sent := peerMessage("alice", "bob", "sent by alice", 1000)
	received := peerMessage("carol", "alice", "sent to alice", 2000)
	groupPost := groupMessage("alice", "team", "posted in group", 3000)
	unrelated := peerMessage("bob", "carol", "not alice's", 1500)

	for _, doc := range []domain.MessageDocument{sent, received, groupPost, unrelated} {
		req.NoError(repository.Store(doc))
	}

	history, err := repository.HistoryForUser("alice", 50)
	req.NoError(err)
	req.Equal([]domain.MessageDocument{sent, received, groupPost}, history)
}

func TestMessageRepository_SameMillisecondMessagesAllSurvive(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	// Two messages on the same millisecond: the UUID suffix keeps both
	a := peerMessage("alice", "bob", "one", 1000)
	b := peerMessage("alice", "bob", "two", 1000)
	req.NoError(repository.Store(a))
	req.NoError(repository.Store(b))

	history, err := repository.HistoryWithPeer("alice", "bob", 50)
	req.NoError(err)
	req.Len(history, 2)
}

func TestMessageRepository_EmptyConversation(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	history, err := repository.HistoryWithPeer("nobody", "noone", 50)
	req.NoError(err)
	req.Empty(history)
}
