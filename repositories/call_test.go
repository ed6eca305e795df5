package repositories

import (
	"encoding/json"
	"log/slog"
	"testing"

	"relay-hub/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func callDoc(caller, callee, status string, ts int64) domain.CallDocument {
	return domain.CallDocument{
		ID:        uuid.New(),
		CallerID:  caller,
		CalleeID:  callee,
		Status:    status,
		Timestamp: ts,
		Payload:   json.RawMessage(`{"type":"` + status + `"}`),
	}
}

func TestCallRepository_VisibleToBothParticipants(t *testing.T) {
	req := require.New(t)
	repository := NewCallRepository(openTestDB(t), slog.Default())

	doc := callDoc("alice", "bob", "bye", 1000)
	req.NoError(repository.Store(doc))

	asCaller, err := repository.HistoryForUser("alice", 50)
	req.NoError(err)
	asCallee, err := repository.HistoryForUser("bob", 50)
	req.NoError(err)

	req.Equal([]domain.CallDocument{doc}, asCaller)
	req.Equal([]domain.CallDocument{doc}, asCallee)
}

func TestCallRepository_NewestFirstWithLimit(t *testing.T) {
	req := require.New(t)
	repository := NewCallRepository(openTestDB(t), slog.Default())

	first := callDoc("alice", "bob", "bye", 1000)
	second := callDoc("carol", "alice", "reject", 2000)
	third := callDoc("alice", "dave", "end-call", 3000)
	for _, doc := range []domain.CallDocument{first, second, third} {
		req.NoError(repository.Store(doc))
	}

	history, err := repository.HistoryForUser("alice", 2)
	req.NoError(err)
	req.Equal([]domain.CallDocument{third, second}, history)
}

func TestCallRepository_NoHistory(t *testing.T) {
	req := require.New(t)
	repository := NewCallRepository(openTestDB(t), slog.Default())

	history, err := repository.HistoryForUser("nobody", 50)
	req.NoError(err)
	req.Empty(history)
}
