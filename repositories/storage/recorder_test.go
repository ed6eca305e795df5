package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"relay-hub/domain"
	"relay-hub/mocks"
	"relay-hub/observability"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// flush cancels the context up front so Run drains whatever is queued
// and returns, which keeps these tests free of sleeps.
func flush(t *testing.T, recorder *Recorder) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, recorder.Run(ctx))
}

func TestRecorder_PersistsAndIndexesMessages(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	calls := mocks.NewMockICallRepository(ctrl)
	index := mocks.NewMockISearchIndex(ctrl)
	monitor := observability.NewMonitor(slog.Default())
	recorder := NewRecorder(slog.Default(), messages, calls, index, monitor, 16)

	var stored, indexed domain.MessageDocument
	messages.EXPECT().Store(gomock.Any()).DoAndReturn(func(doc domain.MessageDocument) error {
		stored = doc
		return nil
	})
	index.EXPECT().IndexMessage(gomock.Any()).DoAndReturn(func(doc domain.MessageDocument) error {
		indexed = doc
		return nil
	})

	recorder.RecordMessage(domain.MessageDocument{
		SenderID:  "alice",
		TargetID:  "bob",
		Content:   lo.ToPtr("hello"),
		Kind:      "text",
		Timestamp: 1000,
	})
	flush(t, recorder)

	req.NotEqual(uuid.Nil, stored.ID)
	req.Equal("alice", stored.SenderID)
	req.Equal(stored, indexed)
	req.Zero(monitor.PersistFailures.Load())
}

func TestRecorder_AssignsUniqueIDs(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	calls := mocks.NewMockICallRepository(ctrl)
	monitor := observability.NewMonitor(slog.Default())
	recorder := NewRecorder(slog.Default(), messages, calls, nil, monitor, 16)

	var ids []string
	messages.EXPECT().Store(gomock.Any()).Times(2).DoAndReturn(func(doc domain.MessageDocument) error {
		ids = append(ids, doc.ID.String())
		return nil
	})

	doc := domain.MessageDocument{SenderID: "alice", TargetID: "bob", Kind: "text", Timestamp: 1000}
	recorder.RecordMessage(doc)
	recorder.RecordMessage(doc)
	flush(t, recorder)

	req.Len(ids, 2)
	req.NotEqual(ids[0], ids[1])
}

func TestRecorder_TagsLanguageWhenDetectionIsReliable(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	calls := mocks.NewMockICallRepository(ctrl)
	monitor := observability.NewMonitor(slog.Default())
	recorder := NewRecorder(slog.Default(), messages, calls, nil, monitor, 16)

	var stored domain.MessageDocument
	messages.EXPECT().Store(gomock.Any()).DoAndReturn(func(doc domain.MessageDocument) error {
		stored = doc
		return nil
	})

	recorder.RecordMessage(domain.MessageDocument{
		SenderID:  "alice",
		TargetID:  "bob",
		Content:   lo.ToPtr("the deployment finished without any errors and everyone went home happy"),
		Kind:      "text",
		Timestamp: 1000,
	})
	flush(t, recorder)

	req.Equal("eng", stored.Lang)
}

func TestRecorder_LeavesShortContentUntagged(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	calls := mocks.NewMockICallRepository(ctrl)
	monitor := observability.NewMonitor(slog.Default())
	recorder := NewRecorder(slog.Default(), messages, calls, nil, monitor, 16)

	var stored domain.MessageDocument
	messages.EXPECT().Store(gomock.Any()).DoAndReturn(func(doc domain.MessageDocument) error {
		stored = doc
		return nil
	})

	recorder.RecordMessage(domain.MessageDocument{
		SenderID: "alice", TargetID: "bob", Content: nil, Kind: "image", Timestamp: 1000,
	})
	flush(t, recorder)

	req.Empty(stored.Lang)
}

func TestRecorder_PersistsCalls(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	calls := mocks.NewMockICallRepository(ctrl)
	monitor := observability.NewMonitor(slog.Default())
	recorder := NewRecorder(slog.Default(), messages, calls, nil, monitor, 16)

	var stored domain.CallDocument
	calls.EXPECT().Store(gomock.Any()).DoAndReturn(func(doc domain.CallDocument) error {
		stored = doc
		return nil
	})

	recorder.RecordCall(domain.CallDocument{
		CallerID:  "alice",
		CalleeID:  "bob",
		Status:    "bye",
		Timestamp: 1000,
		Payload:   json.RawMessage(`{"type":"bye"}`),
	})
	flush(t, recorder)

	req.Equal("alice", stored.CallerID)
	req.Equal("bye", stored.Status)
}

func TestRecorder_DropsWhenQueueIsFull(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	calls := mocks.NewMockICallRepository(ctrl)
	monitor := observability.NewMonitor(slog.Default())
	recorder := NewRecorder(slog.Default(), messages, calls, nil, monitor, 1)

	// The worker is not running, so the second document has nowhere to go
	messages.EXPECT().Store(gomock.Any()).Return(nil)
	doc := domain.MessageDocument{SenderID: "alice", TargetID: "bob", Kind: "text", Timestamp: 1000}
	recorder.RecordMessage(doc)
	recorder.RecordMessage(doc)
	flush(t, recorder)

	req.Equal(uint64(1), monitor.RecorderDrops.Load())
}

func TestRecorder_CountsPersistFailures(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	calls := mocks.NewMockICallRepository(ctrl)
	monitor := observability.NewMonitor(slog.Default())
	recorder := NewRecorder(slog.Default(), messages, calls, nil, monitor, 16)

	messages.EXPECT().Store(gomock.Any()).Return(badgerClosed{})
	doc := domain.MessageDocument{SenderID: "alice", TargetID: "bob", Kind: "text", Timestamp: 1000}
	recorder.RecordMessage(doc)
	flush(t, recorder)

	req.Equal(uint64(1), monitor.PersistFailures.Load())
}

type badgerClosed struct{}

func (badgerClosed) Error() string { return "db closed" }
