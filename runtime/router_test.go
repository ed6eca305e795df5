package runtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"relay-hub/domain"
	"relay-hub/mocks"
	"relay-hub/moderation"
	"relay-hub/observability"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type routerFixture struct {
	router   *Router
	presence *mocks.MockPresence
	groups   *mocks.MockGroups
	recorder *mocks.MockRecorder
	monitor  *observability.Monitor
}

func newRouterFixture(t *testing.T, moderator *moderation.Moderator) routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := routerFixture{
		presence: mocks.NewMockPresence(ctrl),
		groups:   mocks.NewMockGroups(ctrl),
		recorder: mocks.NewMockRecorder(ctrl),
		monitor:  observability.NewMonitor(slog.Default()),
	}
	f.router = NewRouter(slog.Default(), f.presence, f.groups, f.recorder, moderator, f.monitor)
	return f
}

func originFor(t *testing.T, identity string) *mocks.MockOrigin {
	t.Helper()
	origin := mocks.NewMockOrigin(gomock.NewController(t))
	origin.EXPECT().Identity().Return(identity).AnyTimes()
	origin.EXPECT().RememberGroup(gomock.Any()).AnyTimes()
	return origin
}

func TestRouter_JoinGroupRegistersMembership(t *testing.T) {
	f := newRouterFixture(t, nil)
	origin := mocks.NewMockOrigin(gomock.NewController(t))
	origin.EXPECT().Identity().Return("alice").AnyTimes()

	// The session is told about the group so teardown can leave it
	f.groups.EXPECT().Join("team", "alice")
	origin.EXPECT().RememberGroup("team")

	f.router.Dispatch(context.Background(), origin, domain.JoinGroup{UserID: "alice", GroupID: "team"})
}

func TestRouter_JoinGroupRejectsSpoofedIdentity(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t, nil)

	// No Join expectation: a mismatching user id must go nowhere
	f.router.Dispatch(context.Background(), originFor(t, "alice"),
		domain.JoinGroup{UserID: "mallory", GroupID: "team"})

	req.Equal(uint64(1), f.monitor.SpoofRejections.Load())
}

func TestRouter_LeaveGroup(t *testing.T) {
	f := newRouterFixture(t, nil)

	f.groups.EXPECT().Leave("team", "alice")

	f.router.Dispatch(context.Background(), originFor(t, "alice"),
		domain.LeaveGroup{UserID: "alice", GroupID: "team"})
}

func TestRouter_LeaveGroupRejectsSpoofedIdentity(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t, nil)

	f.router.Dispatch(context.Background(), originFor(t, "alice"),
		domain.LeaveGroup{UserID: "mallory", GroupID: "team"})

	req.Equal(uint64(1), f.monitor.SpoofRejections.Load())
}

func TestRouter_JoinIsIgnored(t *testing.T) {
	f := newRouterFixture(t, nil)

	f.router.Dispatch(context.Background(), originFor(t, "alice"), domain.Join{UserID: "bob"})
}

func TestRouter_ChatDeliversToPeerAndEchoesToSender(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	f := newRouterFixture(t, nil)

	var recorded domain.MessageDocument
	f.recorder.EXPECT().RecordMessage(gomock.Any()).Do(func(doc domain.MessageDocument) {
		recorded = doc
	})

	var toBob, toAlice domain.Outbound
	bobSink := mocks.NewMockEventSink(ctrl)
	bobSink.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e domain.Outbound) error { toBob = e; return nil })
	aliceSink := mocks.NewMockEventSink(ctrl)
	aliceSink.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e domain.Outbound) error { toAlice = e; return nil })
	f.presence.EXPECT().Lookup("bob").Return(bobSink, true)
	f.presence.EXPECT().Lookup("alice").Return(aliceSink, true)

	f.router.Dispatch(context.Background(), originFor(t, "alice"),
		domain.Chat{TargetID: "bob", Content: lo.ToPtr("hi"), Kind: "text"})

	// Both copies are the same stamped event
	req.Equal(toBob, toAlice)
	event, ok := toBob.(domain.ChatEvent)
	req.True(ok)
	req.Equal("alice", event.SenderID)
	req.Equal("bob", event.TargetID)
	req.Equal("hi", *event.Content)
	req.Positive(event.Timestamp)

	// The persisted document matches what was delivered
	req.Equal("alice", recorded.SenderID)
	req.Equal(event.Timestamp, recorded.Timestamp)
	req.Equal(uint64(1), f.monitor.ChatsRouted.Load())
}

func TestRouter_ChatPersistsEvenWhenPeerIsOffline(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	f := newRouterFixture(t, nil)

	f.recorder.EXPECT().RecordMessage(gomock.Any())
	aliceSink := mocks.NewMockEventSink(ctrl)
	aliceSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil)
	f.presence.EXPECT().Lookup("bob").Return(nil, false)
	f.presence.EXPECT().Lookup("alice").Return(aliceSink, true)

	f.router.Dispatch(context.Background(), originFor(t, "alice"),
		domain.Chat{TargetID: "bob", Content: lo.ToPtr("hi"), Kind: "text"})

	// An offline recipient is not a delivery failure
	req.Zero(f.monitor.DeliveryDrops.Load())
}

func TestRouter_ChatToSelfDeliversOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newRouterFixture(t, nil)

	f.recorder.EXPECT().RecordMessage(gomock.Any())
	sink := mocks.NewMockEventSink(ctrl)
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	f.presence.EXPECT().Lookup("alice").Return(sink, true).Times(1)

	f.router.Dispatch(context.Background(), originFor(t, "alice"),
		domain.Chat{TargetID: "alice", Content: lo.ToPtr("note to self"), Kind: "text"})
}

func TestRouter_GroupChatFansOutToAllMembersIncludingSender(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	f := newRouterFixture(t, nil)

	f.recorder.EXPECT().RecordMessage(gomock.Any())
	f.groups.EXPECT().Members("team").Return([]string{"alice", "bob", "carol"})

	delivered := map[string]bool{}
	for _, member := range []string{"alice", "bob"} {
		member := member
		sink := mocks.NewMockEventSink(ctrl)
		sink.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ domain.Outbound) error {
				delivered[member] = true
				return nil
			})
		f.presence.EXPECT().Lookup(member).Return(sink, true)
	}
	// carol is a member but currently offline
	f.presence.EXPECT().Lookup("carol").Return(nil, false)

	f.router.Dispatch(context.Background(), originFor(t, "alice"),
		domain.Chat{TargetID: "team", IsGroup: true, Content: lo.ToPtr("standup?"), Kind: "text"})

	req.True(delivered["alice"])
	req.True(delivered["bob"])
}

func TestRouter_ChatCensorsContent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	moderator, err := moderation.NewModerator([]string{"darn"}, '*')
	require.NoError(t, err)
	f := newRouterFixture(t, moderator)

	var recorded domain.MessageDocument
	f.recorder.EXPECT().RecordMessage(gomock.Any()).Do(func(doc domain.MessageDocument) {
		recorded = doc
	})
	var delivered domain.Outbound
	sink := mocks.NewMockEventSink(ctrl)
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e domain.Outbound) error { delivered = e; return nil }).Times(2)
	f.presence.EXPECT().Lookup(gomock.Any()).Return(sink, true).Times(2)

	f.router.Dispatch(context.Background(), originFor(t, "alice"),
		domain.Chat{TargetID: "bob", Content: lo.ToPtr("well darn it"), Kind: "text"})

	// The censored form is what gets delivered and what gets persisted
	req.Equal("well **** it", *delivered.(domain.ChatEvent).Content)
	req.Equal("well **** it", *recorded.Content)
}

func TestRouter_ChatCountsDeliveryDrops(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	f := newRouterFixture(t, nil)

	f.recorder.EXPECT().RecordMessage(gomock.Any())
	full := mocks.NewMockEventSink(ctrl)
	full.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(sinkFullErr{}).Times(2)
	f.presence.EXPECT().Lookup(gomock.Any()).Return(full, true).Times(2)

	f.router.Dispatch(context.Background(), originFor(t, "alice"),
		domain.Chat{TargetID: "bob", Content: lo.ToPtr("hi"), Kind: "text"})

	req.Equal(uint64(2), f.monitor.DeliveryDrops.Load())
}

func TestRouter_SignalForwardsToTargetOnly(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	f := newRouterFixture(t, nil)

	payload := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	var delivered domain.Outbound
	bobSink := mocks.NewMockEventSink(ctrl)
	bobSink.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e domain.Outbound) error { delivered = e; return nil })
	// Only the target is looked up: no echo, no call record for an offer
	f.presence.EXPECT().Lookup("bob").Return(bobSink, true)

	f.router.Dispatch(context.Background(), originFor(t, "alice"),
		domain.Signal{TargetID: "bob", Payload: payload})

	event, ok := delivered.(domain.SignalEvent)
	req.True(ok)
	req.Equal("alice", event.SenderID)
	req.JSONEq(string(payload), string(event.Payload))
	req.Equal(uint64(1), f.monitor.SignalsRouted.Load())
}

func TestRouter_TerminalSignalRecordsCall(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t, nil)

	payload := json.RawMessage(`{"type":"bye","duration":42}`)
	var recorded domain.CallDocument
	f.recorder.EXPECT().RecordCall(gomock.Any()).Do(func(doc domain.CallDocument) {
		recorded = doc
	})
	f.presence.EXPECT().Lookup("bob").Return(nil, false)

	f.router.Dispatch(context.Background(), originFor(t, "alice"),
		domain.Signal{TargetID: "bob", Payload: payload})

	req.Equal("alice", recorded.CallerID)
	req.Equal("bob", recorded.CalleeID)
	req.Equal("bye", recorded.Status)
	req.Positive(recorded.Timestamp)
	req.JSONEq(string(payload), string(recorded.Payload))
}

type sinkFullErr struct{}

func (sinkFullErr) Error() string { return "send queue full" }
