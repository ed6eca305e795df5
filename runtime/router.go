package runtime

import (
	"context"
	"log/slog"
	"time"

	"relay-hub/contract"
	"relay-hub/domain"
	"relay-hub/moderation"
	"relay-hub/observability"
)

// Router interprets inbound events on behalf of one authenticated
// session. Delivery is best-effort: a recipient with a full queue loses
// the event, persistence happens through the recorder and never blocks
// the dispatch path.
type Router struct {
	log       *slog.Logger
	presence  contract.Presence
	groups    contract.Groups
	recorder  contract.Recorder
	moderator *moderation.Moderator
	monitor   *observability.Monitor
}

// NewRouter wires the dispatch path. moderator may be nil when no word
// list is configured.
func NewRouter(
	log *slog.Logger,
	presence contract.Presence,
	groups contract.Groups,
	recorder contract.Recorder,
	moderator *moderation.Moderator,
	monitor *observability.Monitor,
) *Router {
	return &Router{
		log:       log,
		presence:  presence,
		groups:    groups,
		recorder:  recorder,
		moderator: moderator,
		monitor:   monitor,
	}
}

func (r *Router) Dispatch(ctx context.Context, origin contract.Origin, ev domain.Inbound) {
	switch ev := ev.(type) {
	case domain.Join:
		// The connection is already bound to its authenticated identity,
		// a rebinding request carries no effect.
		r.log.Debug("Ignoring join", "user", origin.Identity())
	case domain.JoinGroup:
		r.handleJoinGroup(origin, ev)
	case domain.LeaveGroup:
		r.handleLeaveGroup(origin, ev)
	case domain.Chat:
		r.handleChat(ctx, origin, ev)
	case domain.Signal:
		r.handleSignal(ctx, origin, ev)
	}
}

func (r *Router) handleJoinGroup(origin contract.Origin, ev domain.JoinGroup) {
	if !r.sameIdentity(origin, ev.UserID, "join_group") {
		return
	}
	r.groups.Join(ev.GroupID, origin.Identity())
	origin.RememberGroup(ev.GroupID)
	r.log.Info("Joined group", "user", origin.Identity(), "group", ev.GroupID)
}

func (r *Router) handleLeaveGroup(origin contract.Origin, ev domain.LeaveGroup) {
	if !r.sameIdentity(origin, ev.UserID, "leave_group") {
		return
	}
	r.groups.Leave(ev.GroupID, origin.Identity())
	r.log.Info("Left group", "user", origin.Identity(), "group", ev.GroupID)
}

// sameIdentity rejects events claiming a user id other than the one the
// connection authenticated as.
func (r *Router) sameIdentity(origin contract.Origin, claimed, operation string) bool {
	if claimed == origin.Identity() {
		return true
	}
	r.monitor.SpoofRejections.Add(1)
	r.log.Warn("Rejected spoofed identity",
		"operation", operation, "claimed", claimed, "authenticated", origin.Identity())
	return false
}

func (r *Router) handleChat(ctx context.Context, origin contract.Origin, chat domain.Chat) {
	sender := origin.Identity()

	content := chat.Content
	if r.moderator != nil && content != nil {
		censored := r.moderator.Censor(*content)
		content = &censored
	}

	timestamp := time.Now().UnixMilli()
	r.recorder.RecordMessage(domain.MessageDocument{
		SenderID:    sender,
		TargetID:    chat.TargetID,
		IsGroup:     chat.IsGroup,
		Content:     content,
		Attachments: chat.Attachments,
		Kind:        chat.Kind,
		Timestamp:   timestamp,
	})

	event := domain.NewChatEvent(sender, chat, content, timestamp)
	r.monitor.ChatsRouted.Add(1)

	if chat.IsGroup {
		// The sender is a member too and receives its own echo through
		// the same fanout.
		for _, member := range r.groups.Members(chat.TargetID) {
			r.deliver(ctx, member, event)
		}
		return
	}

	r.deliver(ctx, chat.TargetID, event)
	if chat.TargetID != sender {
		r.deliver(ctx, sender, event)
	}
}

func (r *Router) handleSignal(ctx context.Context, origin contract.Origin, sig domain.Signal) {
	sender := origin.Identity()

	if status, terminal := domain.CallStatus(sig.Payload); terminal {
		r.recorder.RecordCall(domain.CallDocument{
			CallerID:  sender,
			CalleeID:  sig.TargetID,
			Status:    status,
			Timestamp: time.Now().UnixMilli(),
			Payload:   sig.Payload,
		})
	}

	// Signaling is forwarded to the target only, the sender never hears
	// its own signal back.
	r.monitor.SignalsRouted.Add(1)
	r.deliver(ctx, sig.TargetID, domain.NewSignalEvent(sender, sig.Payload))
}

func (r *Router) deliver(ctx context.Context, identity string, event domain.Outbound) {
	sink, online := r.presence.Lookup(identity)
	if !online {
		return
	}
	if err := sink.Consume(ctx, event); err != nil {
		r.monitor.DeliveryDrops.Add(1)
		r.log.Warn("Dropped delivery", "recipient", identity, "error", err)
	}
}
