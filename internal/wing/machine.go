package wing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edtools/wingbot/internal/gateway"
	"github.com/edtools/wingbot/internal/model"
	"github.com/edtools/wingbot/pkg/duration"
)

const defaultCleanupGrace = time.Second * 30

type ResolveAction string

const (
	ActionAccept ResolveAction = "accept"
	ActionReject ResolveAction = "reject"
)

// Machine executes team-formation transitions. It keeps no post state
// of its own: the current state is re-derived from the rendered message
// on every call.
type Machine struct {
	gw     gateway.Gateway
	rules  *Rules
	sched  *Scheduler
	logger *slog.Logger
	grace  time.Duration

	// serializes transitions on the same message within this process
	locks sync.Map
}

func NewMachine(gw gateway.Gateway, rules *Rules) *Machine {
	return &Machine{
		gw:     gw,
		rules:  rules,
		sched:  NewScheduler(),
		logger: slog.With("logger", "wing"),
		grace:  defaultCleanupGrace,
	}
}

func (m *Machine) Scheduler() *Scheduler {
	return m.sched
}

func (m *Machine) lock(ref gateway.MessageRef) func() {
	v, _ := m.locks.LoadOrStore(ref.MessageID, &sync.Mutex{})
	mx := v.(*sync.Mutex)
	mx.Lock()

	return mx.Unlock
}

// CreateTeamPost opens a new team post and arms its expiry.
func (m *Machine) CreateTeamPost(ctx context.Context, channelID, leaderID, activity, location, platform, version, durationText string) (gateway.MessageRef, error) {
	var none gateway.MessageRef

	if leaderID == "" || activity == "" {
		return none, model.Invalid("team", "leader and activity are required")
	}

	if !m.rules.PlatformAllowed(version, platform) {
		return none, model.Invalid("platform", fmt.Sprintf("%s is not available on %s", version, platform))
	}

	secs := duration.Parse(durationText)

	if secs <= 0 {
		return none, model.Invalid("duration", "use a span like 2h or 1d6h")
	}

	spots := m.rules.SpotsFor(activity)

	post := &TeamPost{
		ID:             uuid.NewString(),
		LeaderID:       leaderID,
		Activity:       activity,
		Location:       location,
		Platform:       platform,
		GameVersion:    version,
		MaxSpots:       spots,
		SpotsAvailable: spots,
		Members:        []string{leaderID},
		ExpiresAt:      time.Now().Add(time.Duration(secs) * time.Second),
	}

	ref, err := m.gw.Send(ctx, channelID, RenderPost(post))
	if err != nil {
		return none, err
	}

	m.scheduleExpiry(ref, post.ExpiresAt)

	m.logger.Info("team post created",
		slog.String("leader", leaderID),
		slog.String("activity", activity),
		slog.Int("spots", spots))

	return ref, nil
}

// RequestJoin opens a pending join request for the post behind ref.
func (m *Machine) RequestJoin(ctx context.Context, ref gateway.MessageRef, requesterID string) (gateway.MessageRef, error) {
	var none gateway.MessageRef

	unlock := m.lock(ref)
	defer unlock()

	post, err := m.fetchPost(ctx, ref)
	if err != nil {
		return none, err
	}

	if err := post.CanJoin(requesterID); err != nil {
		return none, err
	}

	req := &JoinRequest{
		ID:          uuid.NewString(),
		PostChannel: ref.ChannelID,
		PostMessage: ref.MessageID,
		RequesterID: requesterID,
		LeaderID:    post.LeaderID,
		Status:      RequestPending,
		ExpiresAt:   post.ExpiresAt,
	}

	reqRef, err := m.gw.Send(ctx, ref.ChannelID, RenderRequest(req))
	if err != nil {
		return none, err
	}

	m.scheduleExpiry(reqRef, req.ExpiresAt)

	m.logger.Info("join requested",
		slog.String("requester", requesterID),
		slog.String("leader", post.LeaderID))

	return reqRef, nil
}

// Resolve settles a pending join request. Accept is leader-only,
// reject is open to the leader and to the requester themselves.
func (m *Machine) Resolve(ctx context.Context, reqRef gateway.MessageRef, action ResolveAction, actingUserID string) error {
	msg, err := m.gw.Fetch(ctx, reqRef)

	if err != nil {
		return model.ErrNotFound
	}

	req, err := ParseRequest(msg)
	if err != nil {
		return err
	}

	if req.Status != RequestPending {
		return model.Invalid("request", "already resolved")
	}

	switch action {
	case ActionReject:
		return m.reject(ctx, reqRef, req, actingUserID)
	case ActionAccept:
		return m.accept(ctx, reqRef, req, actingUserID)
	default:
		return model.Invalid("action", "unknown")
	}
}

func (m *Machine) reject(ctx context.Context, reqRef gateway.MessageRef, req *JoinRequest, actingUserID string) error {
	if actingUserID != req.LeaderID && actingUserID != req.RequesterID {
		return model.ErrUnauthorized
	}

	req.Status = RequestRejected

	if err := m.gw.Edit(ctx, reqRef, RenderRequest(req)); err != nil && !errors.Is(err, gateway.ErrMessageGone) {
		return err
	}

	_ = m.gw.Reply(ctx, reqRef, req.RequesterID, "your join request was declined")

	m.cleanupLater(reqRef)

	return nil
}

func (m *Machine) accept(ctx context.Context, reqRef gateway.MessageRef, req *JoinRequest, actingUserID string) error {
	if actingUserID != req.LeaderID {
		return model.ErrUnauthorized
	}

	postRef := gateway.MessageRef{ChannelID: req.PostChannel, MessageID: req.PostMessage}

	unlock := m.lock(postRef)
	defer unlock()

	post, err := m.fetchPost(ctx, postRef)
	if err != nil {
		return err
	}

	if err := post.AddMember(req.RequesterID); err != nil {
		return err
	}

	if err := m.gw.Edit(ctx, postRef, RenderPost(post)); err != nil {
		return err
	}

	req.Status = RequestAccepted

	if err := m.gw.Edit(ctx, reqRef, RenderRequest(req)); err != nil && !errors.Is(err, gateway.ErrMessageGone) {
		return err
	}

	m.logger.Info("join accepted",
		slog.String("requester", req.RequesterID),
		slog.String("leader", req.LeaderID),
		slog.Int("spots_left", post.SpotsAvailable))

	return nil
}

// LeaveTeam frees the acting user's spot on the post behind ref.
func (m *Machine) LeaveTeam(ctx context.Context, ref gateway.MessageRef, actingUserID string) error {
	unlock := m.lock(ref)
	defer unlock()

	post, err := m.fetchPost(ctx, ref)
	if err != nil {
		return err
	}

	if err := post.RemoveMember(actingUserID); err != nil {
		if errors.Is(err, model.ErrUnauthorized) {
			return fmt.Errorf("%w: delete the post instead of leaving it", err)
		}

		return err
	}

	if err := m.gw.Edit(ctx, ref, RenderPost(post)); err != nil {
		return err
	}

	m.logger.Info("member left",
		slog.String("user", actingUserID),
		slog.Int("spots_left", post.SpotsAvailable))

	return nil
}

// Dismiss deletes the message behind ref: the leader dismisses a team
// post, a mentioned user dismisses a notification. A message that is
// already gone counts as dismissed.
func (m *Machine) Dismiss(ctx context.Context, ref gateway.MessageRef, actingUserID string) error {
	msg, err := m.gw.Fetch(ctx, ref)

	if err != nil {
		return nil
	}

	if post, err := ParsePost(msg); err == nil {
		if actingUserID != post.LeaderID {
			return model.ErrUnauthorized
		}

		return m.gw.Delete(ctx, ref)
	}

	if !slices.Contains(msg.Mentions, actingUserID) {
		return model.ErrUnauthorized
	}

	return m.gw.Delete(ctx, ref)
}

// Expire is fired by the scheduler. The target being gone already is
// success.
func (m *Machine) Expire(ref gateway.MessageRef) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	if err := m.gw.Delete(ctx, ref); err != nil && !errors.Is(err, gateway.ErrMessageGone) {
		m.logger.Warn("expiry delete failed", slog.Any("error", err))
	}

	m.locks.Delete(ref.MessageID)
}

func (m *Machine) fetchPost(ctx context.Context, ref gateway.MessageRef) (*TeamPost, error) {
	msg, err := m.gw.Fetch(ctx, ref)

	if err != nil {
		return nil, model.ErrNotFound
	}

	return ParsePost(msg)
}

func (m *Machine) scheduleExpiry(ref gateway.MessageRef, at time.Time) {
	m.sched.Schedule(ref.MessageID, at, func() {
		m.Expire(ref)
	})
}

func (m *Machine) cleanupLater(ref gateway.MessageRef) {
	time.AfterFunc(m.grace, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()

		_ = m.gw.Delete(ctx, ref)
	})
}
