package wing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edtools/wingbot/internal/gateway"
	"github.com/edtools/wingbot/internal/model"
)

func getTestMachine() (*Machine, *gateway.MemoryGateway) {
	gw := gateway.NewMemoryGateway()
	m := NewMachine(gw, NewRules(""))
	m.grace = time.Millisecond

	return m, gw
}

func (m *Machine) post(t *testing.T, ref gateway.MessageRef) *TeamPost {
	t.Helper()

	post, err := m.fetchPost(context.Background(), ref)
	require.NoError(t, err)

	return post
}

func TestCreateTeamPost(t *testing.T) {
	m, gw := getTestMachine()
	ctx := context.Background()

	ref, err := m.CreateTeamPost(ctx, "ch", "leader", "Mining", "Sol", "PC", "Odyssey", "2h")
	require.NoError(t, err)

	post := m.post(t, ref)

	assert.Equal(t, "leader", post.LeaderID)
	assert.Equal(t, 3, post.MaxSpots)
	assert.Equal(t, 3, post.SpotsAvailable)
	assert.Equal(t, []string{"leader"}, post.Members)
	assert.Equal(t, 1, m.Scheduler().Pending())
	assert.Equal(t, 1, gw.Count())
}

func TestCreateTeamPostSpecialCap(t *testing.T) {
	m, _ := getTestMachine()

	ref, err := m.CreateTeamPost(context.Background(), "ch", "leader", "AX Conflict Zone", "Sol", "PC", "Odyssey", "2h")
	require.NoError(t, err)

	assert.Equal(t, 7, m.post(t, ref).MaxSpots)
}

func TestCreateTeamPostValidation(t *testing.T) {
	m, _ := getTestMachine()
	ctx := context.Background()

	_, err := m.CreateTeamPost(ctx, "ch", "leader", "Mining", "Sol", "PC", "Odyssey", "junk")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = m.CreateTeamPost(ctx, "ch", "leader", "Mining", "Sol", "Xbox", "Odyssey", "2h")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = m.CreateTeamPost(ctx, "ch", "", "Mining", "Sol", "PC", "Odyssey", "2h")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestJoinAcceptLeaveCycle(t *testing.T) {
	m, _ := getTestMachine()
	ctx := context.Background()

	ref, err := m.CreateTeamPost(ctx, "ch", "leader", "Mining", "Sol", "PC", "Odyssey", "2h")
	require.NoError(t, err)

	reqRef, err := m.RequestJoin(ctx, ref, "u2")
	require.NoError(t, err)

	require.NoError(t, m.Resolve(ctx, reqRef, ActionAccept, "leader"))

	post := m.post(t, ref)
	assert.Equal(t, 2, post.SpotsAvailable)
	assert.Equal(t, []string{"leader", "u2"}, post.Members)

	require.NoError(t, m.LeaveTeam(ctx, ref, "u2"))

	post = m.post(t, ref)
	assert.Equal(t, 3, post.SpotsAvailable)
	assert.Equal(t, []string{"leader"}, post.Members)
}

func TestRequestJoinGuards(t *testing.T) {
	m, _ := getTestMachine()
	ctx := context.Background()

	ref, err := m.CreateTeamPost(ctx, "ch", "leader", "Mining", "Sol", "PC", "Odyssey", "2h")
	require.NoError(t, err)

	_, err = m.RequestJoin(ctx, ref, "leader")
	assert.ErrorIs(t, err, model.ErrValidation)

	for _, u := range []string{"u2", "u3", "u4"} {
		reqRef, err := m.RequestJoin(ctx, ref, u)
		require.NoError(t, err)
		require.NoError(t, m.Resolve(ctx, reqRef, ActionAccept, "leader"))
	}

	_, err = m.RequestJoin(ctx, ref, "u2")
	assert.ErrorIs(t, err, model.ErrValidation, "existing member")

	_, err = m.RequestJoin(ctx, ref, "u5")
	assert.ErrorIs(t, err, model.ErrValidation, "team is full")
}

func TestRequestJoinPostGone(t *testing.T) {
	m, gw := getTestMachine()
	ctx := context.Background()

	ref, err := m.CreateTeamPost(ctx, "ch", "leader", "Mining", "Sol", "PC", "Odyssey", "2h")
	require.NoError(t, err)

	require.NoError(t, gw.Delete(ctx, ref))

	_, err = m.RequestJoin(ctx, ref, "u2")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestResolveAuth(t *testing.T) {
	m, _ := getTestMachine()
	ctx := context.Background()

	ref, err := m.CreateTeamPost(ctx, "ch", "leader", "Mining", "Sol", "PC", "Odyssey", "2h")
	require.NoError(t, err)

	reqRef, err := m.RequestJoin(ctx, ref, "u2")
	require.NoError(t, err)

	assert.ErrorIs(t, m.Resolve(ctx, reqRef, ActionAccept, "u2"), model.ErrUnauthorized)
	assert.ErrorIs(t, m.Resolve(ctx, reqRef, ActionReject, "stranger"), model.ErrUnauthorized)

	// the requester may withdraw their own request
	require.NoError(t, m.Resolve(ctx, reqRef, ActionReject, "u2"))

	post := m.post(t, ref)
	assert.Equal(t, 3, post.SpotsAvailable)
}

func TestResolveAcceptPostGone(t *testing.T) {
	m, gw := getTestMachine()
	ctx := context.Background()

	ref, err := m.CreateTeamPost(ctx, "ch", "leader", "Mining", "Sol", "PC", "Odyssey", "2h")
	require.NoError(t, err)

	reqRef, err := m.RequestJoin(ctx, ref, "u2")
	require.NoError(t, err)

	require.NoError(t, gw.Delete(ctx, ref))

	assert.ErrorIs(t, m.Resolve(ctx, reqRef, ActionAccept, "leader"), model.ErrNotFound)
}

func TestRejectCleansUpRequest(t *testing.T) {
	m, gw := getTestMachine()
	ctx := context.Background()

	ref, err := m.CreateTeamPost(ctx, "ch", "leader", "Mining", "Sol", "PC", "Odyssey", "2h")
	require.NoError(t, err)

	reqRef, err := m.RequestJoin(ctx, ref, "u2")
	require.NoError(t, err)

	require.NoError(t, m.Resolve(ctx, reqRef, ActionReject, "leader"))

	assert.Contains(t, gw.Replies()[0], "u2")

	assert.Eventually(t, func() bool {
		_, err := gw.Fetch(ctx, reqRef)

		return err != nil
	}, time.Second, time.Millisecond*10)
}

func TestLeaveTeamGuards(t *testing.T) {
	m, _ := getTestMachine()
	ctx := context.Background()

	ref, err := m.CreateTeamPost(ctx, "ch", "leader", "Mining", "Sol", "PC", "Odyssey", "2h")
	require.NoError(t, err)

	assert.ErrorIs(t, m.LeaveTeam(ctx, ref, "leader"), model.ErrUnauthorized)
	assert.ErrorIs(t, m.LeaveTeam(ctx, ref, "stranger"), model.ErrNotFound)
}

func TestDismiss(t *testing.T) {
	m, gw := getTestMachine()
	ctx := context.Background()

	ref, err := m.CreateTeamPost(ctx, "ch", "leader", "Mining", "Sol", "PC", "Odyssey", "2h")
	require.NoError(t, err)

	assert.ErrorIs(t, m.Dismiss(ctx, ref, "stranger"), model.ErrUnauthorized)
	require.NoError(t, m.Dismiss(ctx, ref, "leader"))

	_, err = gw.Fetch(ctx, ref)
	assert.ErrorIs(t, err, gateway.ErrMessageGone)

	// dismissing a message that is already gone is fine
	require.NoError(t, m.Dismiss(ctx, ref, "stranger"))
}

func TestDismissNotification(t *testing.T) {
	m, gw := getTestMachine()
	ctx := context.Background()

	ref, err := m.CreateTeamPost(ctx, "ch", "leader", "Mining", "Sol", "PC", "Odyssey", "2h")
	require.NoError(t, err)

	reqRef, err := m.RequestJoin(ctx, ref, "u2")
	require.NoError(t, err)
	require.NoError(t, m.Resolve(ctx, reqRef, ActionAccept, "leader"))

	// the confirmation mentions leader and requester, either may dismiss
	assert.ErrorIs(t, m.Dismiss(ctx, reqRef, "stranger"), model.ErrUnauthorized)
	require.NoError(t, m.Dismiss(ctx, reqRef, "u2"))

	_, err = gw.Fetch(ctx, reqRef)
	assert.ErrorIs(t, err, gateway.ErrMessageGone)
}

func TestExpire(t *testing.T) {
	m, gw := getTestMachine()
	ctx := context.Background()

	ref, err := m.CreateTeamPost(ctx, "ch", "leader", "Mining", "Sol", "PC", "Odyssey", "2h")
	require.NoError(t, err)

	m.Expire(ref)

	_, err = gw.Fetch(ctx, ref)
	assert.ErrorIs(t, err, gateway.ErrMessageGone)

	// firing again must be harmless
	m.Expire(ref)
}

func TestSchedulerFires(t *testing.T) {
	s := NewScheduler()

	done := make(chan struct{})

	s.Schedule("t1", time.Now().Add(time.Millisecond*20), func() {
		close(done)
	})

	assert.Equal(t, 1, s.Pending())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, time.Millisecond*10)
}
