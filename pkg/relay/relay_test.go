package relay

import (
	"context"
	"testing"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/channel"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/registry"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newChannels() Channels {
	return Channels{
		Update:      channel.New(-1000, channel.WithName("update")),
		LateUpdate:  channel.New(-1001, channel.WithName("late_update")),
		FixedUpdate: channel.New(-1002, channel.WithName("fixed_update")),
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		state State
		want  string
	}{
		{Unclaimed, "unclaimed"},
		{Active, "active"},
		{Inert, "inert"},
		{Destroyed, "destroyed"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestFirstEnableClaimsSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := registry.New()
	r := New(reg, newChannels(), WithLogger(zaptest.NewLogger(t)))

	assert.Equal(t, Unclaimed, r.State())
	assert.NotEmpty(t, r.InstanceID())

	require.NoError(t, r.Enable(ctx))
	assert.Equal(t, Active, r.State())
	assert.True(t, r.IsActive())

	got, ok := registry.Resolve[*Relay](reg)
	require.True(t, ok)
	assert.Same(t, r, got)

	require.NoError(t, r.Enable(ctx), "re-enable keeps the claim")
	assert.Equal(t, Active, r.State())
}

func TestSecondRelayGoesInertAndRequestsDisposal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := registry.New()
	chs := newChannels()

	var disposed []*Relay
	dispose := WithDisposer(func(r *Relay) { disposed = append(disposed, r) })

	x := New(reg, chs, dispose)
	y := New(reg, chs, dispose)
	require.NoError(t, x.Enable(ctx))
	require.NoError(t, y.Enable(ctx))

	assert.Equal(t, Active, x.State())
	assert.Equal(t, Inert, y.State())
	assert.False(t, y.IsActive())
	require.Len(t, disposed, 1)
	assert.Same(t, y, disposed[0])

	got, _ := registry.Resolve[*Relay](reg)
	assert.Same(t, x, got)
}

func TestOnlyActiveRelayForwards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := registry.New()
	chs := newChannels()

	calls := 0
	chs.Update.SubscribeFunc(func() { calls++ })

	x := New(reg, chs)
	y := New(reg, chs)
	require.NoError(t, x.Enable(ctx))
	require.NoError(t, y.Enable(ctx))

	// the host keeps ticking both objects
	require.NoError(t, x.Update(ctx))
	require.NoError(t, y.Update(ctx))

	assert.Equal(t, 1, calls)
}

func TestForwardingPerPhase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := registry.New()
	chs := newChannels()

	var order []string
	chs.Update.SubscribeFunc(func() { order = append(order, "update") })
	chs.LateUpdate.SubscribeFunc(func() { order = append(order, "late") })
	chs.FixedUpdate.SubscribeFunc(func() { order = append(order, "fixed") })

	r := New(reg, chs)
	require.NoError(t, r.Enable(ctx))

	require.NoError(t, r.FixedUpdate(ctx))
	require.NoError(t, r.Update(ctx))
	require.NoError(t, r.LateUpdate(ctx))

	assert.Equal(t, []string{"fixed", "update", "late"}, order)
}

func TestUnclaimedRelayDoesNotForward(t *testing.T) {
	t.Parallel()
	chs := newChannels()
	called := false
	chs.Update.SubscribeFunc(func() { called = true })

	r := New(registry.New(), chs)
	require.NoError(t, r.Update(context.Background()))
	assert.False(t, called)
}

func TestSubscriberErrorPropagates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	chs := newChannels()
	boom := cerr.New("boom")
	chs.LateUpdate.Subscribe(func() error { return boom })

	r := New(registry.New(), chs)
	require.NoError(t, r.Enable(ctx))

	err := r.LateUpdate(ctx)
	require.Error(t, err)
	assert.True(t, cerr.Is(err, boom))
	assert.True(t, cerr.Is(err, relay_err.ErrSubscriberFailed))
}

func TestDestroyReleasesSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := registry.New()
	r := New(reg, newChannels())
	require.NoError(t, r.Enable(ctx))

	r.Destroy(ctx)
	assert.Equal(t, Destroyed, r.State())
	assert.False(t, registry.IsRegistered[*Relay](reg))

	err := r.Enable(ctx)
	require.Error(t, err)
	assert.True(t, cerr.Is(err, relay_err.ErrRelayDestroyed))

	r.Destroy(ctx)
	assert.Equal(t, Destroyed, r.State())
}

func TestDestroyInertRelayKeepsWinner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := registry.New()
	chs := newChannels()
	x, y := New(reg, chs), New(reg, chs)
	require.NoError(t, x.Enable(ctx))
	require.NoError(t, y.Enable(ctx))

	y.Destroy(ctx)

	got, ok := registry.Resolve[*Relay](reg)
	require.True(t, ok)
	assert.Same(t, x, got)
	assert.True(t, x.IsActive())
}

func TestInertRelayStaysInert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := registry.New()
	chs := newChannels()
	x, y := New(reg, chs), New(reg, chs)
	require.NoError(t, x.Enable(ctx))
	require.NoError(t, y.Enable(ctx))

	x.Destroy(ctx)
	require.NoError(t, y.Enable(ctx))

	assert.Equal(t, Inert, y.State())
	assert.False(t, registry.IsRegistered[*Relay](reg))
}

func TestRegistryResetReleasesRelay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := registry.New()
	chs := newChannels()
	calls := 0
	chs.Update.SubscribeFunc(func() { calls++ })

	old := New(reg, chs)
	require.NoError(t, old.Enable(ctx))
	require.NoError(t, reg.Reset(ctx))

	assert.Equal(t, Destroyed, old.State())
	require.NoError(t, old.Update(ctx))
	assert.Zero(t, calls, "released relay must not forward")

	fresh := New(reg, chs)
	require.NoError(t, fresh.Enable(ctx))
	require.NoError(t, fresh.Update(ctx))
	assert.Equal(t, 1, calls)
}

func TestStaleActiveRelayStopsForwardingWhenSlotReplaced(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := registry.New()
	chs := newChannels()
	calls := 0
	chs.Update.SubscribeFunc(func() { calls++ })

	old := New(reg, chs)
	require.NoError(t, old.Enable(ctx))

	replacement := New(reg, chs)
	require.NoError(t, registry.Overwrite(reg, replacement))
	require.NoError(t, replacement.Enable(ctx))

	require.NoError(t, old.Update(ctx))
	require.NoError(t, replacement.Update(ctx))

	assert.Equal(t, 1, calls)
	assert.False(t, old.IsActive())
	assert.True(t, replacement.IsActive())
}
