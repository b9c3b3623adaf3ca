package guard

import (
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/channel"
	cerr "github.com/cockroachdb/errors"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFailuresPropagateUntilOpen(t *testing.T) {
	t.Parallel()
	boom := cerr.New("boom")
	calls := 0
	g := New(Settings{Name: "flaky", MaxFailures: 2, OpenTimeout: time.Hour, Logger: zaptest.NewLogger(t)})
	cb := g.Wrap(func() error { calls++; return boom })

	assert.ErrorIs(t, cb(), boom)
	assert.ErrorIs(t, cb(), boom)
	assert.Equal(t, gobreaker.StateOpen, g.State())

	assert.NoError(t, cb())
	assert.NoError(t, cb())
	assert.Equal(t, 2, calls)
	assert.Equal(t, uint64(2), g.Skipped())
}

func TestSuccessResetsFailureCount(t *testing.T) {
	t.Parallel()
	fail := true
	g := New(Settings{Name: "intermittent", MaxFailures: 2, OpenTimeout: time.Hour})
	cb := g.Wrap(func() error {
		if fail {
			return cerr.New("nope")
		}
		return nil
	})

	assert.Error(t, cb())
	fail = false
	assert.NoError(t, cb())
	fail = true
	assert.Error(t, cb())

	assert.Equal(t, gobreaker.StateClosed, g.State())
}

func TestHalfOpenRecovers(t *testing.T) {
	t.Parallel()
	fail := true
	var transitions []gobreaker.State
	g := New(Settings{
		Name:          "recovering",
		MaxFailures:   1,
		OpenTimeout:   10 * time.Millisecond,
		OnStateChange: func(_ string, _, to gobreaker.State) { transitions = append(transitions, to) },
	})
	cb := g.Wrap(func() error {
		if fail {
			return cerr.New("down")
		}
		return nil
	})

	require.Error(t, cb())
	require.Equal(t, gobreaker.StateOpen, g.State())

	fail = false
	require.Eventually(t, func() bool { return g.State() == gobreaker.StateHalfOpen }, time.Second, 5*time.Millisecond)
	require.NoError(t, cb())

	assert.Equal(t, gobreaker.StateClosed, g.State())
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen, gobreaker.StateHalfOpen, gobreaker.StateClosed}, transitions)
}

func TestGuardedSubscriberDoesNotStarveChannel(t *testing.T) {
	t.Parallel()
	c := channel.New(7)
	later := 0
	c.Subscribe(Wrap(func() error { return cerr.New("always") }, Settings{Name: "bad", MaxFailures: 1, OpenTimeout: time.Hour}))
	c.SubscribeFunc(func() { later++ })

	require.Error(t, c.Invoke())
	require.NoError(t, c.Invoke())
	require.NoError(t, c.Invoke())

	assert.Equal(t, 2, later)
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	g := New(Settings{})
	cb := g.Wrap(func() error { return cerr.New("x") })
	for i := 0; i < DefaultMaxFailures-1; i++ {
		_ = cb()
	}
	assert.Equal(t, gobreaker.StateClosed, g.State())
	_ = cb()
	assert.Equal(t, gobreaker.StateOpen, g.State())
}
