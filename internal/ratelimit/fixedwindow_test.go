package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLimiter(limit int, window time.Duration, maxClients int) (*FixedWindow, *time.Time) {
	f := New(limit, window, maxClients)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cur := &now
	f.now = func() time.Time { return *cur }
	return f, cur
}

func TestAllow_LimitWithinWindow(t *testing.T) {
	f, _ := newTestLimiter(3, time.Second, 0)

	for i := 0; i < 3; i++ {
		require.True(t, f.Allow("c1"), "message %d should be accepted", i+1)
	}
	require.False(t, f.Allow("c1"), "message over the limit should be rejected")
}

func TestAllow_WindowRestart(t *testing.T) {
	f, cur := newTestLimiter(2, time.Second, 0)

	require.True(t, f.Allow("c1"))
	require.True(t, f.Allow("c1"))
	require.False(t, f.Allow("c1"))

	*cur = cur.Add(1100 * time.Millisecond)
	require.True(t, f.Allow("c1"), "first message after the window elapses restarts it")
	require.True(t, f.Allow("c1"))
	require.False(t, f.Allow("c1"), "restarted window counts from 1")
}

func TestAllow_ClientsIndependent(t *testing.T) {
	f, _ := newTestLimiter(1, time.Second, 0)

	require.True(t, f.Allow("c1"))
	require.False(t, f.Allow("c1"))
	require.True(t, f.Allow("c2"), "saturating c1 must not affect c2")
}

func TestAllow_WindowEdgeBurst(t *testing.T) {
	// Two full bursts straddling a window edge land within roughly one
	// window of real time. Pinned: the window restarts, it does not slide.
	f, cur := newTestLimiter(5, time.Second, 0)

	for i := 0; i < 5; i++ {
		require.True(t, f.Allow("c1"))
	}
	*cur = cur.Add(time.Second + time.Millisecond)
	for i := 0; i < 5; i++ {
		require.True(t, f.Allow("c1"))
	}
}

func TestAllow_EvictsAtCap(t *testing.T) {
	f, _ := newTestLimiter(1, time.Second, 2)

	require.True(t, f.Allow("c1"))
	require.True(t, f.Allow("c2"))
	require.True(t, f.Allow("c3"))
	require.LessOrEqual(t, f.Tracked(), 2)
}

func TestAllow_EvictsExpiredBeforeLive(t *testing.T) {
	f, cur := newTestLimiter(1, time.Second, 2)

	require.True(t, f.Allow("old"))
	*cur = cur.Add(2 * time.Second)
	require.True(t, f.Allow("fresh"))
	require.True(t, f.Allow("new"))

	// "old" had expired and was the eviction target; "fresh" kept its state.
	require.False(t, f.Allow("fresh"))
	require.Equal(t, 2, f.Tracked())
}

func TestSweepRemovesExpired(t *testing.T) {
	f, cur := newTestLimiter(1, time.Second, 0)

	require.True(t, f.Allow("c1"))
	require.Equal(t, 1, f.Tracked())

	*cur = cur.Add(3 * time.Second)
	f.sweep()
	require.Zero(t, f.Tracked())
}

func TestRunStopWait(t *testing.T) {
	f := New(1, 10*time.Millisecond, 0)
	go f.Run()
	f.Stop()
	f.Wait()
}
