package presence

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConn struct {
	mu       sync.Mutex
	frames   []Message
	failNext bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return errors.New("connection gone")
	}
	msg, ok := v.(Message)
	if !ok {
		return errors.New("unexpected frame type")
	}
	f.frames = append(f.frames, msg)
	return nil
}

func (f *fakeConn) last(t *testing.T) Message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.frames)
	return f.frames[len(f.frames)-1]
}

func newTestTracker() *Tracker {
	return NewTracker(zap.NewNop())
}

func TestConnectBroadcastsOnlineSet(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker()
	connA, connB := &fakeConn{}, &fakeConn{}

	tracker.Connect("a", connA)
	tracker.Connect("b", connB)

	require.Equal(t, []string{"a", "b"}, tracker.Online())

	last := connA.last(t)
	require.Equal(t, OnlineUsersEvent, last.Event)
	require.Equal(t, []string{"a", "b"}, last.Data)
	require.Equal(t, last, connB.last(t))
}

func TestDisconnectBroadcastsRemainingSet(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker()
	connA, connB := &fakeConn{}, &fakeConn{}

	tracker.Connect("a", connA)
	tracker.Connect("b", connB)
	tracker.Disconnect("a", connA)

	require.Equal(t, []string{"b"}, tracker.Online())
	require.Equal(t, []string{"b"}, connB.last(t).Data)
	require.False(t, tracker.IsOnline("a"))
	require.True(t, tracker.IsOnline("b"))
}

func TestDisconnectTwiceIsNoOp(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker()
	connA, connB := &fakeConn{}, &fakeConn{}

	tracker.Connect("a", connA)
	tracker.Connect("b", connB)
	tracker.Disconnect("a", connA)

	framesBefore := len(connB.frames)
	tracker.Disconnect("a", connA)

	require.Equal(t, framesBefore, len(connB.frames))
	require.Equal(t, []string{"b"}, tracker.Online())
}

func TestLastConnectionWins(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker()
	first, second := &fakeConn{}, &fakeConn{}

	tracker.Connect("a", first)
	tracker.Connect("a", second)

	// A stale disconnect for the replaced handle must not evict the
	// live connection.
	tracker.Disconnect("a", first)
	require.Equal(t, []string{"a"}, tracker.Online())

	tracker.Disconnect("a", second)
	require.Empty(t, tracker.Online())
}

func TestAnonymousConnectionsAreInvisible(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker()
	conn := &fakeConn{}

	tracker.Connect("", conn)
	require.Empty(t, tracker.Online())
	require.Empty(t, conn.frames)

	tracker.Disconnect("", conn)
	require.Empty(t, tracker.Online())
}

func TestBroadcastSurvivesDeadConnections(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker()
	dead, live := &fakeConn{failNext: true}, &fakeConn{}

	tracker.Connect("dead", dead)
	tracker.Connect("live", live)

	require.Equal(t, []string{"dead", "live"}, tracker.Online())
	require.Equal(t, []string{"dead", "live"}, live.last(t).Data)
}
