// Package presence maintains the live mapping from user id to websocket
// connection and broadcasts the online set whenever it changes. State is
// held only in memory: after a restart everyone is offline until they
// reconnect.
package presence

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// OnlineUsersEvent is the event name carried in every broadcast frame.
const OnlineUsersEvent = "getOnlineUsers"

// Conn is the connection handle the tracker needs: something it can
// push JSON frames to. *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
}

// Message is the frame fanned out to every connected handle.
type Message struct {
	Event string   `json:"event"`
	Data  []string `json:"data"`
}

// Tracker owns the user-to-connection map. All mutation goes through
// Connect/Disconnect under the lock.
type Tracker struct {
	mu     sync.RWMutex
	conns  map[string]Conn
	logger *zap.Logger
}

// NewTracker creates an empty tracker.
func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{
		conns:  make(map[string]Conn),
		logger: logger,
	}
}

// Connect registers a connection for the subject and broadcasts the new
// online set. A second connection for the same subject replaces the
// first (last connection wins). Empty subject ids are ignored: anonymous
// connections stay invisible to presence.
func (t *Tracker) Connect(subjectID string, conn Conn) {
	if subjectID == "" || conn == nil {
		return
	}

	t.mu.Lock()
	t.conns[subjectID] = conn
	online, targets := t.snapshotLocked()
	t.mu.Unlock()

	t.logger.Debug("presence connect", zap.String("user_id", subjectID))
	t.broadcast(online, targets)
}

// Disconnect removes the subject's entry, but only when the stored
// handle is the one that is going away; a stale disconnect for an
// already-replaced or already-removed connection is a no-op.
func (t *Tracker) Disconnect(subjectID string, conn Conn) {
	if subjectID == "" {
		return
	}

	t.mu.Lock()
	current, ok := t.conns[subjectID]
	if !ok || current != conn {
		t.mu.Unlock()
		return
	}
	delete(t.conns, subjectID)
	online, targets := t.snapshotLocked()
	t.mu.Unlock()

	t.logger.Debug("presence disconnect", zap.String("user_id", subjectID))
	t.broadcast(online, targets)
}

// Online returns the sorted set of currently connected subject ids.
func (t *Tracker) Online() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	online := make([]string, 0, len(t.conns))
	for id := range t.conns {
		online = append(online, id)
	}
	sort.Strings(online)
	return online
}

// IsOnline reports whether the subject currently holds a connection.
func (t *Tracker) IsOnline(subjectID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.conns[subjectID]
	return ok
}

func (t *Tracker) snapshotLocked() ([]string, []Conn) {
	online := make([]string, 0, len(t.conns))
	targets := make([]Conn, 0, len(t.conns))
	for id, conn := range t.conns {
		online = append(online, id)
		targets = append(targets, conn)
	}
	sort.Strings(online)
	return online, targets
}

// broadcast fans the online set out to every handle, best effort. A
// handle that is already gone simply does not receive the frame.
func (t *Tracker) broadcast(online []string, targets []Conn) {
	msg := Message{Event: OnlineUsersEvent, Data: online}
	for _, conn := range targets {
		if err := conn.WriteJSON(msg); err != nil {
			t.logger.Debug("presence broadcast skipped dead connection", zap.Error(err))
		}
	}
}
