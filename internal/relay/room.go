// Package relay implements tallow's room manager: the relay-side
// code-derived pairing of two peers onto one room, and the byte-forwarding
// loop between them.
package relay

import (
	"sync"
	"time"

	"github.com/tallowteam/tallow-go/internal/errs"
)

// PeerChannel is the relay's narrow view of a connected peer: a sink to
// forward bytes to, independent of the underlying transport.
type PeerChannel interface {
	Forward(frame []byte) error
	Close() error
}

// RoomID is the 32-byte BLAKE3 hash of a code phrase that rooms are keyed
// by.
type RoomID [32]byte

// Room holds up to two peer slots and the time it was created, for the
// reaper's age-based cleanup.
type Room struct {
	PeerA     PeerChannel
	PeerB     PeerChannel
	CreatedAt time.Time
}

// ErrRoomFull is returned when a third peer attempts to join an occupied
// room.
var ErrRoomFull = errs.New(errs.ResourceExhausted, "room full")

// ErrTooManyRooms is returned when the manager is already at max_rooms.
var ErrTooManyRooms = errs.New(errs.ResourceExhausted, "too many rooms")

// Manager owns the relay's room table. The whole table, and every room in
// it, is guarded by a single mutex; no I/O is performed while it is held.
type Manager struct {
	mu       sync.Mutex
	rooms    map[RoomID]*Room
	maxRooms int
	now      func() time.Time
}

// NewManager returns an empty room manager bounded by maxRooms (0 means
// unbounded).
func NewManager(maxRooms int) *Manager {
	return &Manager{
		rooms:    make(map[RoomID]*Room),
		maxRooms: maxRooms,
		now:      time.Now,
	}
}

// Join implements the first-caller/second-caller pairing protocol: the
// first caller for a room occupies peer_a, the second occupies peer_b and
// is handed peer_a's channel back so it can learn it is now paired. A
// third caller is rejected with ErrRoomFull.
func (m *Manager) Join(id RoomID, ch PeerChannel) (peerAlreadyPresent bool, otherPeer PeerChannel, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, exists := m.rooms[id]
	if !exists {
		if m.maxRooms > 0 && len(m.rooms) >= m.maxRooms {
			return false, nil, ErrTooManyRooms
		}
		m.rooms[id] = &Room{PeerA: ch, CreatedAt: m.now()}
		return false, nil, nil
	}

	switch {
	case room.PeerA == nil:
		room.PeerA = ch
		return room.PeerB != nil, room.PeerB, nil
	case room.PeerB == nil:
		room.PeerB = ch
		return true, room.PeerA, nil
	default:
		return false, nil, ErrRoomFull
	}
}

// GetPeerSender returns the other peer's channel, if present.
func (m *Manager) GetPeerSender(id RoomID, isPeerA bool) (PeerChannel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[id]
	if !ok {
		return nil, false
	}
	if isPeerA {
		return room.PeerB, room.PeerB != nil
	}
	return room.PeerA, room.PeerA != nil
}

// RemoveRoom tears a room down explicitly.
func (m *Manager) RemoveRoom(id RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
}

// CleanupStale removes every room older than maxAge and returns how many
// were removed.
func (m *Manager) CleanupStale(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, room := range m.rooms {
		if now.Sub(room.CreatedAt) > maxAge {
			delete(m.rooms, id)
			removed++
		}
	}
	return removed
}

// RoomCount reports how many rooms currently exist, for tests and metrics.
func (m *Manager) RoomCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}
