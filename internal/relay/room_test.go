package relay

import (
	"testing"
	"time"
)

type fakeChannel struct {
	forwarded [][]byte
	closed    bool
}

func (f *fakeChannel) Forward(frame []byte) error {
	f.forwarded = append(f.forwarded, frame)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestJoinPairsTwoPeers(t *testing.T) {
	m := NewManager(0)
	var room RoomID
	room[0] = 1

	a := &fakeChannel{}
	present, other, err := m.Join(room, a)
	if err != nil {
		t.Fatalf("first join: %v", err)
	}
	if present {
		t.Fatal("first joiner should not see a peer present")
	}
	if other != nil {
		t.Fatal("first joiner should get no channel back")
	}

	b := &fakeChannel{}
	present, other, err = m.Join(room, b)
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if !present {
		t.Fatal("second joiner should see a peer present")
	}
	if other != a {
		t.Fatal("second joiner should receive peer_a's channel")
	}
}

func TestThirdJoinRejected(t *testing.T) {
	m := NewManager(0)
	var room RoomID
	m.Join(room, &fakeChannel{})
	m.Join(room, &fakeChannel{})
	_, _, err := m.Join(room, &fakeChannel{})
	if err != ErrRoomFull {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestTooManyRooms(t *testing.T) {
	m := NewManager(1)
	var roomA, roomB RoomID
	roomA[0] = 1
	roomB[0] = 2

	if _, _, err := m.Join(roomA, &fakeChannel{}); err != nil {
		t.Fatalf("first room join: %v", err)
	}
	if _, _, err := m.Join(roomB, &fakeChannel{}); err != ErrTooManyRooms {
		t.Fatalf("expected ErrTooManyRooms, got %v", err)
	}
}

func TestRemoveRoom(t *testing.T) {
	m := NewManager(0)
	var room RoomID
	m.Join(room, &fakeChannel{})
	m.RemoveRoom(room)
	if m.RoomCount() != 0 {
		t.Fatal("room not removed")
	}
}

func TestCleanupStale(t *testing.T) {
	m := NewManager(0)
	fakeNow := time.Now()
	m.now = func() time.Time { return fakeNow }

	var room RoomID
	m.Join(room, &fakeChannel{})

	removed := m.CleanupStale(time.Hour)
	if removed != 0 {
		t.Fatal("fresh room reaped too early")
	}

	m.now = func() time.Time { return fakeNow.Add(2 * time.Hour) }
	removed = m.CleanupStale(time.Hour)
	if removed != 1 {
		t.Fatalf("expected 1 room reaped, got %d", removed)
	}
}
