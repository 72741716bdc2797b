package wire

import (
	"bytes"
	"testing"

	"github.com/tallowteam/tallow-go/internal/errs"
)

func roundTrip(t *testing.T, msg Message) Message {
	t.Helper()
	frame, err := Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := NewDecoder()
	dec.Push(frame)
	got, err := dec.Next()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got == nil {
		t.Fatal("decode returned no message for a complete frame")
	}
	return got
}

func TestRoomJoinRoundTrip(t *testing.T) {
	var roomID [32]byte
	copy(roomID[:], bytes.Repeat([]byte{0x9}, 32))
	msg := RoomJoin{RoomID: roomID}
	got := roundTrip(t, msg).(RoomJoin)
	if got.RoomID != roomID {
		t.Fatal("room id mismatch")
	}
	if got.PasswordHash != nil {
		t.Fatal("expected nil password hash")
	}

	var hash [32]byte
	copy(hash[:], bytes.Repeat([]byte{0x7}, 32))
	msg2 := RoomJoin{RoomID: roomID, PasswordHash: &hash}
	got2 := roundTrip(t, msg2).(RoomJoin)
	if got2.PasswordHash == nil || *got2.PasswordHash != hash {
		t.Fatal("password hash mismatch")
	}
}

func TestChunkRoundTrip(t *testing.T) {
	var tid [16]byte
	copy(tid[:], bytes.Repeat([]byte{0x3}, 16))
	total := uint64(42)
	msg := Chunk{TransferID: tid, Index: 7, Total: &total, Data: []byte("ciphertext-bytes")}
	got := roundTrip(t, msg).(Chunk)
	if got.Index != 7 || got.Total == nil || *got.Total != 42 {
		t.Fatal("chunk metadata mismatch")
	}
	if !bytes.Equal(got.Data, msg.Data) {
		t.Fatal("chunk data mismatch")
	}
}

func TestPingPongEmptyVariants(t *testing.T) {
	if _, ok := roundTrip(t, Ping{}).(Ping); !ok {
		t.Fatal("expected Ping")
	}
	if _, ok := roundTrip(t, Pong{}).(Pong); !ok {
		t.Fatal("expected Pong")
	}
	if _, ok := roundTrip(t, PeerArrived{}).(PeerArrived); !ok {
		t.Fatal("expected PeerArrived")
	}
}

func TestDecoderNeedsMoreBytes(t *testing.T) {
	frame, err := Encode(Ping{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := NewDecoder()
	dec.Push(frame[:2])
	msg, err := dec.Next()
	if err != nil {
		t.Fatalf("unexpected error on partial frame: %v", err)
	}
	if msg != nil {
		t.Fatal("expected nil message on partial frame")
	}
	dec.Push(frame[2:])
	msg, err = dec.Next()
	if err != nil {
		t.Fatalf("decode after completing frame: %v", err)
	}
	if _, ok := msg.(Ping); !ok {
		t.Fatal("expected Ping after buffering rest of frame")
	}
}

func TestDecoderRejectsOversizedLength(t *testing.T) {
	var lenPrefix [4]byte
	lenPrefix[0] = 0xFF
	dec := NewDecoder()
	dec.Push(lenPrefix[:])
	_, err := dec.Next()
	if err == nil {
		t.Fatal("expected DecodingFailure on oversized declared length")
	}
	if kind, ok := errs.Of(err); !ok || kind != errs.DecodingFailure {
		t.Fatalf("expected DecodingFailure kind, got %v", kind)
	}
}

func TestTwoFramesInOneBuffer(t *testing.T) {
	f1, _ := Encode(Ping{})
	f2, _ := Encode(Pong{})
	dec := NewDecoder()
	dec.Push(f1)
	dec.Push(f2)

	m1, err := dec.Next()
	if err != nil {
		t.Fatalf("first decode: %v", err)
	}
	if _, ok := m1.(Ping); !ok {
		t.Fatal("expected Ping first")
	}
	m2, err := dec.Next()
	if err != nil {
		t.Fatalf("second decode: %v", err)
	}
	if _, ok := m2.(Pong); !ok {
		t.Fatal("expected Pong second")
	}
}
