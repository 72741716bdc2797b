package session

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/tallowteam/tallow-go/internal/chatsession"
	"github.com/tallowteam/tallow-go/internal/primitives"
	"github.com/tallowteam/tallow-go/internal/ratchet"
	"github.com/tallowteam/tallow-go/internal/transfer"
	"github.com/tallowteam/tallow-go/internal/wire"
)

// pipeChannel connects two in-process Sessions directly, exercising the
// real FileOffer/Chunk/Ack/TransferComplete and ChatText wire traffic
// without a network.
type pipeChannel struct {
	out chan wire.Message
	in  chan wire.Message
}

func newPipePair() (a, b *pipeChannel) {
	c1 := make(chan wire.Message, 4096)
	c2 := make(chan wire.Message, 4096)
	return &pipeChannel{out: c1, in: c2}, &pipeChannel{out: c2, in: c1}
}

func (p *pipeChannel) SendMessage(m wire.Message) error {
	p.out <- m
	return nil
}
func (p *pipeChannel) ReceiveMessage() (wire.Message, error) { return <-p.in, nil }
func (p *pipeChannel) Close() error                          { return nil }
func (p *pipeChannel) Description() string                   { return "pipe" }

func pairedSessions(t *testing.T) (*Session, *Session) {
	t.Helper()
	sessionKey := [32]byte{9, 9, 9}

	a, b := newPipePair()
	rsA, err := ratchet.Init(sessionKey)
	if err != nil {
		t.Fatalf("ratchet init a: %v", err)
	}
	rsB, err := ratchet.Init(sessionKey)
	if err != nil {
		t.Fatalf("ratchet init b: %v", err)
	}

	return &Session{Channel: a, Ratchet: rsA, Chat: chatsession.New(sessionKey, true), Key: sessionKey},
		&Session{Channel: b, Ratchet: rsB, Chat: chatsession.New(sessionKey, false), Key: sessionKey}
}

func TestSendReceiveFileRoundTrip(t *testing.T) {
	sender, receiver := pairedSessions(t)

	content := bytes.Repeat([]byte("hello tallow "), 1000)
	m := transfer.NewManifest(256)
	m.AddFile("greeting.txt", uint64(len(content)), primitives.Hash(content))
	if err := m.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	open := func(relPath string) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(content)), nil
	}

	type sendResult struct{ err error }
	sendDone := make(chan sendResult, 1)
	go func() {
		err := sender.SendFile(context.Background(), m, open, 64)
		sendDone <- sendResult{err}
	}()

	gotManifest, chunks, err := receiver.ReceiveFile(context.Background(), 0)
	if err != nil {
		t.Fatalf("receive file: %v", err)
	}
	sr := <-sendDone
	if sr.err != nil {
		t.Fatalf("send file: %v", sr.err)
	}

	if gotManifest.Files[0].Path != "greeting.txt" {
		t.Fatalf("unexpected manifest path: %q", gotManifest.Files[0].Path)
	}
	var reassembled []byte
	for _, c := range chunks {
		reassembled = append(reassembled, c...)
	}
	if !bytes.Equal(reassembled, content) {
		t.Fatal("reassembled content does not match original")
	}
}

func TestSendReceiveChatRoundTrip(t *testing.T) {
	sender, receiver := pairedSessions(t)

	if err := sender.SendChatText("hello"); err != nil {
		t.Fatalf("send chat: %v", err)
	}
	got, err := receiver.ReceiveChatText()
	if err != nil {
		t.Fatalf("receive chat: %v", err)
	}
	if got != "hello" {
		t.Fatalf("unexpected chat text: %q", got)
	}
}

func TestNewTransferIDAndMessageIDAreDistinct(t *testing.T) {
	a := NewTransferID()
	b := NewTransferID()
	if a == b {
		t.Fatal("expected distinct transfer ids")
	}
	m1 := NewMessageID()
	m2 := NewMessageID()
	if m1 == m2 {
		t.Fatal("expected distinct message ids")
	}
}
