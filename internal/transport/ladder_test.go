package transport

import (
	"context"
	"testing"

	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/wire"
)

type fakeChannel struct{ desc string }

func (f *fakeChannel) SendMessage(wire.Message) error          { return nil }
func (f *fakeChannel) ReceiveMessage() (wire.Message, error)   { return wire.Pong{}, nil }
func (f *fakeChannel) Close() error                            { return nil }
func (f *fakeChannel) Description() string                     { return f.desc }

func TestStrategyPrefersLocalWhenEnabled(t *testing.T) {
	called := false
	s := Strategy{
		LocalModeEnabled: true,
		DialLocal: func(ctx context.Context) (PeerChannel, error) {
			called = true
			return &fakeChannel{desc: "local"}, nil
		},
	}
	ch, err := s.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !called {
		t.Fatal("expected DialLocal to be invoked")
	}
	if ch.Description() != "local" {
		t.Fatalf("expected local channel, got %q", ch.Description())
	}
}

func TestStrategyRequiresProxyTarget(t *testing.T) {
	s := Strategy{Proxy: &ProxyConfig{Socks5Addr: "127.0.0.1:9050"}}
	_, err := s.Connect(context.Background())
	if err == nil {
		t.Fatal("expected error for missing proxy target")
	}
	if kind, ok := errs.Of(err); !ok || kind != errs.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", kind)
	}
}
