package relay

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/wire"
)

// ForwardChannelSize is the bounded channel size for room forwarding.
const ForwardChannelSize = 64

// streamChannel adapts a quic.Stream's write side into a PeerChannel: a
// bounded channel drained by a dedicated goroutine, so a slow peer applies
// backpressure without blocking the room manager's mutex.
type streamChannel struct {
	frames chan []byte
	stream *quic.Stream
	done   chan struct{}
}

func newStreamChannel(stream *quic.Stream) *streamChannel {
	sc := &streamChannel{
		frames: make(chan []byte, ForwardChannelSize),
		stream: stream,
		done:   make(chan struct{}),
	}
	go sc.pump()
	return sc
}

func (sc *streamChannel) pump() {
	defer close(sc.done)
	for frame := range sc.frames {
		if _, err := sc.stream.Write(frame); err != nil {
			return
		}
	}
}

func (sc *streamChannel) Forward(frame []byte) error {
	select {
	case sc.frames <- frame:
		return nil
	case <-sc.done:
		return errs.New(errs.TransportFailure, "peer channel closed")
	}
}

func (sc *streamChannel) Close() error {
	close(sc.frames)
	return sc.stream.Close()
}

// Server runs the relay's per-connection forwarding loop on top of a room
// Manager. It never parses message payloads beyond the initial RoomJoin;
// thereafter it is a byte pipe.
type Server struct {
	Rooms  *Manager
	Logger *slog.Logger
}

// NewServer returns a Server backed by rooms, logging to logger
// (slog.Default() if nil).
func NewServer(rooms *Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{Rooms: rooms, Logger: logger}
}

// HandleConnection accepts exactly one bidirectional stream from conn, runs
// the RoomJoin handshake, and then forwards frames until either side closes.
func (s *Server) HandleConnection(ctx context.Context, conn *quic.Conn) error {
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		return errs.Wrap(errs.TransportFailure, "accept stream", err)
	}
	defer stream.Close()

	dec := wire.NewDecoder()
	readBuf := make([]byte, 4096)

	readFrame := func() (wire.Message, error) {
		for {
			msg, err := dec.Next()
			if err != nil {
				return nil, err
			}
			if msg != nil {
				return msg, nil
			}
			n, err := stream.Read(readBuf)
			if n > 0 {
				dec.Push(readBuf[:n])
			}
			if err != nil {
				return nil, errs.Wrap(errs.TransportFailure, "read room join", err)
			}
		}
	}

	first, err := readFrame()
	if err != nil {
		return err
	}
	join, ok := first.(wire.RoomJoin)
	if !ok {
		return errs.New(errs.HandshakeFailure, "expected RoomJoin as first message")
	}

	ch := newStreamChannel(stream)
	defer ch.Close()

	peerPresent, other, err := s.Rooms.Join(RoomID(join.RoomID), ch)
	if err != nil {
		return errs.Wrap(errs.ResourceExhausted, "room join", err)
	}
	s.Logger.Info("room join", "room", hex(join.RoomID), "peer_present", peerPresent)

	joined, err := wire.Encode(wire.RoomJoined{PeerPresent: peerPresent})
	if err != nil {
		return errs.Wrap(errs.EncodingFailure, "encode room joined", err)
	}
	if _, err := stream.Write(joined); err != nil {
		return errs.Wrap(errs.TransportFailure, "write room joined", err)
	}

	if peerPresent && other != nil {
		frame, err := wire.Encode(wire.PeerArrived{})
		if err != nil {
			return errs.Wrap(errs.EncodingFailure, "encode peer arrived", err)
		}
		_ = other.Forward(frame)
	}

	return s.pipe(ctx, stream, ch, RoomID(join.RoomID), !peerPresent)
}

// pipe copies frames bidirectionally between the raw stream and the
// paired peer's channel until either direction ends: bytes read from the
// stream go to the peer's channel, and ch (fed by the peer's own pipe)
// writes the peer's bytes back out to the stream.
func (s *Server) pipe(ctx context.Context, stream *quic.Stream, ch *streamChannel, id RoomID, isPeerA bool) error {
	errc := make(chan error, 1)
	go func() {
		buf := make([]byte, 32*1024)
		for {
			n, err := stream.Read(buf)
			if n > 0 {
				if peer, ok := s.Rooms.GetPeerSender(id, isPeerA); ok {
					_ = peer.Forward(append([]byte(nil), buf[:n]...))
				}
			}
			if err != nil {
				if err == io.EOF {
					errc <- nil
				} else {
					errc <- err
				}
				return
			}
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ch.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReapLoop runs CleanupStale on an interval until ctx is done, for the
// relay's periodic idle-room reap.
func (s *Server) ReapLoop(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Rooms.CleanupStale(maxAge); n > 0 {
				s.Logger.Info("reaped stale rooms", "count", n)
			}
		}
	}
}

func hex(b [32]byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 0; i < 8; i++ {
		out[i*2] = digits[b[i]>>4]
		out[i*2+1] = digits[b[i]&0xF]
	}
	return string(out)
}
