// Package session composes the key-exchange engine, the Triple Ratchet,
// the transport facade, the chunk transfer engine, and the chat session
// into the end-to-end flow spec.md §2 describes: derive room-id from a
// code phrase, connect, handshake, then exchange files or chat.
package session

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/tallowteam/tallow-go/internal/chatsession"
	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/kex"
	"github.com/tallowteam/tallow-go/internal/logging"
	"github.com/tallowteam/tallow-go/internal/primitives"
	"github.com/tallowteam/tallow-go/internal/ratchet"
	"github.com/tallowteam/tallow-go/internal/transfer"
	"github.com/tallowteam/tallow-go/internal/transport"
	"github.com/tallowteam/tallow-go/internal/wire"
)

// Session is one paired, handshaken peer connection: the transport
// channel plus the ratchet and chat layers built on its session key.
type Session struct {
	Channel transport.PeerChannel
	Ratchet *ratchet.State
	Chat    *chatsession.Session
	Logger  *logging.Logger

	// Key is the raw handshake session key. Chunk transfer is keyed
	// directly by it rather than by the ratchet, per spec.md §4.4.
	Key [32]byte
}

// Establish connects via strategy, runs the hybrid handshake as role, and
// initializes the ratchet and chat layers from the resulting session key.
// When strategy falls through to RelayQUIC and this peer is the first to
// join its room (peer not yet present), Establish waits for the relay's
// PeerArrived push before handshaking, matching spec.md §4.6's rendezvous
// sequencing.
func Establish(ctx context.Context, role kex.Role, derived kex.DerivedSession, strategy transport.Strategy, logger *logging.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	ch, _, err := dialAndAwaitPeer(ctx, strategy)
	if err != nil {
		return nil, err
	}

	key, err := kex.HybridHandshake(role, derived.SharedSeed, ch)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}

	rs, err := ratchet.Init([32]byte(key))
	if err != nil {
		_ = ch.Close()
		return nil, err
	}

	logger = logging.WithSession(logger, hexRoomID(derived.RoomID))
	return &Session{
		Channel: ch,
		Ratchet: rs,
		Chat:    chatsession.New([32]byte(key), role == kex.Initiator),
		Logger:  logger,
		Key:     [32]byte(key),
	}, nil
}

// dialAndAwaitPeer runs strategy's relay path directly (rather than
// through Strategy.Connect, which discards peer_present) so a first-
// arriving peer waits for PeerArrived before the caller starts
// handshaking. Local and proxy paths fall back to Strategy.Connect, which
// has no pairing handshake to wait on.
func dialAndAwaitPeer(ctx context.Context, strategy transport.Strategy) (transport.PeerChannel, bool, error) {
	if strategy.LocalModeEnabled && strategy.DialLocal != nil {
		ch, err := strategy.Connect(ctx)
		return ch, true, err
	}
	if strategy.Proxy != nil {
		ch, err := strategy.Connect(ctx)
		return ch, true, err
	}

	relayCtx, cancel := context.WithTimeout(ctx, transport.RelayConnectTimeout)
	defer cancel()
	ch, peerPresent, err := transport.DialRelayQUIC(relayCtx, strategy.RelayAddr, strategy.TLSConfig, strategy.RoomID, strategy.PasswordHash)
	if err != nil {
		return nil, false, err
	}
	if !peerPresent {
		if err := transport.WaitPeerArrived(ch); err != nil {
			_ = ch.Close()
			return nil, false, err
		}
	}
	return ch, peerPresent, nil
}

// Close zeroizes the ratchet state and the raw session key, then closes the
// transport. The chat layer's own copy of the key is not cleared.
func (s *Session) Close() error {
	s.Ratchet.Zeroize()
	primitives.Zero(s.Key[:])
	return s.Channel.Close()
}

// NewTransferID generates a fresh random transfer identifier.
func NewTransferID() [16]byte {
	return [16]byte(uuid.New())
}

// NewMessageID generates a fresh random chat message identifier.
func NewMessageID() [16]byte {
	return [16]byte(uuid.New())
}

// FileSource supplies one file's content for a send, by its manifest
// relative path.
type FileSource func(relPath string) (io.ReadCloser, error)

// SendFile runs the sender side of spec.md §4.4's chunk transfer over s:
// offer the manifest, wait for acceptance, stream chunks under the
// session key (not the ratchet — chunk AEAD is keyed by the raw session
// key per spec.md §4.4), and announce completion.
func (s *Session) SendFile(ctx context.Context, manifest *transfer.Manifest, open FileSource, window int) error {
	transferID := NewTransferID()

	manifestBytes, err := transfer.EncodeManifest(manifest)
	if err != nil {
		return err
	}
	if err := s.Channel.SendMessage(wire.FileOffer{TransferID: transferID, Manifest: manifestBytes}); err != nil {
		return err
	}

	msg, err := s.Channel.ReceiveMessage()
	if err != nil {
		return err
	}
	switch reply := msg.(type) {
	case wire.FileAccept:
		// proceed
	case wire.FileReject:
		return errs.New(errs.InvalidArgument, "peer rejected transfer: "+reply.Reason)
	default:
		return errs.New(errs.HandshakeFailure, "expected FileAccept or FileReject")
	}

	sender := transfer.NewSenderState(transferID, window)

	var globalIndex uint64
	for _, entry := range manifest.Files {
		rc, err := open(entry.Path)
		if err != nil {
			return errs.Wrap(errs.InvalidArgument, "open source file", err)
		}
		if err := s.streamFile(ctx, sender, rc, manifest.ChunkSize, manifest.Compression, &globalIndex, manifest.TotalChunks); err != nil {
			_ = rc.Close()
			return err
		}
		_ = rc.Close()
	}

	finalHash := sender.FinalHash()
	return s.Channel.SendMessage(wire.TransferComplete{TransferID: transferID, Hash: finalHash})
}

func (s *Session) streamFile(ctx context.Context, sender *transfer.SenderState, r io.Reader, chunkSize uint64, compression string, globalIndex *uint64, totalChunks uint64) error {
	buf := make([]byte, chunkSize)
	for {
		n, readErr := io.ReadFull(r, buf)
		if n > 0 {
			if err := s.sendOneChunk(ctx, sender, buf[:n], compression, *globalIndex, totalChunks); err != nil {
				return err
			}
			*globalIndex++
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			return nil
		}
		if readErr != nil {
			return errs.Wrap(errs.TransportFailure, "read file chunk", readErr)
		}
	}
}

func (s *Session) sendOneChunk(ctx context.Context, sender *transfer.SenderState, plaintext []byte, compression string, index, totalChunks uint64) error {
	for !sender.CanSend() {
		if err := s.drainOneAck(sender); err != nil {
			return err
		}
	}

	toSeal := plaintext
	if compression == transfer.CompressionZstd {
		compressed, err := transfer.CompressChunk(plaintext)
		if err != nil {
			return err
		}
		toSeal = compressed
	}

	ct, err := transfer.SealChunk(s.Key, sender.TransferID, index, toSeal)
	if err != nil {
		return err
	}
	if err := sender.MarkSent(index, plaintext); err != nil {
		return err
	}

	var total *uint64
	if index == totalChunks-1 {
		t := totalChunks - 1
		total = &t
	}
	return s.Channel.SendMessage(wire.Chunk{TransferID: sender.TransferID, Index: index, Total: total, Data: ct})
}

func (s *Session) drainOneAck(sender *transfer.SenderState) error {
	msg, err := s.Channel.ReceiveMessage()
	if err != nil {
		return err
	}
	ack, ok := msg.(wire.Ack)
	if !ok {
		return errs.New(errs.HandshakeFailure, "expected Ack while window full")
	}
	sender.MarkAcked(ack.Index)
	return nil
}

// ReceiveFile runs the receiver side of spec.md §4.4: accept or reject the
// offered manifest, receive and Ack chunks, verify integrity, and hand
// back the decrypted chunks in index order.
func (s *Session) ReceiveFile(ctx context.Context, maxTotalSize uint64) (*transfer.Manifest, [][]byte, error) {
	msg, err := s.Channel.ReceiveMessage()
	if err != nil {
		return nil, nil, err
	}
	offer, ok := msg.(wire.FileOffer)
	if !ok {
		return nil, nil, errs.New(errs.HandshakeFailure, "expected FileOffer")
	}

	manifest, err := transfer.DecodeManifest(offer.Manifest)
	if err != nil {
		return nil, nil, err
	}

	if err := transfer.ValidateForReceipt(manifest, maxTotalSize); err != nil {
		_ = s.Channel.SendMessage(wire.FileReject{TransferID: offer.TransferID, Reason: err.Error()})
		return nil, nil, err
	}
	if err := s.Channel.SendMessage(wire.FileAccept{TransferID: offer.TransferID}); err != nil {
		return nil, nil, err
	}

	receiver := transfer.NewReceiverState(offer.TransferID)
	for {
		msg, err := s.Channel.ReceiveMessage()
		if err != nil {
			return nil, nil, err
		}
		switch m := msg.(type) {
		case wire.Chunk:
			pt, err := transfer.OpenChunk(s.Key, offer.TransferID, m.Index, m.Data)
			if err != nil {
				return nil, nil, err
			}
			if manifest.Compression == transfer.CompressionZstd {
				pt, err = transfer.DecompressChunk(pt)
				if err != nil {
					return nil, nil, err
				}
			}
			receiver.AcceptChunk(m.Index, pt, m.Total)
			if err := s.Channel.SendMessage(wire.Ack{TransferID: offer.TransferID, Index: m.Index}); err != nil {
				return nil, nil, err
			}
		case wire.TransferComplete:
			ordered, computed, ok := receiver.Complete()
			if !ok {
				return nil, nil, errs.New(errs.IntegrityFailure, "transfer completed before all chunks received")
			}
			if err := transfer.VerifyIntegrity(computed, m.Hash); err != nil {
				return nil, nil, err
			}
			return manifest, ordered, nil
		default:
			return nil, nil, errs.New(errs.HandshakeFailure, "unexpected message during transfer")
		}
	}
}

// SendChatText encrypts and sends text as a ChatText message.
func (s *Session) SendChatText(text string) error {
	ct, counter, err := s.Chat.EncryptMessage(text)
	if err != nil {
		return err
	}
	var nonce [12]byte
	var counterBytes [8]byte
	for i := 0; i < 8; i++ {
		counterBytes[i] = byte(counter >> uint(56-8*i))
	}
	copy(nonce[4:], counterBytes[:])
	return s.Channel.SendMessage(wire.ChatText{
		MessageID:  NewMessageID(),
		Sequence:   counter,
		Ciphertext: ct,
		Nonce:      nonce,
	})
}

// ReceiveChatText blocks for the next ChatText message and returns its
// sanitized plaintext.
func (s *Session) ReceiveChatText() (string, error) {
	msg, err := s.Channel.ReceiveMessage()
	if err != nil {
		return "", err
	}
	ct, ok := msg.(wire.ChatText)
	if !ok {
		return "", errs.New(errs.HandshakeFailure, "expected ChatText")
	}
	return s.Chat.DecryptMessage(ct.Ciphertext, ct.Sequence)
}

func hexRoomID(id kex.RoomID) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 0; i < 8; i++ {
		out[i*2] = digits[id[i]>>4]
		out[i*2+1] = digits[id[i]&0xF]
	}
	return string(out)
}
