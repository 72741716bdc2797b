// Package wire implements tallow's length-prefixed, tagged-union message
// framing: the exhaustive message set the core consumes, and a codec that
// encodes/decodes them to the 4-byte-big-endian-length-prefixed wire
// format described by the protocol.
package wire

// Tag identifies a message variant on the wire. Tag values and field order
// must stay stable across releases.
type Tag byte

const (
	TagRoomJoin Tag = iota + 1
	TagRoomJoined
	TagPeerArrived
	TagKexInit
	TagKexResponse
	TagRatchetMessage
	TagFileOffer
	TagFileAccept
	TagFileReject
	TagChunk
	TagAck
	TagTransferComplete
	TagChatText
	TagTypingIndicator
	TagPing
	TagPong
	TagRoomLeave
)

// Message is implemented by every wire variant.
type Message interface {
	Tag() Tag
}

// RoomJoin is the first message sent on a new relay stream.
type RoomJoin struct {
	RoomID       [32]byte
	PasswordHash *[32]byte // optional
}

func (RoomJoin) Tag() Tag { return TagRoomJoin }

// RoomJoined answers RoomJoin.
type RoomJoined struct {
	PeerPresent bool
}

func (RoomJoined) Tag() Tag { return TagRoomJoined }

// PeerArrived is pushed to the first peer when the second one joins.
type PeerArrived struct{}

func (PeerArrived) Tag() Tag { return TagPeerArrived }

// KexInit is the initiator's hybrid-handshake opening message.
type KexInit struct {
	EKMLKEM    []byte
	PubX25519  [32]byte
}

func (KexInit) Tag() Tag { return TagKexInit }

// KexResponse is the responder's reply.
type KexResponse struct {
	CTMLKEM   []byte
	PubX25519 [32]byte
}

func (KexResponse) Tag() Tag { return TagKexResponse }

// RatchetMessage carries one Triple-Ratchet-encrypted payload.
type RatchetMessage struct {
	Header     []byte
	Ciphertext []byte
}

func (RatchetMessage) Tag() Tag { return TagRatchetMessage }

// FileOffer announces a pending transfer.
type FileOffer struct {
	TransferID [16]byte
	Manifest   []byte
}

func (FileOffer) Tag() Tag { return TagFileOffer }

// FileAccept accepts a FileOffer.
type FileAccept struct {
	TransferID [16]byte
}

func (FileAccept) Tag() Tag { return TagFileAccept }

// FileReject rejects a FileOffer with a user-facing reason.
type FileReject struct {
	TransferID [16]byte
	Reason     string
}

func (FileReject) Tag() Tag { return TagFileReject }

// Chunk carries one ciphertext chunk of a transfer.
type Chunk struct {
	TransferID [16]byte
	Index      uint64
	Total      *uint64 // optional, set on the final chunk
	Data       []byte
}

func (Chunk) Tag() Tag { return TagChunk }

// Ack acknowledges receipt of one chunk.
type Ack struct {
	TransferID [16]byte
	Index      uint64
}

func (Ack) Tag() Tag { return TagAck }

// TransferComplete closes out a transfer with the full-stream hash and an
// optional Merkle root.
type TransferComplete struct {
	TransferID [16]byte
	Hash       [32]byte
	MerkleRoot *[32]byte
}

func (TransferComplete) Tag() Tag { return TagTransferComplete }

// ChatText carries one ratchet-encrypted or raw-session-keyed chat message.
type ChatText struct {
	MessageID  [16]byte
	Sequence   uint64
	Ciphertext []byte
	Nonce      [12]byte
}

func (ChatText) Tag() Tag { return TagChatText }

// TypingIndicator signals typing state.
type TypingIndicator struct {
	Typing bool
}

func (TypingIndicator) Tag() Tag { return TagTypingIndicator }

// Ping is a liveness probe.
type Ping struct{}

func (Ping) Tag() Tag { return TagPing }

// Pong answers Ping.
type Pong struct{}

func (Pong) Tag() Tag { return TagPong }

// RoomLeave signals a clean disconnect.
type RoomLeave struct{}

func (RoomLeave) Tag() Tag { return TagRoomLeave }
