package wire

import (
	"bytes"
	"encoding/binary"

	"github.com/tallowteam/tallow-go/internal/errs"
)

// MaxFrameSize is the hard cap on a single frame's payload, enforced before
// any allocation: a declared length beyond this is a fatal DecodingFailure.
const MaxFrameSize = 16 * 1024 * 1024

// LengthPrefixSize is the size of the big-endian frame length header.
const LengthPrefixSize = 4

// Encode serializes msg into a complete wire frame: the 4-byte big-endian
// length prefix followed by the tagged-union payload.
func Encode(msg Message) ([]byte, error) {
	var body bytes.Buffer
	body.WriteByte(byte(msg.Tag()))

	if err := encodeBody(&body, msg); err != nil {
		return nil, err
	}

	if body.Len() > MaxFrameSize {
		return nil, errs.New(errs.EncodingFailure, "frame exceeds max size")
	}

	out := make([]byte, LengthPrefixSize+body.Len())
	binary.BigEndian.PutUint32(out, uint32(body.Len()))
	copy(out[LengthPrefixSize:], body.Bytes())
	return out, nil
}

// Decoder incrementally consumes bytes fed via Push and yields complete
// messages via Next, matching the Ok(Some)/Ok(None)/Err(DecodingFailure)
// contract: Next returns (msg, nil) on a complete frame, (nil, nil) when
// more bytes are needed, and (nil, err) on a malformed length or payload.
type Decoder struct {
	buf bytes.Buffer
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Push appends newly-read bytes to the decoder's internal buffer.
func (d *Decoder) Push(b []byte) {
	d.buf.Write(b)
}

// Next attempts to decode exactly one frame from the buffered bytes.
func (d *Decoder) Next() (Message, error) {
	avail := d.buf.Bytes()
	if len(avail) < LengthPrefixSize {
		return nil, nil
	}
	declared := binary.BigEndian.Uint32(avail[:LengthPrefixSize])
	if declared > MaxFrameSize {
		return nil, errs.New(errs.DecodingFailure, "declared frame length exceeds max size")
	}
	total := LengthPrefixSize + int(declared)
	if len(avail) < total {
		return nil, nil
	}

	payload := avail[LengthPrefixSize:total]
	msg, err := decodeBody(payload)
	if err != nil {
		return nil, err
	}

	d.buf.Next(total)
	return msg, nil
}

func encodeBody(w *bytes.Buffer, msg Message) error {
	switch m := msg.(type) {
	case RoomJoin:
		w.Write(m.RoomID[:])
		writeOptionalFixed32(w, m.PasswordHash)
	case RoomJoined:
		writeBool(w, m.PeerPresent)
	case PeerArrived:
		// no fields
	case KexInit:
		writeBytes(w, m.EKMLKEM)
		w.Write(m.PubX25519[:])
	case KexResponse:
		writeBytes(w, m.CTMLKEM)
		w.Write(m.PubX25519[:])
	case RatchetMessage:
		writeBytes(w, m.Header)
		writeBytes(w, m.Ciphertext)
	case FileOffer:
		w.Write(m.TransferID[:])
		writeBytes(w, m.Manifest)
	case FileAccept:
		w.Write(m.TransferID[:])
	case FileReject:
		w.Write(m.TransferID[:])
		writeString(w, m.Reason)
	case Chunk:
		w.Write(m.TransferID[:])
		writeUint64(w, m.Index)
		writeOptionalUint64(w, m.Total)
		writeBytes(w, m.Data)
	case Ack:
		w.Write(m.TransferID[:])
		writeUint64(w, m.Index)
	case TransferComplete:
		w.Write(m.TransferID[:])
		w.Write(m.Hash[:])
		writeOptionalFixed32(w, m.MerkleRoot)
	case ChatText:
		w.Write(m.MessageID[:])
		writeUint64(w, m.Sequence)
		writeBytes(w, m.Ciphertext)
		w.Write(m.Nonce[:])
	case TypingIndicator:
		writeBool(w, m.Typing)
	case Ping:
	case Pong:
	case RoomLeave:
	default:
		return errs.New(errs.EncodingFailure, "unknown message variant")
	}
	return nil
}

func decodeBody(payload []byte) (Message, error) {
	if len(payload) < 1 {
		return nil, errs.New(errs.DecodingFailure, "empty frame")
	}
	tag := Tag(payload[0])
	r := &reader{b: payload[1:]}

	var msg Message
	switch tag {
	case TagRoomJoin:
		var m RoomJoin
		r.fixed(m.RoomID[:])
		m.PasswordHash = r.optionalFixed32()
		msg = m
	case TagRoomJoined:
		var m RoomJoined
		m.PeerPresent = r.boolean()
		msg = m
	case TagPeerArrived:
		msg = PeerArrived{}
	case TagKexInit:
		var m KexInit
		m.EKMLKEM = r.bytes()
		r.fixed(m.PubX25519[:])
		msg = m
	case TagKexResponse:
		var m KexResponse
		m.CTMLKEM = r.bytes()
		r.fixed(m.PubX25519[:])
		msg = m
	case TagRatchetMessage:
		var m RatchetMessage
		m.Header = r.bytes()
		m.Ciphertext = r.bytes()
		msg = m
	case TagFileOffer:
		var m FileOffer
		r.fixed(m.TransferID[:])
		m.Manifest = r.bytes()
		msg = m
	case TagFileAccept:
		var m FileAccept
		r.fixed(m.TransferID[:])
		msg = m
	case TagFileReject:
		var m FileReject
		r.fixed(m.TransferID[:])
		m.Reason = r.str()
		msg = m
	case TagChunk:
		var m Chunk
		r.fixed(m.TransferID[:])
		m.Index = r.uint64()
		m.Total = r.optionalUint64()
		m.Data = r.bytes()
		msg = m
	case TagAck:
		var m Ack
		r.fixed(m.TransferID[:])
		m.Index = r.uint64()
		msg = m
	case TagTransferComplete:
		var m TransferComplete
		r.fixed(m.TransferID[:])
		r.fixed(m.Hash[:])
		m.MerkleRoot = r.optionalFixed32()
		msg = m
	case TagChatText:
		var m ChatText
		r.fixed(m.MessageID[:])
		m.Sequence = r.uint64()
		m.Ciphertext = r.bytes()
		r.fixed(m.Nonce[:])
		msg = m
	case TagTypingIndicator:
		var m TypingIndicator
		m.Typing = r.boolean()
		msg = m
	case TagPing:
		msg = Ping{}
	case TagPong:
		msg = Pong{}
	case TagRoomLeave:
		msg = RoomLeave{}
	default:
		return nil, errs.New(errs.DecodingFailure, "unknown message tag")
	}

	if r.err != nil {
		return nil, r.err
	}
	return msg, nil
}
