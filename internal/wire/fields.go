package wire

import (
	"bytes"
	"encoding/binary"

	"github.com/tallowteam/tallow-go/internal/errs"
)

func writeBytes(w *bytes.Buffer, b []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	w.Write(lenBuf[:])
	w.Write(b)
}

func writeString(w *bytes.Buffer, s string) {
	writeBytes(w, []byte(s))
}

func writeUint64(w *bytes.Buffer, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	w.Write(buf[:])
}

func writeBool(w *bytes.Buffer, b bool) {
	if b {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

func writeOptionalFixed32(w *bytes.Buffer, v *[32]byte) {
	if v == nil {
		w.WriteByte(0)
		return
	}
	w.WriteByte(1)
	w.Write(v[:])
}

func writeOptionalUint64(w *bytes.Buffer, v *uint64) {
	if v == nil {
		w.WriteByte(0)
		return
	}
	w.WriteByte(1)
	writeUint64(w, *v)
}

// reader walks a decoded frame's payload sequentially, recording the first
// error encountered so callers don't need to check after every field.
type reader struct {
	b   []byte
	err error
}

func (r *reader) need(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.b) < n {
		r.err = errs.New(errs.DecodingFailure, "frame payload truncated")
		return nil
	}
	out := r.b[:n]
	r.b = r.b[n:]
	return out
}

func (r *reader) fixed(dst []byte) {
	b := r.need(len(dst))
	if b != nil {
		copy(dst, b)
	}
}

func (r *reader) bytes() []byte {
	lb := r.need(4)
	if lb == nil {
		return nil
	}
	n := binary.BigEndian.Uint32(lb)
	if int64(n) > MaxFrameSize {
		r.err = errs.New(errs.DecodingFailure, "field length exceeds max frame size")
		return nil
	}
	b := r.need(int(n))
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (r *reader) str() string {
	return string(r.bytes())
}

func (r *reader) uint64() uint64 {
	b := r.need(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *reader) boolean() bool {
	b := r.need(1)
	if b == nil {
		return false
	}
	return b[0] != 0
}

func (r *reader) optionalFixed32() *[32]byte {
	present := r.need(1)
	if present == nil || present[0] == 0 {
		return nil
	}
	var out [32]byte
	r.fixed(out[:])
	if r.err != nil {
		return nil
	}
	return &out
}

func (r *reader) optionalUint64() *uint64 {
	present := r.need(1)
	if present == nil || present[0] == 0 {
		return nil
	}
	v := r.uint64()
	if r.err != nil {
		return nil
	}
	return &v
}
