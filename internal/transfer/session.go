package transfer

import (
	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/primitives"
)

// DefaultWindow is the default count of un-acked chunks the sender allows
// in flight before applying backpressure.
const DefaultWindow = 64

// SenderState tracks one outbound transfer's sliding window and the
// rolling hash needed to resume or to report TransferComplete.
type SenderState struct {
	TransferID [16]byte
	Window     int
	inFlight   map[uint64]struct{}
	nextIndex  uint64
	hasher     rollingHasher
	totalSent  uint64
}

// NewSenderState starts a fresh sender-side transfer state. window falls
// back to DefaultWindow when zero.
func NewSenderState(transferID [16]byte, window int) *SenderState {
	if window <= 0 {
		window = DefaultWindow
	}
	return &SenderState{
		TransferID: transferID,
		Window:     window,
		inFlight:   make(map[uint64]struct{}),
	}
}

// CanSend reports whether the window has room for another in-flight chunk.
func (s *SenderState) CanSend() bool {
	return len(s.inFlight) < s.Window
}

// MarkSent records index as sent and awaiting acknowledgement, folding its
// plaintext into the rolling full-stream hash.
func (s *SenderState) MarkSent(index uint64, plaintext []byte) error {
	if !s.CanSend() {
		return errs.New(errs.ResourceExhausted, "sender window full")
	}
	s.inFlight[index] = struct{}{}
	s.hasher.write(plaintext)
	s.totalSent++
	if index >= s.nextIndex {
		s.nextIndex = index + 1
	}
	return nil
}

// MarkAcked removes index from the in-flight set.
func (s *SenderState) MarkAcked(index uint64) {
	delete(s.inFlight, index)
}

// FirstUnacked returns the lowest index still awaiting an Ack, used to
// persist resume state; ok is false when nothing is outstanding.
func (s *SenderState) FirstUnacked() (index uint64, ok bool) {
	found := false
	var min uint64
	for idx := range s.inFlight {
		if !found || idx < min {
			min = idx
			found = true
		}
	}
	return min, found
}

// FinalHash returns the BLAKE3 hash of every plaintext chunk streamed so
// far, for TransferComplete.
func (s *SenderState) FinalHash() [32]byte {
	return s.hasher.sum()
}

// ReceiverState tracks one inbound transfer's integrity rolling hash and
// the set of chunk indices already written, so repeated indices are
// deduplicated per spec.md §5 ordering guarantees.
type ReceiverState struct {
	TransferID [16]byte
	received   map[uint64][]byte
	hasher     rollingHasher
	total      *uint64
}

// NewReceiverState starts a fresh receiver-side transfer state.
func NewReceiverState(transferID [16]byte) *ReceiverState {
	return &ReceiverState{TransferID: transferID, received: make(map[uint64][]byte)}
}

// AcceptChunk records a newly-decrypted chunk. Repeated indices are
// ignored (idempotent), matching the "deduplicate on repeated index"
// ordering guarantee.
func (r *ReceiverState) AcceptChunk(index uint64, plaintext []byte, total *uint64) {
	if _, dup := r.received[index]; dup {
		return
	}
	r.received[index] = plaintext
	if total != nil {
		r.total = total
	}
}

// Complete reports whether every chunk up to the declared total has been
// received, and if so returns them in order plus the rolling hash to
// compare against the announced TransferComplete.Hash.
func (r *ReceiverState) Complete() (ordered [][]byte, hash [32]byte, ok bool) {
	if r.total == nil {
		return nil, [32]byte{}, false
	}
	n := *r.total
	ordered = make([][]byte, 0, n+1)
	var h rollingHasher
	for i := uint64(0); i <= n; i++ {
		chunk, present := r.received[i]
		if !present {
			return nil, [32]byte{}, false
		}
		ordered = append(ordered, chunk)
		h.write(chunk)
	}
	return ordered, h.sum(), true
}

// VerifyIntegrity compares a computed hash against the announced one in
// constant time, returning IntegrityFailure on mismatch.
func VerifyIntegrity(computed, announced [32]byte) error {
	if !primitives.CTEqual(computed[:], announced[:]) {
		return errs.New(errs.IntegrityFailure, "transfer hash mismatch")
	}
	return nil
}

// rollingHasher accumulates a BLAKE3 hash over successive chunk writes.
type rollingHasher struct {
	h *primitives.StreamHasher
}

func (h *rollingHasher) write(b []byte) {
	if h.h == nil {
		h.h = primitives.NewStreamHasher()
	}
	h.h.Write(b)
}

func (h *rollingHasher) sum() [32]byte {
	if h.h == nil {
		return primitives.Hash(nil)
	}
	return h.h.Sum()
}
