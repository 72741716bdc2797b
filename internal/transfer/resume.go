package transfer

import (
	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/primitives"
)

// ResumeState is what a sender persists to survive a disconnect: the
// transfer id and the index of the first un-acked chunk.
type ResumeState struct {
	TransferID [16]byte
	NextIndex  uint64
}

// ResumeOffer is what the sender announces on reconnect.
type ResumeOffer struct {
	TransferID [16]byte
	NextIndex  uint64
}

// ResumeAck is the receiver's answer, naming the index it will actually
// resume from after re-validating its own stored chunk hashes.
type ResumeAck struct {
	TransferID [16]byte
	FromIndex  uint64
}

// ValidateResume re-checks that every previously-received chunk up to
// offer.NextIndex still matches its stored hash, using storedHash to look
// up what the receiver persisted for each index. It returns the index to
// actually resume from: offer.NextIndex on full agreement, or the first
// index where hashes diverge.
func ValidateResume(offer ResumeOffer, storedHash func(index uint64) ([32]byte, bool), computedHash func(index uint64) [32]byte) (ResumeAck, error) {
	if offer.NextIndex == 0 {
		return ResumeAck{TransferID: offer.TransferID, FromIndex: 0}, nil
	}
	for i := uint64(0); i < offer.NextIndex; i++ {
		stored, ok := storedHash(i)
		if !ok {
			return ResumeAck{TransferID: offer.TransferID, FromIndex: i}, nil
		}
		h := computedHash(i)
		if !primitives.CTEqual(stored[:], h[:]) {
			return ResumeAck{TransferID: offer.TransferID, FromIndex: i}, nil
		}
	}
	return ResumeAck{TransferID: offer.TransferID, FromIndex: offer.NextIndex}, nil
}

// ErrNoResumeState is returned by persistence layers when no resume state
// exists for a transfer id.
var ErrNoResumeState = errs.New(errs.NotFound, "no resume state for transfer")
