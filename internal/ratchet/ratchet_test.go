package ratchet

import "testing"

func sharedSecret(b byte) [32]byte {
	var s [32]byte
	for i := range s {
		s[i] = b
	}
	return s
}

func TestEncryptDecryptInOrder(t *testing.T) {
	secret := sharedSecret(0x2A)
	alice, err := Init(secret)
	if err != nil {
		t.Fatalf("init alice: %v", err)
	}
	bob, err := Init(secret)
	if err != nil {
		t.Fatalf("init bob: %v", err)
	}
	bob.SetPeerDHPub(alice.DHPub)

	for i, msg := range []string{"m0", "m1", "m2"} {
		header, ct, err := alice.Encrypt([]byte(msg))
		if err != nil {
			t.Fatalf("encrypt %d: %v", i, err)
		}
		pt, err := bob.DecryptAt(header, ct)
		if err != nil {
			t.Fatalf("decrypt %d: %v", i, err)
		}
		if string(pt) != msg {
			t.Fatalf("message %d mismatch: got %q want %q", i, pt, msg)
		}
	}
}

func TestOutOfOrderDecryptUsesSkippedCache(t *testing.T) {
	secret := sharedSecret(0x2A)
	alice, err := Init(secret)
	if err != nil {
		t.Fatalf("init alice: %v", err)
	}
	bob, err := Init(secret)
	if err != nil {
		t.Fatalf("init bob: %v", err)
	}
	bob.SetPeerDHPub(alice.DHPub)

	msgs := []string{"m0", "m1", "m2", "m3"}
	headers := make([]Header, len(msgs))
	cts := make([][]byte, len(msgs))
	for i, m := range msgs {
		h, ct, err := alice.Encrypt([]byte(m))
		if err != nil {
			t.Fatalf("encrypt %d: %v", i, err)
		}
		headers[i] = h
		cts[i] = ct
	}

	order := []int{0, 2, 1, 3}
	for _, i := range order {
		pt, err := bob.DecryptAt(headers[i], cts[i])
		if err != nil {
			t.Fatalf("decrypt index %d: %v", i, err)
		}
		if string(pt) != msgs[i] {
			t.Fatalf("index %d mismatch: got %q want %q", i, pt, msgs[i])
		}
	}
}

func TestRatchetStepRederivesChains(t *testing.T) {
	secret := sharedSecret(0x11)
	alice, err := Init(secret)
	if err != nil {
		t.Fatalf("init alice: %v", err)
	}
	bob, err := Init(secret)
	if err != nil {
		t.Fatalf("init bob: %v", err)
	}
	bob.SetPeerDHPub(alice.DHPub)

	prevRoot := bob.RootKey
	if err := bob.RatchetStep(alice.DHPub); err != nil {
		t.Fatalf("ratchet step: %v", err)
	}
	if bob.RootKey == prevRoot {
		t.Fatal("root key did not change after ratchet step")
	}
	if bob.SendCounter != 0 || bob.RecvCounter != 0 {
		t.Fatal("counters not reset after ratchet step")
	}
}

func TestMixPQSecretChangesRootKey(t *testing.T) {
	secret := sharedSecret(0x33)
	alice, err := Init(secret)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	before := alice.RootKey
	var pq [32]byte
	for i := range pq {
		pq[i] = 0x77
	}
	if err := alice.MixPQSecret(pq); err != nil {
		t.Fatalf("mix pq: %v", err)
	}
	if alice.RootKey == before {
		t.Fatal("root key unchanged after pq mix")
	}
}

func TestPQOverlayRoundTrip(t *testing.T) {
	secret := sharedSecret(0x55)
	alice, err := Init(secret) // responder: offers a PQ public
	if err != nil {
		t.Fatalf("init alice: %v", err)
	}
	bob, err := Init(secret) // initiator: encapsulates against it
	if err != nil {
		t.Fatalf("init bob: %v", err)
	}

	ek, err := alice.OfferPQPublic()
	if err != nil {
		t.Fatalf("offer pq public: %v", err)
	}
	ct, err := bob.EncapsulateOverlay(ek)
	if err != nil {
		t.Fatalf("encapsulate overlay: %v", err)
	}
	aliceRootBefore := alice.RootKey
	if err := alice.DecapsulateOverlay(ct); err != nil {
		t.Fatalf("decapsulate overlay: %v", err)
	}
	if alice.RootKey == aliceRootBefore {
		t.Fatal("root key unchanged after overlay decapsulation")
	}
	if alice.RootKey != bob.RootKey {
		t.Fatal("overlay mix diverged between initiator and responder")
	}
}

func TestDueForPQOverlay(t *testing.T) {
	secret := sharedSecret(0x01)
	s, err := Init(secret)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	s.PQInterval = 2
	s.EpochN = 0
	if s.DueForPQOverlay() {
		t.Fatal("epoch 0 should never be due")
	}
	s.EpochN = 2
	if !s.DueForPQOverlay() {
		t.Fatal("epoch 2 with interval 2 should be due")
	}
	s.EpochN = 3
	if s.DueForPQOverlay() {
		t.Fatal("epoch 3 with interval 2 should not be due")
	}
}
