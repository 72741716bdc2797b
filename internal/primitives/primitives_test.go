package primitives

import (
	"bytes"
	"testing"

	"github.com/tallowteam/tallow-go/internal/errs"
)

func TestAESRoundTrip(t *testing.T) {
	var key [AEADKeySize]byte
	var nonce [GCMNonceSize]byte
	copy(key[:], bytes.Repeat([]byte{0x42}, AEADKeySize))
	copy(nonce[:], bytes.Repeat([]byte{0x01}, GCMNonceSize))

	pt := []byte("chunk plaintext")
	aad := []byte("transfer-aad")

	ct, err := AESEncrypt(key, nonce, pt, aad)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := AESDecrypt(key, nonce, ct, aad)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, pt) {
		t.Fatalf("roundtrip mismatch: got %q want %q", got, pt)
	}

	_, badErr := AESDecrypt(key, nonce, ct, []byte("wrong-aad"))
	if badErr == nil {
		t.Fatal("expected failure on aad mismatch")
	}
	if kind, ok := errs.Of(badErr); !ok || kind != errs.CryptoFailure {
		t.Fatalf("expected CryptoFailure kind, got %v (ok=%v)", kind, ok)
	}
}

func TestChaChaRoundTrip(t *testing.T) {
	var key [AEADKeySize]byte
	var nonce [ChaChaNonceSize]byte
	copy(key[:], bytes.Repeat([]byte{0x11}, AEADKeySize))
	copy(nonce[:], bytes.Repeat([]byte{0x02}, ChaChaNonceSize))

	pt := []byte("ratchet message body")
	aad := []byte("header-bytes")

	ct, err := ChaChaEncrypt(key, nonce, pt, aad)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := ChaChaDecrypt(key, nonce, ct, aad)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, pt) {
		t.Fatalf("roundtrip mismatch: got %q want %q", got, pt)
	}
}

func TestX25519DH(t *testing.T) {
	aPriv, aPub, err := GenerateX25519()
	if err != nil {
		t.Fatalf("gen a: %v", err)
	}
	bPriv, bPub, err := GenerateX25519()
	if err != nil {
		t.Fatalf("gen b: %v", err)
	}
	sharedA, err := DH(aPriv, bPub)
	if err != nil {
		t.Fatalf("dh a: %v", err)
	}
	sharedB, err := DH(bPriv, aPub)
	if err != nil {
		t.Fatalf("dh b: %v", err)
	}
	if sharedA != sharedB {
		t.Fatal("shared secrets disagree")
	}
}

func TestEd25519SignVerify(t *testing.T) {
	priv, pub, err := GenerateEd25519()
	if err != nil {
		t.Fatalf("gen: %v", err)
	}
	msg := []byte("manifest bytes")
	sig := Sign(priv, msg)
	if !Verify(pub, msg, sig) {
		t.Fatal("valid signature rejected")
	}
	if Verify(pub, []byte("tampered"), sig) {
		t.Fatal("invalid signature accepted")
	}
}

func TestMLKEMRoundTrip(t *testing.T) {
	ek, dk, err := MLKEMKeygen()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	ct, ss1, err := MLKEMEncaps(ek)
	if err != nil {
		t.Fatalf("encaps: %v", err)
	}
	ss2, err := MLKEMDecaps(dk, ct)
	if err != nil {
		t.Fatalf("decaps: %v", err)
	}
	if !bytes.Equal(ss1, ss2) {
		t.Fatal("shared secrets disagree")
	}
}

func TestArgon2idDeterministic(t *testing.T) {
	salt, err := NewArgon2Salt()
	if err != nil {
		t.Fatalf("salt: %v", err)
	}
	k1, err := Argon2id([]byte("hunter2"), salt)
	if err != nil {
		t.Fatalf("argon2id: %v", err)
	}
	k2, err := Argon2id([]byte("hunter2"), salt)
	if err != nil {
		t.Fatalf("argon2id: %v", err)
	}
	if k1 != k2 {
		t.Fatal("same password+salt produced different keys")
	}
	if _, err := Argon2id([]byte("x"), make([]byte, 4)); err == nil {
		t.Fatal("expected error on short salt")
	}
}

func TestCTEqual(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{1, 2, 3}
	c := []byte{1, 2, 4}
	if !CTEqual(a, b) {
		t.Fatal("equal slices reported unequal")
	}
	if CTEqual(a, c) {
		t.Fatal("unequal slices reported equal")
	}
	if CTEqual(a, []byte{1, 2}) {
		t.Fatal("different-length slices reported equal")
	}
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Zero(b)
	for _, v := range b {
		if v != 0 {
			t.Fatal("Zero did not clear buffer")
		}
	}
}

func TestBlake3Hash(t *testing.T) {
	h1 := Hash([]byte("same input"))
	h2 := Hash([]byte("same input"))
	if h1 != h2 {
		t.Fatal("hash not deterministic")
	}
	h3 := Hash([]byte("different input"))
	if h1 == h3 {
		t.Fatal("distinct inputs hashed equal")
	}
}

func TestBlake3KeyedHashDomainSeparation(t *testing.T) {
	var key [32]byte
	copy(key[:], "tallow.room.v1")
	h1, err := KeyedHashString("tallow.room.v1", []byte("correct horse"))
	if err != nil {
		t.Fatalf("keyed hash: %v", err)
	}
	h2, err := KeyedHash(key, []byte("correct horse"))
	if err != nil {
		t.Fatalf("keyed hash: %v", err)
	}
	if h1 != h2 {
		t.Fatal("KeyedHashString and KeyedHash disagree for the same domain")
	}
}
