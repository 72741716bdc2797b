package transfer

import (
	"bytes"
	"testing"

	"github.com/tallowteam/tallow-go/internal/primitives"
)

func TestManifestAddFileChunkCount(t *testing.T) {
	m := NewManifest(64 * 1024)
	m.AddFile("big.bin", 200_000, [32]byte{})
	if m.Files[0].ChunkCount != 4 {
		t.Fatalf("expected 4 chunks, got %d", m.Files[0].ChunkCount)
	}
	if m.TotalSize != 200_000 {
		t.Fatalf("unexpected total size %d", m.TotalSize)
	}
}

func TestSanitizePathsTraversal(t *testing.T) {
	m := NewManifest(DefaultChunkSize)
	m.AddFile("../../../etc/passwd", 10, [32]byte{})
	m.AddFile("/etc/passwd", 10, [32]byte{})
	m.AddFile("..", 10, [32]byte{})
	m.SanitizePaths()

	if bytes.Contains([]byte(m.Files[0].Path), []byte("..")) {
		t.Fatalf("traversal not stripped: %q", m.Files[0].Path)
	}
	if m.Files[1].Path != "etc/passwd" {
		t.Fatalf("absolute path not sanitized: %q", m.Files[1].Path)
	}
	if m.Files[2].Path != "unnamed" {
		t.Fatalf("empty-result path did not fall back to unnamed: %q", m.Files[2].Path)
	}
}

func TestManifestFinalizeAndVerifySignature(t *testing.T) {
	m := NewManifest(DefaultChunkSize)
	m.AddFile("a.txt", 100, [32]byte{1})

	priv, pub, err := primitives.GenerateEd25519()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	if err := m.Finalize(&priv); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if m.ManifestHash == nil {
		t.Fatal("expected manifest hash to be set")
	}
	if !m.VerifySignature(pub) {
		t.Fatal("valid signature rejected")
	}

	_, otherPub, _ := primitives.GenerateEd25519()
	if m.VerifySignature(otherPub) {
		t.Fatal("signature verified against the wrong key")
	}
}

func TestManifestFinalizeWithoutIdentitySkipsSignature(t *testing.T) {
	m := NewManifest(DefaultChunkSize)
	m.AddFile("a.txt", 100, [32]byte{1})
	if err := m.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if m.Signature != nil {
		t.Fatal("expected no signature without an identity")
	}
	pub := primitives.Ed25519Public{}
	if !m.VerifySignature(pub) {
		t.Fatal("unsigned manifest should verify vacuously true")
	}
}

func TestValidateForReceiptRejectsCollisionAndEscape(t *testing.T) {
	m := NewManifest(DefaultChunkSize)
	m.AddFile("a.txt", 10, [32]byte{})
	m.AddFile("a.txt", 10, [32]byte{})
	if err := ValidateForReceipt(m, 0); err == nil {
		t.Fatal("expected collision rejection")
	}

	m2 := NewManifest(DefaultChunkSize)
	m2.AddFile("../escape.txt", 10, [32]byte{})
	if err := ValidateForReceipt(m2, 0); err == nil {
		t.Fatal("expected escape rejection")
	}
}

func TestChunkSealOpenRoundTrip(t *testing.T) {
	var key [32]byte
	copy(key[:], bytes.Repeat([]byte{0x5}, 32))
	var transferID [16]byte
	copy(transferID[:], bytes.Repeat([]byte{0x9}, 16))

	plaintext := []byte("chunk body bytes")
	ct, err := SealChunk(key, transferID, 3, plaintext)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	pt, err := OpenChunk(key, transferID, 3, ct)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(pt, plaintext) {
		t.Fatal("roundtrip mismatch")
	}

	if _, err := OpenChunk(key, transferID, 4, ct); err == nil {
		t.Fatal("expected failure decrypting under wrong index")
	}
}

func TestMerkleTreeProofRoundTrip(t *testing.T) {
	leaves := [][32]byte{
		primitives.Hash([]byte("leaf0")),
		primitives.Hash([]byte("leaf1")),
		primitives.Hash([]byte("leaf2")),
		primitives.Hash([]byte("leaf3")),
	}
	tree := BuildMerkleTree(leaves)
	root := tree.Root()

	for i, leaf := range leaves {
		proof, ok := tree.Proof(i)
		if !ok {
			t.Fatalf("no proof for index %d", i)
		}
		if !VerifyMerkleProof(proof, root, leaf) {
			t.Fatalf("proof for index %d failed to verify", i)
		}
	}

	proof, _ := tree.Proof(0)
	wrongLeaf := primitives.Hash([]byte("wrong"))
	if VerifyMerkleProof(proof, root, wrongLeaf) {
		t.Fatal("proof verified against the wrong leaf")
	}
}

func TestMerkleTreeSingleLeaf(t *testing.T) {
	leaf := primitives.Hash([]byte("only"))
	tree := BuildMerkleTree([][32]byte{leaf})
	if tree.Root() != leaf {
		t.Fatal("single-leaf tree root must equal the leaf")
	}
}

func TestSenderReceiverStateRoundTrip(t *testing.T) {
	var transferID [16]byte
	sender := NewSenderState(transferID, 2)
	receiver := NewReceiverState(transferID)

	chunks := [][]byte{[]byte("c0"), []byte("c1"), []byte("c2")}
	total := uint64(len(chunks) - 1)

	for i, c := range chunks {
		if err := sender.MarkSent(uint64(i), c); err != nil {
			t.Fatalf("mark sent %d: %v", i, err)
		}
		sender.MarkAcked(uint64(i)) // keep the window of 2 from filling up
	}

	for i, c := range chunks {
		var tot *uint64
		if i == len(chunks)-1 {
			tot = &total
		}
		receiver.AcceptChunk(uint64(i), c, tot)
		receiver.AcceptChunk(uint64(i), c, tot) // duplicate, must be ignored
	}

	ordered, hash, ok := receiver.Complete()
	if !ok {
		t.Fatal("expected transfer to be complete")
	}
	if len(ordered) != len(chunks) {
		t.Fatalf("expected %d chunks, got %d", len(chunks), len(ordered))
	}
	if hash != sender.FinalHash() {
		t.Fatal("sender and receiver rolling hashes disagree")
	}
	if err := VerifyIntegrity(hash, sender.FinalHash()); err != nil {
		t.Fatalf("integrity check failed: %v", err)
	}
}

func TestResumeValidateAgreement(t *testing.T) {
	var transferID [16]byte
	stored := map[uint64][32]byte{
		0: primitives.Hash([]byte("c0")),
		1: primitives.Hash([]byte("c1")),
	}
	offer := ResumeOffer{TransferID: transferID, NextIndex: 2}
	ack, err := ValidateResume(offer,
		func(i uint64) ([32]byte, bool) { h, ok := stored[i]; return h, ok },
		func(i uint64) [32]byte { return stored[i] },
	)
	if err != nil {
		t.Fatalf("validate resume: %v", err)
	}
	if ack.FromIndex != 2 {
		t.Fatalf("expected resume from index 2, got %d", ack.FromIndex)
	}
}

func TestResumeValidateDivergence(t *testing.T) {
	var transferID [16]byte
	stored := map[uint64][32]byte{0: primitives.Hash([]byte("c0"))}
	offer := ResumeOffer{TransferID: transferID, NextIndex: 2}
	ack, err := ValidateResume(offer,
		func(i uint64) ([32]byte, bool) { h, ok := stored[i]; return h, ok },
		func(i uint64) [32]byte { return primitives.Hash([]byte("mismatched")) },
	)
	if err != nil {
		t.Fatalf("validate resume: %v", err)
	}
	if ack.FromIndex != 0 {
		t.Fatalf("expected resume from divergence point 0, got %d", ack.FromIndex)
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	plaintext := bytes.Repeat([]byte("tallow compression test data "), 100)
	compressed, err := CompressChunk(plaintext)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	out, err := DecompressChunk(compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(out, plaintext) {
		t.Fatal("compression roundtrip mismatch")
	}
}

func TestStripMetadataPassesThroughUnknownType(t *testing.T) {
	data := []byte("not an image")
	if out := StripMetadata(data); !bytes.Equal(out, data) {
		t.Fatal("unknown file type should pass through unchanged")
	}
}

func TestEncodeDecodeManifestRoundTrip(t *testing.T) {
	priv, _, err := primitives.GenerateEd25519()
	if err != nil {
		t.Fatalf("ed25519 keygen: %v", err)
	}
	m := NewManifest(0)
	m.AddFile("a/b.txt", 128, primitives.Hash([]byte("a/b.txt")))
	m.AddFile("c.bin", 9000, primitives.Hash([]byte("c.bin")))
	m.Compression = CompressionZstd
	if err := m.Finalize(&priv); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	encoded, err := EncodeManifest(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeManifest(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.TotalSize != m.TotalSize || decoded.TotalChunks != m.TotalChunks || decoded.ChunkSize != m.ChunkSize {
		t.Fatalf("totals mismatch: got %+v want %+v", decoded, m)
	}
	if decoded.Compression != m.Compression {
		t.Fatalf("compression mismatch: got %q want %q", decoded.Compression, m.Compression)
	}
	if len(decoded.Files) != len(m.Files) {
		t.Fatalf("file count mismatch: got %d want %d", len(decoded.Files), len(m.Files))
	}
	for i := range m.Files {
		if decoded.Files[i] != m.Files[i] {
			t.Fatalf("file %d mismatch: got %+v want %+v", i, decoded.Files[i], m.Files[i])
		}
	}
	if decoded.ManifestHash == nil || *decoded.ManifestHash != *m.ManifestHash {
		t.Fatal("manifest hash not preserved across encode/decode")
	}
	if !bytes.Equal(decoded.Signature, m.Signature) {
		t.Fatal("signature not preserved across encode/decode")
	}
}
