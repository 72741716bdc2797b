// Package transfer implements tallow's chunk transfer engine: manifest
// construction and path sanitization, the chunk AEAD discipline, Merkle
// tree integrity, the accept/reject/ack/complete state machine, resume,
// and the optional compression and metadata-stripping hooks.
package transfer

import (
	"path"
	"strings"

	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/primitives"
)

// TransferType distinguishes a regular file transfer from a text-only one.
// It is carried in the encoded manifest; the receive path does not branch
// on it.
type TransferType int

const (
	TransferFiles TransferType = iota
	TransferText
)

// DefaultChunkSize is used when a manifest builder doesn't override it.
const DefaultChunkSize = 64 * 1024

// FileEntry is one file's metadata within a manifest.
type FileEntry struct {
	Path       string
	Size       uint64
	Hash       [32]byte
	ChunkCount uint64
}

// Manifest describes a pending transfer's full file set.
type Manifest struct {
	Files        []FileEntry
	TotalSize    uint64
	TotalChunks  uint64
	ChunkSize    uint64
	Compression  string // "", "zstd"
	ManifestHash *[32]byte
	Signature    []byte // optional Ed25519 signature over the manifest bytes
	TransferType TransferType
}

// NewManifest returns an empty manifest using chunkSize (DefaultChunkSize
// if zero).
func NewManifest(chunkSize uint64) *Manifest {
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	return &Manifest{ChunkSize: chunkSize}
}

// AddFile appends one file's entry and rolls its chunk count into the
// manifest totals.
func (m *Manifest) AddFile(relPath string, size uint64, hash [32]byte) {
	chunkCount := (size + m.ChunkSize - 1) / m.ChunkSize
	if size == 0 {
		chunkCount = 0
	}
	m.TotalSize += size
	m.TotalChunks += chunkCount
	m.Files = append(m.Files, FileEntry{Path: relPath, Size: size, Hash: hash, ChunkCount: chunkCount})
}

// SanitizePaths strips `..`, root prefixes, and drive-letter prefixes from
// every file path, falling back to "unnamed" when sanitization leaves
// nothing behind.
func (m *Manifest) SanitizePaths() {
	for i := range m.Files {
		m.Files[i].Path = sanitizePath(m.Files[i].Path)
	}
}

func sanitizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	// Strip a Windows drive-letter prefix ("C:/...").
	if len(p) >= 2 && p[1] == ':' {
		p = p[2:]
	}
	cleaned := path.Clean("/" + p) // force-root so Clean collapses any ".."
	cleaned = strings.TrimPrefix(cleaned, "/")

	var kept []string
	for _, seg := range strings.Split(cleaned, "/") {
		if seg == "" || seg == ".." || seg == "." {
			continue
		}
		kept = append(kept, seg)
	}
	if len(kept) == 0 {
		return "unnamed"
	}
	return strings.Join(kept, "/")
}

// Finalize computes the manifest's self-hash over its file-entry bytes and,
// if identity is non-nil, signs that hash with it.
func (m *Manifest) Finalize(identity *primitives.Ed25519Private) error {
	bytes, err := m.encodeFileEntries()
	if err != nil {
		return err
	}
	hash := primitives.Hash(bytes)
	m.ManifestHash = &hash
	if identity != nil {
		m.Signature = primitives.Sign(*identity, hash[:])
	}
	return nil
}

// VerifySignature checks the manifest's signature against pub, if present.
// It returns true when no signature is present (signing is optional), and
// only checks cryptographically when one is attached.
func (m *Manifest) VerifySignature(pub primitives.Ed25519Public) bool {
	if m.Signature == nil || m.ManifestHash == nil {
		return true
	}
	return primitives.Verify(pub, m.ManifestHash[:], m.Signature)
}

// ValidateForReceipt applies the receiver-side checks of spec.md §4.4:
// every path still relative after sanitization, no collisions, no
// escape from the destination root, and the declared total size within
// maxTotalSize (0 disables the size check).
func ValidateForReceipt(m *Manifest, maxTotalSize uint64) error {
	if maxTotalSize > 0 && m.TotalSize > maxTotalSize {
		return errs.New(errs.InvalidArgument, "manifest total size exceeds policy")
	}
	seen := make(map[string]struct{}, len(m.Files))
	for _, f := range m.Files {
		clean := sanitizePath(f.Path)
		if clean != f.Path {
			return errs.New(errs.InvalidArgument, "manifest path escapes destination root")
		}
		if _, dup := seen[clean]; dup {
			return errs.New(errs.InvalidArgument, "manifest path collision")
		}
		seen[clean] = struct{}{}
	}
	return nil
}
