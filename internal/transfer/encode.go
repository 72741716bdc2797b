package transfer

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/tallowteam/tallow-go/internal/errs"
)

// encodeFileEntries produces a deterministic byte encoding of the
// manifest's file entries, used as the input to the manifest self-hash.
// It intentionally excludes ManifestHash/Signature themselves.
func (m *Manifest) encodeFileEntries() ([]byte, error) {
	var buf bytes.Buffer
	var tmp [8]byte

	binary.BigEndian.PutUint64(tmp[:], uint64(len(m.Files)))
	buf.Write(tmp[:])

	for _, f := range m.Files {
		pathBytes := []byte(f.Path)
		binary.BigEndian.PutUint32(tmp[:4], uint32(len(pathBytes)))
		buf.Write(tmp[:4])
		buf.Write(pathBytes)

		binary.BigEndian.PutUint64(tmp[:], f.Size)
		buf.Write(tmp[:])
		buf.Write(f.Hash[:])
		binary.BigEndian.PutUint64(tmp[:], f.ChunkCount)
		buf.Write(tmp[:])
	}

	binary.BigEndian.PutUint64(tmp[:], m.TotalSize)
	buf.Write(tmp[:])
	binary.BigEndian.PutUint64(tmp[:], m.TotalChunks)
	buf.Write(tmp[:])
	binary.BigEndian.PutUint64(tmp[:], m.ChunkSize)
	buf.Write(tmp[:])
	buf.WriteString(m.Compression)

	return buf.Bytes(), nil
}

// EncodeManifest serializes m in full (including its optional self-hash
// and signature) for transmission as a FileOffer payload.
func EncodeManifest(m *Manifest) ([]byte, error) {
	entries, err := m.encodeFileEntries()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	var tmp [8]byte

	binary.BigEndian.PutUint32(tmp[:4], uint32(len(entries)))
	buf.Write(tmp[:4])
	buf.Write(entries)

	binary.BigEndian.PutUint32(tmp[:4], uint32(m.TransferType))
	buf.Write(tmp[:4])

	if m.ManifestHash != nil {
		buf.WriteByte(1)
		buf.Write(m.ManifestHash[:])
	} else {
		buf.WriteByte(0)
	}

	binary.BigEndian.PutUint32(tmp[:4], uint32(len(m.Signature)))
	buf.Write(tmp[:4])
	buf.Write(m.Signature)

	return buf.Bytes(), nil
}

// DecodeManifest parses a FileOffer payload produced by EncodeManifest.
func DecodeManifest(b []byte) (*Manifest, error) {
	r := bytes.NewReader(b)
	readU32 := func() (uint32, error) {
		var tmp [4]byte
		if _, err := r.Read(tmp[:]); err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint32(tmp[:]), nil
	}

	entriesLen, err := readU32()
	if err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "decode manifest entries length", err)
	}
	entries := make([]byte, entriesLen)
	if _, err := r.Read(entries); err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "decode manifest entries", err)
	}

	m, err := decodeFileEntries(entries)
	if err != nil {
		return nil, err
	}

	transferType, err := readU32()
	if err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "decode manifest transfer type", err)
	}
	m.TransferType = TransferType(transferType)

	var hashFlag [1]byte
	if _, err := r.Read(hashFlag[:]); err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "decode manifest hash flag", err)
	}
	if hashFlag[0] == 1 {
		var hash [32]byte
		if _, err := r.Read(hash[:]); err != nil {
			return nil, errs.Wrap(errs.DecodingFailure, "decode manifest hash", err)
		}
		m.ManifestHash = &hash
	}

	sigLen, err := readU32()
	if err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "decode manifest signature length", err)
	}
	if sigLen > 0 {
		sig := make([]byte, sigLen)
		if _, err := r.Read(sig); err != nil {
			return nil, errs.Wrap(errs.DecodingFailure, "decode manifest signature", err)
		}
		m.Signature = sig
	}

	return m, nil
}

// decodeFileEntries parses the bytes produced by encodeFileEntries back
// into a Manifest's Files/TotalSize/TotalChunks/ChunkSize/Compression.
func decodeFileEntries(b []byte) (*Manifest, error) {
	r := bytes.NewReader(b)
	readU32 := func() (uint32, error) {
		var tmp [4]byte
		if _, err := r.Read(tmp[:]); err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint32(tmp[:]), nil
	}
	readU64 := func() (uint64, error) {
		var tmp [8]byte
		if _, err := r.Read(tmp[:]); err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint64(tmp[:]), nil
	}

	count, err := readU64()
	if err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "decode file entry count", err)
	}

	m := &Manifest{}
	for i := uint64(0); i < count; i++ {
		pathLen, err := readU32()
		if err != nil {
			return nil, errs.Wrap(errs.DecodingFailure, "decode path length", err)
		}
		pathBytes := make([]byte, pathLen)
		if _, err := r.Read(pathBytes); err != nil {
			return nil, errs.Wrap(errs.DecodingFailure, "decode path", err)
		}
		size, err := readU64()
		if err != nil {
			return nil, errs.Wrap(errs.DecodingFailure, "decode size", err)
		}
		var hash [32]byte
		if _, err := r.Read(hash[:]); err != nil {
			return nil, errs.Wrap(errs.DecodingFailure, "decode hash", err)
		}
		chunkCount, err := readU64()
		if err != nil {
			return nil, errs.Wrap(errs.DecodingFailure, "decode chunk count", err)
		}
		m.Files = append(m.Files, FileEntry{
			Path:       string(pathBytes),
			Size:       size,
			Hash:       hash,
			ChunkCount: chunkCount,
		})
	}

	totalSize, err := readU64()
	if err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "decode total size", err)
	}
	totalChunks, err := readU64()
	if err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "decode total chunks", err)
	}
	chunkSize, err := readU64()
	if err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "decode chunk size", err)
	}
	compression, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "decode compression tag", err)
	}

	m.TotalSize = totalSize
	m.TotalChunks = totalChunks
	m.ChunkSize = chunkSize
	m.Compression = string(compression)
	return m, nil
}
