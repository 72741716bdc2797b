package transfer

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/tallowteam/tallow-go/internal/errs"
)

// CompressionZstd is the only compression tag tallow-go implements; the
// manifest's Compression field carries this string when enabled. "" means
// no compression, matching the manifest's Option<String> shape.
const CompressionZstd = "zstd"

// CompressChunk compresses plaintext pre-encryption when per-chunk
// compression is enabled. Compression never touches the AEAD construction;
// it only shrinks what gets encrypted.
func CompressChunk(plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, errs.Wrap(errs.EncodingFailure, "zstd writer init", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		w.Close()
		return nil, errs.Wrap(errs.EncodingFailure, "zstd compress", err)
	}
	if err := w.Close(); err != nil {
		return nil, errs.Wrap(errs.EncodingFailure, "zstd flush", err)
	}
	return buf.Bytes(), nil
}

// DecompressChunk reverses CompressChunk.
func DecompressChunk(compressed []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "zstd reader init", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.DecodingFailure, "zstd decompress", err)
	}
	return out, nil
}
