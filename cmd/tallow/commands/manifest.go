package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tallowteam/tallow-go/internal/errs"
	"github.com/tallowteam/tallow-go/internal/primitives"
	"github.com/tallowteam/tallow-go/internal/transfer"
)

// buildManifest stats and hashes each path, rooting its manifest entry at
// the path's base name, and returns the manifest alongside a lookup from
// manifest-relative path back to the absolute path (or, when stripMetadata
// strips embedded EXIF/ICC/text from a JPEG or PNG, its stripped in-memory
// bytes) open() should read from.
func buildManifest(paths []string, chunkSize uint64, stripMetadata bool) (*transfer.Manifest, map[string]fileSource, error) {
	m := transfer.NewManifest(chunkSize)
	sources := make(map[string]fileSource, len(paths))

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, nil, errs.Wrap(errs.InvalidArgument, "stat source path", err)
		}
		if info.IsDir() {
			return nil, nil, errs.New(errs.InvalidArgument, "directories are not yet supported, pass individual files")
		}

		relPath := filepath.Base(p)

		if stripMetadata && isStrippableImage(p) {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, nil, errs.Wrap(errs.InvalidArgument, "read source file", err)
			}
			stripped := transfer.StripMetadata(data)
			hash := primitives.Hash(stripped)
			m.AddFile(relPath, uint64(len(stripped)), hash)
			sources[relPath] = fileSource{bytes: stripped}
			continue
		}

		hash, err := hashFile(p)
		if err != nil {
			return nil, nil, err
		}
		m.AddFile(relPath, uint64(info.Size()), hash)
		sources[relPath] = fileSource{path: p}
	}

	m.SanitizePaths()
	return m, sources, nil
}

func isStrippableImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
		return true
	default:
		return false
	}
}

// fileSource is either an on-disk path or metadata-stripped bytes already
// held in memory.
type fileSource struct {
	path  string
	bytes []byte
}

func hashFile(path string) ([32]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return [32]byte{}, errs.Wrap(errs.InvalidArgument, "open source file for hashing", err)
	}
	defer f.Close()

	hasher := primitives.NewStreamHasher()
	buf := make([]byte, 256*1024)
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return [32]byte{}, errs.Wrap(errs.InvalidArgument, "read source file for hashing", readErr)
		}
	}
	return hasher.Sum(), nil
}

// openSource returns a FileSource that resolves a manifest's relative paths
// back to their registered source via sources.
func openSource(sources map[string]fileSource) func(relPath string) (io.ReadCloser, error) {
	return func(relPath string) (io.ReadCloser, error) {
		src, ok := sources[relPath]
		if !ok {
			return nil, errs.New(errs.InvalidArgument, "no source registered for manifest path "+relPath)
		}
		if src.bytes != nil {
			return io.NopCloser(bytes.NewReader(src.bytes)), nil
		}
		return os.Open(src.path)
	}
}
