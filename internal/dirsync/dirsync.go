// Package dirsync computes the difference between a local directory
// listing and a remote manifest, for directory-sync transfers.
package dirsync

import "github.com/tallowteam/tallow-go/internal/errs"

// Entry is one file's path and content hash, from either side of the
// comparison.
type Entry struct {
	Path string
	Hash [32]byte
}

// SyncDiff is the result of comparing local entries against a remote
// manifest: paths present only locally, paths whose hash changed, and
// paths present remotely but missing locally.
type SyncDiff struct {
	New     []string
	Changed []string
	Deleted []string
}

// DefaultMaxDeletionFraction is the default threshold above which a sync
// diff is refused rather than applied, guarding against a mass-delete from
// a stale or corrupted remote manifest.
const DefaultMaxDeletionFraction = 0.5

// ComputeSyncDiff compares local entries against a remote manifest,
// matching files by relative path and detecting changes by hash
// inequality.
func ComputeSyncDiff(local, remote []Entry) SyncDiff {
	localByPath := make(map[string][32]byte, len(local))
	for _, e := range local {
		localByPath[e.Path] = e.Hash
	}
	remoteByPath := make(map[string][32]byte, len(remote))
	for _, e := range remote {
		remoteByPath[e.Path] = e.Hash
	}

	var diff SyncDiff
	for path, hash := range localByPath {
		remoteHash, present := remoteByPath[path]
		if !present {
			diff.New = append(diff.New, path)
			continue
		}
		if remoteHash != hash {
			diff.Changed = append(diff.Changed, path)
		}
	}
	for path := range remoteByPath {
		if _, present := localByPath[path]; !present {
			diff.Deleted = append(diff.Deleted, path)
		}
	}
	return diff
}

// CheckDeletionFraction refuses a diff whose deletion fraction (relative
// to the remote manifest's size) exceeds maxFraction.
func CheckDeletionFraction(diff SyncDiff, remoteCount int, maxFraction float64) error {
	if remoteCount == 0 {
		return nil
	}
	fraction := float64(len(diff.Deleted)) / float64(remoteCount)
	if fraction > maxFraction {
		return errs.New(errs.InvalidArgument, "deletion fraction exceeds policy threshold")
	}
	return nil
}
