// Package persistence implements the neurographite persistence contract:
// save/load a point-in-time graph.Snapshot, tolerant of an absent prior
// snapshot, with atomic write-then-rename discipline. Backup, restore,
// cleanup, and stats are optional convenience supplements.
package persistence

import (
	"errors"

	"github.com/deepruin/neurographite/graph"
)

// ErrChecksumMismatch is returned by Load when a snapshot's stored
// checksum does not match its content, indicating corruption.
var ErrChecksumMismatch = errors.New("persistence: checksum mismatch")

// Contract is the minimal persistence surface a coordinator requires
//. Load on a store with no prior snapshot returns a nil
// snapshot and a nil error, mirroring the original's "return empty graph
// if no file exists" behavior.
type Contract interface {
	Load() (*graph.Snapshot, error)
	Save(snap *graph.Snapshot) error
}

// BackupLister is an optional extension for collaborators that can
// enumerate and report on backups.
type BackupLister interface {
	Backup() (string, error)
	ListBackups() ([]string, error)
	CleanupBackups(keepCount int) (int, error)
	Stats() (Stats, error)
}

// Restorer is an optional extension for collaborators that can restore
// from a specific named backup.
type Restorer interface {
	RestoreFromBackup(name string) (*graph.Snapshot, error)
}

// Stats mirrors the original's StorageStats (original_source/storage.rs).
type Stats struct {
	SnapshotSize    int64
	BackupCount     int
	TotalBackupSize int64
}

// NoopStore implements Contract with no backing store: Load always
// reports no prior snapshot, Save discards. Used when
// config.PersistenceMode is "memory".
type NoopStore struct{}

func (NoopStore) Load() (*graph.Snapshot, error)    { return nil, nil }
func (NoopStore) Save(snap *graph.Snapshot) error { return nil }
