package persistence

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/dgraph-io/badger/v4"

	"github.com/deepruin/neurographite/graph"
)

// snapshotKey is the single key under which the entire graph.Snapshot is
// stored: one logical document rather than per-entity keys, since the
// coordinator always loads/saves the whole snapshot at once.
var snapshotKey = []byte("neurographite:snapshot")

// BadgerStore persists a single graph.Snapshot as a JSON blob inside a
// BadgerDB key-value store, exercised transactionally on every Save.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a BadgerDB database rooted at
// dataDir.
func NewBadgerStore(dataDir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dataDir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("persistence: opening badger database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the underlying BadgerDB handle.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}

// Load fetches the snapshot document in a read-only transaction. A
// missing key is not an error: it returns (nil, nil).
func (b *BadgerStore) Load() (*graph.Snapshot, error) {
	var snap graph.Snapshot
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err == badger.ErrKeyNotFound {
			return errNoSnapshot
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if err == errNoSnapshot {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("persistence: loading from badger: %w", err)
	}
	return &snap, nil
}

// errNoSnapshot is an internal sentinel distinguishing "no prior
// snapshot" from a real transaction failure inside db.View.
var errNoSnapshot = fmt.Errorf("persistence: no snapshot stored")

// Save writes the snapshot document transactionally, replacing any prior
// value.
func (b *BadgerStore) Save(snap *graph.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persistence: encoding snapshot: %w", err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, body)
	})
	if err != nil {
		return fmt.Errorf("persistence: saving to badger: %w", err)
	}
	return nil
}

// Stats reports BadgerDB's on-disk LSM/value-log size in lieu of backup
// bookkeeping, since Badger manages its own compaction and has no notion
// of the file-based backups/ directory FileStore uses.
func (b *BadgerStore) Stats() (Stats, error) {
	lsm, vlog := b.db.Size()
	return Stats{SnapshotSize: lsm + vlog}, nil
}

// RunValueLogGC triggers BadgerDB's value-log garbage collection, a
// maintenance operation for long-lived databases. Nothing in
// neurographite schedules it; it runs only when a caller invokes it.
func (b *BadgerStore) RunValueLogGC(discardRatio float64) error {
	err := b.db.RunValueLogGC(discardRatio)
	if err != nil && err != badger.ErrNoRewrite {
		return fmt.Errorf("persistence: badger value log gc: %w", err)
	}
	if err == nil {
		log.Printf("persistence: badger value log gc reclaimed space")
	}
	return nil
}
