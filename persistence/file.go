package persistence

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/deepruin/neurographite/graph"
)

// FileStore persists a single graph.Snapshot as JSON under dataDir,
// stamped with a BLAKE2b-256 checksum to detect corruption on load, with
// writes made atomic via temp-file-then-rename.
type FileStore struct {
	dataDir    string
	snapshotFile string
	backupDir  string
}

// NewFileStore creates a FileStore rooted at dataDir, creating the
// directory (and its backups/ subdirectory) if necessary.
func NewFileStore(dataDir string) (*FileStore, error) {
	backupDir := filepath.Join(dataDir, "backups")
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("persistence: creating data directory: %w", err)
	}
	return &FileStore{
		dataDir:      dataDir,
		snapshotFile: filepath.Join(dataDir, "graph.json"),
		backupDir:    backupDir,
	}, nil
}

// Load reads the snapshot file, verifying its checksum. A missing file
// is not an error: it returns (nil, nil), matching the original's
// "return empty graph if no file exists" behavior.
func (f *FileStore) Load() (*graph.Snapshot, error) {
	return loadSnapshotFile(f.snapshotFile)
}

// Save serializes snap to JSON, stamps it with a BLAKE2b-256 checksum,
// and writes it via a temp file followed by an atomic rename.
func (f *FileStore) Save(snap *graph.Snapshot) error {
	return saveSnapshotFile(f.snapshotFile, snap)
}

// Backup copies the current snapshot file into backups/ under a
// timestamped name, returning the backup's name.
func (f *FileStore) Backup() (string, error) {
	if _, err := os.Stat(f.snapshotFile); err != nil {
		return "", fmt.Errorf("persistence: no snapshot to back up: %w", err)
	}
	data, err := os.ReadFile(f.snapshotFile)
	if err != nil {
		return "", fmt.Errorf("persistence: reading snapshot for backup: %w", err)
	}
	name := fmt.Sprintf("graph_%s.json", time.Now().UTC().Format("20060102_150405"))
	path := filepath.Join(f.backupDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("persistence: writing backup: %w", err)
	}
	log.Printf("persistence: created backup %s", name)
	return name, nil
}

// ListBackups returns every backup file name, sorted lexically (which is
// also chronological, given the timestamped naming scheme).
func (f *FileStore) ListBackups() ([]string, error) {
	entries, err := os.ReadDir(f.backupDir)
	if err != nil {
		return nil, fmt.Errorf("persistence: reading backup directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// RestoreFromBackup loads a named backup without disturbing the current
// snapshot file.
func (f *FileStore) RestoreFromBackup(name string) (*graph.Snapshot, error) {
	return loadSnapshotFile(filepath.Join(f.backupDir, name))
}

// CleanupBackups deletes the oldest backups beyond keepCount, selecting
// by file modification time, and reports how many were removed.
func (f *FileStore) CleanupBackups(keepCount int) (int, error) {
	entries, err := os.ReadDir(f.backupDir)
	if err != nil {
		return 0, fmt.Errorf("persistence: reading backup directory: %w", err)
	}
	type backupInfo struct {
		name    string
		modTime time.Time
	}
	var backups []backupInfo
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backupInfo{name: e.Name(), modTime: info.ModTime()})
	}
	if len(backups) <= keepCount {
		return 0, nil
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].modTime.Before(backups[j].modTime) })

	removed := 0
	for _, b := range backups[:len(backups)-keepCount] {
		if err := os.Remove(filepath.Join(f.backupDir, b.name)); err == nil {
			removed++
		}
	}
	log.Printf("persistence: cleaned up %d backups", removed)
	return removed, nil
}

// Stats reports the current snapshot's size plus aggregate backup usage.
func (f *FileStore) Stats() (Stats, error) {
	var snapshotSize int64
	if info, err := os.Stat(f.snapshotFile); err == nil {
		snapshotSize = info.Size()
	}

	names, err := f.ListBackups()
	if err != nil {
		return Stats{}, err
	}
	var totalBackupSize int64
	for _, name := range names {
		if info, err := os.Stat(filepath.Join(f.backupDir, name)); err == nil {
			totalBackupSize += info.Size()
		}
	}
	return Stats{
		SnapshotSize:    snapshotSize,
		BackupCount:     len(names),
		TotalBackupSize: totalBackupSize,
	}, nil
}

func loadSnapshotFile(path string) (*graph.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("persistence: opening snapshot file: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	checksumLine, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("persistence: reading checksum header: %w", err)
	}
	wantChecksum, err := hex.DecodeString(trimNewline(checksumLine))
	if err != nil {
		return nil, fmt.Errorf("persistence: decoding checksum header: %w", err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("persistence: reading snapshot body: %w", err)
	}

	gotChecksum := blake2b.Sum256(body)
	if hex.EncodeToString(gotChecksum[:]) != hex.EncodeToString(wantChecksum) {
		return nil, ErrChecksumMismatch
	}

	var snap graph.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("persistence: decoding snapshot: %w", err)
	}
	return &snap, nil
}

func saveSnapshotFile(path string, snap *graph.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persistence: encoding snapshot: %w", err)
	}
	checksum := blake2b.Sum256(body)

	tempFile := path + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("persistence: creating temp file: %w", err)
	}

	if _, err := f.WriteString(hex.EncodeToString(checksum[:]) + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("persistence: writing checksum header: %w", err)
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		return fmt.Errorf("persistence: writing snapshot body: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("persistence: syncing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("persistence: closing temp file: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		return fmt.Errorf("persistence: replacing snapshot file: %w", err)
	}
	return nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

