// Package jsonfile keeps the ledger snapshot in a single JSON document on disk.
//
// Writes are atomic: the snapshot goes to a temporary file in the same
// directory, is flushed, and then renamed over the previous document, so a
// crash mid-write leaves either the old snapshot or the new one, never a mix.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	interfaces "github.com/sheikh-saqib/personal-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-ledger/internal/models"
	"github.com/sheikh-saqib/personal-ledger/internal/storage"
)

// DefaultFileName is used when no ledger path is configured.
const DefaultFileName = "ledger.json"

const maxQuarantineAttempts = 1000

// Gateway saves and loads the ledger snapshot at a fixed path.
type Gateway struct {
	path string
	now  func() time.Time
}

// NewGateway returns a gateway for path; an empty path means DefaultFileName
// in the working directory.
func NewGateway(path string) *Gateway {
	if path == "" {
		path = DefaultFileName
	}
	return &Gateway{path: path, now: time.Now}
}

func (g *Gateway) Path() string { return g.path }

// Save replaces the stored snapshot with accounts.
func (g *Gateway) Save(ctx context.Context, accounts []models.Account) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistenceFailure, err)
	}

	snap := storage.NewSnapshot(accounts, g.now().UTC())
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %v", models.ErrPersistenceFailure, err)
	}
	data = append(data, '\n')

	if err := writeAtomic(g.path, data); err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistenceFailure, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	// the rename is only durable once the directory entry is flushed
	if err := syncDir(dir); err != nil {
		return fmt.Errorf("sync %s: %w", dir, err)
	}
	return nil
}

func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil // directories can't be opened for sync there
	}
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// Load reads the stored snapshot. A missing file is a first run and yields
// no accounts; a file that can't be trusted fails with models.ErrCorruptState.
func (g *Gateway) Load(ctx context.Context) ([]models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(g.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", models.ErrPersistenceFailure, g.path, err)
	}

	snap, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrCorruptState, g.path, err)
	}
	accounts, err := snap.Restore()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.path, err)
	}
	return accounts, nil
}

func decode(data []byte) (storage.Snapshot, error) {
	var snap storage.Snapshot
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&snap); err != nil {
		return storage.Snapshot{}, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return storage.Snapshot{}, errors.New("unexpected data after snapshot")
	}
	return snap, nil
}

// Quarantine moves the stored file aside, e.g. ledger.json.corrupt-20260102T150405Z,
// and returns the new path. An earlier quarantined file is never replaced: a
// name already taken gets a -1, -2, ... suffix. The next Load then starts
// from an empty ledger.
func (g *Gateway) Quarantine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	base := fmt.Sprintf("%s.corrupt-%s", g.path, g.now().UTC().Format("20060102T150405Z"))
	for i := 0; i < maxQuarantineAttempts; i++ {
		dest := base
		if i > 0 {
			dest = fmt.Sprintf("%s-%d", base, i)
		}
		_, err := os.Lstat(dest)
		if err == nil {
			continue // taken by an earlier quarantine
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: quarantine %s: %v", models.ErrPersistenceFailure, g.path, err)
		}
		if err := os.Rename(g.path, dest); err != nil {
			return "", fmt.Errorf("%w: quarantine %s: %v", models.ErrPersistenceFailure, g.path, err)
		}
		return dest, nil
	}
	return "", fmt.Errorf("%w: quarantine %s: no free name after %d attempts", models.ErrPersistenceFailure, g.path, maxQuarantineAttempts)
}

var _ interfaces.SnapshotGateway = (*Gateway)(nil)
