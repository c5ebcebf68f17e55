package fs

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bft-labs/eventship/internal/domain"
)

// SpoolStateFile implements ports.SpoolStateRepository with one JSON file
// per tailed spool, named after a hash of the spool path.
type SpoolStateFile struct {
	path string
}

// NewSpoolStateFile returns the repository for spool inside dir.
func NewSpoolStateFile(dir, spool string) *SpoolStateFile {
	abs, err := filepath.Abs(spool)
	if err != nil {
		abs = spool
	}
	sum := sha1.Sum([]byte(abs))
	name := fmt.Sprintf("spool-%s.json", hex.EncodeToString(sum[:8]))
	return &SpoolStateFile{path: filepath.Join(dir, name)}
}

// Load returns the saved state, or an empty state if none exists.
func (r *SpoolStateFile) Load(ctx context.Context) (domain.SpoolState, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.SpoolState{}, nil
		}
		return domain.SpoolState{}, err
	}

	var state domain.SpoolState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.SpoolState{}, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return state, nil
}

// Save writes state to a temp file and renames it into place.
func (r *SpoolStateFile) Save(ctx context.Context, state domain.SpoolState) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

// Path returns the full path to the state file.
func (r *SpoolStateFile) Path() string {
	return r.path
}
