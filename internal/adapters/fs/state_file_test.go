package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/eventship/internal/domain"
)

func TestSpoolStateFile_LoadMissing(t *testing.T) {
	repo := NewSpoolStateFile(t.TempDir(), "/var/spool/events.ndjson")

	state, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
}

func TestSpoolStateFile_SaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	repo := NewSpoolStateFile(dir, "/var/spool/events.ndjson")

	want := domain.SpoolState{Path: "/var/spool/events.ndjson"}
	want.Advance(128, 3, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want.Path, got.Path)
	assert.Equal(t, int64(128), got.Offset)
	assert.Equal(t, uint64(3), got.Lines)
	assert.True(t, want.LastCommitAt.Equal(got.LastCommitAt))

	_, err = os.Stat(repo.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file left behind")
}

func TestSpoolStateFile_DistinctPerSpool(t *testing.T) {
	dir := t.TempDir()
	a := NewSpoolStateFile(dir, "/var/spool/a.ndjson")
	b := NewSpoolStateFile(dir, "/var/spool/b.ndjson")
	assert.NotEqual(t, a.Path(), b.Path())
}

func TestSpoolStateFile_Corrupt(t *testing.T) {
	repo := NewSpoolStateFile(t.TempDir(), "spool.ndjson")
	require.NoError(t, os.WriteFile(repo.Path(), []byte("{not json"), 0o600))

	_, err := repo.Load(context.Background())
	assert.Error(t, err)
}
