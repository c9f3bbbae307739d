package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotBackends(t *testing.T) map[string]Slot {
	t.Helper()
	sq, err := OpenSQLiteSlot(filepath.Join(t.TempDir(), "nested", "calsync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]Slot{
		"file":   NewFileSlot(filepath.Join(t.TempDir(), "nested")),
		"sqlite": sq,
	}
}

func TestSlot_ReadMissing(t *testing.T) {
	for name, s := range slotBackends(t) {
		t.Run(name, func(t *testing.T) {
			data, err := s.Read(context.Background())
			require.NoError(t, err)
			assert.Nil(t, data)
		})
	}
}

func TestSlot_WriteRead(t *testing.T) {
	for name, s := range slotBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Write(ctx, []byte(`[1]`)))
			require.NoError(t, s.Write(ctx, []byte(`[1,2]`)))

			data, err := s.Read(ctx)
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(data))
		})
	}
}

func TestSlot_Clear(t *testing.T) {
	for name, s := range slotBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Clear(ctx))
			require.NoError(t, s.Write(ctx, []byte(`[]`)))
			require.NoError(t, s.Clear(ctx))

			data, err := s.Read(ctx)
			require.NoError(t, err)
			assert.Nil(t, data)
		})
	}
}

func TestFileSlot_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSlot(dir)
	require.NoError(t, s.Write(context.Background(), []byte(`[]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "events.json", entries[0].Name())
}

func TestSQLiteSlot_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calsync.db")
	ctx := context.Background()

	s1, err := OpenSQLiteSlot(path)
	require.NoError(t, err)
	require.NoError(t, s1.Write(ctx, []byte(`["kept"]`)))
	require.NoError(t, s1.Close())

	s2, err := OpenSQLiteSlot(path)
	require.NoError(t, err)
	defer s2.Close()
	data, err := s2.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `["kept"]`, string(data))
}
