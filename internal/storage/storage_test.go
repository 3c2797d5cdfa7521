package storage

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	data := []byte(`{"version":"1.0"}`)
	require.NoError(t, s.Put(ctx, "fmsp_export_2026-01-02.json", bytes.NewReader(data), int64(len(data)), "application/json"))

	rc, err := s.Get(ctx, "fmsp_export_2026-01-02.json")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	objects, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "fmsp_export_2026-01-02.json", objects[0].Name)
	assert.Equal(t, int64(len(data)), objects[0].Size)

	require.NoError(t, s.Delete(ctx, "fmsp_export_2026-01-02.json"))
	_, err = s.Get(ctx, "fmsp_export_2026-01-02.json")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "fmsp_export_2026-01-02.json"), ErrNotFound)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../escape.json", "a/b.json", ".hidden"} {
		err := s.Put(ctx, name, bytes.NewReader(nil), 0, "application/json")
		assert.ErrorIs(t, err, ErrInvalidName, name)
		_, err = s.Get(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestLocalStorage_ListSorted(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"b.json", "a.json", "c.json"} {
		require.NoError(t, s.Put(ctx, name, bytes.NewReader([]byte("{}")), 2, "application/json"))
	}
	objects, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 3)
	assert.Equal(t, "a.json", objects[0].Name)
	assert.Equal(t, "c.json", objects[2].Name)
}

func TestNewExportObject(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	obj, err := NewExportObject("fmsp_export_2026-01-02.json", []byte("abc"), created)
	require.NoError(t, err)

	assert.Equal(t, int64(3), obj.Size)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", obj.SHA256)
	assert.Equal(t, "application/json", obj.MIME)
	assert.True(t, obj.CreatedAt.Equal(created))
	assert.NoError(t, obj.Validate())

	obj.Name = "../x"
	assert.ErrorIs(t, obj.Validate(), ErrInvalidName)
}
