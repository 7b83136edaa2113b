package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "star.md"), []byte("use the STAR method"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("negotiate after the offer"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.md"), []byte("   "), 0o644))

	ix := NewIndex(NewHashEngine(64))
	n, err := SeedFromDir(context.Background(), ix, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	size, err := ix.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, size)
}

func TestSeedFromDirFansOutToEverySink(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "star.md"), []byte("use the STAR method"), 0o644))

	ix := NewIndex(NewHashEngine(64))
	seen := map[string]string{}
	sink := MultiSink(ix, SinkFunc(func(_ context.Context, id, content string) error {
		seen[id] = content
		return nil
	}))

	n, err := SeedFromDir(context.Background(), sink, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, map[string]string{"star.md": "use the STAR method"}, seen)

	size, err := ix.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}
