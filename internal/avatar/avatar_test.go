package avatar

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWritesDecodablePNG(t *testing.T) {
	store := NewStore(t.TempDir())

	avatarPath, err := store.Generate("user-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(avatarPath, "/uploads/users/avatars/"))

	file, err := os.Open(filepath.Join(store.uploadsDir, "users", "avatars", filepath.Base(avatarPath)))
	require.NoError(t, err)
	defer file.Close()

	img, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestSaveAndRemove(t *testing.T) {
	store := NewStore(t.TempDir())

	avatarPath, err := store.Save("user-1", ".png", []byte("not-a-real-image"))
	require.NoError(t, err)

	onDisk := filepath.Join(store.uploadsDir, "users", "avatars", filepath.Base(avatarPath))
	_, err = os.Stat(onDisk)
	require.NoError(t, err)

	require.NoError(t, store.Remove(avatarPath))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	// removing twice is a no-op
	require.NoError(t, store.Remove(avatarPath))
}

func TestGenerateDistinctFilenames(t *testing.T) {
	store := NewStore(t.TempDir())

	first, err := store.Generate("user-1")
	require.NoError(t, err)
	second, err := store.Generate("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
