package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempLocal(t *testing.T) *localDisk {
	t.Helper()
	return &localDisk{root: t.TempDir(), baseURL: "http://localhost:4000/storage"}
}

func TestLocalPutAndDelete(t *testing.T) {
	d := tempLocal(t)

	require.NoError(t, d.Put("products/card.png", []byte("png-bytes")))
	data, err := os.ReadFile(filepath.Join(d.root, "products", "card.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, d.Delete("products/card.png"))
	_, err = os.Stat(filepath.Join(d.root, "products", "card.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalDeleteMissingIsNoop(t *testing.T) {
	assert.NoError(t, tempLocal(t).Delete("products/never-uploaded.png"))
}

func TestLocalURL(t *testing.T) {
	d := tempLocal(t)
	assert.Equal(t, "http://localhost:4000/storage/products/card.png", d.URL("products/card.png"))
}

func TestPathOfRoundTrip(t *testing.T) {
	Register("local", &localDisk{root: t.TempDir(), baseURL: "http://localhost:4000/storage"})

	url := URL("products/card.png")
	path, ok := PathOf(url)
	require.True(t, ok)
	assert.Equal(t, "products/card.png", path)
}

func TestPathOfForeignHost(t *testing.T) {
	Register("local", &localDisk{root: t.TempDir(), baseURL: "http://localhost:4000/storage"})

	_, ok := PathOf("https://cdn.other.example/products/card.png")
	assert.False(t, ok)
}
