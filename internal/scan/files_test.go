package scan

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImage(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"image.PNG", true},
		{"image.jpg", true},
		{"image.JPEG", true},
		{"image.gif", true},
		{"image.bmp", true},
		{"image.BMP", true},
		{"image.txt", false},
		{"image.tiff", false},
		{"image", false},
		{".jpeg", true}, // only an extension
	}

	for _, test := range tests {
		result := IsImage(test.name)
		if result != test.expected {
			t.Errorf("IsImage(%s) = %v; want %v", test.name, result, test.expected)
		}
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()

	wanted := []string{
		filepath.Join(dir, "image1.png"),
		filepath.Join(dir, "image2.JPG"), // extension match is case-insensitive
		filepath.Join(dir, "photo.jpeg"),
		filepath.Join(dir, "anim.gif"),
		filepath.Join(dir, "scan.BMP"),
	}
	unwanted := []string{
		filepath.Join(dir, "document.txt"),
		filepath.Join(dir, "noextension"),
		filepath.Join(dir, "archive.tar.gz"),
	}
	for _, p := range append(append([]string{}, wanted...), unwanted...) {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}

	// Images inside subdirectories must not be listed.
	subDir := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(subDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "nested.png"), []byte("x"), 0644))

	items, err := ListImages(dir)
	require.NoError(t, err)

	var got []string
	for _, item := range items {
		got = append(got, item.Path)
	}
	sort.Strings(got)
	sort.Strings(wanted)
	assert.Equal(t, wanted, got)
}

func TestListImagesEmptyFolder(t *testing.T) {
	items, err := ListImages(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListImagesUnreadable(t *testing.T) {
	t.Run("missing folder", func(t *testing.T) {
		items, err := ListImages(filepath.Join(t.TempDir(), "no-such-dir"))
		assert.Error(t, err)
		assert.Nil(t, items)
	})

	t.Run("not a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "plain.png")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
		items, err := ListImages(file)
		assert.Error(t, err)
		assert.Nil(t, items)
	})
}
