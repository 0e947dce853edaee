package thumbs

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhwo/visuAlysium/internal/codec"
	"github.com/uhwo/visuAlysium/internal/scan"
)

func fixedScanner(paths ...string) Scanner {
	return func(dir string) (scan.FileItems, error) {
		var items scan.FileItems
		for _, p := range paths {
			items = append(items, scan.NewFileItem(p))
		}
		return items, nil
	}
}

func TestCollectorGenerationFilter(t *testing.T) {
	dec := &stubCodec{delay: 15 * time.Millisecond}
	calls := 0
	scanner := func(dir string) (scan.FileItems, error) {
		calls++
		if calls == 1 {
			return scan.FileItems{{Path: "old1.png"}, {Path: "old2.png"}, {Path: "old3.png"}}, nil
		}
		return scan.FileItems{{Path: "new1.png"}, {Path: "new2.png"}, {Path: "new3.png"}}, nil
	}
	c := NewCollector(dec, scanner)

	n1, err := c.StartScan("folder")
	require.NoError(t, err)
	require.Equal(t, 3, n1)

	// Supersede the first scan before consuming anything from it.
	n2, err := c.StartScan("folder")
	require.NoError(t, err)
	require.Equal(t, 3, n2)

	c.Collect(n1 + n2)

	snap := c.Snapshot()
	require.Len(t, snap, 3, "only the second generation may be visible")
	for _, e := range snap {
		assert.Contains(t, []string{"new1.png", "new2.png", "new3.png"}, e.Path)
	}
}

func TestCollectorDropsLateStaleResults(t *testing.T) {
	dec := &stubCodec{}
	c := NewCollector(dec, fixedScanner())

	_, err := c.StartScan("a") // gen 1
	require.NoError(t, err)
	_, err = c.StartScan("b") // gen 2
	require.NoError(t, err)

	raster := image.NewRGBA(image.Rect(0, 0, 1, 1))
	c.OnResult(Result{Path: "fresh.png", Raster: raster, Gen: 2})
	// Stale results arriving after fresh ones must still be dropped.
	c.OnResult(Result{Path: "stale.png", Raster: raster, Gen: 1})
	c.OnResult(Result{Path: "ancient.png", Raster: raster, Gen: 0})

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "fresh.png", snap[0].Path)
}

func TestCollectorKeepsPlaceholders(t *testing.T) {
	dec := &stubCodec{fail: map[string]bool{"/pics/corrupt.png": true}}
	c := NewCollector(dec, fixedScanner(
		"/pics/a.png", "/pics/b.png", "/pics/corrupt.png", "/pics/c.png", "/pics/d.png",
	))

	n, err := c.StartScan("/pics")
	require.NoError(t, err)
	c.Collect(n)

	snap := c.Snapshot()
	require.Len(t, snap, 5, "failed decodes stay in the list as placeholders")
	placeholders := 0
	for _, e := range snap {
		if e.Raster == nil {
			placeholders++
			assert.Equal(t, "corrupt.png", e.Name)
			assert.Equal(t, "/pics/corrupt.png", e.Path)
		}
	}
	assert.Equal(t, 1, placeholders)
}

func TestCollectorConcurrencyTwoWithFivePaths(t *testing.T) {
	dec := &stubCodec{delay: 10 * time.Millisecond}
	paths := []string{"p1.png", "p2.png", "p3.png", "p4.png", "p5.png"}
	c := NewCollector(dec, fixedScanner(paths...))
	c.SetConcurrency(2)

	n, err := c.StartScan("folder")
	require.NoError(t, err)
	require.Equal(t, 5, n)
	c.Collect(n)

	snap := c.Snapshot()
	require.Len(t, snap, 5)
	seen := make(map[string]int)
	for _, e := range snap {
		seen[e.Path]++
	}
	for _, p := range paths {
		assert.Equal(t, 1, seen[p], "path %s must appear exactly once", p)
	}
	assert.LessOrEqual(t, dec.highWater(), 2)
}

func TestCollectorScanError(t *testing.T) {
	dec := &stubCodec{}
	boom := errors.New("folder unreadable")
	shouldFail := false
	scanner := func(dir string) (scan.FileItems, error) {
		if shouldFail {
			return nil, boom
		}
		return scan.FileItems{{Path: "ok.png"}}, nil
	}
	c := NewCollector(dec, scanner)

	n, err := c.StartScan("folder")
	require.NoError(t, err)
	c.Collect(n)
	require.Len(t, c.Snapshot(), 1)

	shouldFail = true
	n, err = c.StartScan("folder")
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, n)
	assert.Empty(t, c.Snapshot(), "a failed scan leaves the cleared list empty")
	assert.Equal(t, int64(2), c.Generation())
}

func TestCollectorThumbSize(t *testing.T) {
	dec := &stubCodec{}
	c := NewCollector(dec, fixedScanner("x.png"))
	c.SetThumbSize(64, 48)

	n, err := c.StartScan("folder")
	require.NoError(t, err)
	c.Collect(n)

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 64, snap[0].Raster.Bounds().Dx())
	assert.Equal(t, 48, snap[0].Raster.Bounds().Dy())
}

func TestCollectorEndToEnd(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png"} {
		img := image.NewRGBA(image.Rect(0, 0, 300, 200))
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.png"), []byte("junk"), 0644))

	c := NewCollector(codec.NewAdapter(), scan.ListImages)
	c.SetConcurrency(2)

	n, err := c.StartScan(dir)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	c.Collect(n)

	snap := c.Snapshot()
	require.Len(t, snap, 5)
	placeholders := 0
	for _, e := range snap {
		if e.Raster == nil {
			placeholders++
			assert.Equal(t, "corrupt.png", e.Name)
			continue
		}
		assert.LessOrEqual(t, e.Raster.Bounds().Dx(), DefaultThumbWidth)
		assert.LessOrEqual(t, e.Raster.Bounds().Dy(), DefaultThumbHeight)
	}
	assert.Equal(t, 1, placeholders)
}
