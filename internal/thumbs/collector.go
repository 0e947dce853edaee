package thumbs

import (
	"image"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/uhwo/visuAlysium/internal/scan"
)

const (
	// DefaultThumbWidth is the bounding box width for gallery thumbnails.
	DefaultThumbWidth = 100
	// DefaultThumbHeight is the bounding box height for gallery thumbnails.
	DefaultThumbHeight = 100

	resultBuffer = 128
)

// ListEntry is one row of the visible gallery: the file's base name for the
// label, the full path for the tooltip, and the decoded raster. A nil
// Raster marks a decode failure; the row is still listed so the caller can
// render a placeholder.
type ListEntry struct {
	Path   string
	Name   string
	Raster image.Image
}

// Scanner lists candidate image files in a folder.
type Scanner func(dir string) (scan.FileItems, error)

// Collector owns the visible thumbnail list. It is confined to a single
// goroutine: StartScan, OnResult, Collect and Snapshot must all be called
// from the goroutine that owns the Collector. Worker goroutines cross over
// only through the results channel.
type Collector struct {
	codec   Codec
	scanner Scanner

	results chan Result
	pool    *Pool

	gen         int64
	visible     []ListEntry
	concurrency int
	thumbWidth  int
	thumbHeight int
}

// NewCollector creates a Collector decoding through codec and listing
// folders through scanner.
func NewCollector(codec Codec, scanner Scanner) *Collector {
	return &Collector{
		codec:       codec,
		scanner:     scanner,
		results:     make(chan Result, resultBuffer),
		concurrency: DefaultConcurrency,
		thumbWidth:  DefaultThumbWidth,
		thumbHeight: DefaultThumbHeight,
	}
}

// StartScan begins a fresh scan of folder. The generation counter is
// incremented and the visible list cleared before anything else, so results
// still in flight from earlier scans are dropped on arrival. Returns the
// number of jobs submitted. On a scan error nothing is submitted and the
// cleared visible list remains empty.
func (c *Collector) StartScan(folder string) (int, error) {
	c.gen++
	c.visible = nil

	items, err := c.scanner(folder)
	if err != nil {
		return 0, err
	}

	// A fresh pool per scan: a concurrency change applies here, never to a
	// running scan. The abandoned pool finishes its jobs into the shared
	// results channel, where the generation tag filters them out.
	c.pool = NewPool(c.codec, c.concurrency, c.results)
	for _, item := range items {
		c.pool.Submit(Job{Path: item.Path, Width: c.thumbWidth, Height: c.thumbHeight, Gen: c.gen})
	}
	log.Debug().Str("folder", folder).Int("jobs", len(items)).Int64("gen", c.gen).Msg("scan started")
	return len(items), nil
}

// OnResult folds one worker result into the visible list, in arrival order.
// Results from a superseded generation are dropped.
func (c *Collector) OnResult(r Result) {
	if r.Gen != c.gen {
		log.Debug().Str("path", r.Path).Int64("gen", r.Gen).Int64("current", c.gen).Msg("dropping stale thumbnail")
		return
	}
	c.visible = append(c.visible, ListEntry{
		Path:   r.Path,
		Name:   filepath.Base(r.Path),
		Raster: r.Raster,
	})
}

// Collect drains n results from the channel, folding each into the visible
// list. It blocks until n results have arrived.
func (c *Collector) Collect(n int) {
	for i := 0; i < n; i++ {
		c.OnResult(<-c.results)
	}
}

// Results exposes the worker result channel for callers that drain it in a
// select loop. Every received value must be handed to OnResult.
func (c *Collector) Results() <-chan Result {
	return c.results
}

// Snapshot returns a copy of the visible list.
func (c *Collector) Snapshot() []ListEntry {
	out := make([]ListEntry, len(c.visible))
	copy(out, c.visible)
	return out
}

// SetConcurrency sets the worker limit for subsequent scans. Values <= 0
// select DefaultConcurrency. A running scan keeps its old limit.
func (c *Collector) SetConcurrency(n int) {
	c.concurrency = n
}

// SetThumbSize sets the thumbnail bounding box for subsequent scans.
// Non-positive values are ignored.
func (c *Collector) SetThumbSize(w, h int) {
	if w > 0 {
		c.thumbWidth = w
	}
	if h > 0 {
		c.thumbHeight = h
	}
}

// Generation returns the current generation token.
func (c *Collector) Generation() int64 {
	return c.gen
}
