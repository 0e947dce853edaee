// Package scan lists the image files sitting directly inside a folder.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/rs/zerolog/log"
)

// FileItem represents a candidate image file. Just a path for now.
type FileItem struct {
	Path string
}

// FileItems is a slice of FileItem
type FileItems []FileItem

// NewFileItem creates a new FileItem
func NewFileItem(p string) FileItem {
	return FileItem{
		Path: p,
	}
}

// ListImages returns the image files directly inside dir. It never recurses:
// subdirectories are skipped, not descended into. The order of the returned
// items is filesystem order and callers must not rely on it.
// An unreadable dir yields a nil slice and a wrapped error.
func ListImages(dir string) (FileItems, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", dir, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("failed to read folder %s: not a directory", dir)
	}

	var (
		mu    sync.Mutex
		items FileItems
	)
	conf := fastwalk.Config{
		Follow: true,
	}
	err = fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			log.Debug().Str("path", path).Err(err).Msg("skipping unreadable entry")
			return nil
		}
		if d.IsDir() {
			if path == dir {
				return nil
			}
			return fastwalk.SkipDir
		}
		if !IsImage(path) {
			return nil
		}
		mu.Lock()
		items = append(items, NewFileItem(path))
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", dir, err)
	}
	return items, nil
}

// IsImage checks if a file is an image, by extension.
func IsImage(n string) bool {
	switch strings.ToLower(filepath.Ext(n)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp":
		return true
	default:
		return false
	}
}
