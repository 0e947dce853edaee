package service

import (
	"fmt"
	"image"

	"github.com/uhwo/visuAlysium/internal/codec"
	"github.com/uhwo/visuAlysium/internal/history"
	"github.com/uhwo/visuAlysium/internal/scan"
	"github.com/uhwo/visuAlysium/internal/thumbs"
)

// Viewer abstracts the surface that shows the current image.
type Viewer interface {
	ShowImage(img image.Image)
}

// FolderStore records folders the user has opened.
type FolderStore interface {
	AddRecent(folder string) error
}

// Service is the main entry point for business logic. It owns the edit
// history, the thumbnail collector and the bridge to the viewer. All methods
// are meant to be called from the single goroutine that drives the session.
type Service struct {
	Log       *history.Log
	Collector *thumbs.Collector
	Images    *ImageService
	Viewer    Viewer
	Recents   FolderStore
	Logger    func(string)
}

// NewService constructs a new Service. recents may be nil when no store is
// attached, and a nil logger discards messages.
func NewService(viewer Viewer, recents FolderStore, logger func(string)) *Service {
	if logger == nil {
		logger = func(string) {}
	}
	return &Service{
		Log:       history.NewLog(),
		Collector: thumbs.NewCollector(codec.NewAdapter(), scan.ListImages),
		Images:    NewImageService(),
		Viewer:    viewer,
		Recents:   recents,
		Logger:    logger,
	}
}

// OpenImage loads the file at path, restarts the edit history with it as the
// original image and shows it.
func (s *Service) OpenImage(path string) error {
	info, img, err := s.Images.GetImageInfo(path)
	if err != nil {
		return err
	}
	s.Logger(fmt.Sprintf("Opened %s (%dx%d, %d bytes)", path, info.Width, info.Height, info.Size))
	s.Log.Reset()
	s.Log.Append(img, history.RootDescription)
	s.Viewer.ShowImage(img)
	return nil
}

// OnEntryChosen shows the history entry at index.
func (s *Service) OnEntryChosen(index int) error {
	entry, err := s.Log.Get(index)
	if err != nil {
		return err
	}
	s.Viewer.ShowImage(entry.Image)
	return nil
}

// OnEditConfirmed appends the edited image to the history, shows it and
// returns its new index.
func (s *Service) OnEditConfirmed(img image.Image, description string) int {
	index := s.Log.Append(img, description)
	s.Viewer.ShowImage(img)
	return index
}

// OnEntryDeleted removes the history entry at index and shows its successor.
// When the delete is refused the viewer is left untouched.
func (s *Service) OnEntryDeleted(index int) error {
	next, err := s.Log.Delete(index)
	if err != nil {
		return err
	}
	s.Viewer.ShowImage(next)
	return nil
}

// ScanFolder starts a thumbnail scan of folder and records it as a recent
// folder. It returns the number of queued thumbnail jobs.
func (s *Service) ScanFolder(folder string) (int, error) {
	n, err := s.Collector.StartScan(folder)
	if err != nil {
		return 0, err
	}
	if s.Recents != nil {
		if err := s.Recents.AddRecent(folder); err != nil {
			s.Logger(fmt.Sprintf("Failed to record recent folder %s: %v", folder, err))
		}
	}
	s.Logger(fmt.Sprintf("Scanning %s: %d images queued", folder, n))
	return n, nil
}
