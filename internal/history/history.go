// Package history keeps the linear edit log of an image editing session.
//
// The log always starts with the original image at index 0 and grows by
// appending one entry per confirmed edit. Indices stay dense: deleting an
// entry renumbers every later one so an index always matches its list
// position.
package history

import (
	"errors"
	"image"
)

// RootDescription labels the first entry of every log.
const RootDescription = "Original Image"

var (
	// ErrIndexOutOfRange reports an index that names no entry.
	ErrIndexOutOfRange = errors.New("history: index out of range")
	// ErrRootEntry reports an attempt to delete the original image.
	ErrRootEntry = errors.New("history: root entry cannot be deleted")
)

// Entry is one recorded state of the edited image.
type Entry struct {
	Index       int
	Image       image.Image
	Description string
}

// Log is the ordered list of image states for the session. Index 0 holds
// the original image and can never be deleted.
type Log struct {
	entries []Entry
}

// NewLog creates an empty log. The first Append establishes the root.
func NewLog() *Log {
	return &Log{}
}

// Reset drops every entry, returning the log to its empty state. It is
// called when a different image is opened; the next Append starts a new
// session's root.
func (l *Log) Reset() {
	l.entries = nil
}

// Append adds an entry at the tail and returns its index.
func (l *Log) Append(img image.Image, description string) int {
	e := Entry{Index: len(l.entries), Image: img, Description: description}
	l.entries = append(l.entries, e)
	return e.Index
}

// Get returns the entry at index.
func (l *Log) Get(index int) (Entry, error) {
	if index < 0 || index >= len(l.entries) {
		return Entry{}, ErrIndexOutOfRange
	}
	return l.entries[index], nil
}

// Delete removes the entry at index and returns the image to show next:
// the entry now occupying the deleted slot, or the previous entry when the
// tail was removed. The root entry is refused before the index is even
// range-checked, so Delete(0) fails on a log of any length.
func (l *Log) Delete(index int) (image.Image, error) {
	if index == 0 {
		return nil, ErrRootEntry
	}
	if index < 0 || index >= len(l.entries) {
		return nil, ErrIndexOutOfRange
	}

	l.entries = append(l.entries[:index], l.entries[index+1:]...)
	for i := index; i < len(l.entries); i++ {
		l.entries[i].Index = i
	}

	successor := index
	if successor >= len(l.entries) {
		successor = len(l.entries) - 1
	}
	return l.entries[successor].Image, nil
}

// Len reports the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the log in order.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
