package history

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubImage returns an image whose width identifies it in assertions.
func stubImage(width int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, width, 1))
}

func seededLog(widths ...int) *Log {
	l := NewLog()
	l.Append(stubImage(widths[0]), RootDescription)
	for _, w := range widths[1:] {
		l.Append(stubImage(w), "Adjust Lighting")
	}
	return l
}

func TestLogReset(t *testing.T) {
	l := NewLog()
	assert.Zero(t, l.Len())

	l.Append(stubImage(10), RootDescription)
	l.Append(stubImage(20), "Adjust Lighting")
	require.Equal(t, 2, l.Len())

	// Opening a different image starts over from an empty log.
	l.Reset()
	assert.Zero(t, l.Len())
	_, err := l.Get(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	l.Append(stubImage(30), RootDescription)
	require.Equal(t, 1, l.Len())
	root, err := l.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 0, root.Index)
	assert.Equal(t, RootDescription, root.Description)
	assert.Equal(t, 30, root.Image.Bounds().Dx())
}

func TestLogAppend(t *testing.T) {
	l := NewLog()

	assert.Equal(t, 0, l.Append(stubImage(1), RootDescription))
	assert.Equal(t, 1, l.Append(stubImage(2), "Adjust Lighting"))
	assert.Equal(t, 2, l.Append(stubImage(3), "Adjust Colors"))
	assert.Equal(t, 3, l.Append(stubImage(4), "Crop and rotate."))
	assert.Equal(t, 4, l.Len())

	entries := l.Entries()
	for i, e := range entries {
		assert.Equal(t, i, e.Index)
	}
	assert.Equal(t, "Crop and rotate.", entries[3].Description)
}

func TestLogGet(t *testing.T) {
	l := seededLog(1, 2)

	e, err := l.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Image.Bounds().Dx())

	_, err = l.Get(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = l.Get(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestLogDeleteMiddle(t *testing.T) {
	// Entries A, B, C at widths 10, 20, 30.
	l := seededLog(10, 20, 30)

	next, err := l.Delete(1)
	require.NoError(t, err)
	assert.Equal(t, 30, next.Bounds().Dx(), "the entry that moved into the deleted slot is the successor")

	require.Equal(t, 2, l.Len())
	e, err := l.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Index)
	assert.Equal(t, 30, e.Image.Bounds().Dx())
}

func TestLogDeleteTail(t *testing.T) {
	l := seededLog(10, 20, 30)

	next, err := l.Delete(2)
	require.NoError(t, err)
	assert.Equal(t, 20, next.Bounds().Dx(), "deleting the tail falls back to the previous entry")
	assert.Equal(t, 2, l.Len())
}

func TestLogDeleteRoot(t *testing.T) {
	l := seededLog(10, 20)

	_, err := l.Delete(0)
	assert.ErrorIs(t, err, ErrRootEntry)
	assert.Equal(t, 2, l.Len(), "a refused delete leaves the log untouched")

	// Still refused when the root is the only entry left.
	_, err = l.Delete(1)
	require.NoError(t, err)
	_, err = l.Delete(0)
	assert.ErrorIs(t, err, ErrRootEntry)

	// And refused on an empty log, before any range check.
	empty := NewLog()
	_, err = empty.Delete(0)
	assert.ErrorIs(t, err, ErrRootEntry)
}

func TestLogDeleteOutOfRange(t *testing.T) {
	l := seededLog(10, 20)

	_, err := l.Delete(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = l.Delete(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, 2, l.Len())
}

func TestLogDeleteRenumbers(t *testing.T) {
	l := seededLog(10, 20, 30, 40, 50)

	_, err := l.Delete(2)
	require.NoError(t, err)

	entries := l.Entries()
	require.Len(t, entries, 4)
	widths := make([]int, 0, len(entries))
	for i, e := range entries {
		assert.Equal(t, i, e.Index, "indices must stay dense after a delete")
		widths = append(widths, e.Image.Bounds().Dx())
	}
	assert.Equal(t, []int{10, 20, 40, 50}, widths)
}

func TestLogEntriesIsACopy(t *testing.T) {
	l := seededLog(10, 20)

	entries := l.Entries()
	entries[0].Description = "mutated"

	root, err := l.Get(0)
	require.NoError(t, err)
	assert.Equal(t, RootDescription, root.Description)
}
