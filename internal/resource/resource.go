package resource

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"
)

var (
	ErrNotFound   = errors.New("resource not found")
	ErrOutOfRange = errors.New("read outside resource bounds")
)

// Resource is an opened, read-only, byte-addressable blob. Its size is fixed
// for as long as it stays open.
type Resource interface {
	Name() string
	Size() int64
	ModTime() time.Time
	// ReadRange returns bytes [start, end], end inclusive.
	ReadRange(start, end int64) ([]byte, error)
	Close() error
}

// fileResource adapts an fs.File. Files that implement io.ReaderAt are read
// in place; anything else is buffered once on open.
type fileResource struct {
	name    string
	size    int64
	modTime time.Time
	file    fs.File
	at      io.ReaderAt
}

func newFileResource(name string, f fs.File, info fs.FileInfo) (*fileResource, error) {
	r := &fileResource{
		name:    name,
		size:    info.Size(),
		modTime: info.ModTime(),
		file:    f,
	}

	if at, ok := f.(io.ReaderAt); ok {
		r.at = at
		return r, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	r.at = bytesReaderAt(data)
	r.size = int64(len(data))
	return r, nil
}

func (r *fileResource) Name() string       { return r.name }
func (r *fileResource) Size() int64        { return r.size }
func (r *fileResource) ModTime() time.Time { return r.modTime }

func (r *fileResource) ReadRange(start, end int64) ([]byte, error) {
	if start < 0 || end < start || end >= r.size {
		if r.size == 0 && start == 0 && end == -1 {
			return []byte{}, nil
		}
		return nil, fmt.Errorf("%w: [%d, %d] of %d", ErrOutOfRange, start, end, r.size)
	}

	buf := make([]byte, end-start+1)
	n, err := r.at.ReadAt(buf, start)
	if n == len(buf) {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("read %s [%d, %d]: %w", r.name, start, end, err)
}

func (r *fileResource) Close() error {
	return r.file.Close()
}

// ReadAll returns the full content of a resource.
func ReadAll(r Resource) ([]byte, error) {
	return r.ReadRange(0, r.Size()-1)
}

type bytesReaderAt []byte

func (b bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
