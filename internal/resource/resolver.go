package resource

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"strings"
)

const DefaultIndex = "index.html"

// Resolver maps URL paths onto files in fsys.
type Resolver struct {
	fsys  fs.FS
	index string
	root  *os.Root
}

func NewResolver(fsys fs.FS, index string) *Resolver {
	if index == "" {
		index = DefaultIndex
	}
	return &Resolver{fsys: fsys, index: index}
}

// NewDirResolver serves the directory tree rooted at dir. Lookups go
// through os.Root, so symlinks cannot lead outside dir.
func NewDirResolver(dir, index string) (*Resolver, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open root %s: %w", dir, err)
	}
	r := NewResolver(root.FS(), index)
	r.root = root
	return r, nil
}

// Close releases the directory handle held by a NewDirResolver resolver.
func (r *Resolver) Close() error {
	if r.root == nil {
		return nil
	}
	return r.root.Close()
}

// Resolve opens the resource named by urlPath. Directories fall back to
// their index file. Missing, unreadable or escaping paths return
// ErrNotFound.
func (r *Resolver) Resolve(urlPath string) (Resource, error) {
	name, err := r.clean(urlPath)
	if err != nil {
		return nil, err
	}

	res, err := r.open(name)
	if err != errIsDir {
		return res, err
	}

	index := path.Join(name, r.index)
	res, err = r.open(index)
	if err == errIsDir {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, index)
	}
	return res, err
}

var errIsDir = fmt.Errorf("%w: is a directory", ErrNotFound)

func (r *Resolver) open(name string) (Resource, error) {
	f, err := r.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, errIsDir
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrNotFound, name)
	}

	res, err := newFileResource(name, f, info)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return res, nil
}

// clean turns a URL path into an fs.FS name. Query strings are stripped,
// percent-escapes decoded, and any ".." segment is rejected outright rather
// than collapsed.
func (r *Resolver) clean(urlPath string) (string, error) {
	if i := strings.IndexByte(urlPath, '?'); i != -1 {
		urlPath = urlPath[:i]
	}

	decoded, err := url.PathUnescape(urlPath)
	if err != nil {
		return "", fmt.Errorf("%w: bad escape in %q", ErrNotFound, urlPath)
	}

	if strings.ContainsRune(decoded, 0) || strings.Contains(decoded, "\\") {
		return "", fmt.Errorf("%w: invalid character in %q", ErrNotFound, urlPath)
	}

	for _, seg := range strings.Split(decoded, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: parent segment in %q", ErrNotFound, urlPath)
		}
	}

	name := strings.TrimPrefix(path.Clean("/"+decoded), "/")
	if name == "" {
		name = "."
	}
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("%w: invalid path %q", ErrNotFound, urlPath)
	}
	return name, nil
}
