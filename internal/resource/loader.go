// Package resource resolves logical names and URLs to byte streams.
//
// A Loader plays the part of a search path: DirLoader tries several root
// directories in order, FSLoader serves any fs.FS (an embed.FS, for
// instance) and Chain stacks loaders. OpenURL adds scheme dispatch on top,
// so "res:tables/rates.txt" goes through the registered loader while
// "file:" and "http(s):" URLs are opened directly.
package resource

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no loader has a resource by that name.
var ErrNotFound = errors.New("resource not found")

// Loader opens named resources. Names use forward slashes and are relative
// to whatever root the loader serves.
type Loader interface {
	Open(name string) (io.ReadCloser, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(name string) (io.ReadCloser, error)

func (f LoaderFunc) Open(name string) (io.ReadCloser, error) { return f(name) }

// cleanName rejects names that would escape the loader's root.
func cleanName(name string) (string, error) {
	name = strings.TrimPrefix(name, "/")
	if name == "" || !fs.ValidPath(name) {
		return "", fmt.Errorf("invalid resource name %q", name)
	}
	return name, nil
}

type dirLoader struct {
	roots []string
}

// DirLoader searches roots in order and opens the first match.
func DirLoader(roots ...string) Loader {
	return &dirLoader{roots: roots}
}

func (d *dirLoader) Open(name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	for _, root := range d.roots {
		f, err := os.Open(filepath.Join(root, filepath.FromSlash(clean)))
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

type fsLoader struct {
	fsys fs.FS
}

// FSLoader serves resources out of fsys.
func FSLoader(fsys fs.FS) Loader {
	return &fsLoader{fsys: fsys}
}

func (l *fsLoader) Open(name string) (io.ReadCloser, error) {
	clean, err := cleanName(path.Clean(name))
	if err != nil {
		return nil, err
	}
	f, err := l.fsys.Open(clean)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, name)
	}
	return f, nil
}

// Chain tries each loader in turn. Only ErrNotFound moves on to the next
// loader; any other error is returned as is.
func Chain(loaders ...Loader) Loader {
	return LoaderFunc(func(name string) (io.ReadCloser, error) {
		for _, l := range loaders {
			rc, err := l.Open(name)
			if err == nil {
				return rc, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	})
}
