// Package asset resolves the decorative graphics a form template refers to
// by name, such as the header logo.
//
// A Source maps a logical name ("docbits") to a decoded asset. Names may
// carry an extension; without one, each known extension is tried in turn.
package asset

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	fl "github.com/lvillar/formlayout"
)

// Extensions tried, in order, when a name has none.
var Extensions = []string{".svg", ".pdf", ".png", ".jpg", ".jpeg", ".webp", ".bmp", ".tiff", ".tif"}

// ErrNotFound is returned by a Source that has no asset of the given name.
var ErrNotFound = errors.New("asset not found")

// Source resolves asset names.
type Source interface {
	Resolve(ctx context.Context, name string) (*fl.Asset, error)
}

//go:embed builtin
var builtinFS embed.FS

// Builtin returns a source serving the assets shipped with the module.
func Builtin() *FS {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(err)
	}
	return NewFS(sub)
}

// FS resolves names against a file system.
type FS struct {
	fsys fs.FS
}

// NewFS creates a source over fsys.
func NewFS(fsys fs.FS) *FS { return &FS{fsys: fsys} }

// Dir creates a source over a directory on disk.
func Dir(dir string) *FS { return NewFS(os.DirFS(dir)) }

// Resolve implements Source.
func (s *FS) Resolve(ctx context.Context, name string) (*fl.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(name) || name == "." {
		return nil, fmt.Errorf("asset %q: invalid name: %w", name, fl.ErrAssetResolution)
	}
	for _, candidate := range candidates(name) {
		data, err := fs.ReadFile(s.fsys, candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("asset %q: %v: %w", name, err, fl.ErrAssetResolution)
		}
		return Decode(candidate, data)
	}
	return nil, fmt.Errorf("asset %q: %w: %w", name, ErrNotFound, fl.ErrAssetResolution)
}

func candidates(name string) []string {
	if path.Ext(name) != "" {
		return []string{name}
	}
	out := make([]string, 0, len(Extensions))
	for _, ext := range Extensions {
		out = append(out, name+ext)
	}
	return out
}

// Chain tries each source in order and returns the first hit. A source
// failing with ErrNotFound passes on to the next; any other error stops the
// chain.
type Chain []Source

// Resolve implements Source.
func (c Chain) Resolve(ctx context.Context, name string) (*fl.Asset, error) {
	for _, s := range c {
		a, err := s.Resolve(ctx, name)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("asset %q: %w: %w", name, ErrNotFound, fl.ErrAssetResolution)
}

// Map serves assets held in memory, keyed by file name.
type Map map[string][]byte

// Resolve implements Source.
func (m Map) Resolve(ctx context.Context, name string) (*fl.Asset, error) {
	for _, candidate := range candidates(name) {
		if data, ok := m[candidate]; ok {
			return Decode(candidate, data)
		}
	}
	return nil, fmt.Errorf("asset %q: %w: %w", name, ErrNotFound, fl.ErrAssetResolution)
}

// Cache memoizes successful lookups of an underlying source. Failures are not
// cached so a transient error can recover on the next render.
type Cache struct {
	src Source
	mu  sync.Mutex
	hit map[string]*fl.Asset
}

// NewCache wraps src.
func NewCache(src Source) *Cache {
	return &Cache{src: src, hit: make(map[string]*fl.Asset)}
}

// Resolve implements Source.
func (c *Cache) Resolve(ctx context.Context, name string) (*fl.Asset, error) {
	key := strings.ToLower(name)
	c.mu.Lock()
	a, ok := c.hit[key]
	c.mu.Unlock()
	if ok {
		return a, nil
	}
	a, err := c.src.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.hit[key] = a
	c.mu.Unlock()
	return a, nil
}

// Len returns the number of cached assets.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hit)
}
