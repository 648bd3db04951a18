// Package storage resolves source locators (paths or s3:// URIs) to readable streams.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotExist is returned when a locator names nothing
var ErrNotExist = errors.New("source does not exist")

// Opener opens a source locator for reading. Callers close the stream.
type Opener interface {
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// Dir opens locators as files. Relative locators resolve against Root.
type Dir struct {
	Root string
}

// Open opens the file named by locator
func (d Dir) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := d.resolve(locator)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// Stat reports whether the locator is readable
func (d Dir) Stat(locator string) error {
	path := d.resolve(locator)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return err
	}
	return nil
}

func (d Dir) resolve(locator string) string {
	locator = strings.TrimPrefix(locator, "file://")
	if filepath.IsAbs(locator) || d.Root == "" {
		return filepath.Clean(locator)
	}
	return filepath.Join(d.Root, locator)
}

// Router dispatches locators by URI scheme. Locators without a scheme, or with
// file://, go to Local.
type Router struct {
	Local   Opener
	Schemes map[string]Opener
}

// NewRouter creates a router that serves plain paths from local
func NewRouter(local Opener) *Router {
	return &Router{Local: local, Schemes: make(map[string]Opener)}
}

// Handle registers an opener for a scheme such as "s3"
func (r *Router) Handle(scheme string, o Opener) {
	r.Schemes[strings.ToLower(scheme)] = o
}

// Open resolves locator with the opener registered for its scheme
func (r *Router) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	scheme := Scheme(locator)
	if scheme == "" || scheme == "file" {
		if r.Local == nil {
			return nil, fmt.Errorf("no local opener configured for %q", locator)
		}
		return r.Local.Open(ctx, locator)
	}

	o, ok := r.Schemes[scheme]
	if !ok {
		return nil, fmt.Errorf("unsupported locator scheme %q", scheme)
	}
	return o.Open(ctx, locator)
}

// Scheme returns the lower-cased URI scheme of locator, or "" for plain paths.
// Single-letter schemes are treated as Windows drive letters.
func Scheme(locator string) string {
	u, err := url.Parse(locator)
	if err != nil || len(u.Scheme) < 2 {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
