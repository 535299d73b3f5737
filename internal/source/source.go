// Package source enumerates and fetches business card images from
// a backing store (local filesystem or Google Drive).
package source

import (
	"context"
	"fmt"

	"github.com/cardexhq/cardex/internal/cards"
)

// Source lists card images and fetches their raw bytes.
type Source interface {
	// Name identifies the source kind ("local", "drive").
	Name() string

	// List enumerates all card images reachable from the configured root.
	List(ctx context.Context) ([]cards.ImageRef, error)

	// Fetch returns the raw bytes for one image.
	Fetch(ctx context.Context, ref cards.ImageRef) ([]byte, error)
}

// NotFoundError reports a missing image or root folder.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Name)
}

// IOError reports a read failure against the backing store.
type IOError struct {
	Op   string
	Name string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
