package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cardexhq/cardex/internal/cards"
)

// allowedExtensions are the image types accepted for extraction.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// LocalSource reads card images from a local folder, recursively.
type LocalSource struct {
	root string
}

// NewLocalSource creates a source rooted at the given folder.
func NewLocalSource(root string) *LocalSource {
	return &LocalSource{root: root}
}

// Name identifies the source kind.
func (s *LocalSource) Name() string {
	return "local"
}

// List walks the root folder and returns every image file found, in
// deterministic path order. Handle carries the absolute path for Fetch.
func (s *LocalSource) List(ctx context.Context) ([]cards.ImageRef, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Name: s.root}
		}
		return nil, &IOError{Op: "stat", Name: s.root, Err: err}
	}
	if !info.IsDir() {
		return nil, &NotFoundError{Name: s.root}
	}

	var refs []cards.ImageRef
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !allowedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		refs = append(refs, cards.ImageRef{
			FileName: d.Name(),
			Handle:   path,
		})
		return nil
	})
	if err != nil {
		return nil, &IOError{Op: "walk", Name: s.root, Err: err}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Handle < refs[j].Handle })
	return refs, nil
}

// Fetch reads the image bytes from disk.
func (s *LocalSource) Fetch(ctx context.Context, ref cards.ImageRef) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(ref.Handle)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Name: ref.Handle}
		}
		return nil, &IOError{Op: "read", Name: ref.Handle, Err: err}
	}
	return data, nil
}

var _ Source = (*LocalSource)(nil)
