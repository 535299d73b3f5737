package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cardexhq/cardex/internal/cards"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLocalSourceList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "card1.jpg"), []byte("a"))
	writeFile(t, filepath.Join(dir, "card2.PNG"), []byte("b"))
	writeFile(t, filepath.Join(dir, "nested", "card3.webp"), []byte("c"))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("skip me"))
	writeFile(t, filepath.Join(dir, "scan.pdf"), []byte("skip me too"))

	src := NewLocalSource(dir)
	refs, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(refs) != 3 {
		t.Fatalf("expected 3 images, got %d: %v", len(refs), refs)
	}

	names := make(map[string]bool)
	for _, ref := range refs {
		names[ref.FileName] = true
		if ref.Handle == "" {
			t.Errorf("ref %s has empty handle", ref.FileName)
		}
	}
	for _, want := range []string{"card1.jpg", "card2.PNG", "card3.webp"} {
		if !names[want] {
			t.Errorf("missing %s in %v", want, names)
		}
	}
}

func TestLocalSourceListDeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.jpg"), []byte("b"))
	writeFile(t, filepath.Join(dir, "a.jpg"), []byte("a"))
	writeFile(t, filepath.Join(dir, "c.jpg"), []byte("c"))

	src := NewLocalSource(dir)
	refs, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{"a.jpg", "b.jpg", "c.jpg"}
	for i, ref := range refs {
		if ref.FileName != want[i] {
			t.Errorf("position %d: got %s, want %s", i, ref.FileName, want[i])
		}
	}
}

func TestLocalSourceListMissingFolder(t *testing.T) {
	src := NewLocalSource(filepath.Join(t.TempDir(), "does-not-exist"))
	_, err := src.List(context.Background())
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestLocalSourceFetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card.jpg")
	writeFile(t, path, []byte("image-bytes"))

	src := NewLocalSource(dir)
	data, err := src.Fetch(context.Background(), cards.ImageRef{FileName: "card.jpg", Handle: path})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("unexpected bytes %q", data)
	}

	_, err = src.Fetch(context.Background(), cards.ImageRef{Handle: filepath.Join(dir, "missing.jpg")})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError, got %T: %v", err, err)
	}
}
