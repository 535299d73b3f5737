package batch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cardexhq/cardex/internal/cards"
)

func makeImages(n int) []cards.ImageRef {
	images := make([]cards.ImageRef, n)
	for i := range images {
		images[i] = cards.ImageRef{FileName: fmt.Sprintf("card-%03d.jpg", i), Handle: fmt.Sprintf("card-%03d.jpg", i)}
	}
	return images
}

func TestRunPreservesOrder(t *testing.T) {
	images := makeImages(50)

	// Random latency so completion order differs from submission order.
	driver := func(ctx context.Context, ref cards.ImageRef) cards.Outcome {
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
		name := ref.FileName
		return cards.Outcome{FileName: ref.FileName, Rows: []cards.Row{{FullName: &name}}}
	}

	outcomes, err := Run(context.Background(), images, driver, Options{Concurrency: 8})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(outcomes) != len(images) {
		t.Fatalf("expected %d outcomes, got %d", len(images), len(outcomes))
	}
	for i, o := range outcomes {
		if o.FileName != images[i].FileName {
			t.Errorf("position %d: got %s, want %s", i, o.FileName, images[i].FileName)
		}
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	images := makeImages(30)

	var active, peak int64
	var mu sync.Mutex
	driver := func(ctx context.Context, ref cards.ImageRef) cards.Outcome {
		cur := atomic.AddInt64(&active, 1)
		mu.Lock()
		if cur > peak {
			peak = cur
		}
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt64(&active, -1)
		return cards.Outcome{FileName: ref.FileName}
	}

	_, err := Run(context.Background(), images, driver, Options{Concurrency: 4})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if peak > 4 {
		t.Errorf("concurrency bound violated: peak %d", peak)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	images := makeImages(10)

	driver := func(ctx context.Context, ref cards.ImageRef) cards.Outcome {
		if ref.FileName == "card-003.jpg" || ref.FileName == "card-007.jpg" {
			return cards.Outcome{FileName: ref.FileName, Err: errors.New("boom")}
		}
		return cards.Outcome{FileName: ref.FileName}
	}

	outcomes, err := Run(context.Background(), images, driver, Options{Concurrency: 3})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	failed := 0
	for _, o := range outcomes {
		if o.Failed() {
			failed++
		}
	}
	if failed != 2 {
		t.Errorf("expected 2 failures, got %d", failed)
	}
}

func TestRunContainsPanics(t *testing.T) {
	images := makeImages(5)

	driver := func(ctx context.Context, ref cards.ImageRef) cards.Outcome {
		if ref.FileName == "card-002.jpg" {
			panic("corrupt image")
		}
		return cards.Outcome{FileName: ref.FileName}
	}

	outcomes, err := Run(context.Background(), images, driver, Options{Concurrency: 2})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcomes[2].Failed() {
		t.Error("expected panicking image to fail")
	}
	for i, o := range outcomes {
		if i != 2 && o.Failed() {
			t.Errorf("image %d should not have failed: %v", i, o.Err)
		}
	}
}

func TestRunRejectsInvalidConcurrency(t *testing.T) {
	driver := func(ctx context.Context, ref cards.ImageRef) cards.Outcome {
		return cards.Outcome{}
	}
	_, err := Run(context.Background(), makeImages(1), driver, Options{Concurrency: 0})
	var contractErr *ContractError
	if !errors.As(err, &contractErr) {
		t.Errorf("expected ContractError, got %T: %v", err, err)
	}
}

func TestRunEmptyInput(t *testing.T) {
	called := false
	driver := func(ctx context.Context, ref cards.ImageRef) cards.Outcome {
		called = true
		return cards.Outcome{}
	}

	outcomes, err := Run(context.Background(), nil, driver, Options{Concurrency: 3})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(outcomes) != 0 {
		t.Errorf("expected empty outcomes, got %d", len(outcomes))
	}
	if called {
		t.Error("driver should not run for empty input")
	}
}

func TestRunCancellation(t *testing.T) {
	images := makeImages(20)
	ctx, cancel := context.WithCancel(context.Background())

	var processed int64
	driver := func(ctx context.Context, ref cards.ImageRef) cards.Outcome {
		if atomic.AddInt64(&processed, 1) == 3 {
			cancel()
		}
		time.Sleep(time.Millisecond)
		return cards.Outcome{FileName: ref.FileName}
	}

	outcomes, err := Run(ctx, images, driver, Options{Concurrency: 2})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(outcomes) != len(images) {
		t.Fatalf("expected %d outcomes, got %d", len(images), len(outcomes))
	}

	canceled := 0
	for _, o := range outcomes {
		if o.Failed() && errors.Is(o.Err, context.Canceled) {
			canceled++
		}
	}
	if canceled == 0 {
		t.Error("expected some outcomes marked canceled")
	}
}
