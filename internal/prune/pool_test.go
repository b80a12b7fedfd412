package prune

import (
	"context"
	"testing"
	"time"
)

func TestStoragePool_AcquireRelease(t *testing.T) {
	a := newFakeStore()
	b := newFakeStore()
	p := NewStoragePool([]Storage{a, b})

	if p.Size() != 2 {
		t.Fatalf("Size = %d, want 2", p.Size())
	}

	ctx := context.Background()
	h1, err := p.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := p.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// Pool is drained: the next acquire must block until a release.
	blocked, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := p.Acquire(blocked); err == nil {
		t.Fatal("Acquire on drained pool = nil, want context error")
	}

	p.Release(h1)
	h3, err := p.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	p.Release(h2)
	p.Release(h3)
}

func TestStoragePool_AcquireCancelled(t *testing.T) {
	s := newFakeStore()
	p := NewStoragePool([]Storage{s})

	held, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release(held)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Acquire(ctx); err != context.Canceled {
		t.Errorf("Acquire(cancelled) = %v, want context.Canceled", err)
	}
}
