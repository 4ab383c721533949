package queue

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestQueuePreservesSubmissionOrder(t *testing.T) {
	q := New(16, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Run(ctx)

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		if err := q.Submit(ctx, Task{
			SessionID: "s1",
			Fn: func(ctx context.Context) error {
				defer wg.Done()
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			},
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tasks to drain")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if v != i {
			t.Fatalf("expected order-preserving drain, got %v", order)
		}
	}
}

func TestQueueRecoversFromPanic(t *testing.T) {
	q := New(4, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Run(ctx)

	var ran bool
	var wg sync.WaitGroup
	wg.Add(2)

	if err := q.Submit(ctx, Task{SessionID: "s1", Fn: func(ctx context.Context) error {
		defer wg.Done()
		panic("boom")
	}}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := q.Submit(ctx, Task{SessionID: "s1", Fn: func(ctx context.Context) error {
		defer wg.Done()
		ran = true
		return nil
	}}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out: queue likely stuck after panic")
	}

	if !ran {
		t.Error("expected task after panicking task to still run")
	}
}

func TestSubmitBlocksThenCancels(t *testing.T) {
	q := New(1, nil)
	ctx := context.Background()

	// Fill the buffer without a running consumer.
	if err := q.Submit(ctx, Task{Fn: func(context.Context) error { return nil }}); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	submitCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := q.Submit(submitCtx, Task{Fn: func(context.Context) error { return nil }})
	if err == nil {
		t.Fatal("expected Submit to block and then return a cancellation error")
	}
}
