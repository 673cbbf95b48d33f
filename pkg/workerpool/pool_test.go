package workerpool_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lumenera/backend/pkg/workerpool"
)

func TestAllTasksRun(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 64
	var ran atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		if err := pool.SubmitWait(func() {
			defer wg.Done()
			ran.Add(1)
		}); err != nil {
			t.Fatalf("SubmitWait: %v", err)
		}
	}
	wg.Wait()

	if got := ran.Load(); got != n {
		t.Errorf("ran %d of %d tasks", got, n)
	}
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()

	if err := pool.SubmitWait(func() {}); !errors.Is(err, workerpool.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	wg.Add(1)
	_ = pool.SubmitWait(func() {
		defer wg.Done()
		panic("bad upload")
	})
	wg.Wait()

	// The single worker must survive and pick up the next task.
	next := make(chan struct{})
	_ = pool.SubmitWait(func() { close(next) })

	select {
	case <-next:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic")
	}
}

func TestShutdownDrainsInFlight(t *testing.T) {
	pool := workerpool.New(4)

	var ran atomic.Int64
	for i := 0; i < 16; i++ {
		_ = pool.SubmitWait(func() {
			time.Sleep(time.Millisecond)
			ran.Add(1)
		})
	}
	pool.Shutdown()

	if got := ran.Load(); got != 16 {
		t.Errorf("Shutdown returned with %d of 16 tasks done", got)
	}
}
