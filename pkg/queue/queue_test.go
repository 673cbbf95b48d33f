package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenera/backend/pkg/queue"
)

// confirmationJob stands in for the purchase-confirmation email job: it
// records each delivery so tests can assert the worker ran it.
var delivered atomic.Int32

type confirmationJob struct {
	To string `json:"to"`
}

func (j *confirmationJob) Handle() error {
	delivered.Add(1)
	return nil
}

type brokenSMTPJob struct{}

func (j *brokenSMTPJob) Handle() error { return errors.New("smtp: connection refused") }

func init() {
	queue.StartWorkers(context.Background(), 2)
	queue.Register("*queue_test.confirmationJob", func() queue.Job { return &confirmationJob{} })
	queue.Register("*queue_test.brokenSMTPJob", func() queue.Job { return &brokenSMTPJob{} })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDispatchRunsJob(t *testing.T) {
	before := delivered.Load()
	require.NoError(t, queue.Dispatch(&confirmationJob{To: "buyer@example.com"}))
	waitFor(t, func() bool { return delivered.Load() > before })
}

func TestExhaustedJobIsDeadLettered(t *testing.T) {
	queue.SetMaxRetry(1)
	defer queue.SetMaxRetry(3)

	before := len(queue.FailedJobs())
	require.NoError(t, queue.Dispatch(&brokenSMTPJob{}))

	waitFor(t, func() bool { return len(queue.FailedJobs()) > before })
	failed := queue.FailedJobs()
	last := failed[len(failed)-1]
	assert.EqualError(t, last.Err, "smtp: connection refused")
	assert.Equal(t, 1, last.Attempts)
}

func TestConcurrentDispatch(t *testing.T) {
	before := delivered.Load()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, queue.Dispatch(&confirmationJob{To: "buyer@example.com"}))
		}()
	}
	wg.Wait()

	waitFor(t, func() bool { return delivered.Load() == before+20 })
}
