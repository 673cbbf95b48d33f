package event_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenera/backend/pkg/event"
)

func TestFireReachesEveryListener(t *testing.T) {
	t.Cleanup(event.Reset)

	var got []string
	event.Listen("order.placed", func(p interface{}) { got = append(got, "feed") })
	event.Listen("order.placed", func(p interface{}) { got = append(got, "mail") })

	event.Fire("order.placed", "ord-1")
	assert.Equal(t, []string{"feed", "mail"}, got)
}

func TestFireUnknownEventIsNoop(t *testing.T) {
	t.Cleanup(event.Reset)
	event.Fire("order.vanished", nil)
}

func TestFireAsyncDeliversPayload(t *testing.T) {
	t.Cleanup(event.Reset)

	var wg sync.WaitGroup
	wg.Add(1)
	var payload interface{}
	event.Listen("order.paid", func(p interface{}) {
		payload = p
		wg.Done()
	})

	event.FireAsync("order.paid", "ord-2")
	wg.Wait()
	assert.Equal(t, "ord-2", payload)
}
