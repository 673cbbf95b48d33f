// Package seeders fills an empty store with demo data for local
// development. Each seeder file registers itself in init; `lumenera seed`
// runs them all.
package seeders

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// SeederFunc inserts one collection's worth of demo documents.
type SeederFunc func(ctx context.Context, db *mongo.Database) error

type entry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []entry
)

// Register queues a seeder under name. Called from init in seeder files.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	entries = append(entries, entry{name: name, fn: fn})
	mu.Unlock()
}

// RunAll runs every registered seeder in registration order, stopping at
// the first failure.
func RunAll(ctx context.Context, db *mongo.Database) error {
	mu.Lock()
	queued := append([]entry(nil), entries...)
	mu.Unlock()

	if len(queued) == 0 {
		fmt.Println("  (no seeders registered)")
		return nil
	}

	for _, e := range queued {
		fmt.Printf("  • %s … ", e.name)
		if err := e.fn(ctx, db); err != nil {
			fmt.Println("FAILED")
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		fmt.Println("done")
	}
	return nil
}
