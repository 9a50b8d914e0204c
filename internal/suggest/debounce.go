package suggest

import (
	"context"
	"sync"
	"time"

	"github.com/plantae/plantae/pkg/models"
)

// Suggester is the lookup the debouncer schedules.
type Suggester interface {
	Suggest(ctx context.Context, query string) []models.Suggestion
}

// Debouncer coalesces rapid-fire queries: each new query resets the delay
// timer and supersedes all earlier ones, so only the latest query's results
// are ever delivered.
type Debouncer struct {
	mu        sync.Mutex
	suggester Suggester
	delay     time.Duration
	timer     *time.Timer
	seq       uint64
}

// NewDebouncer creates a debouncer over the given suggester.
func NewDebouncer(suggester Suggester, delay time.Duration) *Debouncer {
	return &Debouncer{suggester: suggester, delay: delay}
}

// Query schedules a lookup after the debounce delay. If another query arrives
// before the delay elapses, this one is dropped. The deliver callback runs on
// a background goroutine and is skipped entirely when the query has been
// superseded by the time the lookup completes.
func (d *Debouncer) Query(ctx context.Context, query string, deliver func([]models.Suggestion)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	gen := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		results := d.suggester.Suggest(ctx, query)

		d.mu.Lock()
		current := d.seq == gen
		d.mu.Unlock()
		if current {
			deliver(results)
		}
	})
}

// Stop cancels any pending query and invalidates in-flight lookups.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
