package feed

import (
	"time"

	"github.com/feedmux/feedmux-go/pkg/registry"
)

// Handler receives values emitted by a feed for a key.
type Handler func(key string, value any)

// Ticker returns a start function that emits an incrementing sequence
// number for key every interval until torn down. The handler is called
// from the feed's own goroutine.
func Ticker(key string, interval time.Duration, handler Handler) registry.StartFunc {
	return func() (registry.TeardownFunc, error) {
		ticker := time.NewTicker(interval)
		done := make(chan struct{})

		go func() {
			var seq uint64
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					seq++
					handler(key, seq)
				}
			}
		}()

		return func() {
			ticker.Stop()
			close(done)
		}, nil
	}
}
