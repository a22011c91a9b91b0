package app

import (
	"sync"
	"time"
)

// Clock schedules the repeating countdown tick.
// The returned stop function must be idempotent and must not block.
type Clock interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// RealClock ticks with time.Ticker on its own goroutine.
type RealClock struct{}

func (RealClock) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}
