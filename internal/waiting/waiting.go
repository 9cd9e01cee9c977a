// Package waiting helps write testable code that sleeps or schedules work
// for later.
package waiting

import (
	"sync"
	"time"
)

// Delay is a duration that some code waits for.
type Delay interface {
	// IsZero returns whether this is a zero-duration delay.
	IsZero() bool

	// Wait returns a channel that is closed after the delay elapses,
	// and a cancel function that must be used if the result is no longer
	// needed.
	Wait() (<-chan struct{}, func())
}

func NewDelay(duration time.Duration) Delay {
	return &realDelay{duration}
}

// NoDelay returns a zero delay.
func NoDelay() Delay {
	return NewDelay(0)
}

// Clock tells the time and runs functions after a duration.
type Clock interface {
	Now() time.Time

	// AfterFunc calls f on its own goroutine once d has elapsed.
	// The returned function cancels the call and reports whether it did.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type realDelay struct {
	duration time.Duration
}

func (d *realDelay) IsZero() bool {
	return d.duration == 0
}

func (d *realDelay) Wait() (<-chan struct{}, func()) {
	if d.IsZero() {
		return completedDelay(), func() {}
	}

	ch := make(chan struct{})
	cancel := make(chan struct{})

	go func() {
		timer := time.NewTimer(d.duration)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-cancel:
		}
		close(ch)
	}()
	var once sync.Once
	return ch, func() { once.Do(func() { close(cancel) }) }
}

func completedDelay() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
