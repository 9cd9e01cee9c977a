package waiting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ytget/s3-upload-tool/internal/waiting"
	"github.com/ytget/s3-upload-tool/internal/waiting/waitingtest"
)

func TestNoDelay_CompletesImmediately(t *testing.T) {
	ch, cancel := waiting.NoDelay().Wait()
	defer cancel()

	select {
	case <-ch:
	default:
		t.Fatal("zero delay did not complete immediately")
	}
}

func TestDelay_CancelReleasesWaiter(t *testing.T) {
	d := waiting.NewDelay(time.Hour)
	assert.False(t, d.IsZero())

	ch, cancel := d.Wait()
	cancel()
	cancel()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("cancelled delay did not close its channel")
	}
}

func TestFakeClock_RunsDueFunctionsInOrder(t *testing.T) {
	start := time.Unix(1000, 0)
	clock := waitingtest.NewFakeClock(start)
	var order []int

	clock.AfterFunc(2*time.Second, func() { order = append(order, 2) })
	clock.AfterFunc(time.Second, func() { order = append(order, 1) })
	stop := clock.AfterFunc(3*time.Second, func() { order = append(order, 3) })

	clock.Advance(2 * time.Second)
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, start.Add(2*time.Second), clock.Now())

	assert.True(t, stop())
	assert.False(t, stop())
	clock.Advance(time.Minute)
	assert.Equal(t, []int{1, 2}, order)
	assert.Zero(t, clock.Pending())
}

func TestSystemClock_AfterFunc(t *testing.T) {
	done := make(chan struct{})
	waiting.SystemClock().AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("AfterFunc never ran")
	}
}
