package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitAll_CollectsEveryOutcome(t *testing.T) {
	boom := errors.New("boom")
	tasks := []Task{
		{Name: "ok", Run: func(context.Context) error { return nil }},
		{Name: "fails", Run: func(context.Context) error { return boom }},
		{Name: "slow-ok", Run: func(context.Context) error {
			time.Sleep(10 * time.Millisecond)
			return nil
		}},
	}

	outcomes := WaitAll(context.Background(), tasks)

	assert.Len(t, outcomes, 3)
	assert.Equal(t, "ok", outcomes[0].Name)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, boom, outcomes[1].Err)
	assert.NoError(t, outcomes[2].Err)
}

func TestWaitAll_FailureDoesNotCancelSiblings(t *testing.T) {
	var ran atomic.Int32
	tasks := []Task{
		{Name: "fails-fast", Run: func(context.Context) error { return errors.New("nope") }},
		{Name: "sibling", Run: func(context.Context) error {
			time.Sleep(5 * time.Millisecond)
			ran.Add(1)
			return nil
		}},
	}

	WaitAll(context.Background(), tasks)
	assert.Equal(t, int32(1), ran.Load())
}

func TestWaitAll_Empty(t *testing.T) {
	assert.Empty(t, WaitAll(context.Background(), nil))
}
