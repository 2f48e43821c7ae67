package groutine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoNamesContext(t *testing.T) {
	names := make(chan string, 1)

	done := Go(context.Background(), "advertise", func(ctx context.Context) {
		names <- Name(ctx)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine MUST finish")
	}
	assert.Equal(t, "advertise", <-names)
}

func TestGoPropagatesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := Go(ctx, "waiter", func(ctx context.Context) {
		<-ctx.Done()
	})
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "cancelling the parent MUST stop the goroutine")
	}
}

func TestNameWithoutLabel(t *testing.T) {
	assert.Equal(t, "", Name(context.Background()))
	assert.Equal(t, "", Name(nil))
}
