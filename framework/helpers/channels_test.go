package helpers_test

import (
	"testing"
	"time"

	"github.com/oamg/c2r-test-harness/framework/helpers"
	"github.com/oamg/c2r-test-harness/framework/opt"
	"github.com/oamg/c2r-test-harness/framework/suite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonBlockingSend(t *testing.T) {
	ch1 := make(chan string)
	assert.False(t, helpers.NonBlockingSend(ch1, "a"))

	ch2 := make(chan string, 1)
	assert.True(t, helpers.NonBlockingSend(ch2, "a"))
	assert.False(t, helpers.NonBlockingSend(ch2, "b"))
	assert.Equal(t, "a", <-ch2)
}

func TestTryReceive(t *testing.T) {
	ch := make(chan string, 1)
	assert.Equal(t, opt.None[string](), helpers.TryReceive(ch, time.Millisecond))

	ch <- "a"
	assert.Equal(t, opt.Some("a"), helpers.TryReceive(ch, time.Millisecond))

	go func() {
		time.Sleep(time.Millisecond * 50)
		ch <- "b"
	}()
	assert.Equal(t, opt.Some("b"), helpers.TryReceive(ch, time.Second))

	done := make(chan struct{})
	close(done)
	assert.True(t, helpers.TryReceive(done, time.Millisecond).IsDefined())
}

func TestRequireValue(t *testing.T) {
	ch := make(chan int, 1)
	var received int
	results := suite.Run(suite.TestConfiguration{}, func(t *suite.T) {
		t.Run("empty", func(t *suite.T) {
			_ = helpers.RequireValue(t, ch, time.Millisecond, "no exit status after %s", "1ms")
			t.Errorf("not reached")
		})
		t.Run("full", func(t *suite.T) {
			ch <- 2
			received = helpers.RequireValue(t, ch, time.Millisecond, "unused")
		})
	})

	require.Len(t, results.Failures, 1)
	failure := results.Failures[0]
	assert.Equal(t, "empty", failure.TestID.String())
	require.Len(t, failure.Errors, 1)
	assert.Contains(t, failure.Errors[0].Error(), "no exit status after 1ms")
	assert.Equal(t, 2, received)
}
