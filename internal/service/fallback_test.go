package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCandidates(t *testing.T) {
	got := Candidates("gemini-1.5-pro", []string{"gemini-1.5-flash", " ", "gemini-1.5-pro", "gemini-pro"})
	require.Equal(t, []string{"gemini-1.5-pro", "gemini-1.5-flash", "gemini-pro"}, got)
}

func newTestChain(delay time.Duration, slept *[]time.Duration) *FallbackChain {
	c := NewFallbackChain(delay)
	c.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return c
}

func TestFallbackChainStopsAtFirstSuccess(t *testing.T) {
	var slept []time.Duration
	chain := newTestChain(time.Second, &slept)

	var tried []string
	used, attempts, err := chain.Run(context.Background(), []string{"a", "b", "c"}, func(_ context.Context, name string) error {
		tried = append(tried, name)
		if name == "a" {
			return errors.New("429 quota")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "b", used)
	require.Equal(t, []string{"a", "b"}, tried)
	require.Len(t, attempts, 2)
	require.Equal(t, "429 quota", attempts[0].Error)
	require.Empty(t, attempts[1].Error)
	require.Equal(t, []time.Duration{time.Second}, slept)
}

func TestFallbackChainAllFail(t *testing.T) {
	var slept []time.Duration
	chain := newTestChain(time.Second, &slept)

	_, attempts, err := chain.Run(context.Background(), []string{"a", "b"}, func(_ context.Context, name string) error {
		return errors.New("404 not found: " + name)
	})
	var fbErr *FallbackError
	require.ErrorAs(t, err, &fbErr)
	require.Len(t, fbErr.Attempts, 2)
	require.Equal(t, KindModelNotFound, fbErr.Kind())
	require.Len(t, attempts, 2)
	require.Len(t, slept, 1, "no sleep after the last candidate")
}

func TestFallbackChainHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	chain := NewFallbackChain(time.Hour)

	calls := 0
	_, _, err := chain.Run(ctx, []string{"a", "b"}, func(_ context.Context, _ string) error {
		calls++
		cancel()
		return errors.New("network down")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
