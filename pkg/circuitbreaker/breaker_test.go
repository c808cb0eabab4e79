package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errDown     = errors.New("connection refused")
	errRejected = errors.New("invalid email or password")
)

func testSettings() Settings {
	s := DefaultSettings("test")
	s.FailureThreshold = 2
	s.OpenTimeout = time.Hour
	s.IsSuccessful = func(err error) bool { return !errors.Is(err, errDown) }
	return s
}

func TestBreaker_OpensOnFailures(t *testing.T) {
	b := New[int](testSettings())

	for i := 0; i < 2; i++ {
		_, err := b.Execute(func() (int, error) { return 0, errDown })
		require.ErrorIs(t, err, errDown)
	}

	called := false
	_, err := b.Execute(func() (int, error) {
		called = true
		return 1, nil
	})

	assert.False(t, called)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "open", b.State())
}

func TestBreaker_SuccessfulErrorsDoNotTrip(t *testing.T) {
	b := New[int](testSettings())

	for i := 0; i < 5; i++ {
		_, err := b.Execute(func() (int, error) { return 0, errRejected })
		require.ErrorIs(t, err, errRejected)
	}

	v, err := b.Execute(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_DefaultCountsEveryError(t *testing.T) {
	s := DefaultSettings("test")
	s.FailureThreshold = 1
	s.OpenTimeout = time.Hour
	b := New[int](s)

	_, err := b.Execute(func() (int, error) { return 0, errRejected })
	require.ErrorIs(t, err, errRejected)

	_, err = b.Execute(func() (int, error) { return 1, nil })
	assert.ErrorIs(t, err, ErrUnavailable)
}
