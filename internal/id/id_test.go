package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NonEmpty(t *testing.T) {
	id, err := New()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Len(t, id, 36)
}

func TestNew_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := New()
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNew_Monotonic(t *testing.T) {
	prev, err := New()
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		next, err := New()
		require.NoError(t, err)
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestTime_RoundTrip(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id, err := New()
	require.NoError(t, err)

	ts, err := Time(id)
	require.NoError(t, err)
	assert.True(t, ts.After(before), "embedded time %v should be after %v", ts, before)
	assert.True(t, ts.Before(time.Now().Add(time.Second)))
}

func TestTime_Invalid(t *testing.T) {
	_, err := Time("not-an-id")
	assert.Error(t, err)

	_, err = Time("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Error(t, err)
}
