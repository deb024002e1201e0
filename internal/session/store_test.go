package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionValues(t *testing.T) {
	store := NewStore(16, time.Minute)
	sess := store.Fetch("abc")

	sess.Set("k", "v")
	value, ok := sess.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", value)

	sess.Set("k", "v2")
	value, _ = sess.Get("k")
	require.Equal(t, "v2", value)

	sess.Remove("k")
	_, ok = sess.Get("k")
	require.False(t, ok)

	sess.Set("a", "1")
	sess.Set("b", "2")
	sess.Clear()
	_, ok = sess.Get("a")
	require.False(t, ok)
	_, ok = sess.Get("b")
	require.False(t, ok)
}

func TestFetchReturnsSameSession(t *testing.T) {
	store := NewStore(16, time.Minute)
	store.Fetch("abc").Set("k", "v")

	value, ok := store.Fetch("abc").Get("k")
	require.True(t, ok)
	require.Equal(t, "v", value)

	_, ok = store.Fetch("other").Get("k")
	require.False(t, ok)
}

func TestIdleSessionExpires(t *testing.T) {
	store := NewStore(16, 20*time.Millisecond)
	store.Fetch("abc").Set("k", "v")

	time.Sleep(60 * time.Millisecond)

	_, ok := store.Fetch("abc").Get("k")
	require.False(t, ok)
}
