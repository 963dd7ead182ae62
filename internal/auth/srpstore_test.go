package auth

import (
	"testing"
	"time"

	"github.com/fzdarsky/srp6a/pkg/srp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *srp.Server {
	t.Helper()
	params, err := srp.NamedParams(srp.GroupRFC5054_1024, srp.HashSHA256)
	require.NoError(t, err)
	engine, err := srp.NewParamsEngine(params)
	require.NoError(t, err)

	server := srp.NewServer(engine)
	require.NoError(t, server.SetCredentials("alice", []byte{7}, []byte("salt")))
	return server
}

// setClock replaces the store clock under its lock.
func setClock(s *HandshakeStore, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = func() time.Time { return now }
}

func TestHandshakeStore_StoreAndRetrieve(t *testing.T) {
	store := NewHandshakeStore(5 * time.Minute)
	defer store.Stop()

	server := newTestServer(t)
	sessionID, err := store.Store("alice", server)
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	assert.Equal(t, 1, store.Count())

	retrieved, username, ok := store.Retrieve(sessionID)
	require.True(t, ok)
	assert.Same(t, server, retrieved)
	assert.Equal(t, "alice", username)
	assert.Equal(t, 0, store.Count())

	// Single use.
	_, _, ok = store.Retrieve(sessionID)
	assert.False(t, ok)
}

func TestHandshakeStore_UniqueSessionIDs(t *testing.T) {
	store := NewHandshakeStore(time.Minute)
	defer store.Stop()

	seen := make(map[string]bool)
	for range 20 {
		id, err := store.Store("alice", newTestServer(t))
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate session ID %s", id)
		seen[id] = true
	}
	assert.Equal(t, 20, store.Count())
}

func TestHandshakeStore_RetrieveUnknown(t *testing.T) {
	store := NewHandshakeStore(time.Minute)
	defer store.Stop()

	server, username, ok := store.Retrieve("no-such-session")
	assert.False(t, ok)
	assert.Nil(t, server)
	assert.Empty(t, username)
}

func TestHandshakeStore_ExpiredHandshakeIsClosed(t *testing.T) {
	store := NewHandshakeStore(time.Minute)
	defer store.Stop()

	start := time.Now()
	setClock(store, start)

	server := newTestServer(t)
	sessionID, err := store.Store("alice", server)
	require.NoError(t, err)

	setClock(store, start.Add(2*time.Minute))

	_, _, ok := store.Retrieve(sessionID)
	assert.False(t, ok)
	assert.Equal(t, srp.StateFailed, server.State())
	assert.Equal(t, 0, store.Count())
}

func TestHandshakeStore_Cleanup(t *testing.T) {
	store := NewHandshakeStore(time.Minute)
	defer store.Stop()

	start := time.Now()
	setClock(store, start)

	expired := newTestServer(t)
	_, err := store.Store("alice", expired)
	require.NoError(t, err)

	setClock(store, start.Add(50*time.Second))
	live := newTestServer(t)
	liveID, err := store.Store("bob", live)
	require.NoError(t, err)

	setClock(store, start.Add(90*time.Second))
	store.cleanup()

	assert.Equal(t, 1, store.Count())
	assert.Equal(t, srp.StateFailed, expired.State())
	assert.Equal(t, srp.StateCredentialed, live.State())

	_, username, ok := store.Retrieve(liveID)
	assert.True(t, ok)
	assert.Equal(t, "bob", username)
}

func TestHandshakeStore_Stop(t *testing.T) {
	store := NewHandshakeStore(0)
	assert.Equal(t, DefaultHandshakeTTL, store.ttl)

	server := newTestServer(t)
	_, err := store.Store("alice", server)
	require.NoError(t, err)

	store.Stop()
	store.Stop()

	assert.Equal(t, 0, store.Count())
	assert.Equal(t, srp.StateFailed, server.State())
}
