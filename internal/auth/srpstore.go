package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/fzdarsky/srp6a/pkg/srp"
)

const (
	// DefaultHandshakeTTL is used when NewHandshakeStore gets a
	// non-positive TTL.
	DefaultHandshakeTTL = 5 * time.Minute

	// maxCleanupInterval caps how long an expired handshake may linger.
	maxCleanupInterval = time.Minute
)

// pendingHandshake is a responder waiting for the client proof.
type pendingHandshake struct {
	server    *srp.Server
	username  string
	expiresAt time.Time
}

// HandshakeStore keeps responders between Begin and Finish.
// Entries are single use and expire after the TTL; expired responders are
// closed so their secrets are wiped.
type HandshakeStore struct {
	mu      sync.Mutex
	pending map[string]*pendingHandshake
	ttl     time.Duration
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

// NewHandshakeStore creates a store and starts its cleanup goroutine.
// Call Stop to release it.
func NewHandshakeStore(ttl time.Duration) *HandshakeStore {
	if ttl <= 0 {
		ttl = DefaultHandshakeTTL
	}

	s := &HandshakeStore{
		pending: make(map[string]*pendingHandshake),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go s.cleanupLoop(min(ttl, maxCleanupInterval))

	return s
}

// Store saves a responder and returns a random session ID for it.
func (s *HandshakeStore) Store(username string, server *srp.Server) (string, error) {
	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	sessionID := base64.RawURLEncoding.EncodeToString(idBytes)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[sessionID] = &pendingHandshake{
		server:    server,
		username:  username,
		expiresAt: s.now().Add(s.ttl),
	}

	return sessionID, nil
}

// Retrieve removes and returns the responder stored under sessionID.
// ok is false when the ID is unknown or the handshake expired.
func (s *HandshakeStore) Retrieve(sessionID string) (server *srp.Server, username string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.pending[sessionID]
	if !exists {
		return nil, "", false
	}
	delete(s.pending, sessionID)

	if s.now().After(p.expiresAt) {
		p.server.Close()
		return nil, "", false
	}

	return p.server, p.username, true
}

// Count returns the number of pending handshakes.
func (s *HandshakeStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop ends the cleanup goroutine and closes every pending responder.
// It is safe to call more than once.
func (s *HandshakeStore) Stop() {
	s.once.Do(func() {
		close(s.stopCh)

		s.mu.Lock()
		defer s.mu.Unlock()
		for id, p := range s.pending {
			p.server.Close()
			delete(s.pending, id)
		}
	})
}

func (s *HandshakeStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup closes and removes expired handshakes.
func (s *HandshakeStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, p := range s.pending {
		if now.After(p.expiresAt) {
			p.server.Close()
			delete(s.pending, id)
		}
	}
}
