package session

import (
	"context"
	"sync"
	"time"

	"github.com/efreitasn/orderdesk/internal/domain"
	"github.com/google/uuid"
)

type memoryEntry struct {
	userID    string
	expiresAt time.Time
}

// MemoryStore is the single-process fallback used when no Redis URL is
// configured. Expired tokens are dropped lazily on lookup.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]memoryEntry
	ttl    time.Duration
	now    func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		tokens: make(map[string]memoryEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a token for userID that expires after the store TTL.
func (s *MemoryStore) Issue(_ context.Context, userID string) (string, error) {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = memoryEntry{userID: userID, expiresAt: s.now().Add(s.ttl)}
	return token, nil
}

// Resolve returns the user id behind token. Unknown and expired tokens
// yield domain.ErrInvalidToken.
func (s *MemoryStore) Resolve(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tokens[token]
	if !ok {
		return "", domain.ErrInvalidToken
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.tokens, token)
		return "", domain.ErrInvalidToken
	}
	return e.userID, nil
}

// Revoke deletes token. Revoking an unknown token is not an error.
func (s *MemoryStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
