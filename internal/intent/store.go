package intent

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL bounds how long an abandoned checkout keeps its intent alive.
const DefaultTTL = 30 * time.Minute

// Intent is the ephemeral record of an order between submission and payment
// confirmation. It is never persisted; losing it drops the order.
type Intent struct {
	Name        string
	Phone       string
	Quantity    int
	TotalAmount int64
	PaymentRef  string
	expiresAt   time.Time
}

// Store keeps pending intents keyed by an opaque session token.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	intents map[string]Intent
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:     ttl,
		intents: make(map[string]Intent),
	}
}

// Put stores the intent and returns the session token identifying it.
func (s *Store) Put(in Intent) string {
	token := uuid.NewString()
	in.expiresAt = time.Now().Add(s.ttl)

	s.mu.Lock()
	s.intents[token] = in
	s.mu.Unlock()

	return token
}

// Get returns the intent for token, if present and unexpired.
func (s *Store) Get(token string) (Intent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.intents[token]
	if !ok {
		return Intent{}, false
	}
	if time.Now().After(in.expiresAt) {
		delete(s.intents, token)
		return Intent{}, false
	}
	return in, true
}

// Delete discards the intent for token. Deleting an absent token is a no-op.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	delete(s.intents, token)
	s.mu.Unlock()
}

// Janitor sweeps expired intents until ctx is cancelled.
func (s *Store) Janitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Store) sweep() {
	now := time.Now()

	s.mu.Lock()
	for token, in := range s.intents {
		if now.After(in.expiresAt) {
			delete(s.intents, token)
		}
	}
	s.mu.Unlock()
}
