// README: In-memory conversation registry.
package dialogue

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
)

// Store keeps live conversations by ID. Conversations exist only for the
// lifetime of the process; durable session storage is an external concern.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
}

func NewStore() *Store {
	return &Store{conversations: make(map[string]*Conversation)}
}

func (s *Store) Create() *Conversation {
	conv := newConversation(newID())
	s.mu.Lock()
	s.conversations[conv.ID] = conv
	s.mu.Unlock()
	return conv
}

func (s *Store) Get(id string) (*Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	return conv, ok
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.conversations, id)
	s.mu.Unlock()
}

func newID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
