package session

import "sync"

// MemoryStore keeps the credential for the lifetime of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	cred *Credential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (Credential, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil || s.cred.Token == "" {
		return Credential{}, false, nil
	}
	return *s.cred, true, nil
}

func (s *MemoryStore) Save(c Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = &c
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
	return nil
}
