package session

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"eventspot/codec"
)

type fileRecord struct {
	Token    string   `json:"token"`
	Provider Provider `json:"provider,omitempty"`
	Sealed   bool     `json:"sealed,omitempty"`
}

// FileStore persists the credential as a small JSON document readable only by
// the current user. When a seal key is set the token is encrypted at rest.
type FileStore struct {
	path string
	key  []byte
	mu   sync.Mutex
}

func NewFileStore(path, sealKey string) *FileStore {
	s := &FileStore{path: path}
	if sealKey != "" {
		s.key = codec.Key(sealKey)
	}
	return s
}

// DefaultPath returns <user config dir>/eventspot/session.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("defaultPath: unable to resolve config dir: %w", err)
	}
	return filepath.Join(dir, "eventspot", "session.json"), nil
}

func (s *FileStore) Load() (Credential, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := ioutil.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Credential{}, false, nil
	}
	if err != nil {
		return Credential{}, false, fmt.Errorf("load: unable to read %s: %w", s.path, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return Credential{}, false, fmt.Errorf("load: unable to parse %s: %w", s.path, err)
	}
	if rec.Token == "" {
		return Credential{}, false, nil
	}

	token := rec.Token
	if rec.Sealed {
		if s.key == nil {
			return Credential{}, false, fmt.Errorf("load: token is sealed but no seal key is configured")
		}
		plain, err := codec.Decrypt(s.key, rec.Token)
		if err != nil {
			return Credential{}, false, fmt.Errorf("load: unable to unseal token: %w", err)
		}
		token = string(plain)
	}

	return Credential{Token: token, Provider: rec.Provider}, true, nil
}

func (s *FileStore) Save(c Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := fileRecord{Token: c.Token, Provider: c.Provider}
	if s.key != nil {
		sealed, err := codec.Encrypt(s.key, []byte(c.Token))
		if err != nil {
			return fmt.Errorf("save: unable to seal token: %w", err)
		}
		rec.Token, rec.Sealed = sealed, true
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("save: unable to encode credential: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("save: unable to create %s: %w", filepath.Dir(s.path), err)
	}

	tmp := s.path + ".tmp"
	if err := ioutil.WriteFile(tmp, b, 0600); err != nil {
		return fmt.Errorf("save: unable to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("save: unable to replace %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear: unable to remove %s: %w", s.path, err)
	}
	return nil
}
