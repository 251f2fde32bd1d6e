package auth

import (
	"fmt"
	"os"
	"sync"
)

// FileSecretStore reads the service-account key PEM from a file. The key
// is handed out at most once per cycle so a second caller cannot observe
// the buffer after the signing step has zeroed it.
type FileSecretStore struct {
	path string

	mu   sync.Mutex
	read bool
}

func NewFileSecretStore(path string) *FileSecretStore {
	return &FileSecretStore{path: path}
}

func (s *FileSecretStore) LoadPrivateKey() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.read {
		return nil, fmt.Errorf("private key already consumed this cycle")
	}
	key, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	s.read = true
	return key, nil
}
