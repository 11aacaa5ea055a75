package apikey

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"idverify/pkg/platform/sentinel"
)

// FileStore keeps key records as a JSON array on disk, matching the simple
// deployment where keys are issued by an operator and survive restarts.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Add(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.read()
	if err != nil {
		return err
	}
	for _, existing := range keys {
		if existing.ID == key.ID {
			return sentinel.ErrConflict
		}
	}
	return s.write(append(keys, key))
}

func (s *FileStore) FindByID(_ context.Context, id string) (Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.read()
	if err != nil {
		return Key{}, err
	}
	for _, key := range keys {
		if key.ID == id {
			return key, nil
		}
	}
	return Key{}, sentinel.ErrNotFound
}

func (s *FileStore) Update(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.read()
	if err != nil {
		return err
	}
	for i := range keys {
		if keys[i].ID == key.ID {
			keys[i] = key
			return s.write(keys)
		}
	}
	return sentinel.ErrNotFound
}

func (s *FileStore) List(_ context.Context) ([]Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) read() ([]Key, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read key file: %w", err)
	}

	var keys []Key
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("parse key file %s: %w", s.path, err)
	}
	return keys, nil
}

func (s *FileStore) write(keys []Key) error {
	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return fmt.Errorf("encode keys: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".keys-*.json")
	if err != nil {
		return fmt.Errorf("create temp key file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write key file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close key file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace key file: %w", err)
	}
	return nil
}
