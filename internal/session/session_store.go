package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	ErrNoSession      = errors.New("session: nothing stored")
	ErrCorruptSession = errors.New("session: stored session unreadable")
)

// Store is the single durable slot holding the current session. Only the
// Guard writes to it; everything else reads through a TokenSource.
type Store interface {
	Get(ctx context.Context) (Session, error)
	Set(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

type MemoryStore struct {
	mu  sync.Mutex
	val *Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(context.Context) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.val == nil {
		return Session{}, ErrNoSession
	}
	return *m.val, nil
}

func (m *MemoryStore) Set(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.val = &s
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.val = nil
	return nil
}

// FileStore keeps the session as JSON in a single 0600 file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(context.Context) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	return decodeSession(data)
}

func (f *FileStore) Set(_ context.Context, s Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (f *FileStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func decodeSession(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	if s.Token == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// StoreTokenSource reads the bearer token from the slot on every call so
// that a logout or re-login is picked up immediately.
type StoreTokenSource struct {
	Store Store
}

func (s StoreTokenSource) Token(ctx context.Context) (string, error) {
	sess, err := s.Store.Get(ctx)
	if errors.Is(err, ErrNoSession) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}
