package yalealarm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// TokenStore is the interface for persisting the session token pair.
type TokenStore interface {
	SaveTokens(ctx context.Context, pair *TokenPair) error
	LoadTokens(ctx context.Context) (*TokenPair, error)
}

// FileTokenStore stores the token pair in a JSON file.
type FileTokenStore struct {
	filepath string
	mu       sync.RWMutex
}

// NewFileTokenStore creates a new FileTokenStore.
func NewFileTokenStore(filepath string) *FileTokenStore {
	return &FileTokenStore{
		filepath: filepath,
	}
}

// SaveTokens saves the token pair to the file.
func (f *FileTokenStore) SaveTokens(ctx context.Context, pair *TokenPair) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if pair == nil {
		return fmt.Errorf("token pair cannot be nil")
	}

	// Ensure the directory exists
	dir := filepath.Dir(f.filepath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(pair, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}

	// Write to a temporary file first, then rename for atomicity
	tmpFile := f.filepath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	if err := os.Rename(tmpFile, f.filepath); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to save token file: %w", err)
	}

	return nil
}

// LoadTokens loads the token pair from the file.
func (f *FileTokenStore) LoadTokens(ctx context.Context) (*TokenPair, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("token file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var pair TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	return &pair, nil
}

// Delete removes the token file.
func (f *FileTokenStore) Delete(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.filepath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// Exists checks if the token file exists.
func (f *FileTokenStore) Exists() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	_, err := os.Stat(f.filepath)
	return err == nil
}

// MemoryTokenStore stores the token pair in memory (useful for testing).
type MemoryTokenStore struct {
	pair *TokenPair
	mu   sync.RWMutex
}

// NewMemoryTokenStore creates a new in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// SaveTokens saves the token pair to memory.
func (m *MemoryTokenStore) SaveTokens(ctx context.Context, pair *TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = pair
	return nil
}

// LoadTokens loads the token pair from memory.
func (m *MemoryTokenStore) LoadTokens(ctx context.Context) (*TokenPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.pair == nil {
		return nil, fmt.Errorf("no tokens stored")
	}
	return m.pair, nil
}

// Clear removes the stored token pair.
func (m *MemoryTokenStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = nil
}
