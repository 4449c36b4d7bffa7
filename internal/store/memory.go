package store

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/roach88/pend/internal/ident"
)

// MemoryStore keeps blobs and pointers in process memory.
//
// It is the degenerate form of FileStore: same API and validation, no
// filesystem. Useful for tests and for throwaway sessions.
//
// Thread-safety: all methods are safe for concurrent use.
type MemoryStore struct {
	mu       sync.Mutex
	content  map[ident.ContentID][]byte
	pointers map[ident.ContentID]ident.ContentID
	logger   *slog.Logger
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryLogger is WithLogger for a MemoryStore.
func WithMemoryLogger(l *slog.Logger) MemoryOption {
	return func(m *MemoryStore) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		content:  make(map[ident.ContentID][]byte),
		pointers: make(map[ident.ContentID]ident.ContentID),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryStore) String() string {
	return "pend store (in memory)"
}

// Put stores a copy of data.
func (m *MemoryStore) Put(data []byte) (ident.ContentID, error) {
	w, err := m.OpenWriter()
	if err != nil {
		return "", err
	}
	defer w.Close()
	if _, err := w.Write(data); err != nil {
		return "", err
	}
	return w.Commit()
}

// Get returns a copy of the blob stored under id.
func (m *MemoryStore) Get(id ident.ContentID) ([]byte, error) {
	if err := ident.Check(string(id)); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.content[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return cloneBytes(data), nil
}

// Has reports whether id is stored.
func (m *MemoryStore) Has(id ident.ContentID) (bool, error) {
	if err := ident.Check(string(id)); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.content[id]
	return ok, nil
}

// OpenWriter returns a Writer buffering in memory.
func (m *MemoryStore) OpenWriter() (Writer, error) {
	return &memWriter{store: m, digest: sha256.New()}, nil
}

// OpenReader returns a reader over the blob stored under id.
func (m *MemoryStore) OpenReader(id ident.ContentID) (io.ReadCloser, error) {
	data, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Find returns stored ids starting with prefix.
func (m *MemoryStore) Find(prefix string) ([]ident.ContentID, error) {
	if err := ident.Check(prefix, ident.Partial()); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []ident.ContentID
	for id := range m.content {
		if strings.HasPrefix(string(id), prefix) {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids, nil
}

// List returns all stored ids.
func (m *MemoryStore) List() ([]ident.ContentID, error) {
	return m.Find("")
}

// SetPointer makes p designate id.
func (m *MemoryStore) SetPointer(p, id ident.ContentID) error {
	if err := ident.Check(string(p)); err != nil {
		return err
	}
	if err := ident.Check(string(id)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pointers[p] = id
	m.logger.Debug("pointer set", "pointer", p, "id", id)
	return nil
}

// DeletePointer removes p.
func (m *MemoryStore) DeletePointer(p ident.ContentID) error {
	if err := ident.Check(string(p)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pointers, p)
	m.logger.Debug("pointer deleted", "pointer", p)
	return nil
}

// GetPointer returns the id p designates.
func (m *MemoryStore) GetPointer(p ident.ContentID) (ident.ContentID, bool, error) {
	if err := ident.Check(string(p)); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.pointers[p]
	return id, ok, nil
}

// memWriter accumulates bytes and digest in memory.
type memWriter struct {
	store  *MemoryStore
	digest hash.Hash
	buf    bytes.Buffer
	done   bool
}

func (w *memWriter) Write(p []byte) (int, error) {
	if w.done {
		return 0, ErrWriterClosed
	}
	w.digest.Write(p)
	return w.buf.Write(p)
}

func (w *memWriter) Commit() (ident.ContentID, error) {
	if w.done {
		return "", ErrWriterClosed
	}
	w.done = true
	id := ident.FromHash(w.digest)

	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	if _, ok := w.store.content[id]; ok {
		w.store.logger.Debug("blob already stored", "id", id)
		return id, nil
	}
	w.store.content[id] = cloneBytes(w.buf.Bytes())
	w.store.logger.Debug("blob stored", "id", id, "size", w.buf.Len())
	return id, nil
}

func (w *memWriter) Close() error {
	w.done = true
	w.buf.Reset()
	return nil
}

// cloneBytes copies b, returning an empty non-nil slice for empty input.
func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func sortIDs(ids []ident.ContentID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
