package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/pend/internal/ident"
)

// Directory names within the store root.
const (
	contentDir = "content"
	pointerDir = "pointers"
	tmpDir     = "tmp"
)

// File modes. Everything is owner-only; blobs are read-only once
// published.
const (
	dirMode     fs.FileMode = 0o700
	tempMode    fs.FileMode = 0o600
	blobMode    fs.FileMode = 0o400
	pointerMode fs.FileMode = 0o600
)

// FileStore is the durable backend. Blobs and pointers live in sharded
// directory trees under a single root.
//
// FileStore is safe for concurrent reads. Concurrent writes of the same
// blob are harmless (the loser's rename replaces identical bytes);
// concurrent SetPointer calls are last-writer-wins.
type FileStore struct {
	root     string
	content  string
	pointers string
	tmp      string
	names    NameGenerator
	logger   *slog.Logger
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithNameGenerator overrides how temp files are named.
func WithNameGenerator(g NameGenerator) FileOption {
	return func(s *FileStore) { s.names = g }
}

// WithLogger sets the logger for commit and dedup events. A nil logger
// keeps slog.Default.
func WithLogger(l *slog.Logger) FileOption {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewFileStore opens (creating if needed) a store rooted at root.
// Fails with ErrStorageUnavailable if any of the directories cannot be
// created.
func NewFileStore(root string, opts ...FileOption) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("open store: empty root: %w", ErrStorageUnavailable)
	}
	root = filepath.Clean(root)
	s := &FileStore{
		root:     root,
		content:  filepath.Join(root, contentDir),
		pointers: filepath.Join(root, pointerDir),
		tmp:      filepath.Join(root, tmpDir),
		names:    UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, dir := range []string{s.root, s.content, s.pointers, s.tmp} {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return nil, unavailable("create directory", dir, err)
		}
	}
	return s, nil
}

func (s *FileStore) String() string {
	return fmt.Sprintf("pend store (%s)", s.root)
}

// Root returns the store's root directory.
func (s *FileStore) Root() string {
	return s.root
}

// ContentPath returns the sharded path of a blob. id must be valid.
func (s *FileStore) ContentPath(id ident.ContentID) string {
	return shardPath(s.content, string(id))
}

// PointerPath returns the sharded path of a pointer file. p must be valid.
func (s *FileStore) PointerPath(p ident.ContentID) string {
	return shardPath(s.pointers, string(p))
}

// TempDir returns the scratch directory used for in-flight writes.
func (s *FileStore) TempDir() string {
	return s.tmp
}

// Put streams data through a Writer.
func (s *FileStore) Put(data []byte) (ident.ContentID, error) {
	w, err := s.OpenWriter()
	if err != nil {
		return "", err
	}
	defer w.Close()
	if _, err := w.Write(data); err != nil {
		return "", err
	}
	return w.Commit()
}

// Get reads the whole blob stored under id.
func (s *FileStore) Get(id ident.ContentID) ([]byte, error) {
	if err := ident.Check(string(id)); err != nil {
		return nil, err
	}
	path := s.ContentPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classify("read blob", path, err)
	}
	return data, nil
}

// Has reports whether a blob file exists for id.
func (s *FileStore) Has(id ident.ContentID) (bool, error) {
	if err := ident.Check(string(id)); err != nil {
		return false, err
	}
	path := s.ContentPath(id)
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if isMissing(err) {
		return false, nil
	}
	return false, unavailable("stat blob", path, err)
}

// OpenWriter creates a temp file in the scratch directory and returns a
// Writer over it.
func (s *FileStore) OpenWriter() (Writer, error) {
	f, err := s.createTemp()
	if err != nil {
		return nil, err
	}
	return newFileWriter(s, f), nil
}

// OpenReader opens the blob file for id.
func (s *FileStore) OpenReader(id ident.ContentID) (io.ReadCloser, error) {
	if err := ident.Check(string(id)); err != nil {
		return nil, err
	}
	path := s.ContentPath(id)
	f, err := os.Open(path)
	if err != nil {
		return nil, classify("open blob", path, err)
	}
	return f, nil
}

// Find walks only the shard directories compatible with prefix.
func (s *FileStore) Find(prefix string) ([]ident.ContentID, error) {
	if err := ident.Check(prefix, ident.Partial()); err != nil {
		return nil, err
	}
	var ids []ident.ContentID
	err := filepath.WalkDir(s.content, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == s.content {
			return nil
		}
		key := unshard(s.content, path)
		if d.IsDir() {
			if !strings.HasPrefix(key, prefix) && !strings.HasPrefix(prefix, key) {
				return filepath.SkipDir
			}
			return nil
		}
		// Anything that is not a full identifier is not ours.
		if strings.HasPrefix(key, prefix) && ident.Validate(key) {
			ids = append(ids, ident.ContentID(key))
		}
		return nil
	})
	if err != nil {
		return nil, unavailable("walk content", s.content, err)
	}
	sortIDs(ids)
	return ids, nil
}

// List returns every blob id in the store.
func (s *FileStore) List() ([]ident.ContentID, error) {
	return s.Find("")
}

// SetPointer replaces the pointer file for p with one holding id.
// The new file is written in tmp/ and renamed into place, so readers see
// either the old or the new value.
func (s *FileStore) SetPointer(p, id ident.ContentID) error {
	if err := ident.Check(string(p)); err != nil {
		return err
	}
	if err := ident.Check(string(id)); err != nil {
		return err
	}

	finalPath := s.PointerPath(p)
	if err := os.MkdirAll(filepath.Dir(finalPath), dirMode); err != nil {
		return unavailable("create pointer shard", filepath.Dir(finalPath), err)
	}

	f, err := s.createTemp()
	if err != nil {
		return err
	}
	tmpPath := f.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := f.WriteString(string(id)); err != nil {
		f.Close()
		return unavailable("write pointer", tmpPath, err)
	}
	if err := f.Chmod(pointerMode); err != nil {
		f.Close()
		return unavailable("chmod pointer", tmpPath, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return unavailable("sync pointer", tmpPath, err)
	}
	if err := f.Close(); err != nil {
		return unavailable("close pointer", tmpPath, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return unavailable("rename pointer", finalPath, err)
	}

	success = true
	s.logger.Debug("pointer set", "pointer", p, "id", id)
	return nil
}

// DeletePointer removes the pointer file for p, if any.
func (s *FileStore) DeletePointer(p ident.ContentID) error {
	if err := ident.Check(string(p)); err != nil {
		return err
	}
	path := s.PointerPath(p)
	if err := os.Remove(path); err != nil && !isMissing(err) {
		return unavailable("remove pointer", path, err)
	}
	s.logger.Debug("pointer deleted", "pointer", p)
	return nil
}

// GetPointer reads the pointer file for p. A missing file means the
// pointer was never set and is not an error.
func (s *FileStore) GetPointer(p ident.ContentID) (ident.ContentID, bool, error) {
	if err := ident.Check(string(p)); err != nil {
		return "", false, err
	}
	path := s.PointerPath(p)
	data, err := os.ReadFile(path)
	if err != nil {
		if isMissing(err) {
			return "", false, nil
		}
		return "", false, unavailable("read pointer", path, err)
	}
	id := string(data)
	if !ident.Validate(id) {
		return "", false, &PathError{
			Op:   "read pointer",
			Path: path,
			Kind: ErrCorrupt,
			Err:  fmt.Errorf("%w: %q", ident.ErrInvalidIdentifier, id),
		}
	}
	return ident.ContentID(id), true, nil
}

// createTemp opens a new, uniquely named file in tmp/ with owner-only
// permissions. O_EXCL guarantees the name was not already taken.
func (s *FileStore) createTemp() (*os.File, error) {
	path := filepath.Join(s.tmp, s.names.Generate())
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, tempMode)
	if err != nil {
		return nil, unavailable("create temp file", path, err)
	}
	return f, nil
}

func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// classify maps an open/read failure to NotFound or StorageUnavailable.
func classify(op, path string, err error) error {
	if isMissing(err) {
		return notFound(op, path, err)
	}
	return unavailable(op, path, err)
}
