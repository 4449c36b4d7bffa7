package store

import (
	"crypto/sha256"
	"hash"
	"os"
	"path/filepath"

	"github.com/roach88/pend/internal/ident"
)

// fileWriter implements the atomic commit protocol for FileStore.
//
// Bytes go to a temp file and into a running SHA-256 at the same time;
// the digest is never recomputed by re-reading the file.
type fileWriter struct {
	store  *FileStore
	file   *os.File
	path   string
	digest hash.Hash
	size   int64
	done   bool
}

func newFileWriter(s *FileStore, f *os.File) *fileWriter {
	return &fileWriter{
		store:  s,
		file:   f,
		path:   f.Name(),
		digest: sha256.New(),
	}
}

func (w *fileWriter) Write(p []byte) (int, error) {
	if w.done {
		return 0, ErrWriterClosed
	}
	n, err := w.file.Write(p)
	w.digest.Write(p[:n])
	w.size += int64(n)
	if err != nil {
		return n, unavailable("write temp file", w.path, err)
	}
	return n, nil
}

// Commit publishes the blob under its digest.
//
// The temp file is made read-only before it is moved, so the published
// file is never writable. If a blob with the same digest is already in
// place the temp file is deleted instead: equal digests mean equal bytes.
func (w *fileWriter) Commit() (ident.ContentID, error) {
	if w.done {
		return "", ErrWriterClosed
	}
	w.done = true

	// Clean up the temp file on any error path.
	success := false
	defer func() {
		if !success {
			if w.file != nil {
				w.file.Close()
			}
			os.Remove(w.path)
		}
	}()

	id := ident.FromHash(w.digest)

	if err := w.file.Sync(); err != nil {
		return "", unavailable("sync temp file", w.path, err)
	}
	if err := w.file.Chmod(blobMode); err != nil {
		return "", unavailable("chmod temp file", w.path, err)
	}
	err := w.file.Close()
	w.file = nil
	if err != nil {
		return "", unavailable("close temp file", w.path, err)
	}

	finalPath := w.store.ContentPath(id)

	if _, err := os.Stat(finalPath); err == nil {
		if err := os.Remove(w.path); err != nil {
			return "", unavailable("remove temp file", w.path, err)
		}
		success = true
		w.store.logger.Debug("blob already stored", "id", id)
		return id, nil
	} else if !isMissing(err) {
		return "", unavailable("stat blob", finalPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), dirMode); err != nil {
		return "", unavailable("create content shard", filepath.Dir(finalPath), err)
	}
	if err := os.Rename(w.path, finalPath); err != nil {
		return "", unavailable("rename blob", finalPath, err)
	}

	success = true
	w.store.logger.Debug("blob stored", "id", id, "size", w.size)
	return id, nil
}

// Close discards an uncommitted write. After Commit it does nothing.
func (w *fileWriter) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	closeErr := w.file.Close()
	w.file = nil
	if err := os.Remove(w.path); err != nil && !isMissing(err) {
		return unavailable("remove temp file", w.path, err)
	}
	if closeErr != nil {
		return unavailable("close temp file", w.path, closeErr)
	}
	return nil
}
