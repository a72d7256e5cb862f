// files.go - The uploads directory: saving, serving and listing files.
package server

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileEntry is one file in the listing: its name relative to the uploads
// root and the URL path the listing page links to.
type FileEntry struct {
	Name string
	Href string
}

// FileStore owns the uploads directory. Writes of the same filename are
// serialized through a per-name lock; the directory listing is cached and
// invalidated by a filesystem watcher when one could be started.
type FileStore struct {
	root  string
	locks *nameLockSet

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	cache   []FileEntry
	dirty   bool
}

// NewFileStore creates a store rooted at dir. The directory is not touched
// until EnsureRoot.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		root:  dir,
		locks: newNameLockSet(),
		dirty: true,
	}
}

// Root returns the uploads directory path.
func (s *FileStore) Root() string { return s.root }

// EnsureRoot creates the uploads directory if it does not exist yet.
func (s *FileStore) EnsureRoot() *AppError {
	if err := os.MkdirAll(s.root, 0o750); err != nil {
		return IOError("failed to create uploads directory: %s", s.root)
	}
	return nil
}

// Watch starts a filesystem watcher on the uploads root so the cached
// listing is invalidated when files change. When the watcher cannot start,
// the store simply rescans on every List.
func (s *FileStore) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(s.root); err != nil {
		_ = watcher.Close()
		return err
	}

	s.mu.Lock()
	s.watcher = watcher
	s.dirty = true
	s.mu.Unlock()

	go s.watchLoop(watcher)
	return nil
}

func (s *FileStore) watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		case _, ok := <-watcher.Events:
			if !ok {
				return
			}
			s.markDirty()
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
			// Stay correct rather than fast: fall back to rescanning.
			s.markDirty()
		}
	}
}

// Close stops the watcher if one was started.
func (s *FileStore) Close() error {
	s.mu.Lock()
	watcher := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if watcher != nil {
		return watcher.Close()
	}
	return nil
}

func (s *FileStore) markDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// Save validates the upload's filename, contains its target under the
// uploads root, and writes it to disk, overwriting any previous file of the
// same name. Writes of the same name are serialized.
func (s *FileStore) Save(file *BufferedFile) *AppError {
	if aerr := ValidateUploadFilename(file.Name); aerr != nil {
		return aerr
	}
	name, aerr := normalizeUploadName(file.Name)
	if aerr != nil {
		return aerr
	}

	unlock := s.locks.lock(name)
	defer unlock()

	if err := os.WriteFile(filepath.Join(s.root, name), file.Content, 0o644); err != nil {
		return IOError("failed to create file: %s", name)
	}
	s.markDirty()
	return nil
}

// Resolve maps a client-supplied view path to a canonical absolute path
// contained in the uploads root.
func (s *FileStore) Resolve(requestPath string) (string, *AppError) {
	return resolveViewPath(s.root, requestPath)
}

// List returns every file under the uploads root, subdirectories included,
// sorted by name. With a running watcher the result is served from cache
// until something changes; without one, each call rescans.
func (s *FileStore) List() ([]FileEntry, *AppError) {
	s.mu.Lock()
	if s.watcher != nil && !s.dirty && s.cache != nil {
		entries := append([]FileEntry(nil), s.cache...)
		s.mu.Unlock()
		return entries, nil
	}
	s.mu.Unlock()

	entries, aerr := s.scan()
	if aerr != nil {
		return nil, aerr
	}

	s.mu.Lock()
	if s.watcher != nil {
		s.cache = entries
		s.dirty = false
	}
	s.mu.Unlock()

	return entries, nil
}

// scan walks the uploads tree and flattens it into entries. Directories
// discovered along the way are added to the watcher so changes inside them
// invalidate the cache too.
func (s *FileStore) scan() ([]FileEntry, *AppError) {
	var entries []FileEntry

	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			s.mu.Lock()
			if s.watcher != nil && p != s.root {
				_ = s.watcher.Add(p)
			}
			s.mu.Unlock()
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		entries = append(entries, FileEntry{Name: rel, Href: "/uploads/" + rel})
		return nil
	})
	if err != nil {
		return nil, IOError("failed to read directory: %s", s.root)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// nameLockSet hands out one mutex per filename so concurrent uploads of the
// same name are last-writer-wins at file granularity instead of interleaved
// partial writes.
type nameLockSet struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newNameLockSet() *nameLockSet {
	return &nameLockSet{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for name and returns its release function.
func (n *nameLockSet) lock(name string) func() {
	n.mu.Lock()
	l, ok := n.locks[name]
	if !ok {
		l = &sync.Mutex{}
		n.locks[name] = l
	}
	n.mu.Unlock()

	l.Lock()
	return l.Unlock
}
