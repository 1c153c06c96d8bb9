package server

// In-memory test doubles for the credential store, catalog, and object
// store. Handler tests run against these; the Postgres and MinIO
// implementations are covered by the e2e suite.

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type memPasswordStore struct {
	mu   sync.Mutex
	hash string
}

func (s *memPasswordStore) Get(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hash == "" {
		return "", errNoCredential
	}
	return s.hash, nil
}

func (s *memPasswordStore) CreateIfAbsent(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hash == "" {
		s.hash = hash
	}
	return nil
}

func (s *memPasswordStore) Update(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hash == "" {
		return errNoCredential
	}
	s.hash = hash
	return nil
}

type memCatalog struct {
	mu   sync.Mutex
	recs map[string]FileRecord
}

func newMemCatalog() *memCatalog {
	return &memCatalog{recs: map[string]FileRecord{}}
}

func (c *memCatalog) List(ctx context.Context) ([]FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]FileRecord, 0, len(c.recs))
	for _, r := range c.recs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

func (c *memCatalog) Create(ctx context.Context, rec FileRecord) (FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec.ID = newFileID()
	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = time.Now()
	}
	c.recs[rec.ID] = rec
	return rec, nil
}

func (c *memCatalog) Get(ctx context.Context, id string) (FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.recs[id]
	if !ok {
		return FileRecord{}, ErrFileNotFound
	}
	return rec, nil
}

func (c *memCatalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.recs[id]; !ok {
		return ErrFileNotFound
	}
	delete(c.recs, id)
	return nil
}

type fakeObjectStore struct {
	mu          sync.Mutex
	removeErr   error
	removed     []string
	presignErr  error
	getFilename string
}

func (s *fakeObjectStore) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return "http://store.invalid/put/" + key, nil
}

func (s *fakeObjectStore) PresignGet(ctx context.Context, key, filename string, expiry time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	s.mu.Lock()
	s.getFilename = filename
	s.mu.Unlock()
	return "http://store.invalid/get/" + key, nil
}

func (s *fakeObjectStore) Remove(ctx context.Context, key string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.mu.Lock()
	s.removed = append(s.removed, key)
	s.mu.Unlock()
	return nil
}

var errStorageDown = errors.New("storage unreachable")
