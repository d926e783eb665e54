package memstore

import (
	"bytes"
	"context"
	"io"
	"sync"

	gocid "github.com/ipfs/go-cid"

	"github.com/hookdeck/dwn-go/internal/dwnerrors"
	"github.com/hookdeck/dwn-go/internal/store/driver"
)

type dataStore struct {
	mu     sync.RWMutex
	blobs  map[string][]byte
	opened bool
}

var _ driver.DataStore = (*dataStore)(nil)

// NewDataStore returns an in-memory driver.DataStore.
func NewDataStore() driver.DataStore {
	return &dataStore{blobs: make(map[string][]byte)}
}

func dataKey(tenant, recordID, cid string) string {
	return tenant + "\x00" + recordID + "\x00" + cid
}

func (s *dataStore) Open(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = true
	return nil
}

func (s *dataStore) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = false
	return nil
}

func (s *dataStore) checkOpen() error {
	if !s.opened {
		return dwnerrors.ErrNotInitialized
	}
	return nil
}

func (s *dataStore) Put(_ context.Context, tenant, recordID string, c gocid.Cid, data io.Reader) (driver.PutDataResult, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return driver.PutDataResult{}, dwnerrors.Backend("put", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return driver.PutDataResult{}, err
	}

	s.blobs[dataKey(tenant, recordID, c.String())] = buf
	return driver.PutDataResult{Size: int64(len(buf))}, nil
}

func (s *dataStore) Get(_ context.Context, tenant, recordID string, c gocid.Cid) (driver.GetDataResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return driver.GetDataResult{}, err
	}

	buf, ok := s.blobs[dataKey(tenant, recordID, c.String())]
	if !ok {
		return driver.GetDataResult{Found: false}, nil
	}

	return driver.GetDataResult{
		Found:  true,
		Size:   int64(len(buf)),
		Stream: io.NopCloser(bytes.NewReader(buf)),
	}, nil
}

func (s *dataStore) Delete(_ context.Context, tenant, recordID string, c gocid.Cid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}
	delete(s.blobs, dataKey(tenant, recordID, c.String()))
	return nil
}

func (s *dataStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs = make(map[string][]byte)
	return nil
}
