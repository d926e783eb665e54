// Package memstore implements the driver interfaces entirely in memory,
// mirroring hookdeck-outpost's memlogstore/memtenantstore: a mutex-guarded
// map keyed by a composite "tenant\x00cid" string, reference implementations
// useful both as the default backend and as conformance test fixtures.
package memstore

import (
	"context"
	"sync"

	gocid "github.com/ipfs/go-cid"

	"github.com/hookdeck/dwn-go/internal/dwnerrors"
	"github.com/hookdeck/dwn-go/internal/filter"
	"github.com/hookdeck/dwn-go/internal/message"
	"github.com/hookdeck/dwn-go/internal/query"
	"github.com/hookdeck/dwn-go/internal/store/driver"
	"github.com/hookdeck/dwn-go/internal/value"
)

func recordKey(tenant, cid string) string { return tenant + "\x00" + cid }

type messageRecord struct {
	tenant  string
	cid     gocid.Cid
	msg     message.Message
	indexes driver.Indexes
	tags    driver.Tags
}

type messageStore struct {
	mu      sync.RWMutex
	records map[string]*messageRecord
	opened  bool
}

var _ driver.MessageStore = (*messageStore)(nil)

// NewMessageStore returns an in-memory driver.MessageStore.
func NewMessageStore() driver.MessageStore {
	return &messageStore{records: make(map[string]*messageRecord)}
}

func (s *messageStore) Open(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = true
	return nil
}

func (s *messageStore) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = false
	return nil
}

func (s *messageStore) checkOpen() error {
	if !s.opened {
		return dwnerrors.ErrNotInitialized
	}
	return nil
}

func (s *messageStore) Put(_ context.Context, tenant string, msg message.Message, indexes driver.Indexes, tags driver.Tags) (gocid.Cid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return gocid.Undef, err
	}

	c, err := msg.CID()
	if err != nil {
		return gocid.Undef, dwnerrors.Encoding(err)
	}

	key := recordKey(tenant, c.String())
	if _, exists := s.records[key]; exists {
		return c, nil // put is idempotent for a CID already stored under this tenant
	}

	s.records[key] = &messageRecord{
		tenant:  tenant,
		cid:     c,
		msg:     msg,
		indexes: cloneIndexes(indexes),
		tags:    cloneIndexes(tags),
	}
	return c, nil
}

func (s *messageStore) Get(_ context.Context, tenant string, c gocid.Cid) (message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return message.Message{}, err
	}

	rec, ok := s.records[recordKey(tenant, c.String())]
	if !ok || rec.tenant != tenant {
		return message.Message{}, dwnerrors.ErrNotFound
	}

	computed, err := rec.msg.CID()
	if err != nil {
		return message.Message{}, dwnerrors.Decoding(err)
	}
	if !computed.Equals(rec.cid) {
		return message.Message{}, dwnerrors.CidMismatch(rec.cid.String(), computed.String())
	}

	return rec.msg, nil
}

func (s *messageStore) Query(_ context.Context, tenant string, filters filter.Set, sort filter.Sort, pagination filter.Pagination) ([]message.Message, *filter.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return nil, nil, err
	}

	var rows []query.Row
	byCID := map[string]*messageRecord{}
	for _, rec := range s.records {
		if rec.tenant != tenant {
			continue
		}
		rows = append(rows, query.Row{CID: rec.cid, Indexes: rec.indexes, Tags: rec.tags})
		byCID[rec.cid.String()] = rec
	}

	matched, next, err := query.Evaluate(rows, filters, sort, pagination, false)
	if err != nil {
		return nil, nil, dwnerrors.Filter(err)
	}

	messages := make([]message.Message, 0, len(matched))
	for _, row := range matched {
		rec := byCID[row.CID.String()]
		messages = append(messages, rec.msg)
	}
	return messages, next, nil
}

func (s *messageStore) Delete(_ context.Context, tenant string, c gocid.Cid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}
	delete(s.records, recordKey(tenant, c.String()))
	return nil
}

func (s *messageStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*messageRecord)
	return nil
}

func cloneIndexes[M ~map[string]value.Value](m M) M {
	out := make(M, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
