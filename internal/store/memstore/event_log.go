package memstore

import (
	"context"
	"sync"

	gocid "github.com/ipfs/go-cid"

	"github.com/hookdeck/dwn-go/internal/dwnerrors"
	"github.com/hookdeck/dwn-go/internal/filter"
	"github.com/hookdeck/dwn-go/internal/idgen"
	"github.com/hookdeck/dwn-go/internal/query"
	"github.com/hookdeck/dwn-go/internal/store/driver"
	"github.com/hookdeck/dwn-go/internal/value"
)

type eventRecord struct {
	tenant    string
	cid       gocid.Cid
	watermark string
	indexes   driver.Indexes
	tags      driver.Tags
}

type eventLog struct {
	mu      sync.RWMutex
	records map[string]*eventRecord
	opened  bool
}

var _ driver.EventLog = (*eventLog)(nil)

// NewEventLog returns an in-memory driver.EventLog.
func NewEventLog() driver.EventLog {
	return &eventLog{records: make(map[string]*eventRecord)}
}

func (l *eventLog) Open(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened = true
	return nil
}

func (l *eventLog) Close(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened = false
	return nil
}

func (l *eventLog) checkOpen() error {
	if !l.opened {
		return dwnerrors.ErrNotInitialized
	}
	return nil
}

func (l *eventLog) Append(_ context.Context, tenant string, c gocid.Cid, indexes driver.Indexes, tags driver.Tags) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkOpen(); err != nil {
		return err
	}

	watermark, err := idgen.Watermark()
	if err != nil {
		return dwnerrors.Backend("append", err)
	}

	merged := cloneIndexes(indexes)
	if merged == nil {
		merged = driver.Indexes{}
	}
	merged["watermark"] = value.String(watermark)

	l.records[recordKey(tenant, c.String())] = &eventRecord{
		tenant:    tenant,
		cid:       c,
		watermark: watermark,
		indexes:   merged,
		tags:      cloneIndexes(tags),
	}
	return nil
}

func (l *eventLog) query(tenant string, filters filter.Set, cursor *filter.Cursor) ([]gocid.Cid, *filter.Cursor, error) {
	if err := l.checkOpen(); err != nil {
		return nil, nil, err
	}

	var rows []query.Row
	byCID := map[string]*eventRecord{}
	for _, rec := range l.records {
		if rec.tenant != tenant {
			continue
		}
		rows = append(rows, query.Row{CID: rec.cid, Indexes: rec.indexes, Tags: rec.tags})
		byCID[rec.cid.String()] = rec
	}

	pag := filter.Pagination{Cursor: cursor}
	matched, next, err := query.Evaluate(rows, filters, filter.Sort{Field: filter.SortWatermark, Ascending: true}, pag, true)
	if err != nil {
		return nil, nil, dwnerrors.Filter(err)
	}

	cids := make([]gocid.Cid, 0, len(matched))
	for _, row := range matched {
		cids = append(cids, byCID[row.CID.String()].cid)
	}
	return cids, next, nil
}

func (l *eventLog) GetEvents(_ context.Context, tenant string, cursor *filter.Cursor) ([]gocid.Cid, *filter.Cursor, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.query(tenant, nil, cursor)
}

func (l *eventLog) QueryEvents(_ context.Context, tenant string, filters filter.Set, cursor *filter.Cursor) ([]gocid.Cid, *filter.Cursor, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.query(tenant, filters, cursor)
}

func (l *eventLog) Delete(_ context.Context, tenant string, cids []gocid.Cid) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkOpen(); err != nil {
		return err
	}
	for _, c := range cids {
		delete(l.records, recordKey(tenant, c.String()))
	}
	return nil
}

func (l *eventLog) Clear(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = make(map[string]*eventRecord)
	return nil
}
