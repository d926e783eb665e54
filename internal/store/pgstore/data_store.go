package pgstore

import (
	"bytes"
	"context"
	"errors"
	"io"

	gocid "github.com/ipfs/go-cid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hookdeck/dwn-go/internal/dwnerrors"
	"github.com/hookdeck/dwn-go/internal/store/driver"
)

type dataStore struct {
	db *pgxpool.Pool
}

var _ driver.DataStore = (*dataStore)(nil)

// NewDataStore returns a Postgres-backed driver.DataStore.
func NewDataStore(db *pgxpool.Pool) driver.DataStore {
	return &dataStore{db: db}
}

func (s *dataStore) Open(context.Context) error  { return nil }
func (s *dataStore) Close(context.Context) error { return nil }

func (s *dataStore) Put(ctx context.Context, tenant, recordID string, c gocid.Cid, data io.Reader) (driver.PutDataResult, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return driver.PutDataResult{}, dwnerrors.Backend("put data", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO data_blobs (tenant, record_id, cid, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant, record_id, cid) DO UPDATE SET data = EXCLUDED.data
	`, tenant, recordID, c.String(), buf)
	if err != nil {
		return driver.PutDataResult{}, dwnerrors.Backend("put data", err)
	}
	return driver.PutDataResult{Size: int64(len(buf))}, nil
}

func (s *dataStore) Get(ctx context.Context, tenant, recordID string, c gocid.Cid) (driver.GetDataResult, error) {
	var buf []byte
	err := s.db.QueryRow(ctx, `
		SELECT data FROM data_blobs WHERE tenant = $1 AND record_id = $2 AND cid = $3
	`, tenant, recordID, c.String()).Scan(&buf)
	if errors.Is(err, pgx.ErrNoRows) {
		return driver.GetDataResult{Found: false}, nil
	}
	if err != nil {
		return driver.GetDataResult{}, dwnerrors.Backend("get data", err)
	}
	return driver.GetDataResult{
		Found:  true,
		Size:   int64(len(buf)),
		Stream: io.NopCloser(bytes.NewReader(buf)),
	}, nil
}

func (s *dataStore) Delete(ctx context.Context, tenant, recordID string, c gocid.Cid) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM data_blobs WHERE tenant = $1 AND record_id = $2 AND cid = $3
	`, tenant, recordID, c.String())
	if err != nil {
		return dwnerrors.Backend("delete data", err)
	}
	return nil
}

func (s *dataStore) Clear(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `TRUNCATE data_blobs`)
	if err != nil {
		return dwnerrors.Backend("clear data", err)
	}
	return nil
}
