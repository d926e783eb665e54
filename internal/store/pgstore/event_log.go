package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	gocid "github.com/ipfs/go-cid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hookdeck/dwn-go/internal/dwnerrors"
	"github.com/hookdeck/dwn-go/internal/filter"
	"github.com/hookdeck/dwn-go/internal/idgen"
	"github.com/hookdeck/dwn-go/internal/query"
	"github.com/hookdeck/dwn-go/internal/store/driver"
	"github.com/hookdeck/dwn-go/internal/value"
)

type eventLog struct {
	db *pgxpool.Pool
}

var _ driver.EventLog = (*eventLog)(nil)

// NewEventLog returns a Postgres-backed driver.EventLog.
func NewEventLog(db *pgxpool.Pool) driver.EventLog {
	return &eventLog{db: db}
}

func (l *eventLog) Open(context.Context) error  { return nil }
func (l *eventLog) Close(context.Context) error { return nil }

func (l *eventLog) Append(ctx context.Context, tenant string, c gocid.Cid, indexes driver.Indexes, tags driver.Tags) error {
	watermark, err := idgen.Watermark()
	if err != nil {
		return dwnerrors.Backend("append", err)
	}

	idxJSON, err := json.Marshal(indexes)
	if err != nil {
		return dwnerrors.Encoding(err)
	}
	tagJSON, err := json.Marshal(tags)
	if err != nil {
		return dwnerrors.Encoding(err)
	}

	_, err = l.db.Exec(ctx, `
		INSERT INTO event_log (tenant, cid, watermark, indexes, tags)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant, cid) DO NOTHING
	`, tenant, c.String(), watermark, idxJSON, tagJSON)
	if err != nil {
		return dwnerrors.Backend("append", err)
	}
	return nil
}

func (l *eventLog) query(ctx context.Context, tenant string, filters filter.Set, cursor *filter.Cursor) ([]gocid.Cid, *filter.Cursor, error) {
	sortSpec := filter.Sort{Field: filter.SortWatermark, Ascending: true}
	plan, err := query.CompileSQL(filters, sortSpec, filter.Pagination{Cursor: cursor}, true)
	if err != nil {
		return nil, nil, dwnerrors.Filter(err)
	}
	where, args := query.RenderPostgres(plan)

	sqlText := fmt.Sprintf(`
		SELECT cid, watermark FROM event_log
		WHERE tenant = $%d AND (%s)
		ORDER BY %s
		LIMIT $%d
	`, len(args)+1, where, plan.OrderBy, len(args)+2)
	args = append(args, tenant, plan.Limit)

	rows, err := l.db.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, nil, dwnerrors.Backend("query events", err)
	}
	defer rows.Close()

	var cids []gocid.Cid
	var watermarks []string
	for rows.Next() {
		var cidStr, watermark string
		if err := rows.Scan(&cidStr, &watermark); err != nil {
			return nil, nil, dwnerrors.Backend("query events scan", err)
		}
		c, err := gocid.Decode(cidStr)
		if err != nil {
			return nil, nil, dwnerrors.Decoding(err)
		}
		cids = append(cids, c)
		watermarks = append(watermarks, watermark)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, dwnerrors.Backend("query events rows", err)
	}

	limit := plan.Limit - 1
	hasMore := uint64(len(cids)) > limit
	if hasMore {
		cids = cids[:limit]
		watermarks = watermarks[:limit]
	}

	var next *filter.Cursor
	if len(cids) > 0 {
		next = &filter.Cursor{Value: value.String(watermarks[len(watermarks)-1]), CID: cids[len(cids)-1]}
	}
	return cids, next, nil
}

func (l *eventLog) GetEvents(ctx context.Context, tenant string, cursor *filter.Cursor) ([]gocid.Cid, *filter.Cursor, error) {
	return l.query(ctx, tenant, nil, cursor)
}

func (l *eventLog) QueryEvents(ctx context.Context, tenant string, filters filter.Set, cursor *filter.Cursor) ([]gocid.Cid, *filter.Cursor, error) {
	return l.query(ctx, tenant, filters, cursor)
}

func (l *eventLog) Delete(ctx context.Context, tenant string, cids []gocid.Cid) error {
	cidStrs := make([]string, len(cids))
	for i, c := range cids {
		cidStrs[i] = c.String()
	}
	_, err := l.db.Exec(ctx, `DELETE FROM event_log WHERE tenant = $1 AND cid = ANY($2)`, tenant, cidStrs)
	if err != nil {
		return dwnerrors.Backend("delete events", err)
	}
	return nil
}

func (l *eventLog) Clear(ctx context.Context) error {
	_, err := l.db.Exec(ctx, `TRUNCATE event_log`)
	if err != nil {
		return dwnerrors.Backend("clear events", err)
	}
	return nil
}
