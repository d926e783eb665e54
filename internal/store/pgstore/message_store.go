package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gocid "github.com/ipfs/go-cid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hookdeck/dwn-go/internal/dwnerrors"
	"github.com/hookdeck/dwn-go/internal/filter"
	"github.com/hookdeck/dwn-go/internal/message"
	"github.com/hookdeck/dwn-go/internal/query"
	"github.com/hookdeck/dwn-go/internal/store/driver"
	"github.com/hookdeck/dwn-go/internal/value"
)

type messageStore struct {
	db *pgxpool.Pool
}

var _ driver.MessageStore = (*messageStore)(nil)

// NewMessageStore returns a Postgres-backed driver.MessageStore.
func NewMessageStore(db *pgxpool.Pool) driver.MessageStore {
	return &messageStore{db: db}
}

func (s *messageStore) Open(context.Context) error  { return nil }
func (s *messageStore) Close(context.Context) error { return nil }

func (s *messageStore) Put(ctx context.Context, tenant string, msg message.Message, indexes driver.Indexes, tags driver.Tags) (gocid.Cid, error) {
	c, err := msg.CID()
	if err != nil {
		return gocid.Undef, dwnerrors.Encoding(err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return gocid.Undef, dwnerrors.Encoding(err)
	}
	idxJSON, err := json.Marshal(indexes)
	if err != nil {
		return gocid.Undef, dwnerrors.Encoding(err)
	}
	tagJSON, err := json.Marshal(tags)
	if err != nil {
		return gocid.Undef, dwnerrors.Encoding(err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO messages (tenant, cid, body, indexes, tags)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant, cid) DO NOTHING
	`, tenant, c.String(), body, idxJSON, tagJSON)
	if err != nil {
		return gocid.Undef, dwnerrors.Backend("put", err)
	}
	return c, nil
}

func (s *messageStore) Get(ctx context.Context, tenant string, c gocid.Cid) (message.Message, error) {
	var body []byte
	err := s.db.QueryRow(ctx, `
		SELECT body FROM messages WHERE tenant = $1 AND cid = $2
	`, tenant, c.String()).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return message.Message{}, dwnerrors.ErrNotFound
	}
	if err != nil {
		return message.Message{}, dwnerrors.Backend("get", err)
	}

	var msg message.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return message.Message{}, dwnerrors.Decoding(err)
	}

	computed, err := msg.CID()
	if err != nil {
		return message.Message{}, dwnerrors.Decoding(err)
	}
	if !computed.Equals(c) {
		return message.Message{}, dwnerrors.CidMismatch(c.String(), computed.String())
	}
	return msg, nil
}

func (s *messageStore) Query(ctx context.Context, tenant string, filters filter.Set, sort filter.Sort, pagination filter.Pagination) ([]message.Message, *filter.Cursor, error) {
	plan, err := query.CompileSQL(filters, sort, pagination, false)
	if err != nil {
		return nil, nil, dwnerrors.Filter(err)
	}
	where, args := query.RenderPostgres(plan)

	sqlText := fmt.Sprintf(`
		SELECT cid, body, indexes, tags FROM messages
		WHERE tenant = $%d AND (%s)
		ORDER BY %s
		LIMIT $%d
	`, len(args)+1, where, plan.OrderBy, len(args)+2)
	args = append(args, tenant, plan.Limit)

	rows, err := s.db.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, nil, dwnerrors.Backend("query", err)
	}
	defer rows.Close()

	var (
		cids     []gocid.Cid
		messages []message.Message
		indexes  []map[string]value.Value
	)
	for rows.Next() {
		var cidStr string
		var body, idxJSON, tagJSON []byte
		if err := rows.Scan(&cidStr, &body, &idxJSON, &tagJSON); err != nil {
			return nil, nil, dwnerrors.Backend("query scan", err)
		}
		c, err := gocid.Decode(cidStr)
		if err != nil {
			return nil, nil, dwnerrors.Decoding(err)
		}
		var msg message.Message
		if err := json.Unmarshal(body, &msg); err != nil {
			return nil, nil, dwnerrors.Decoding(err)
		}
		var idx map[string]value.Value
		if err := json.Unmarshal(idxJSON, &idx); err != nil {
			return nil, nil, dwnerrors.Decoding(err)
		}
		cids = append(cids, c)
		messages = append(messages, msg)
		indexes = append(indexes, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, dwnerrors.Backend("query rows", err)
	}

	limit := plan.Limit - 1
	hasMore := uint64(len(messages)) > limit
	if hasMore {
		messages = messages[:limit]
		cids = cids[:limit]
		indexes = indexes[:limit]
	}

	var next *filter.Cursor
	if len(messages) > 0 && hasMore {
		field := sort.Field
		if field == "" {
			field = filter.SortMessageTimestamp
		}
		if v, ok := indexes[len(indexes)-1][string(field)]; ok {
			next = &filter.Cursor{Value: v, CID: cids[len(cids)-1]}
		}
	}
	return messages, next, nil
}

func (s *messageStore) Delete(ctx context.Context, tenant string, c gocid.Cid) error {
	_, err := s.db.Exec(ctx, `DELETE FROM messages WHERE tenant = $1 AND cid = $2`, tenant, c.String())
	if err != nil {
		return dwnerrors.Backend("delete", err)
	}
	return nil
}

func (s *messageStore) Clear(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `TRUNCATE messages`)
	if err != nil {
		return dwnerrors.Backend("clear", err)
	}
	return nil
}
