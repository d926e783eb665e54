package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hookdeck/dwn-go/internal/dwnerrors"
	"github.com/hookdeck/dwn-go/internal/idgen"
	"github.com/hookdeck/dwn-go/internal/store/driver"
)

type taskStore struct {
	db  *pgxpool.Pool
	now func() time.Time
}

var _ driver.ResumableTaskStore = (*taskStore)(nil)

// NewTaskStore returns a Postgres-backed driver.ResumableTaskStore.
func NewTaskStore(db *pgxpool.Pool) driver.ResumableTaskStore {
	return &taskStore{db: db, now: time.Now}
}

func (s *taskStore) Open(context.Context) error  { return nil }
func (s *taskStore) Close(context.Context) error { return nil }

func (s *taskStore) Register(ctx context.Context, task []byte, timeout time.Duration) (driver.ManagedTask, error) {
	id, err := idgen.TaskID()
	if err != nil {
		return driver.ManagedTask{}, dwnerrors.Backend("register", err)
	}

	mt := driver.ManagedTask{ID: id, Task: task, Timeout: s.now().Add(timeout)}
	_, err = s.db.Exec(ctx, `
		INSERT INTO resumable_tasks (id, task, timeout) VALUES ($1, $2, $3)
	`, mt.ID, mt.Task, mt.Timeout)
	if err != nil {
		return driver.ManagedTask{}, dwnerrors.Backend("register", err)
	}
	return mt, nil
}

// Grab selects up to count expired tasks with SELECT ... FOR UPDATE SKIP
// LOCKED so two concurrent grabbers never contend for, or double-assign, the
// same row, then extends each one's lease within the same transaction.
func (s *taskStore) Grab(ctx context.Context, count int) ([]driver.ManagedTask, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, dwnerrors.Backend("grab", err)
	}
	defer tx.Rollback(ctx)

	now := s.now()
	rows, err := tx.Query(ctx, `
		SELECT id, task FROM resumable_tasks
		WHERE timeout <= $1
		ORDER BY id
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, now, count)
	if err != nil {
		return nil, dwnerrors.Backend("grab", err)
	}

	var ids []string
	var tasks []driver.ManagedTask
	for rows.Next() {
		var id string
		var task []byte
		if err := rows.Scan(&id, &task); err != nil {
			rows.Close()
			return nil, dwnerrors.Backend("grab scan", err)
		}
		ids = append(ids, id)
		tasks = append(tasks, driver.ManagedTask{ID: id, Task: task})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, dwnerrors.Backend("grab rows", err)
	}

	newTimeout := now.Add(driver.LeaseWindow)
	for i := range tasks {
		if _, err := tx.Exec(ctx, `UPDATE resumable_tasks SET timeout = $1 WHERE id = $2`, newTimeout, ids[i]); err != nil {
			return nil, dwnerrors.Backend("grab extend", err)
		}
		tasks[i].Timeout = newTimeout
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, dwnerrors.Backend("grab commit", err)
	}
	return tasks, nil
}

func (s *taskStore) Read(ctx context.Context, id string) (*driver.ManagedTask, error) {
	var mt driver.ManagedTask
	mt.ID = id
	err := s.db.QueryRow(ctx, `
		SELECT task, timeout FROM resumable_tasks WHERE id = $1
	`, id).Scan(&mt.Task, &mt.Timeout)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, dwnerrors.ErrNotFound
	}
	if err != nil {
		return nil, dwnerrors.Backend("read", err)
	}
	return &mt, nil
}

func (s *taskStore) Extend(ctx context.Context, id string, timeout time.Duration) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE resumable_tasks SET timeout = $1 WHERE id = $2
	`, s.now().Add(timeout), id)
	if err != nil {
		return dwnerrors.Backend("extend", err)
	}
	if tag.RowsAffected() == 0 {
		return dwnerrors.ErrNotFound
	}
	return nil
}

func (s *taskStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM resumable_tasks WHERE id = $1`, id)
	if err != nil {
		return dwnerrors.Backend("delete", err)
	}
	return nil
}

func (s *taskStore) Clear(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `TRUNCATE resumable_tasks`)
	if err != nil {
		return dwnerrors.Backend("clear", err)
	}
	return nil
}
