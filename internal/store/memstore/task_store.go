package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hookdeck/dwn-go/internal/dwnerrors"
	"github.com/hookdeck/dwn-go/internal/idgen"
	"github.com/hookdeck/dwn-go/internal/store/driver"
)

type taskStore struct {
	mu     sync.Mutex
	tasks  map[string]*driver.ManagedTask
	opened bool
	now    func() time.Time
}

var _ driver.ResumableTaskStore = (*taskStore)(nil)

// NewTaskStore returns an in-memory driver.ResumableTaskStore.
func NewTaskStore() driver.ResumableTaskStore {
	return &taskStore{tasks: make(map[string]*driver.ManagedTask), now: time.Now}
}

func (s *taskStore) Open(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = true
	return nil
}

func (s *taskStore) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = false
	return nil
}

func (s *taskStore) checkOpen() error {
	if !s.opened {
		return dwnerrors.ErrNotInitialized
	}
	return nil
}

func (s *taskStore) Register(_ context.Context, task []byte, timeout time.Duration) (driver.ManagedTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return driver.ManagedTask{}, err
	}

	id, err := idgen.TaskID()
	if err != nil {
		return driver.ManagedTask{}, dwnerrors.Backend("register", err)
	}

	mt := driver.ManagedTask{
		ID:      id,
		Task:    append([]byte(nil), task...),
		Timeout: s.now().Add(timeout),
	}
	s.tasks[id] = &mt
	return mt, nil
}

// Grab selects up to count tasks whose lease has expired, extends each one's
// lease by LeaseWindow, and returns them. Holding the store mutex for the
// whole selection+extension makes the operation atomic: no other Grab can
// observe a task between its selection and its lease extension.
func (s *taskStore) Grab(_ context.Context, count int) ([]driver.ManagedTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	now := s.now()
	var available []*driver.ManagedTask
	for _, t := range s.tasks {
		if !t.Timeout.After(now) {
			available = append(available, t)
		}
	}
	sort.Slice(available, func(i, j int) bool { return available[i].ID < available[j].ID })

	if len(available) > count {
		available = available[:count]
	}

	grabbed := make([]driver.ManagedTask, 0, len(available))
	for _, t := range available {
		t.Timeout = now.Add(driver.LeaseWindow)
		grabbed = append(grabbed, *t)
	}
	return grabbed, nil
}

func (s *taskStore) Read(_ context.Context, id string) (*driver.ManagedTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	t, ok := s.tasks[id]
	if !ok {
		return nil, dwnerrors.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *taskStore) Extend(_ context.Context, id string, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}

	t, ok := s.tasks[id]
	if !ok {
		return dwnerrors.ErrNotFound
	}
	t.Timeout = s.now().Add(timeout)
	return nil
}

func (s *taskStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}
	delete(s.tasks, id)
	return nil
}

func (s *taskStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[string]*driver.ManagedTask)
	return nil
}
