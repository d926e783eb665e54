package testutil

import (
	"time"

	"github.com/hookdeck/dwn-go/internal/store/driver"
)

// ============================== Mock Task ==============================

var TaskFactory = &mockTaskFactory{}

type mockTaskFactory struct {
}

// Any returns a ManagedTask with an opaque JSON-ish payload and a timeout
// already in the past, so it is immediately eligible for Grab.
func (f *mockTaskFactory) Any(opts ...func(*driver.ManagedTask)) driver.ManagedTask {
	task := driver.ManagedTask{
		ID:      "test-task",
		Task:    []byte(`{"kind":"test"}`),
		Timeout: time.Now().Add(-time.Second),
	}

	for _, opt := range opts {
		opt(&task)
	}

	return task
}

func (f *mockTaskFactory) WithID(id string) func(*driver.ManagedTask) {
	return func(task *driver.ManagedTask) {
		task.ID = id
	}
}

func (f *mockTaskFactory) WithPayload(payload []byte) func(*driver.ManagedTask) {
	return func(task *driver.ManagedTask) {
		task.Task = payload
	}
}

func (f *mockTaskFactory) WithTimeout(timeout time.Time) func(*driver.ManagedTask) {
	return func(task *driver.ManagedTask) {
		task.Timeout = timeout
	}
}

// NotYetDue returns a ManagedTask opt-compatible timeout far enough in the
// future that Grab will not select it.
func NotYetDue() time.Time {
	return time.Now().Add(time.Hour)
}
