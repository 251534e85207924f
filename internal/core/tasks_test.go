package core

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForTask polls until the task leaves the pending/running states.
func waitForTask(t *testing.T, d *Dispatcher, id string) *TaskStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, err := d.Status(id)
		require.NoError(t, err)
		if status.State == TaskDone || status.State == TaskFailed {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("task did not finish in time")
	return nil
}

func TestDispatcherSubmitAndPoll(t *testing.T) {
	d := NewDispatcher()

	id := d.Submit("test", func(update func(int)) error {
		update(50)
		return nil
	})
	require.NotEmpty(t, id)

	status := waitForTask(t, d, id)
	assert.Equal(t, TaskDone, status.State)
	assert.Equal(t, 100, status.Progress)
	assert.Empty(t, status.Error)
}

func TestDispatcherFailedTask(t *testing.T) {
	d := NewDispatcher()

	id := d.Submit("test", func(update func(int)) error {
		update(30)
		return errors.New("boom")
	})

	status := waitForTask(t, d, id)
	assert.Equal(t, TaskFailed, status.State)
	assert.Equal(t, "boom", status.Error)
}

func TestDispatcherPrunesFinishedTasks(t *testing.T) {
	d := NewDispatcher()

	id := d.Submit("test", func(update func(int)) error { return nil })
	waitForTask(t, d, id)

	// Still inside the retention window
	d.prune(time.Now())
	_, err := d.Status(id)
	require.NoError(t, err)

	// Past the retention window
	d.prune(time.Now().Add(2 * taskRetention))
	_, err = d.Status(id)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDispatcherPruneKeepsRunningTasks(t *testing.T) {
	d := NewDispatcher()

	release := make(chan struct{})
	id := d.Submit("test", func(update func(int)) error {
		<-release
		return nil
	})
	defer close(release)

	d.prune(time.Now().Add(2 * taskRetention))
	_, err := d.Status(id)
	require.NoError(t, err)
}

func TestDispatcherUnknownTask(t *testing.T) {
	d := NewDispatcher()
	_, err := d.Status("nope")
	require.ErrorIs(t, err, ErrTaskNotFound)
}

type captureMailer struct {
	mu      sync.Mutex
	to      string
	subject string
	body    string
	sent    int
}

func (m *captureMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to, m.subject, m.body = to, subject, body
	m.sent++
	return nil
}

func TestSubmitRecapEmail(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)

	d := NewDispatcher()
	mailer := &captureMailer{}
	rs := NewReportService(st)

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	id := d.SubmitRecapEmail(rs, mailer, 42, 7, day, "manager@store.example")

	status := waitForTask(t, d, id)
	require.Equal(t, TaskDone, status.State)

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Equal(t, 1, mailer.sent)
	assert.Equal(t, "manager@store.example", mailer.to)
	assert.Contains(t, mailer.subject, "03/05/2024")
	assert.Contains(t, mailer.body, "1 visitors appended")
}

func TestSubmitRecapEmailUnauthorizedFails(t *testing.T) {
	st := newTestStore(t)
	seedRecapData(t, st)

	d := NewDispatcher()
	mailer := &captureMailer{}
	rs := NewReportService(st)

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	id := d.SubmitRecapEmail(rs, mailer, 42, 8, day, "manager@store.example")

	status := waitForTask(t, d, id)
	assert.Equal(t, TaskFailed, status.State)

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Zero(t, mailer.sent)
}
