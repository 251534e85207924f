package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Task states
const (
	TaskPending = "pending"
	TaskRunning = "running"
	TaskDone    = "done"
	TaskFailed  = "failed"
)

var ErrTaskNotFound = errors.New("task not found")

// Mailer is the outbound mail capability. Dispatch does not wait on it
// beyond the task goroutine itself and never retries.
type Mailer interface {
	Send(to, subject, body string) error
}

// LogMailer writes outbound mail to the log. Stands in until a real
// relay is configured.
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	log.Printf("[MAIL] to=%s subject=%q bytes=%d", to, subject, len(body))
	return nil
}

// TaskStatus is what pollers see.
type TaskStatus struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	State    string    `json:"state"`
	Progress int       `json:"progress"` // 0-100
	Error    string    `json:"error,omitempty"`
	Created  time.Time `json:"created"`
}

type task struct {
	TaskStatus
	run      func(update func(progress int)) error
	finished time.Time
}

// Finished tasks linger for an hour so pollers can still read the
// final state, then get pruned.
const taskRetention = time.Hour

// Dispatcher runs fire-and-forget jobs. Submit hands back a handle
// immediately; the job runs in its own goroutine with no scheduling or
// retry semantics on top.
type Dispatcher struct {
	mu    sync.RWMutex
	tasks map[string]*task
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{tasks: make(map[string]*task)}
	go d.cleanup()
	return d
}

// cleanup evicts tasks that finished more than taskRetention ago.
func (d *Dispatcher) cleanup() {
	for {
		time.Sleep(time.Minute)
		d.prune(time.Now())
	}
}

func (d *Dispatcher) prune(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, t := range d.tasks {
		if !t.finished.IsZero() && now.Sub(t.finished) > taskRetention {
			delete(d.tasks, id)
		}
	}
}

// Submit registers a job and starts it. The returned handle is the poll
// key for Status.
func (d *Dispatcher) Submit(kind string, run func(update func(progress int)) error) string {
	t := &task{
		TaskStatus: TaskStatus{
			ID:      uuid.NewString(),
			Kind:    kind,
			State:   TaskPending,
			Created: time.Now(),
		},
		run: run,
	}

	d.mu.Lock()
	d.tasks[t.ID] = t
	d.mu.Unlock()

	go d.process(t)
	return t.ID
}

func (d *Dispatcher) process(t *task) {
	d.setState(t.ID, TaskRunning, 0, "")

	update := func(progress int) {
		if progress < 0 {
			progress = 0
		}
		if progress > 100 {
			progress = 100
		}
		d.mu.Lock()
		t.Progress = progress
		d.mu.Unlock()
	}

	if err := t.run(update); err != nil {
		log.Printf("task %s (%s) failed: %v", t.ID, t.Kind, err)
		d.setState(t.ID, TaskFailed, t.Progress, err.Error())
		return
	}
	d.setState(t.ID, TaskDone, 100, "")
}

func (d *Dispatcher) setState(id, state string, progress int, errMsg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.tasks[id]; ok {
		t.State = state
		t.Progress = progress
		t.Error = errMsg
		if state == TaskDone || state == TaskFailed {
			t.finished = time.Now()
		}
	}
}

// Status returns a copy of the task's current state.
func (d *Dispatcher) Status(id string) (*TaskStatus, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	status := t.TaskStatus
	return &status, nil
}

// SubmitRecapEmail assembles a recap in the background and mails the
// summary to the recipient.
func (d *Dispatcher) SubmitRecapEmail(rs *ReportService, mailer Mailer, campaignID, storeID uint, day time.Time, to string) string {
	return d.Submit("recap-email", func(update func(int)) error {
		update(10)
		rows, count, err := rs.AssembleDailyRecap(context.Background(), campaignID, storeID, day)
		if err != nil {
			return err
		}
		update(60)

		subject := fmt.Sprintf("Daily Recap %s - campaign %d", day.Format("01/02/2006"), campaignID)
		if count == 0 {
			return mailer.Send(to, subject, "No visitor activity for this day.")
		}

		data, name, err := ExportCSV(rows, day)
		if err != nil {
			return err
		}
		update(90)
		body := fmt.Sprintf("%d visitors appended. Attachment %s (%d bytes).", count, name, len(data))
		return mailer.Send(to, subject, body)
	})
}
