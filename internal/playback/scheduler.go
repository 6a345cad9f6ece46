package playback

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type taskKind int

const (
	taskTick taskKind = iota
	taskScrubResume
)

type scheduledTask struct {
	token uuid.UUID
	timer *time.Timer
}

// scheduler runs delayed callbacks on the controller goroutine. Each task
// kind has at most one live entry; a callback whose token no longer
// matches the live entry was cancelled or replaced and does nothing.
// Only the controller goroutine touches the map.
type scheduler struct {
	post  func(func()) bool
	tasks map[taskKind]*scheduledTask
}

func newScheduler(post func(func()) bool) *scheduler {
	return &scheduler{
		post:  post,
		tasks: make(map[taskKind]*scheduledTask),
	}
}

func (s *scheduler) schedule(kind taskKind, delay time.Duration, fn func()) uuid.UUID {
	s.cancel(kind)

	token := uuid.New()
	task := &scheduledTask{token: token}
	task.timer = time.AfterFunc(delay, func() {
		s.post(func() {
			live, ok := s.tasks[kind]
			if !ok || live.token != token {
				return
			}
			delete(s.tasks, kind)
			fn()
		})
	})
	s.tasks[kind] = task
	return token
}

func (s *scheduler) cancel(kind taskKind) {
	if task, ok := s.tasks[kind]; ok {
		task.timer.Stop()
		delete(s.tasks, kind)
	}
}

func (s *scheduler) cancelAll() {
	for kind := range s.tasks {
		s.cancel(kind)
	}
}

func (s *scheduler) pending(kind taskKind) bool {
	_, ok := s.tasks[kind]
	return ok
}

// dispatcher delivers events to the sink in order without ever blocking
// the controller goroutine.
type dispatcher struct {
	sink Sink

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Event
	closed bool
	done   chan struct{}
}

func newDispatcher(sink Sink) *dispatcher {
	d := &dispatcher{
		sink: sink,
		done: make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	go d.run()
	return d
}

func (d *dispatcher) emit(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.queue = append(d.queue, ev)
	d.cond.Signal()
}

// close delivers what is already queued, then stops.
func (d *dispatcher) close() {
	d.mu.Lock()
	d.closed = true
	d.cond.Signal()
	d.mu.Unlock()
	<-d.done
}

func (d *dispatcher) run() {
	defer close(d.done)
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		batch := d.queue
		d.queue = nil
		d.mu.Unlock()

		for _, ev := range batch {
			if d.sink != nil {
				d.sink(ev)
			}
		}
	}
}
