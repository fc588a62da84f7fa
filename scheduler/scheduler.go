// Package scheduler paces a worklist of channel IDs through a processor at
// a fixed cadence, with pause, resume, and stop controls.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// State is the scheduler lifecycle state.
type State int

const (
	// Idle means no worklist has been started.
	Idle State = iota
	// Running means items are being processed.
	Running
	// Paused means the cursor is held; Resume continues from it.
	Paused
	// Stopped means the run was abandoned; the cursor is discarded.
	Stopped
	// Completed means every item in the worklist was attempted.
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

var (
	// ErrNotRunning indicates a tick was requested outside a run.
	ErrNotRunning = errors.New("scheduler: not running")
	// ErrBusy indicates a tick was requested while one was in flight.
	ErrBusy = errors.New("scheduler: tick in progress")
)

// Processor handles one worklist item.
type Processor interface {
	Process(ctx context.Context, channelID string) error
}

// Scheduler walks a worklist one item per tick. The cursor advances after
// every attempt whether the item succeeded or failed, so one bad item never
// stalls the run. At most one tick runs at a time.
type Scheduler struct {
	proc    Processor
	limiter *rate.Limiter
	log     *zap.SugaredLogger

	mu       sync.Mutex
	state    State
	worklist []string
	cursor   int
	busy     bool
	failed   int

	resumed chan struct{}
}

// New creates a scheduler that processes one item per interval.
func New(proc Processor, interval time.Duration, log *zap.SugaredLogger) *Scheduler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{
		proc:    proc,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		log:     log,
		state:   Idle,
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Progress returns the cursor position, the worklist length, and the number
// of failed items so far.
func (s *Scheduler) Progress() (cursor, total, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor, len(s.worklist), s.failed
}

// Start installs a worklist and moves to Running. An empty worklist
// completes immediately. Starting discards any previous run's cursor.
func (s *Scheduler) Start(worklist []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.worklist = append([]string(nil), worklist...)
	s.cursor = 0
	s.failed = 0
	s.resumed = nil
	if len(s.worklist) == 0 {
		s.state = Completed
		return
	}
	s.state = Running
	s.log.Infow("run started", "items", len(s.worklist))
}

// Pause holds the cursor in place. Only a Running scheduler can pause.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return
	}
	s.state = Paused
	s.resumed = make(chan struct{})
	s.log.Infow("run paused", "cursor", s.cursor, "items", len(s.worklist))
}

// Resume continues a paused run from the held cursor.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Paused {
		return
	}
	s.state = Running
	if s.resumed != nil {
		close(s.resumed)
		s.resumed = nil
	}
	s.log.Infow("run resumed", "cursor", s.cursor, "items", len(s.worklist))
}

// Stop abandons the run. The cursor is not recoverable; a new run starts
// from the beginning of its worklist.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running && s.state != Paused {
		return
	}
	s.state = Stopped
	if s.resumed != nil {
		close(s.resumed)
		s.resumed = nil
	}
	s.log.Infow("run stopped", "cursor", s.cursor, "items", len(s.worklist))
}

// Tick processes exactly one item and advances the cursor. It returns the
// state after the tick. A failed item is logged and counted but does not
// stop the run. Overlapping ticks are rejected with ErrBusy.
func (s *Scheduler) Tick(ctx context.Context) (State, error) {
	s.mu.Lock()
	if s.state != Running {
		state := s.state
		s.mu.Unlock()
		return state, ErrNotRunning
	}
	if s.busy {
		s.mu.Unlock()
		return Running, ErrBusy
	}
	// A pause taken while the final item was in flight can leave the cursor
	// past the end once resumed.
	if s.cursor >= len(s.worklist) {
		s.state = Completed
		s.mu.Unlock()
		return Completed, ErrNotRunning
	}
	s.busy = true
	id := s.worklist[s.cursor]
	position := s.cursor
	s.mu.Unlock()

	err := s.proc.Process(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.failed++
		s.log.Warnw("item failed", "channel", id, "position", position, "error", err)
	}
	// A Stop or Pause issued while the item was in flight wins; the cursor
	// still advances past the attempted item.
	s.cursor++
	if s.state == Running && s.cursor >= len(s.worklist) {
		s.state = Completed
		s.log.Infow("run completed", "items", len(s.worklist), "failed", s.failed)
	}
	return s.state, nil
}

// Run drives ticks at the configured cadence until the worklist completes,
// the run is stopped, or the context is canceled. A paused run blocks here
// until resumed or stopped. Serial ticking makes overlap impossible.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		s.mu.Lock()
		state := s.state
		resumed := s.resumed
		s.mu.Unlock()

		switch state {
		case Completed, Stopped, Idle:
			return nil
		case Paused:
			select {
			case <-resumed:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		if _, err := s.Tick(ctx); err != nil {
			if errors.Is(err, ErrNotRunning) {
				// Paused or stopped between the wait and the tick.
				continue
			}
			return err
		}
	}
}
