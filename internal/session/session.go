// Package session runs a rule set as a finite-state machine: idle, active, terminal.
//
// A Session owns its state, its one-shot deferred tasks and its ticker. Input, timer and tick
// callbacks are serialised with a single mutex, and every callback carries the generation it
// was scheduled in so nothing scheduled before a restart or dispose can touch the new state.
package session

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/rocketscienceinc/arcade-backend/internal/apperror"
	"github.com/rocketscienceinc/arcade-backend/internal/entity"
)

// Handle is the game-agnostic view of a session used by hosts.
type Handle interface {
	ID() string
	Game() entity.GameID

	Start()
	HandleRawInput(payload []byte) error
	Restart()
	Dispose()

	Snapshot() entity.Snapshot
	Subscribe(fn func(entity.Snapshot)) (unsubscribe func())
}

type Option func(*options)

type options struct {
	id     string
	clock  clockwork.Clock
	logger *slog.Logger
}

func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

func WithClock(clock clockwork.Clock) Option {
	return func(o *options) { o.clock = clock }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

type Session[S State[S], E any] struct {
	id     string
	rules  RuleSet[S, E]
	clock  clockwork.Clock
	logger *slog.Logger

	mu         sync.Mutex
	state      S
	started    bool
	disposed   bool
	status     entity.Status
	outcome    *entity.Outcome
	generation uint64
	version    uint64

	nextTaskID uint64
	tasks      map[uint64]clockwork.Timer
	ticker     clockwork.Ticker
	tickerDone chan struct{}

	nextSubscriberID int
	subscribers      map[int]func(entity.Snapshot)
}

// New returns an idle session for rules. Call Start to begin playing.
func New[S State[S], E any](rules RuleSet[S, E], opts ...Option) *Session[S, E] {
	o := options{
		clock:  clockwork.NewRealClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.id == "" {
		o.id = uuid.NewString()
	}

	return &Session[S, E]{
		id:          o.id,
		rules:       rules,
		clock:       o.clock,
		logger:      o.logger.With("component", "session", "session_id", o.id, "game", rules.Game()),
		status:      entity.StatusIdle,
		tasks:       make(map[uint64]clockwork.Timer),
		subscribers: make(map[int]func(entity.Snapshot)),
	}
}

func (that *Session[S, E]) ID() string {
	return that.id
}

func (that *Session[S, E]) Game() entity.GameID {
	return that.rules.Game()
}

// Start moves a never-started session to active. It is a no-op otherwise.
func (that *Session[S, E]) Start() {
	that.mu.Lock()
	if that.disposed || that.started {
		that.mu.Unlock()
		return
	}

	that.beginLocked(nil)
	d := that.publishLocked()
	that.mu.Unlock()

	that.logger.Debug("session started")
	d.send()
}

// Restart re-creates the state from the rule set and makes the session active again.
func (that *Session[S, E]) Restart() {
	that.mu.Lock()
	if that.disposed {
		that.mu.Unlock()
		return
	}

	if that.started {
		prev := that.state
		that.beginLocked(&prev)
	} else {
		that.beginLocked(nil)
	}

	d := that.publishLocked()
	that.mu.Unlock()

	that.logger.Debug("session restarted")
	d.send()
}

// HandleInput applies event when the session is active and ignores it otherwise.
func (that *Session[S, E]) HandleInput(event E) {
	that.mu.Lock()
	if that.disposed || that.status != entity.StatusActive {
		that.mu.Unlock()
		return
	}

	transition := that.rules.ApplyInput(&that.state, event)
	if transition.IsIgnored() {
		that.mu.Unlock()
		return
	}

	that.applyLocked(transition)
	d := that.publishLocked()
	that.mu.Unlock()

	d.send()
}

// HandleRawInput decodes payload with the rule set and applies it.
func (that *Session[S, E]) HandleRawInput(payload []byte) error {
	event, err := that.rules.DecodeInput(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, err)
	}

	that.HandleInput(event)

	return nil
}

// Dispose cancels every pending task and the ticker before returning. It is idempotent.
func (that *Session[S, E]) Dispose() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.disposed {
		return
	}

	that.cancelScheduledLocked()

	var zero S
	that.state = zero
	that.disposed = true
	that.started = false
	that.status = entity.StatusIdle
	that.outcome = nil
	that.subscribers = nil

	that.logger.Debug("session disposed")
}

func (that *Session[S, E]) Snapshot() entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshotLocked()
}

// State returns a copy of the current state.
func (that *Session[S, E]) State() S {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state.Clone()
}

func (that *Session[S, E]) Status() entity.Status {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.status
}

func (that *Session[S, E]) Outcome() *entity.Outcome {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.outcome == nil {
		return nil
	}

	outcome := *that.outcome
	return &outcome
}

func (that *Session[S, E]) IsDisposed() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.disposed
}

// Subscribe registers fn to receive a snapshot after every state change.
func (that *Session[S, E]) Subscribe(fn func(entity.Snapshot)) func() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.disposed {
		return func() {}
	}

	id := that.nextSubscriberID
	that.nextSubscriberID++
	that.subscribers[id] = fn

	return func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		delete(that.subscribers, id)
	}
}

func (that *Session[S, E]) beginLocked(prev *S) {
	that.cancelScheduledLocked()

	that.state = that.rules.CreateInitialState(prev)
	that.started = true
	that.status = entity.StatusActive
	that.outcome = nil

	that.startTickerLocked()
}

func (that *Session[S, E]) applyLocked(transition Transition[S]) {
	if transition.IsTerminal() {
		that.status = entity.StatusTerminal
		that.outcome = transition.Outcome
		that.stopTickerLocked()

		that.logger.Debug("session reached terminal state", "outcome", transition.Outcome.Kind)
		return
	}

	for _, task := range transition.Deferred {
		that.scheduleLocked(task)
	}
}

func (that *Session[S, E]) scheduleLocked(task Deferred[S]) {
	generation := that.generation
	id := that.nextTaskID
	that.nextTaskID++

	// runDeferred takes the lock, so it cannot observe tasks before the timer is stored.
	that.tasks[id] = that.clock.AfterFunc(task.Delay, func() {
		that.runDeferred(generation, id, task.Apply)
	})
}

func (that *Session[S, E]) runDeferred(generation, id uint64, apply func(*S) Transition[S]) {
	that.mu.Lock()
	delete(that.tasks, id)

	if that.disposed || generation != that.generation || that.status != entity.StatusActive {
		that.mu.Unlock()
		return
	}

	transition := apply(&that.state)
	if transition.IsIgnored() {
		that.mu.Unlock()
		return
	}

	that.applyLocked(transition)
	d := that.publishLocked()
	that.mu.Unlock()

	d.send()
}

func (that *Session[S, E]) startTickerLocked() {
	ticking, ok := any(that.rules).(Ticker[S])
	if !ok || ticking.TickInterval() <= 0 {
		return
	}

	ticker := that.clock.NewTicker(ticking.TickInterval())
	done := make(chan struct{})
	generation := that.generation

	that.ticker = ticker
	that.tickerDone = done

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.Chan():
				that.runTick(generation, ticking)
			}
		}
	}()
}

func (that *Session[S, E]) runTick(generation uint64, ticking Ticker[S]) {
	that.mu.Lock()
	if that.disposed || generation != that.generation || that.status != entity.StatusActive {
		that.mu.Unlock()
		return
	}

	if !ticking.Tick(&that.state) {
		that.mu.Unlock()
		return
	}

	d := that.publishLocked()
	that.mu.Unlock()

	d.send()
}

func (that *Session[S, E]) stopTickerLocked() {
	if that.ticker == nil {
		return
	}

	that.ticker.Stop()
	close(that.tickerDone)

	that.ticker = nil
	that.tickerDone = nil
}

// cancelScheduledLocked invalidates every callback scheduled so far.
func (that *Session[S, E]) cancelScheduledLocked() {
	that.generation++

	for id, timer := range that.tasks {
		timer.Stop()
		delete(that.tasks, id)
	}

	that.stopTickerLocked()
}

func (that *Session[S, E]) snapshotLocked() entity.Snapshot {
	snapshot := entity.Snapshot{
		SessionID: that.id,
		Game:      that.rules.Game(),
		Status:    that.status,
		Version:   that.version,
	}

	if that.started {
		snapshot.State = that.state.Clone()
	}

	if that.outcome != nil {
		outcome := *that.outcome
		snapshot.Outcome = &outcome
	}

	return snapshot
}

type delivery struct {
	snapshot    entity.Snapshot
	subscribers []func(entity.Snapshot)
}

func (that *Session[S, E]) publishLocked() delivery {
	that.version++

	d := delivery{
		snapshot:    that.snapshotLocked(),
		subscribers: make([]func(entity.Snapshot), 0, len(that.subscribers)),
	}
	for _, fn := range that.subscribers {
		d.subscribers = append(d.subscribers, fn)
	}

	return d
}

func (d delivery) send() {
	for _, fn := range d.subscribers {
		fn(d.snapshot)
	}
}
