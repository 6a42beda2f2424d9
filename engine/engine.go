// Package engine owns the focus session state machine: transitions,
// break scheduling, pause accounting and statistics flushes.
package engine

import (
	"log/slog"
	"math/rand/v2"
	"os/exec"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/kballard/go-shellquote"

	"github.com/halidom/respite/alarm"
	"github.com/halidom/respite/config"
	"github.com/halidom/respite/internal/session"
	"github.com/halidom/respite/notify"
	"github.com/halidom/respite/schedule"
	"github.com/halidom/respite/stats"
	"github.com/halidom/respite/store"
)

const (
	// backstopGrace delays the secondary break-end timer behind the
	// primary one.
	backstopGrace = 5 * time.Second

	// watchdogGrace is how far past its duration a short break may run
	// before the periodic watchdog forces it to end.
	watchdogGrace = 15 * time.Second
)

// Engine serializes every mutation of the session record behind one
// mutex. The in-memory session is authoritative; the store mirrors it
// for observers, and a failed write is retried implicitly by the next
// tick or transition.
type Engine struct {
	mu       sync.Mutex
	cfg      *config.Config
	db       store.DB
	agg      *stats.Aggregator
	notifier notify.Notifier
	alarms   alarm.Scheduler
	rng      *rand.Rand
	cur      *session.Session

	tickInterval  time.Duration
	watchInterval time.Duration

	tickStop    chan struct{}
	watchStop   chan struct{}
	breakTimers []*time.Timer
	subs        []chan *session.Session
}

// New wires an engine to its collaborators. The default alarm
// facility is in-process; SetScheduler swaps in another backend.
func New(
	cfg *config.Config,
	db store.DB,
	agg *stats.Aggregator,
	notifier notify.Notifier,
) *Engine {
	e := &Engine{
		cfg:           cfg,
		db:            db,
		agg:           agg,
		notifier:      notifier,
		rng:           rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		tickInterval:  time.Second,
		watchInterval: 30 * time.Second,
	}

	e.alarms = alarm.NewInProc(e.HandleAlarm)

	return e
}

// SetScheduler replaces the alarm facility. Must be called before
// Start.
func (e *Engine) SetScheduler(s alarm.Scheduler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.alarms = s
}

// Start restores the persisted session (or creates an idle one),
// re-derives any scheduling the snapshot implies, and launches the
// watchdog.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()

	sess, err := e.db.Session()
	if err != nil {
		slog.Error("unable to restore session snapshot", slog.Any("error", err))
	}

	if sess == nil {
		sess = session.New(now)
	}

	e.cur = sess

	// alarms and timers do not survive a restart; rebuild them from
	// the snapshot
	switch sess.State {
	case session.Active:
		e.scheduleBreaksLocked(now)
		e.startTickLocked()
	case session.ShortBreak:
		e.armBreakEndLocked(
			e.cfg.ShortBreak-sess.TimeInState(now),
			sess.ID,
			e.endShortBreak,
		)
	case session.LongBreak:
		e.armBreakEndLocked(
			e.cfg.LongBreak-sess.TimeInState(now),
			sess.ID,
			e.endLongBreak,
		)
	case session.Idle, session.Paused:
	}

	e.watchStop = make(chan struct{})
	go e.runWatchdog(e.watchStop)
}

// Stop halts the tick loop, watchdog and pending break timers, and
// closes all subscriber channels.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopTickLocked()
	e.cancelBreakTimersLocked()

	if e.cur != nil {
		e.alarms.CancelSession(e.cur.ID)
	}

	if e.watchStop != nil {
		close(e.watchStop)
		e.watchStop = nil
	}

	for _, ch := range e.subs {
		close(ch)
	}

	e.subs = nil
}

// Subscribe registers an observer of session changes. Sends never
// block: a slow observer misses events instead of stalling the
// engine.
func (e *Engine) Subscribe(buffer int) <-chan *session.Session {
	if buffer <= 0 {
		buffer = 1
	}

	ch := make(chan *session.Session, buffer)

	e.mu.Lock()
	e.subs = append(e.subs, ch)
	e.mu.Unlock()

	return ch
}

// Unsubscribe detaches an observer channel and closes it.
func (e *Engine) Unsubscribe(ch <-chan *session.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, sub := range e.subs {
		if sub == ch {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			close(sub)

			return
		}
	}
}

// Current returns a copy of the live session.
func (e *Engine) Current() *session.Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.cur.Clone()
}

// StartSession begins a fresh focus period. Legal from idle and from
// a long break (cutting it short); a no-op in every other state.
func (e *Engine) StartSession() *session.Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cur.State != session.Idle && e.cur.State != session.LongBreak {
		return e.cur.Clone()
	}

	e.startSessionLocked(time.Now())

	return e.cur.Clone()
}

// Pause freezes an active session. Elapsed time stops advancing until
// Resume.
func (e *Engine) Pause() *session.Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cur.State != session.Active {
		return e.cur.Clone()
	}

	now := time.Now()

	e.stopTickLocked()
	e.cur.BeginPause(now)
	e.cur.Transition(session.Paused, now)
	e.persistLocked()
	e.publishLocked()

	return e.cur.Clone()
}

// Resume unfreezes a paused session, folds the pause into
// TotalPausedTime and re-registers break alarms for the remaining
// focus time.
func (e *Engine) Resume() *session.Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cur.State != session.Paused {
		return e.cur.Clone()
	}

	now := time.Now()

	e.cur.EndPause(now)
	e.cur.Transition(session.Active, now)
	e.scheduleBreaksLocked(now)
	e.startTickLocked()
	e.persistLocked()
	e.publishLocked()

	return e.cur.Clone()
}

// Reset discards the current session from any state: pending alarms
// are cleared, in-flight break-end callbacks are orphaned (they check
// the session id at fire time), and a fresh idle session takes over.
func (e *Engine) Reset() *session.Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelCurrentLocked()

	e.cur = session.New(time.Now())
	e.persistLocked()
	e.publishLocked()

	return e.cur.Clone()
}

// EndBreak ends a long break ahead of its timer. A no-op outside the
// longBreak state.
func (e *Engine) EndBreak() *session.Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cur.State == session.LongBreak {
		e.endLongBreakLocked(e.cur.ID)
	}

	return e.cur.Clone()
}

// HandleAlarm dispatches a fired alarm. Alarms from superseded
// sessions, or firing outside the active state (a pause or reset
// raced the alarm), are silent no-ops.
func (e *Engine) HandleAlarm(id alarm.ID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id.Session != e.cur.ID || e.cur.State != session.Active {
		slog.Debug("ignoring stale alarm", slog.String("alarm", spew.Sdump(id)))
		return
	}

	switch id.Kind {
	case alarm.ShortBreak:
		e.beginShortBreakLocked()
	case alarm.LongBreak:
		e.beginLongBreakLocked()
	default:
		slog.Warn("unrecognized alarm kind", slog.String("alarm", id.Name()))
	}
}

// startSessionLocked replaces the live session with a fresh active
// one and schedules its breaks.
func (e *Engine) startSessionLocked(now time.Time) {
	e.cancelCurrentLocked()

	e.cur = session.New(now)
	e.cur.Transition(session.Active, now)

	e.scheduleBreaksLocked(now)
	e.startTickLocked()
	e.persistLocked()
	e.publishLocked()
}

// scheduleBreaksLocked clears the session's pending alarms and
// registers a new batch: randomized short breaks within the next
// short-period window, plus the long break at the end of the
// remaining focus time. Re-registration happens whenever the session
// (re-)enters active, so the window always reflects elapsed focus
// time rather than wall-clock age.
func (e *Engine) scheduleBreaksLocked(now time.Time) {
	remaining := e.cfg.LongPeriod -
		time.Duration(e.cur.ElapsedTime)*time.Second
	if remaining < 0 {
		remaining = 0
	}

	window := e.cfg.ShortPeriod
	if window > remaining {
		window = remaining
	}

	var shorts []time.Time

	// a window shorter than twice the edge margin cannot hold a break
	if window >= 2*schedule.EdgeMargin {
		shorts = schedule.Times(window, now, e.rng)
	}

	schedule.Register(
		e.alarms,
		e.cur.ID,
		shorts,
		e.cur.ShortBreakCount,
		now.Add(remaining),
	)
}

func (e *Engine) beginShortBreakLocked() {
	now := time.Now()

	e.stopTickLocked()

	e.cur.Transition(session.ShortBreak, now)
	e.cur.RecordShortBreak(now)

	err := e.agg.Record(0, 1, 0)
	if err != nil {
		slog.Error("unable to record short break", slog.Any("error", err))
	}

	e.notifier.Notify(notify.ShortBreakStarted)

	go e.runBreakCmd()

	// primary end timer plus a delayed backstop; the watchdog poll is
	// the third, independent net
	e.armBreakEndLocked(e.cfg.ShortBreak, e.cur.ID, e.endShortBreak)
	e.armBreakEndLocked(
		e.cfg.ShortBreak+backstopGrace,
		e.cur.ID,
		e.endShortBreak,
	)

	e.persistLocked()
	e.publishLocked()
}

// endShortBreak returns the session to active, provided the break it
// belongs to is still the live state. Fires from the primary timer,
// the backstop, or the watchdog; whichever comes first wins and the
// rest become no-ops.
func (e *Engine) endShortBreak(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cur.ID != sessionID || e.cur.State != session.ShortBreak {
		return
	}

	now := time.Now()

	e.cancelBreakTimersLocked()

	e.cur.Transition(session.Active, now)

	e.notifier.Notify(notify.ShortBreakEnded)

	e.scheduleBreaksLocked(now)
	e.startTickLocked()
	e.persistLocked()
	e.publishLocked()
}

func (e *Engine) beginLongBreakLocked() {
	now := time.Now()

	e.stopTickLocked()

	// whole minutes were flushed by the tick loop; record the tail of
	// the focus period together with the long break itself
	err := e.agg.Record(e.cur.ElapsedTime%60, 0, 1)
	if err != nil {
		slog.Error("unable to record long break", slog.Any("error", err))
	}

	e.cur.Transition(session.LongBreak, now)

	e.alarms.CancelSession(e.cur.ID)

	e.notifier.Notify(notify.LongBreakStarted)

	go e.runBreakCmd()

	e.armBreakEndLocked(e.cfg.LongBreak, e.cur.ID, e.endLongBreak)

	e.persistLocked()
	e.publishLocked()
}

func (e *Engine) endLongBreak(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cur.ID != sessionID || e.cur.State != session.LongBreak {
		return
	}

	e.endLongBreakLocked(sessionID)
}

// endLongBreakLocked concludes a long break: auto-start a fresh
// session, or settle into a fresh idle one.
func (e *Engine) endLongBreakLocked(sessionID string) {
	now := time.Now()

	e.cancelBreakTimersLocked()

	e.notifier.Notify(notify.LongBreakEnded)

	if e.cfg.AutoStartNext {
		e.startSessionLocked(now)
		return
	}

	e.alarms.CancelSession(sessionID)

	e.cur = session.New(now)
	e.persistLocked()
	e.publishLocked()
}

// cancelCurrentLocked tears down everything owned by the live
// session: tick loop, pending alarms and break-end timers.
func (e *Engine) cancelCurrentLocked() {
	e.stopTickLocked()
	e.cancelBreakTimersLocked()

	if e.cur != nil {
		e.alarms.CancelSession(e.cur.ID)
	}
}

// armBreakEndLocked schedules end(sessionID) after d. The timer is
// tracked so any transition away from the break can cancel it; a
// timer that fires anyway is defused by the id-and-state check inside
// end.
func (e *Engine) armBreakEndLocked(
	d time.Duration,
	sessionID string,
	end func(string),
) {
	if d < 0 {
		d = 0
	}

	e.breakTimers = append(e.breakTimers, time.AfterFunc(d, func() {
		end(sessionID)
	}))
}

func (e *Engine) cancelBreakTimersLocked() {
	for _, t := range e.breakTimers {
		t.Stop()
	}

	e.breakTimers = nil
}

// runBreakCmd executes the configured break hook command, if any.
func (e *Engine) runBreakCmd() {
	e.mu.Lock()
	breakCmd := e.cfg.OnBreakCmd
	e.mu.Unlock()

	if breakCmd == "" {
		return
	}

	cmdSlice, err := shellquote.Split(breakCmd)
	if err != nil {
		slog.Error("unable to parse on_break_cmd option", slog.Any("error", err))
		return
	}

	if len(cmdSlice) == 0 {
		return
	}

	cmd := exec.Command(cmdSlice[0], cmdSlice[1:]...)

	err = cmd.Run()
	if err != nil {
		slog.Error("on_break_cmd failed", slog.Any("error", err))
	}
}

func (e *Engine) persistLocked() {
	err := e.db.SaveSession(e.cur.Clone())
	if err != nil {
		slog.Error("unable to persist session snapshot", slog.Any("error", err))
	}
}

func (e *Engine) publishLocked() {
	snap := e.cur.Clone()

	for _, ch := range e.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
