package engine

import (
	"log/slog"
	"time"

	"github.com/halidom/respite/internal/session"
)

// startTickLocked launches the once-per-second driver for an active
// session. Idempotent: a running loop is left alone.
func (e *Engine) startTickLocked() {
	if e.tickStop != nil {
		return
	}

	stop := make(chan struct{})
	e.tickStop = stop

	go e.runTicker(stop)
}

func (e *Engine) stopTickLocked() {
	if e.tickStop == nil {
		return
	}

	close(e.tickStop)
	e.tickStop = nil
}

func (e *Engine) runTicker(stop chan struct{}) {
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

// runWatchdog periodically sweeps for a short break stuck past its
// duration, covering for both end timers getting lost (process
// suspend, timer starvation).
func (e *Engine) runWatchdog(stop chan struct{}) {
	ticker := time.NewTicker(e.watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.checkStuckBreak()
		}
	}
}

func (e *Engine) checkStuckBreak() {
	e.mu.Lock()

	if e.cur == nil || e.cur.State != session.ShortBreak {
		e.mu.Unlock()
		return
	}

	overrun := e.cur.TimeInState(time.Now()) - e.cfg.ShortBreak
	if overrun <= watchdogGrace {
		e.mu.Unlock()
		return
	}

	sessionID := e.cur.ID
	e.mu.Unlock()

	slog.Warn(
		"forcing end of overdue short break",
		slog.String("session_id", sessionID),
		slog.Duration("overrun", overrun),
	)

	e.endShortBreak(sessionID)
}

// tick advances elapsed focus time by one second, persists a snapshot
// and flushes a whole minute into statistics whenever one completes.
// A tick racing a transition away from active is dropped.
func (e *Engine) tick() {
	e.mu.Lock()

	if e.cur == nil || e.cur.State != session.Active {
		e.mu.Unlock()
		return
	}

	e.cur.ElapsedTime++

	flushMinute := e.cur.ElapsedTime%60 == 0
	snap := e.cur.Clone()

	e.mu.Unlock()

	// failures are logged, not fatal; the next tick writes again
	err := e.db.SaveSession(snap)
	if err != nil {
		slog.Error("unable to persist tick snapshot", slog.Any("error", err))
	}

	if flushMinute {
		err = e.agg.Record(60, 0, 0)
		if err != nil {
			slog.Error("unable to flush focus minute", slog.Any("error", err))
		}
	}
}
