package alarm

import (
	"sync"
	"time"
)

// InProc is an in-process Scheduler backed by time.AfterFunc. It
// stands in for the platform alarm facility when respite runs as a
// long-lived daemon.
type InProc struct {
	mu      sync.Mutex
	handler func(ID)
	pending map[string]*time.Timer
	stopped bool
}

// NewInProc returns a scheduler that invokes handler on its own
// goroutine whenever an alarm fires.
func NewInProc(handler func(ID)) *InProc {
	return &InProc{
		handler: handler,
		pending: make(map[string]*time.Timer),
	}
}

func (p *InProc) Schedule(id ID, at time.Time) error {
	d := time.Until(at)
	if d < 0 {
		d = 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}

	name := id.Name()

	if t, ok := p.pending[name]; ok {
		t.Stop()
	}

	p.pending[name] = time.AfterFunc(d, func() {
		p.fire(id)
	})

	return nil
}

func (p *InProc) fire(id ID) {
	p.mu.Lock()
	delete(p.pending, id.Name())
	stopped := p.stopped
	p.mu.Unlock()

	if !stopped {
		p.handler(id)
	}
}

func (p *InProc) Cancel(id ID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	name := id.Name()

	if t, ok := p.pending[name]; ok {
		t.Stop()
		delete(p.pending, name)
	}
}

func (p *InProc) CancelSession(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prefix := sessionID + "_"

	for name, t := range p.pending {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			t.Stop()
			delete(p.pending, name)
		}
	}
}

// Pending reports the number of scheduled alarms.
func (p *InProc) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.pending)
}

// Stop cancels every pending alarm and suppresses late firings.
func (p *InProc) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopped = true

	for name, t := range p.pending {
		t.Stop()
		delete(p.pending, name)
	}
}
