package bus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/halidom/respite/config"
	"github.com/halidom/respite/engine"
	"github.com/halidom/respite/internal/session"
	"github.com/halidom/respite/notify"
	"github.com/halidom/respite/stats"
	"github.com/halidom/respite/store"
)

func newTestServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()

	cfg := &config.Config{
		ShortPeriod: 5 * time.Minute,
		ShortBreak:  10 * time.Second,
		LongPeriod:  90 * time.Minute,
		LongBreak:   20 * time.Minute,
		Notify:      true,
		Port:        9353,
	}

	db, err := store.NewClient(filepath.Join(t.TempDir(), "respite.db"))
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	agg := stats.New(db)

	eng := engine.New(cfg, db, agg, notify.Noop{})
	eng.Start()
	t.Cleanup(eng.Stop)

	return New(cfg, eng, agg), eng
}

func doJSON(
	t *testing.T,
	router http.Handler,
	method, path string,
	out any,
) int {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("invalid response body %q: %v", rec.Body.String(), err)
		}
	}

	return rec.Code
}

func TestSessionLifecycleEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	var sess session.Session

	if code := doJSON(t, router, http.MethodGet, "/api/session", &sess); code != http.StatusOK {
		t.Fatalf("GET /api/session returned %d", code)
	}

	if sess.State != session.Idle {
		t.Fatalf("expected idle before start, got %s", sess.State)
	}

	steps := []struct {
		path string
		want session.State
	}{
		{"/api/session/start", session.Active},
		{"/api/session/pause", session.Paused},
		{"/api/session/resume", session.Active},
		{"/api/session/reset", session.Idle},
	}

	for _, step := range steps {
		code := doJSON(t, router, http.MethodPost, step.path, &sess)
		if code != http.StatusOK {
			t.Fatalf("POST %s returned %d", step.path, code)
		}

		if sess.State != step.want {
			t.Errorf("after %s: expected %s, got %s", step.path, step.want, sess.State)
		}
	}
}

func TestGetSettings(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	var cfg config.Config

	if code := doJSON(t, router, http.MethodGet, "/api/settings", &cfg); code != http.StatusOK {
		t.Fatalf("GET /api/settings returned %d", code)
	}

	if cfg.ShortPeriod != 5*time.Minute {
		t.Errorf("expected short period 5m, got %v", cfg.ShortPeriod)
	}

	if cfg.Port != 9353 {
		t.Errorf("expected port 9353, got %d", cfg.Port)
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	if err := srv.agg.Record(300, 2, 1); err != nil {
		t.Fatal(err)
	}

	var resp struct {
		Today store.Bucket    `json:"today"`
		Week  store.Bucket    `json:"week"`
		Days  []stats.DayStat `json:"days"`
	}

	code := doJSON(t, router, http.MethodGet, "/api/statistics?days=7", &resp)
	if code != http.StatusOK {
		t.Fatalf("GET /api/statistics returned %d", code)
	}

	if resp.Today.TotalFocusTime != 300 || resp.Today.SessionsCompleted != 1 {
		t.Errorf("unexpected today bucket %+v", resp.Today)
	}

	if len(resp.Days) != 7 {
		t.Errorf("expected 7 day entries, got %d", len(resp.Days))
	}

	for _, q := range []string{"days=0", "days=31", "days=nope"} {
		code = doJSON(t, router, http.MethodGet, "/api/statistics?"+q, nil)
		if code != http.StatusBadRequest {
			t.Errorf("expected 400 for %s, got %d", q, code)
		}
	}
}

// closeNotifyRecorder augments httptest.ResponseRecorder with the
// http.CloseNotifier interface that gin's Context.Stream requires.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool { return r.closed }

func TestEventsStream(t *testing.T) {
	srv, eng := newTestServer(t)
	router := srv.Router()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}

	done := make(chan struct{})

	go func() {
		router.ServeHTTP(rec, req)
		close(done)
	}()

	// let the handler subscribe before triggering a transition
	time.Sleep(50 * time.Millisecond)

	eng.StartSession()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not terminate on client disconnect")
	}

	body := rec.Body.String()

	if !strings.Contains(body, "session") {
		t.Errorf("expected session events in stream, got %q", body)
	}

	if !strings.Contains(body, string(session.Active)) {
		t.Errorf("expected an active-state snapshot in stream, got %q", body)
	}
}
