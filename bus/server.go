// Package bus exposes the running engine over a local HTTP API so
// external tooling (status bars, the respite CLI itself) can observe
// and control the session.
package bus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/halidom/respite/config"
	"github.com/halidom/respite/engine"
	"github.com/halidom/respite/stats"
)

// Server is the HTTP control surface. It binds to localhost only; the
// API carries no authentication and must not be reachable from
// outside the machine.
type Server struct {
	cfg *config.Config
	eng *engine.Engine
	agg *stats.Aggregator
	srv *http.Server
}

func New(cfg *config.Config, eng *engine.Engine, agg *stats.Aggregator) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg: cfg,
		eng: eng,
		agg: agg,
	}

	s.srv = &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Router builds the gin handler tree. Split out from Start so tests
// can drive it through httptest.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/settings", s.getSettings)
		api.GET("/session", s.getSession)
		api.POST("/session/start", s.postStart)
		api.POST("/session/pause", s.postPause)
		api.POST("/session/resume", s.postResume)
		api.POST("/session/reset", s.postReset)
		api.POST("/session/end-break", s.postEndBreak)
		api.GET("/statistics", s.getStatistics)
		api.GET("/events", s.getEvents)
	}

	return router
}

// Start serves until Shutdown.
func (s *Server) Start() error {
	slog.Info("control api listening", slog.String("addr", s.srv.Addr))

	err := s.srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.cfg)
}

func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.eng.Current())
}

func (s *Server) postStart(c *gin.Context) {
	c.JSON(http.StatusOK, s.eng.StartSession())
}

func (s *Server) postPause(c *gin.Context) {
	c.JSON(http.StatusOK, s.eng.Pause())
}

func (s *Server) postResume(c *gin.Context) {
	c.JSON(http.StatusOK, s.eng.Resume())
}

func (s *Server) postReset(c *gin.Context) {
	c.JSON(http.StatusOK, s.eng.Reset())
}

func (s *Server) postEndBreak(c *gin.Context) {
	c.JSON(http.StatusOK, s.eng.EndBreak())
}

// getStatistics returns today's and this week's buckets, plus an
// optional per-day breakdown when ?days=N is given.
func (s *Server) getStatistics(c *gin.Context) {
	today, err := s.agg.Today()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	week, err := s.agg.ThisWeek()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"today": today,
		"week":  week,
	}

	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 30 {
			c.JSON(
				http.StatusBadRequest,
				gin.H{"error": "days must be an integer between 1 and 30"},
			)

			return
		}

		days, err := s.agg.LastNDays(n)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp["days"] = days
	}

	c.JSON(http.StatusOK, resp)
}

// getEvents streams session snapshots as server-sent events. The
// current session is sent immediately so clients need no separate
// priming request.
func (s *Server) getEvents(c *gin.Context) {
	ch := s.eng.Subscribe(16)
	defer s.eng.Unsubscribe(ch)

	c.SSEvent("session", s.eng.Current())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-ch:
			if !ok {
				return false
			}

			c.SSEvent("session", snap)

			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
