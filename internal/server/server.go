package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evacchi/droolsjbpm-knowledge/internal/timer"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/api"
)

// Server implements the HTTP diagnostics API of a timer session
type Server struct {
	runtime  timer.Runtime
	gatherer prometheus.Gatherer
	name     string
	version  string
}

var (
	ErrInvalidTimerID = errors.New("invalid timer id")
	ErrTimerNotFound  = errors.New("timer not found")
)

// NewServer creates a new HTTP API server for rt, exposing the metrics
// collected by gatherer
func NewServer(
	rt timer.Runtime, gatherer prometheus.Gatherer, name, version string,
) *Server {
	return &Server{
		runtime:  rt,
		gatherer: gatherer,
		name:     name,
		version:  version,
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(
		promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}),
	))

	eng := router.Group("/engine")
	{
		eng.GET("/timer", s.listTimers)
		eng.GET("/timer/:timerID", s.getTimer)
		eng.DELETE("/timer/:timerID", s.cancelTimer)
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	status := api.HealthHealthy
	active := s.runtime.IsActive()
	if !active {
		status = api.HealthDegraded
	}
	c.JSON(http.StatusOK, api.HealthResponse{
		Service:   s.name,
		Version:   s.version,
		Status:    status,
		SessionID: s.runtime.Identifier(),
		Active:    active,
		Timers:    len(s.runtime.TimerManager().Timers()),
	})
}

func (s *Server) listTimers(c *gin.Context) {
	timers := s.runtime.TimerManager().Timers()
	res := make([]*api.TimerState, 0, len(timers))
	for i := range timers {
		res = append(res, timerState(&timers[i]))
	}
	c.JSON(http.StatusOK, api.TimersListResponse{
		Timers: res,
		Count:  len(res),
	})
}

func (s *Server) getTimer(c *gin.Context) {
	id, ok := s.timerID(c)
	if !ok {
		return
	}
	t, ok := s.runtime.TimerManager().Timer(id)
	if !ok {
		s.notFound(c, id)
		return
	}
	c.JSON(http.StatusOK, timerState(&t))
}

func (s *Server) cancelTimer(c *gin.Context) {
	id, ok := s.timerID(c)
	if !ok {
		return
	}
	mgr := s.runtime.TimerManager()
	if _, ok := mgr.Timer(id); !ok {
		s.notFound(c, id)
		return
	}
	mgr.CancelTimer(id)
	c.JSON(http.StatusOK, api.TimerCancelledResponse{
		Message: "Timer cancelled",
		ID:      id,
	})
}

func (s *Server) timerID(c *gin.Context) (int64, bool) {
	raw := c.Param("timerID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %s", ErrInvalidTimerID, raw),
			Status: http.StatusBadRequest,
		})
		return 0, false
	}
	return id, true
}

func (s *Server) notFound(c *gin.Context, id int64) {
	c.JSON(http.StatusNotFound, api.ErrorResponse{
		Error:  fmt.Sprintf("%s: %d", ErrTimerNotFound, id),
		Status: http.StatusNotFound,
	})
}

func timerState(t *timer.TimerInstance) *api.TimerState {
	res := &api.TimerState{
		ID:                t.ID,
		ProcessInstanceID: t.ProcessInstanceID,
		SessionID:         t.SessionID,
		DelayMS:           t.Delay.Milliseconds(),
		PeriodMS:          t.Period.Milliseconds(),
		RepeatLimit:       t.RepeatLimit,
		CronExpression:    t.CronExpression,
		Activated:         t.Activated,
		ProcessID:         t.ProcessID,
	}
	if t.HasFired() {
		last := t.LastTriggered
		res.LastTriggered = &last
	}
	return res
}
