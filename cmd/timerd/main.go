package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/evacchi/droolsjbpm-knowledge/internal/config"
	"github.com/evacchi/droolsjbpm-knowledge/internal/metrics"
	"github.com/evacchi/droolsjbpm-knowledge/internal/scheduler"
	"github.com/evacchi/droolsjbpm-knowledge/internal/server"
	"github.com/evacchi/droolsjbpm-knowledge/internal/session"
	"github.com/evacchi/droolsjbpm-knowledge/internal/store"
	"github.com/evacchi/droolsjbpm-knowledge/internal/timer"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/api"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/log"
)

type timerd struct {
	cfg        *config.Config
	redis      *redis.Client
	store      *store.Store
	scheduler  *scheduler.Scheduler
	session    *session.Session
	registry   *prometheus.Registry
	apiServer  *server.Server
	httpServer *http.Server
	quit       chan os.Signal
}

const (
	Name    = "timerd"
	Version = "0.1.0"

	heartbeatProcess = "heartbeat"
	redisPingTimeout = 5 * time.Second
)

var (
	ErrConnectRedis      = errors.New("failed to connect to redis")
	ErrRestoreTimers     = errors.New("failed to restore timers")
	ErrRegisterHeartbeat = errors.New("failed to register heartbeat timer")
)

func main() {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &timerd{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *timerd) run() error {
	if err := s.initializeStore(); err != nil {
		return err
	}

	s.initializeSession()
	if err := s.restoreTimers(); err != nil {
		_ = s.redis.Close()
		return err
	}
	if err := s.registerHeartbeat(); err != nil {
		_ = s.redis.Close()
		return err
	}
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *timerd) setupLogging() {
	level := log.ParseLevel(s.cfg.LogLevel)
	logger := log.NewWithLevel(Name, s.cfg.Env, Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Timer daemon starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("redis_addr", s.cfg.Redis.Addr),
		slog.Int("redis_db", s.cfg.Redis.DB),
		slog.String("redis_prefix", s.cfg.Redis.Prefix),
		log.SessionID(s.cfg.SessionID),
		slog.Duration("overdue_delay", s.cfg.OverdueDelay),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))
}

func (s *timerd) initializeStore() error {
	s.redis = redis.NewClient(&redis.Options{
		Addr:     s.cfg.Redis.Addr,
		Password: s.cfg.Redis.Password,
		DB:       s.cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		_ = s.redis.Close()
		return fmt.Errorf("%w: %w", ErrConnectRedis, err)
	}

	s.store = store.New(s.redis, s.cfg.Redis.Prefix)
	return nil
}

func (s *timerd) initializeSession() {
	s.registry = prometheus.NewRegistry()
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s.scheduler = scheduler.New(scheduler.SystemClock, scheduler.NewTimer)
	s.scheduler.Start()

	s.session = session.New(s.scheduler,
		session.WithID(api.SessionID(s.cfg.SessionID)),
		session.WithTimerOptions(
			timer.WithOverdueDelay(s.cfg.OverdueDelay),
			timer.WithRecorder(metrics.New(s.registry)),
		),
	)

	s.session.Processes().Register(heartbeatProcess,
		func(id api.ProcessInstanceID, _ map[string]any, trigger string) error {
			slog.Info("Heartbeat",
				log.ProcessInstanceID(id),
				slog.String("trigger", trigger))
			return nil
		},
	)
}

func (s *timerd) restoreTimers() error {
	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	n, err := s.store.RestoreManager(
		ctx, s.session.TimerManager(), s.session.Identifier(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRestoreTimers, err)
	}
	slog.Info("Timers restored",
		log.SessionID(s.session.Identifier()),
		slog.Int("count", n))
	return nil
}

func (s *timerd) registerHeartbeat() error {
	if s.cfg.HeartbeatCron == "" {
		return nil
	}

	mgr := s.session.TimerManager()
	for _, t := range mgr.Timers() {
		if t.ProcessID == heartbeatProcess &&
			t.CronExpression == s.cfg.HeartbeatCron {
			return nil
		}
	}

	t := timer.NewCronTimer(s.cfg.HeartbeatCron)
	if err := mgr.RegisterStartTimer(t, heartbeatProcess, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrRegisterHeartbeat, err)
	}
	slog.Info("Heartbeat timer registered",
		log.TimerID(t.ID),
		slog.String("cron", s.cfg.HeartbeatCron))
	return nil
}

func (s *timerd) startServer() {
	s.apiServer = server.NewServer(s.session, s.registry, Name, Version)
	mux := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *timerd) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	if err := s.store.SaveManager(ctx, s.session.TimerManager()); err != nil {
		slog.Error("Failed to save timers", log.Error(err))
	}
	s.session.Dispose()

	_ = s.redis.Close()

	slog.Info("Server exited")
}
