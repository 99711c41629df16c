// Package api exposes the pipeline over HTTP and triggers scheduled runs.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"clipbot/curation"
	"clipbot/logger"
	"clipbot/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

// Runner is the part of pipeline.Runner the server drives. The slot is taken
// with Reserve before answering so a second request sees it busy.
type Runner interface {
	Reserve() bool
	RunReserved(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Server is the HTTP API plus the cron trigger.
type Server struct {
	state      *pipeline.Manager
	runner     Runner
	store      curation.Store
	runLogPath string
	log        *logger.Logger

	httpServer *http.Server
	cron       *cron.Cron
	cronID     cron.EntryID
	mu         sync.Mutex
	baseCtx    context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// Config wires the server. Store may be nil when curation is disabled.
type Config struct {
	Addr       string
	State      *pipeline.Manager
	Runner     Runner
	Store      curation.Store
	RunLogPath string
	Log        *logger.Logger
}

func NewServer(cfg Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		state:      cfg.State,
		runner:     cfg.Runner,
		store:      cfg.Store,
		runLogPath: cfg.RunLogPath,
		log:        cfg.Log,
		cron:       cron.New(),
		baseCtx:    ctx,
		cancel:     cancel,
	}
	s.httpServer = &http.Server{
		Addr:    cfg.Addr,
		Handler: s.Router(),
	}
	return s
}

// Router constructs the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)
	s.registerRunRoutes(r)
	s.registerCurationRoutes(r)
	s.registerTopicRoutes(r)
	return r
}

func (s *Server) Start() error {
	s.log.Info("🌐 starting API server", "addr", s.httpServer.Addr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
		}
	}()
	return nil
}

// StartCron triggers a run on schedule while the pipeline is idle.
func (s *Server) StartCron(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(schedule, func() { s.cronRun() })
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cronID = id
	s.cron.Start()
	s.log.Info("cron job started", "schedule", schedule)
	return nil
}

// cronRun starts a run with the settings' defaults unless one is in progress.
func (s *Server) cronRun() bool {
	if !s.runner.Reserve() {
		s.log.Info("cron skipped: pipeline is busy", "state", s.state.State())
		return false
	}
	s.log.Info("⏰ cron triggered run")
	s.startReserved(pipeline.Request{})
	return true
}

// startReserved runs the pipeline in the background on a slot the caller
// already reserved.
func (s *Server) startReserved(req pipeline.Request) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.runner.RunReserved(s.baseCtx, req); err != nil {
			s.log.Warn("run ended with error", "error", err)
		}
	}()
}

// Shutdown stops the cron, the HTTP server and any run in progress.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down API server")
	<-s.cron.Stop().Done()

	err := s.httpServer.Shutdown(ctx)
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	return err
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
