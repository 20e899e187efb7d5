package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"build-streak-go/internal/frame"
	"build-streak-go/internal/identity"
	"build-streak-go/internal/models"
	"build-streak-go/internal/notes"
	"build-streak-go/internal/streak"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server hosts the frame/share surface and the presentation-boundary JSON
// API for the single connected session. The frame endpoints are stateless;
// the session endpoints drive the synchronization controller.
type Server struct {
	cfg       models.ServerConfig
	engine    *gin.Engine
	provider  *identity.Provider
	chain     streak.ChainClient
	noteStore notes.Store

	mu         sync.Mutex
	session    *models.UserSession
	controller *streak.Controller
}

func New(cfg models.ServerConfig, provider *identity.Provider, chainClient streak.ChainClient, noteStore notes.Store, frameCfg *frame.Config) *Server {
	s := &Server{
		cfg:       cfg,
		provider:  provider,
		chain:     chainClient,
		noteStore: noteStore,
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Stateless frame/share surface.
	r.POST("/api/frame", frame.Handler(frameCfg))
	r.GET("/api/og", frame.ImageHandler(frameCfg))

	// Presentation boundary for the hosted session.
	r.GET("/healthz", s.handleHealth)
	r.GET("/api/state", s.handleState)
	r.POST("/api/state/refresh", s.handleRefresh)
	r.POST("/api/state/dismiss-error", s.handleDismissError)
	r.POST("/api/streak/start", s.handleStartStreak)
	r.POST("/api/streak/log", s.handleLogDay)
	r.GET("/api/notes", s.handleListNotes)

	s.engine = r
	return s
}

// Bootstrap resolves the initial session, builds its controller and loads
// the first view. It also wires identity-change events: a changed identity
// replaces session and controller wholesale, a vanished one tears them down.
func (s *Server) Bootstrap(ctx context.Context) error {
	sess, err := s.provider.ResolveSession(ctx)
	if err != nil {
		return err
	}
	s.replaceSession(ctx, sess)

	s.provider.OnIdentityChanged(func(next *models.UserSession) {
		refreshCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.replaceSession(refreshCtx, next)
	})
	return nil
}

func (s *Server) replaceSession(ctx context.Context, sess *models.UserSession) {
	s.mu.Lock()
	if sess == nil {
		if s.session != nil {
			zap.L().Info("Session destroyed", zap.String("address", s.session.Address))
		}
		s.session = nil
		s.controller = nil
		s.mu.Unlock()
		return
	}
	if s.session != nil && s.session.Address == sess.Address {
		// Same wallet, richer identity: keep the controller, swap the session.
		s.session = sess
		s.mu.Unlock()
		return
	}
	controller := streak.NewController(s.chain, s.noteStore, sess.Address)
	s.session = sess
	s.controller = controller
	s.mu.Unlock()

	zap.L().Info("Session established", zap.String("address", sess.Address))
	controller.Refresh(ctx)
}

// Run serves until ctx is cancelled, then shuts down within the configured
// grace period.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:    s.cfg.Address,
		Handler: s.engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("Forced shutdown after timeout", zap.Error(err))
		}
	}()

	zap.L().Info("Server listening", zap.String("address", s.cfg.Address))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) current() (*models.UserSession, *streak.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.controller
}

func (s *Server) handleHealth(c *gin.Context) {
	_, controller := s.current()
	status := gin.H{"status": "ok"}
	if controller != nil {
		status["phase"] = controller.View().Phase
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleState(c *gin.Context) {
	sess, controller := s.current()
	if controller == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil, "state": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "state": controller.View()})
}

func (s *Server) handleRefresh(c *gin.Context) {
	controller, ok := s.requireSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": controller.Refresh(c.Request.Context())})
}

func (s *Server) handleDismissError(c *gin.Context) {
	controller, ok := s.requireSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": controller.DismissError()})
}

func (s *Server) handleStartStreak(c *gin.Context) {
	controller, ok := s.requireSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": controller.StartStreak(c.Request.Context())})
}

type logDayRequest struct {
	Note string `json:"note"`
}

func (s *Server) handleLogDay(c *gin.Context) {
	controller, ok := s.requireSession(c)
	if !ok {
		return
	}

	var req logDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	outcome, view := controller.LogDay(c.Request.Context(), req.Note)
	c.JSON(http.StatusOK, gin.H{"outcome": outcome.String(), "state": view})
}

func (s *Server) handleListNotes(c *gin.Context) {
	sess, controller := s.current()
	if controller == nil {
		s.sessionUnavailable(c)
		return
	}

	entries, err := s.noteStore.List(c.Request.Context(), sess.Address)
	if err != nil {
		zap.L().Error("Note history query failed", zap.String("address", sess.Address), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": models.ErrKindStoreRead})
		return
	}
	if entries == nil {
		entries = []models.DailyLogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"notes": entries})
}

func (s *Server) requireSession(c *gin.Context) (*streak.Controller, bool) {
	_, controller := s.current()
	if controller == nil {
		s.sessionUnavailable(c)
		return nil, false
	}
	return controller, true
}

// sessionUnavailable is the "nobody is connected" answer. It is a normal
// condition, reported as such rather than as a server fault.
func (s *Server) sessionUnavailable(c *gin.Context) {
	c.JSON(http.StatusConflict, gin.H{"error": models.ErrKindSessionUnavailable})
}
