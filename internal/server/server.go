// Package server exposes the adaptation operations over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rcliao/scene-adapter/internal/dialogue"
	"github.com/rcliao/scene-adapter/internal/logger"
	"github.com/rcliao/scene-adapter/internal/model"
	"github.com/rcliao/scene-adapter/internal/prompt"
	"github.com/rcliao/scene-adapter/internal/scene"
	"github.com/rcliao/scene-adapter/internal/store"
)

// Journal records adaptation runs. *store.SQLiteStore satisfies it.
type Journal interface {
	Record(ctx context.Context, p store.RecordParams) (*model.Entry, error)
}

// Options configures a Server. Nil Adapter or Assembler select the defaults;
// a nil Journal disables recording.
type Options struct {
	Adapter       *prompt.Adapter
	Assembler     *dialogue.Assembler
	NarratorVoice string
	Journal       Journal
}

// Server holds the immutable collaborators shared by all requests. Each
// dialogue request builds its own voice registry.
type Server struct {
	Router *gin.Engine

	adapter   *prompt.Adapter
	assembler *dialogue.Assembler
	preparer  *scene.Preparer
	narrator  string
	journal   Journal
}

// New creates a Server with all routes registered.
func New(opts Options) *Server {
	if opts.Adapter == nil {
		opts.Adapter = prompt.Default()
	}
	if opts.Assembler == nil {
		opts.Assembler = dialogue.Default()
	}
	if opts.NarratorVoice == "" {
		opts.NarratorVoice = dialogue.DefaultNarratorVoice
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		Router:    router,
		adapter:   opts.Adapter,
		assembler: opts.Assembler,
		preparer:  scene.NewPreparer(opts.Adapter, opts.Assembler),
		narrator:  opts.NarratorVoice,
		journal:   opts.Journal,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"journal":   s.journal != nil,
		})
	})

	v1 := s.Router.Group("/v1")
	{
		v1.GET("/models", s.listModels)
		v1.GET("/models/:id", s.getModel)
		v1.POST("/prompts/adapt", s.adaptPrompt)
		v1.POST("/tokens", s.estimateTokens)

		dlg := v1.Group("/dialogue")
		dlg.POST("/build", s.buildDialogue)
		dlg.POST("/assemble", s.assembleDialogue)
		dlg.POST("/elevenlabs", s.formatElevenLabs)
		dlg.POST("/duration", s.estimateDuration)

		v1.POST("/scenes", s.prepareScenes)
		v1.GET("/scenes/schema", func(c *gin.Context) {
			c.JSON(http.StatusOK, scene.Schema())
		})
	}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("server: shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("server: %s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// record writes to the journal when one is configured. Failures are logged,
// never returned to the client.
func (s *Server) record(c *gin.Context, p store.RecordParams) {
	if s.journal == nil {
		return
	}
	if _, err := s.journal.Record(c.Request.Context(), p); err != nil {
		logger.Warn("server: journal record failed: %v", err)
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
