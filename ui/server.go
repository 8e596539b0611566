// Package ui exposes the estimation engine over HTTP.
package ui

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fellingdate/app"
)

// Server represents the web server for the felling-date API
type Server struct {
	router  *gin.Engine
	service *app.FellingService
}

// NewServer creates the server and registers all routes
func NewServer(service *app.FellingService) *Server {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{router: router, service: service}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/datasets", s.handleListDatasets)
		api.POST("/fit", s.handleFit)
		api.POST("/interval", s.handleInterval)
		api.POST("/spd", s.handleSPD)
		api.POST("/report/interval", s.handleIntervalReport)
	}
}

// Handler returns the underlying http.Handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server and blocks until the context is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("felling-date API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
