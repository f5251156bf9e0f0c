package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"drawhouse/application"
	"drawhouse/infrastructure"
)

// Server exposes the draw-cycle operations over HTTP for operators and
// the sales pipeline.
type Server struct {
	orchestrator *application.Orchestrator
	beacon       *infrastructure.BeaconClient
	httpServer   *http.Server
}

// NewServer creates the API server and wires all routes
func NewServer(addr string, orchestrator *application.Orchestrator, beacon *infrastructure.BeaconClient) *Server {
	s := &Server{
		orchestrator: orchestrator,
		beacon:       beacon,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	games := v1.Group("/games/:game")
	{
		games.GET("", s.getStatus)
		games.GET("/draws", s.listDraws)
		games.POST("/sales", s.recordSales)
		games.POST("/commit", s.commit)
		games.POST("/reveal", s.reveal)
		games.POST("/finalize", s.finalize)
		games.POST("/cancel", s.cancel)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start begins serving requests. Blocks until the server stops.
func (s *Server) Start() error {
	log.WithField("addr", s.httpServer.Addr).Info("API server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("Request failed")
		} else {
			entry.Debug("Request handled")
		}
	}
}
