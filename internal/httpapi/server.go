// Package httpapi exposes the board over HTTP: gin transport, JSON
// projections and the typed-error to status-code mapping.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"boardhub/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Options holds the server's dependencies.
type Options struct {
	DB   *gorm.DB
	Auth auth.Options
	Log  *logrus.Logger
}

// Router builds the gin engine with all routes registered.
func Router(opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(opts.Log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(auth.Middleware(opts.Auth, opts.Log))
	registerRoutes(api, opts.DB, opts.Log)

	return router
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func Start(ctx context.Context, listen string, opts Options) error {
	if opts.DB == nil {
		return fmt.Errorf("httpapi: db is required")
	}
	if listen == "" {
		listen = ":8080"
	}

	srv := &http.Server{
		Addr:    listen,
		Handler: Router(opts),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	opts.Log.WithField("listen", listen).Info("http server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("httpapi: %w", err)
	}
	return nil
}

// requestLogger emits one structured line per request.
func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request")
	}
}
