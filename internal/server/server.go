package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cinematch/cinematch/internal/config"
	svcErr "github.com/cinematch/cinematch/internal/errors"

	"github.com/gin-gonic/gin"
)

// AbortWithError renders err as {"error": message} with its mapped HTTP
// status and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	e := svcErr.From(err)
	c.AbortWithStatusJSON(e.Status, gin.H{"error": e.Message})
}

// requestLogger emits one structured access-log line per request.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// NewRouter assembles the gin engine and registers all provided services.
func NewRouter(cfg *config.Config, log *slog.Logger, registrars ...Registrar) *gin.Engine {
	if cfg.App.ENV != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/api/v1")
	api := r.Group("/api/v1")
	api.Use(AuthMiddleware())

	// register all services
	for _, reg := range registrars {
		reg.Register(public, api)
	}

	return r
}

// StartHTTPServer boots the HTTP server and blocks.
func StartHTTPServer(cfg *config.Config, log *slog.Logger, registrars ...Registrar) error {
	r := NewRouter(cfg, log, registrars...)
	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	if err := r.Run(addr); err != nil {
		return fmt.Errorf("failed to serve on %s: %w", addr, err)
	}
	return nil
}
