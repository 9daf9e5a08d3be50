package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/plateful/backend/config"
	"github.com/plateful/backend/internal/cache"
	"github.com/plateful/backend/internal/router"
	"github.com/plateful/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
}

// New assembles the services and routes. redisClient and s3Config may be
// nil; the server then runs with the process-local cache and without photo
// archival or rate limiting.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, s3Config *config.S3Config) *Server {
	var entryCache cache.EntryCache
	switch {
	case !cfg.CacheEnabled:
		entryCache = cache.Disabled{}
	case redisClient != nil:
		entryCache = cache.NewRedis(redisClient)
	default:
		entryCache = cache.NewMemory()
	}

	emailService := service.NewEmailService()
	authService := service.NewAuthService(db, cfg.JWTSecret, emailService)
	entryService := service.NewFoodEntryService(db, entryCache)
	photoService := service.NewPhotoService(s3Config)

	r := router.SetupRouter(db, authService, entryService, photoService, redisClient)

	return &Server{
		router: r,
		db:     db,
	}
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}

	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}

// Router exposes the gin engine, for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
