// Package main runs the project management HTTP server with graceful
// shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/taskhive/backend/config"
	"github.com/taskhive/backend/internal/comments"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/organizations"
	"github.com/taskhive/backend/internal/projects"
	"github.com/taskhive/backend/internal/tasks"
	"github.com/taskhive/backend/internal/tenant"
	"github.com/taskhive/backend/pkg/database"
	"github.com/taskhive/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Organizations
	orgRepo := organizations.NewRepository(pool)
	orgHandler := organizations.NewHandler(orgRepo)

	// Projects
	projectRepo := projects.NewRepository(pool)
	projectHandler := projects.NewHandler(projectRepo)

	// Tasks
	taskRepo := tasks.NewRepository(pool)
	taskHandler := tasks.NewHandler(taskRepo)

	// Comments
	commentRepo := comments.NewRepository(pool)
	commentHandler := comments.NewHandler(commentRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(tenant.Resolver(orgRepo))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Organizations (list is unscoped discovery; create is the
	// tenant bootstrap operation)
	router.GET("/organizations", orgHandler.List)
	router.POST("/organizations", orgHandler.Create)
	router.GET("/organizations/current", orgHandler.Current)

	// Projects
	router.GET("/projects", projectHandler.List)
	router.POST("/projects", projectHandler.Create)
	router.GET("/projects/:id", projectHandler.Get)
	router.PATCH("/projects/:id", projectHandler.Update)
	router.DELETE("/projects/:id", projectHandler.Delete)

	// Tasks
	router.GET("/projects/:id/tasks", taskHandler.ListByProject)
	router.POST("/projects/:id/tasks", taskHandler.Create)
	router.GET("/tasks/:id", taskHandler.Get)
	router.PATCH("/tasks/:id", taskHandler.Update)
	router.DELETE("/tasks/:id", taskHandler.Delete)

	// Comments
	router.GET("/tasks/:id/comments", commentHandler.ListByTask)
	router.POST("/tasks/:id/comments", commentHandler.Create)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
