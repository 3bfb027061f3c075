//	@title			Catálogo API
//	@version		1.0
//	@description	Product catalog backend: categories and products with image upload.
//
//	@host		localhost:8080
//	@BasePath	/

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/catalogo/service/internal/category"
	"github.com/catalogo/service/internal/config"
	"github.com/catalogo/service/internal/db"
	"github.com/catalogo/service/internal/logging"
	appMiddleware "github.com/catalogo/service/internal/middleware"
	"github.com/catalogo/service/internal/product"
	"github.com/catalogo/service/internal/response"
	"github.com/catalogo/service/internal/storage"
	"github.com/catalogo/service/internal/upload"

	_ "github.com/catalogo/service/docs/swagger"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		fatal("database connection failed", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		fatal("database migration failed", err)
	}

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		fatal("image storage init failed", err)
	}

	// Wire dependencies: repository → service → handler
	categoryRepo := category.NewRepository(pool)
	categorySvc := category.NewService(categoryRepo)
	categoryHandler := category.NewHandler(categorySvc)

	productRepo := product.NewRepository(pool)
	productSvc := product.NewService(productRepo, images)
	productHandler := product.NewHandler(productSvc, upload.NewReceiver(images, cfg.ImageMaxBytes))

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler(pool))

	// Swagger UI at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/categorias", func(r chi.Router) {
		r.Post("/", categoryHandler.Create)
		r.Get("/", categoryHandler.List)
	})
	r.Route("/produtos", productHandler.Routes)

	prefix := strings.TrimSuffix(cfg.ImagePublicPrefix, "/")
	r.Handle(prefix+"/*", http.StripPrefix(prefix, images.Handler()))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server listening", "port", cfg.Port, "env", cfg.AppEnv, "image_backend", cfg.ImageBackend)
		slog.Info("swagger UI available", "url", fmt.Sprintf("http://localhost:%s/swagger/", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	<-quit
	slog.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
		return
	}

	slog.Info("server stopped")
}

func newImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	switch cfg.ImageBackend {
	case config.BackendLocal:
		local, err := storage.NewLocalStorage(cfg.ImageDir)
		if err != nil {
			return nil, err
		}
		slog.Info("image store ready", "backend", cfg.ImageBackend, "dir", local.Dir())
		return local, nil
	case config.BackendMinio:
		return storage.NewMinioStorage(ctx, storage.MinioOptions{
			Endpoint:   cfg.StorageEndpoint,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Bucket:     cfg.StorageBucket,
			PublicBase: cfg.StoragePublicBase,
			UseSSL:     cfg.StorageUseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown image backend %q", cfg.ImageBackend)
	}
}

func healthHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			logging.FromContext(r.Context()).Warn("health check: database unreachable", "error", err)
			response.Error(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		response.OK(w, map[string]string{"status": "ok"})
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
