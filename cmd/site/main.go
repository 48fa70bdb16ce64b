//	@title			Alternative Constitution API
//	@version		1.0
//	@description	Categorised PDF library with an admin editor for uploads, deletions, and display order.
//
//	@host		localhost:8080
//	@BasePath	/api
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/altconstitution/site/internal/auth"
	"github.com/altconstitution/site/internal/category"
	"github.com/altconstitution/site/internal/config"
	"github.com/altconstitution/site/internal/db"
	"github.com/altconstitution/site/internal/editor"
	"github.com/altconstitution/site/internal/library"
	"github.com/altconstitution/site/internal/logging"
	appMiddleware "github.com/altconstitution/site/internal/middleware"
	"github.com/altconstitution/site/internal/order"
	"github.com/altconstitution/site/internal/storage"
	"github.com/altconstitution/site/internal/web"

	_ "github.com/altconstitution/site/docs/swagger"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("site stopped", "err", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	categories, err := category.Load(cfg.CategoriesFile)
	if err != nil {
		return err
	}

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	var pool *pgxpool.Pool
	if cfg.OrderBackend == config.OrderBackendPostgres || cfg.AdminPasswordHash == "" {
		pool, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		closers = append(closers, pool.Close)

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("database migration failed: %w", err)
		}
	}

	objects, closeObjects, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("object storage init failed: %w", err)
	}
	closers = append(closers, closeObjects)

	orderFile := order.NewFileStore(cfg.OrderFile)
	orders, closeOrders, err := openOrders(ctx, cfg, pool, orderFile)
	if err != nil {
		return fmt.Errorf("order store init failed: %w", err)
	}
	closers = append(closers, closeOrders)

	var directory auth.Directory = auth.NewStaticDirectory(cfg.AdminEmail, cfg.AdminPasswordHash)
	if pool != nil {
		repo := auth.NewRepository(pool)
		if err := auth.Bootstrap(ctx, repo, cfg.AdminEmail, cfg.AdminPasswordHash); err != nil {
			return fmt.Errorf("admin accounts: %w", err)
		}
		directory = repo
	}

	// Wire dependencies: store → service → handler
	libSvc := library.NewService(objects, orders, categories, library.Options{
		IndexFolder: cfg.IndexFolder,
		Proxy:       cfg.ViewerProxy,
	}, logger)
	libHandler := library.NewHandler(libSvc)

	editorSvc := editor.NewService(libSvc, objects, orders, categories, editor.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		SessionTTL:     cfg.SessionTTL,
	}, logger)
	editorHandler := editor.NewHandler(editorSvc)

	authSvc := auth.NewService(directory, cfg.JWTSecret, cfg.SessionTTL, logger)
	authHandler := auth.NewHandler(authSvc, editorSvc.CloseOwner)

	orderHandler := order.NewHandler(orderFile, categories, logger)

	pages := web.NewHandler(libSvc, editorSvc, authSvc, web.Options{ContactEmail: cfg.ContactEmail}, logger)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI at /swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	requireAuth := appMiddleware.RequireAuth(authSvc)

	r.Route("/api", func(r chi.Router) {
		r.Get("/order", orderHandler.Get)
		r.With(requireAuth).Post("/order", orderHandler.Post)

		r.Route("/v1", func(r chi.Router) {
			r.Get("/categories", libHandler.Categories)
			r.Get("/categories/{category}/files", libHandler.Files)
			r.Get("/categories/{category}/files/{file}/url", libHandler.Document)
			r.Get("/library", libHandler.All)

			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", authHandler.Login)
				r.Post("/logout", authHandler.Logout)
				r.With(requireAuth).Get("/me", authHandler.Me)
			})

			r.Route("/admin/sessions", func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", editorHandler.Open)
				r.Get("/{id}", editorHandler.Get)
				r.Post("/{id}/reload", editorHandler.Reload)
				r.Put("/{id}/category", editorHandler.SwitchCategory)
				r.Post("/{id}/upload", editorHandler.Upload)
				r.Delete("/{id}/files/{file}", editorHandler.Delete)
				r.Post("/{id}/reorder", editorHandler.Reorder)
				r.Post("/{id}/save", editorHandler.Save)
			})
		})
	})

	pages.Routes(r, appMiddleware.RequireSession(authSvc, "/login"))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.AppEnv,
			"orders", cfg.OrderBackend, "storage", cfg.StorageBackend)
		logger.Info("swagger UI", "url", "http://localhost:"+cfg.Port+"/swagger/")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, logger *log.Logger) (storage.Storage, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageBackendMinio:
		s, err := storage.NewMinioStorage(ctx, storage.MinioOptions{
			Endpoint:   cfg.StorageEndpoint,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Bucket:     cfg.StorageBucket,
			PublicBase: cfg.StoragePublicBase,
			UseSSL:     cfg.StorageUseSSL,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case config.StorageBackendGCS:
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("create gcs client: %w", err)
		}
		return storage.NewGCSStorage(client, cfg.StorageBucket, cfg.StoragePublicBase), func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
}

func openOrders(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, file *order.FileStore) (order.Store, func(), error) {
	switch cfg.OrderBackend {
	case config.OrderBackendPostgres:
		return order.NewPostgresStore(pool), func() {}, nil
	case config.OrderBackendFile:
		return file, func() {}, nil
	case config.OrderBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return order.NewRedisStore(rdb, order.DefaultRedisKey), func() { _ = rdb.Close() }, nil
	case config.OrderBackendFirestore:
		client, err := firestore.NewClient(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("create firestore client: %w", err)
		}
		return order.NewFirestoreStore(client, order.DefaultCollection), func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown ORDER_BACKEND %q", cfg.OrderBackend)
}
