package main

import (
	"context"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xelth-com/eckwms3d/internal/cache"
	"github.com/xelth-com/eckwms3d/internal/config"
	"github.com/xelth-com/eckwms3d/internal/database"
	"github.com/xelth-com/eckwms3d/internal/handlers"
	"github.com/xelth-com/eckwms3d/internal/logger"
	"github.com/xelth-com/eckwms3d/internal/placement"
	"github.com/xelth-com/eckwms3d/internal/services/analytics"
	"github.com/xelth-com/eckwms3d/internal/services/erp"
	"github.com/xelth-com/eckwms3d/internal/services/warehouse"
	"github.com/xelth-com/eckwms3d/internal/session"
	"github.com/xelth-com/eckwms3d/internal/websocket"
	"github.com/xelth-com/eckwms3d/web"
)

func main() {
	log := logger.GetLogger("main")

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Init(&cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	layoutFile, err := config.LoadLayoutFile(cfg.LayoutFile)
	if err != nil {
		log.Fatalf("Failed to load layout file: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	if err := db.Migrate(); err != nil {
		log.Warnf("⚠️ Migration warning: %v", err)
	}

	// 4. Dataset cache
	datasetCache := newCache(cfg.Cache)

	// 5. Warehouse service
	svc := warehouse.NewService(warehouse.NewGormStore(db), datasetCache, warehouse.Config{
		WarehouseCode:   cfg.WarehouseCode,
		Dimensions:      layoutFile.Dimensions,
		Generator:       layoutFile.Generator.GeneratorConfig(),
		GenerateOnEmpty: cfg.GenerateOnEmpty,
		CacheTTL:        cfg.Cache.TTL,
		PersistTimeout:  cfg.PersistTimeout,
	})

	// 6. Viewer hub
	sessionOpts := session.Options{
		Dimensions:     layoutFile.Dimensions,
		Zones:          layoutFile.Zones,
		Snap:           placement.SnapMode(cfg.SnapMode),
		GridSize:       cfg.SnapGrid,
		RequireConfirm: cfg.MoveConfirmation,
	}
	hub := websocket.NewHub(svc, sessionOpts)
	go hub.Run()

	// 7. HTTP router
	static, err := staticFiles(cfg.StaticDir)
	if err != nil {
		log.Warnf("⚠️ Static files unavailable: %v", err)
	}
	router := handlers.NewRouter(svc, hub, handlers.Options{
		Session:       sessionOpts,
		WarehouseCode: cfg.WarehouseCode,
		PathPrefix:    cfg.PathPrefix,
		Static:        static,
		Replenishment: analytics.Rules{MinQty: cfg.ReplMinQty, ReorderQty: cfg.ReplReorderQty},
	})

	// 8. ERP stock sync (Background)
	var erpService *erp.SyncService
	if cfg.ERPEnabled() {
		erpService = erp.NewSyncService(svc, erp.Config{
			URL:          cfg.ERP.URL,
			Database:     cfg.ERP.Database,
			Username:     cfg.ERP.Username,
			Password:     cfg.ERP.Password,
			SyncInterval: cfg.ERP.SyncInterval,
		})
		erpService.Start()
		router.SetStockSync(erpService)
	}

	// 9. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Infof("🚀 Server starting on port %s [Prefix: '%s']", cfg.Port, cfg.PathPrefix)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Warnf("⚠️  Received signal: %v. Shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}
	hub.Stop()

	if erpService != nil {
		erpService.Stop()
	}

	// Let pending bin moves reach the database
	svc.Wait()

	if err := datasetCache.Close(); err != nil {
		log.Errorf("Cache close error: %v", err)
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Info("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Errorf("Database close error: %v", err)
	}

	log.Info("✅ Shutdown complete")
}

// newCache picks Redis when configured, process memory otherwise.
func newCache(cfg config.CacheConfig) cache.Cache {
	log := logger.GetLogger("main")
	if cfg.Disabled {
		return cache.NewNullCache()
	}
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c, err := cache.NewRedisCache(ctx, cfg.RedisURL, "eckwms3d:")
		if err == nil {
			log.Info("✅ Dataset cache: Redis")
			return c
		}
		log.Warnf("⚠️ Redis unavailable, using memory cache: %v", err)
	}
	return cache.NewMemoryCache()
}

func staticFiles(dir string) (fs.FS, error) {
	if dir != "" {
		return os.DirFS(dir), nil
	}
	return web.GetFileSystem()
}
