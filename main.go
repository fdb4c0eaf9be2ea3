package main

import (
	"log"
	"net/http"
	"time"

	"research-api/config"
	"research-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	entitiesCreatedCounter *prometheus.CounterVec
	entitiesDeletedCounter *prometheus.CounterVec
)

func init() {
	entitiesCreatedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entities_created_total",
			Help: "Total number of research papers, authors and links created.",
		},
		[]string{"entity"},
	)
	entitiesDeletedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entities_deleted_total",
			Help: "Total number of research papers and authors deleted (links are removed with them).",
		},
		[]string{"entity"},
	)
	prometheus.MustRegister(entitiesCreatedCounter, entitiesDeletedCounter)
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load error: %v", err)
	}

	logging, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	db, err := storage.OpenDB(cfg)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.", zap.String("driver", cfg.DBDriver))

	store := storage.NewStore(db, logging)
	logging.Info("Running database auto-migration...")
	if err := store.Migrate(); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	if cfg.SeedDemoData {
		seedDemoData(store, logging)
	}

	router := newRouter(store, logging)

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func newRouter(store *storage.Store, log *zap.Logger) *gin.Engine {
	router := gin.Default()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupResearchRoutes(router, store, log)
	setupAuthorRoutes(router, store, log)
	setupResearchAuthorRoutes(router, store, log)
	return router
}
