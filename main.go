package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bookstore-csv/catalog"
	"bookstore-csv/common"
	"bookstore-csv/exports"
	"bookstore-csv/imports"
	"bookstore-csv/users"
)

func Migrate(db *gorm.DB) error {
	// Migrate domain models
	if err := users.AutoMigrate(db); err != nil {
		return err
	}
	if err := catalog.AutoMigrate(db); err != nil {
		return err
	}

	// Migrate job tracking tables
	return common.AutoMigrateJobs(db)
}

func setupRouter(cfg *common.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), common.MetricsMiddleware())
	r.RedirectTrailingSlash = false

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.Use(common.AuthMiddleware(cfg.JWTSecret))
	imports.RegisterRoutes(v1.Group("/imports"))
	exports.RegisterRoutes(v1.Group("/exports"))

	return r
}

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}
	cfg.Apply()

	logger, err := common.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()
	common.SetLogger(logger)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := common.Init(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	if err := Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Ensure database connection is closed on exit
	if sqlDB, err := db.DB(); err != nil {
		logger.Warn("Failed to get sql.DB", zap.Error(err))
	} else {
		defer sqlDB.Close()
	}

	r := setupRouter(cfg)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Server starting", zap.String("addr", addr), zap.String("database", cfg.DatabasePath))
	if err := r.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
