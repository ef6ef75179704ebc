package db

import (
	"context"
	"fmt"
	"time"

	"Sonicbar/config"
	"Sonicbar/logger"
	"Sonicbar/model"
	"Sonicbar/repository"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormDB 是 GORM 数据库连接实例
var GormDB *gorm.DB

// DSN builds the MySQL data source name from config.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

// gormLogLevel follows the application log level so SQL only shows in debug.
func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	case "error", "fatal":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}

// ConnectGormDB 建立 GORM 数据库连接
func ConnectGormDB(cfg *config.Config) error {
	var err error
	GormDB, err = gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		// 禁用外键约束
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect database with GORM: %w", err)
	}

	// 获取底层的 sql.DB 并配置连接池
	sqlDB, err := GormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Info("[DB] 数据库连接成功", logger.String("host", cfg.DBHost), logger.String("database", cfg.DBName))
	return nil
}

// CloseGormDB 关闭 GORM 数据库连接
func CloseGormDB() error {
	if GormDB == nil {
		return nil
	}
	sqlDB, err := GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrateModels 自动迁移曲库表
func AutoMigrateModels() error {
	if GormDB == nil {
		return fmt.Errorf("GORM database not initialized")
	}
	err := GormDB.AutoMigrate(
		&model.Track{},
		&model.Artist{},
		&model.Album{},
		&model.Playlist{},
		&model.PlaylistTrack{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	logger.Info("[DB] 数据表迁移完成")
	return nil
}

// OpenLibrary returns the library repository selected by LIBRARY_BACKEND.
// The mysql backend connects, migrates and seeds the sample library into
// empty tables; the memory backend is seeded directly.
func OpenLibrary(ctx context.Context, cfg *config.Config) (repository.LibraryRepository, error) {
	var repo repository.LibraryRepository
	switch cfg.LibraryBackend {
	case "mysql":
		if err := ConnectGormDB(cfg); err != nil {
			return nil, err
		}
		if err := AutoMigrateModels(); err != nil {
			return nil, err
		}
		repo = repository.NewGormLibraryRepository(GormDB)
	case "memory", "":
		repo = repository.NewMemoryLibraryRepository()
	default:
		return nil, fmt.Errorf("unknown library backend %q", cfg.LibraryBackend)
	}

	if err := repo.Seed(ctx, repository.SampleLibrary()); err != nil {
		return nil, fmt.Errorf("seed library: %w", err)
	}
	logger.Debug("[DB] 曲库已就绪", logger.String("backend", cfg.LibraryBackend))
	return repo, nil
}
