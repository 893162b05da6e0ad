package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动（基于 modernc.org/sqlite）
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// DBPoolConfig 数据库连接池配置
type DBPoolConfig struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
}

// InitDB 初始化数据库连接并应用连接池参数
func InitDB(driver, dsn string, pool DBPoolConfig) error {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	applyDBPool(sqlDB, pool)

	DB = db
	return nil
}

// dialectorFor 按驱动名挑选方言，空值默认 sqlite
func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		// glebarez/sqlite 纯 Go 实现，部署时不需要 cgo
		return sqlite.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// applyDBPool 应用连接池参数，未设置的项沿用 database/sql 默认值
func applyDBPool(sqlDB *sql.DB, pool DBPoolConfig) {
	if sqlDB == nil {
		return
	}
	if n := pool.MaxOpenConns; n > 0 {
		sqlDB.SetMaxOpenConns(n)
	}
	// 0 是合法值，表示不保留空闲连接，负数才算未配置
	if n := pool.MaxIdleConns; n >= 0 {
		sqlDB.SetMaxIdleConns(n)
	}
	if d := time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second; d > 0 {
		sqlDB.SetConnMaxLifetime(d)
	}
	if d := time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second; d > 0 {
		sqlDB.SetConnMaxIdleTime(d)
	}
}

// AutoMigrate 自动迁移所有数据库表
func AutoMigrate() error {
	return DB.AutoMigrate(
		// 管理端与审计
		&Admin{},
		&AdminLoginLog{},
		&AuthzAuditLog{},
		// 增长域
		&Account{},
		&Artifact{},
		&ShareEvent{},
		&Referral{},
		&CommissionLedgerEntry{},
		&ShowcaseEntry{},
		// 配置
		&Setting{},
	)
}
