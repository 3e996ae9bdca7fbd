package database

import (
	"fmt"
	"time"

	"tari-sdk/pkg/config"
	applog "tari-sdk/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN 根据配置拼出 PostgreSQL 连接串
func DSN(c config.DBConfig) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.User, c.Password, c.Name, c.Port)
}

// MigrateURL 供 golang-migrate 使用的 URL 形式
func MigrateURL(c config.DBConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// ConnectPostgres 连接到 PostgreSQL 数据库
// dsn: "host=localhost user=gorm password=gorm dbname=gorm port=9920 sslmode=disable"
func ConnectPostgres(dsn string, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info // 打印 SQL 语句方便调试
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("无法连接到数据库: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 连接池配置
	sqlDB.SetMaxIdleConns(10)           // 空闲连接数
	sqlDB.SetMaxOpenConns(100)          // 最大连接数
	sqlDB.SetConnMaxLifetime(time.Hour) // 连接最大存活时间

	applog.Info("PostgreSQL 连接成功", zap.String("host", hostOf(dsn)))
	return db, nil
}

func hostOf(dsn string) string {
	var host string
	_, _ = fmt.Sscanf(dsn, "host=%s", &host)
	return host
}
