package main

import (
	"context"

	"tari-sdk/internal/model"
	"tari-sdk/internal/server"
	"tari-sdk/internal/service"
	"tari-sdk/internal/service/mq"
	"tari-sdk/pkg/cache"
	"tari-sdk/pkg/config"
	"tari-sdk/pkg/database"
	"tari-sdk/pkg/lock"
	"tari-sdk/pkg/logger"
	"tari-sdk/pkg/tari/types"

	"go.uber.org/zap"

	_ "tari-sdk/docs/swagger"
)

// @title Tari Transaction API
// @version 1.0
// @description Build, store and track Tari transactions

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// 0. 初始化 Config
	config.Init()

	// 1. 初始化 Logger
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	network, err := types.ParseNetwork(config.Global.Tari.Network)
	if err != nil {
		logger.Fatal("tari.network 配置错误", zap.Error(err))
	}

	// 2. 连接数据库
	isDev := config.Global.App.Env == "development"
	db, err := database.ConnectPostgres(database.DSN(config.Global.DB), isDev)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3. 连接 Redis
	rdb, err := database.ConnectRedis(context.Background(), config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 4. 开发环境自动迁移，生产环境使用 cmd/migrate
	if isDev {
		logger.Info("开发环境: 尝试自动迁移 Schema (GORM AutoMigrate)...")
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal("数据库自动迁移失败", zap.Error(err))
		}
	} else {
		logger.Info("生产环境: 跳过 AutoMigrate，请使用 migrate 工具管理 Schema")
	}

	// 5. 多级缓存 (L1 内存, L2 Redis)
	txCache := cache.NewMultiLevelCache(
		cache.NewMemoryCache(config.Global.Tari.CacheTTL, 2*config.Global.Tari.CacheTTL),
		cache.NewRedisCache(rdb, "tari-sdk:"),
	)

	// 6. 消息队列
	var producer mq.Producer
	if config.Global.Redis.MQType == "kafka" {
		logger.Info("使用 Kafka 作为消息队列...")
		producer = mq.NewKafkaProducer(config.Global.Kafka.Brokers)
	} else {
		logger.Info("使用 Redis Streams 作为消息队列...")
		producer = mq.NewRedisProducer(rdb, 100000)
	}

	// 7. 业务服务
	store := service.NewGormStore(db)
	txService := service.NewTransactionService(store, txCache, service.TransactionOptions{
		Network:     network,
		EventsTopic: config.Global.Tari.EventsTopic,
		CacheTTL:    config.Global.Tari.CacheTTL,
	})
	relay := service.NewRelayService(store, producer, config.Global.Tari.RelayInterval).WithLock(lock.NewRedisLock(rdb))

	// 8. 启动应用 (阻塞)
	app := server.New(server.Config{HttpPort: config.Global.App.HttpPort},
		server.NewHTTPRouter(txService),
		relay.Start,
	)
	app.Run()

	// 9. 退出后资源清理
	logger.Info("正在关闭连接...")
	if err := producer.Close(); err != nil {
		logger.Warn("关闭 Producer 失败", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rdb.Close()
	logger.Info("系统已退出")
}
