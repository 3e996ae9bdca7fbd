package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Log    *zap.Logger
	helper *zap.Logger
)

func init() {
	// 默认初始化一个 Nop Logger，防止未 Init 就调用导致 panic
	Log = zap.NewNop()
	helper = Log
}

// Init initializes the global logger
func Init(env string) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	base, err := config.Build()
	if err != nil {
		panic(err)
	}
	// Log 供库代码直接使用；包级 helper 需要多跳过一层调用栈
	Log = base
	helper = base.WithOptions(zap.AddCallerSkip(1))

	zap.ReplaceGlobals(Log)
}

// Sync flushes any buffered log entries
func Sync() {
	_ = Log.Sync()
}

// Named returns a child of the global logger, e.g. logger.Named("relay").
func Named(name string) *zap.Logger {
	return Log.Named(name)
}

// Helper functions for direct usage
func Info(msg string, fields ...zap.Field) {
	helper.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	helper.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	helper.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	helper.Fatal(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	helper.Debug(msg, fields...)
}
