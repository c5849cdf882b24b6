package cmd

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// bootstrapLogger 主日志器初始化之前使用的控制台日志器
// Set MURVERSE_DEBUG (or DEBUG) to see debug output during startup and CLI commands.
var bootstrapLogger = newBootstrapLogger()

func newBootstrapLogger() *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if os.Getenv("MURVERSE_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), level)
	return zap.New(core, zap.AddCaller())
}
