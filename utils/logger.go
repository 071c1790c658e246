package utils

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"vapor/api/models"
)

// NewLogger builds the service logger: JSON lines to stdout,
// with rotated file output teed in when VAPOR_LOG_FILE is set.
func NewLogger(cfg *models.Config) *zap.Logger {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
		level = parsed
	}
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	jsonEncoder := zapcore.NewJSONEncoder(encoderConfig)
	consoleCore := zapcore.NewCore(jsonEncoder, zapcore.Lock(os.Stdout), level)

	if cfg.Log.File == "" {
		return zap.New(consoleCore)
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	fileCore := zapcore.NewCore(jsonEncoder, zapcore.AddSync(rotator), level)

	return zap.New(zapcore.NewTee(consoleCore, fileCore))
}
