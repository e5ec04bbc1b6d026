package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tropicaldog17/stock-insight/internal/config"
)

// New creates a zap logger from the log config.
// If Env is "production", a production logger is returned; otherwise a development logger.
// When File is set, entries are also written as JSON to a rotated file.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	var (
		base *zap.Logger
		err  error
	)
	if cfg.Env == "production" {
		zc := zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "ts"
		zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		base, err = zc.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		zc := zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		base, err = zc.Build(zap.AddCaller())
	}
	if err != nil {
		return nil, err
	}
	if cfg.File == "" {
		return base, nil
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     14,
			Compress:   true,
			LocalTime:  true,
		}),
		zapcore.InfoLevel,
	)
	return base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	})), nil
}
