package log

import (
	"fmt"
	"os"

	"github.com/hbagdi/hitview/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the logger owned by the composition root. Console output goes
// to stderr so it never mixes with documents printed on stdout; with
// cfg.File set, output goes to a rotating file instead.
func New(cfg config.Log) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("parse log level '%v': %v", cfg.Level, err)
		}
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	var (
		encoder zapcore.Encoder
		sink    zapcore.WriteSyncer
	)
	if cfg.File != "" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
			LocalTime:  true,
		})
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
		sink = zapcore.Lock(os.Stderr)
	}

	opts := []zap.Option{zap.ErrorOutput(zapcore.Lock(os.Stderr))}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddCaller())
	}
	return zap.New(zapcore.NewCore(encoder, sink, level), opts...), nil
}
