// =============================================================================
// logger.go - ログ設定
// =============================================================================
//
// zapで構造化ログを出力する。標準出力はJSON結果の出力に使うため、
// ログはすべて標準エラー出力に書く。
//
// 【共通フィールド】
//   request_id: 1回のDiscoverLinks/Assemble呼び出しごとに振るID
//   url:        処理中のURL
//   error:      抑制したエラー
//
// =============================================================================
package pipeline

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logLevels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// NewLogger はLogConfigからzapロガーを作る
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	level, ok := logLevels[strings.ToLower(cfg.Level)]
	if !ok {
		if cfg.Level != "" {
			return nil, fmt.Errorf("unknown log level %q", cfg.Level)
		}
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	encoding := "console"
	if cfg.Format == "json" {
		encoding = "json"
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	zcfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return zcfg.Build()
}

// withRequestID はリクエストIDを付けた子ロガーを返す
func withRequestID(logger *zap.Logger, op string) *zap.Logger {
	return logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("op", op),
	)
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
