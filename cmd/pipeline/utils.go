package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"quote-relay/internal/pipeline"
)

// logger はCLI全体で使うロガー（initLoggerまではNop）
var logger = zap.NewNop()

func initLogger(cfg pipeline.LogConfig) error {
	l, err := pipeline.NewLogger(cfg)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func syncLogger() {
	_ = logger.Sync()
}

func debugf(format string, args ...any) {
	logger.Sugar().Debugf(format, args...)
}

func infof(format string, args ...any) {
	logger.Sugar().Infof(format, args...)
}

func warnf(format string, args ...any) {
	logger.Sugar().Warnf(format, args...)
}

func errorf(format string, args ...any) {
	logger.Sugar().Errorf(format, args...)
}

// fatalf はエラーメッセージを出力してプログラムを終了する
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	syncLogger()
	os.Exit(1)
}

// saveEnvValue は .env ファイルの key を value で上書き（無ければ追加）する
func saveEnvValue(path, key, value string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		env = map[string]string{}
	}
	env[key] = value
	return godotenv.Write(env, path)
}
