// Package logx 构建两路追加写的结构化日志：INFO/WARN 进入 info 流，ERROR 及以上进入 error 流。
package logx

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Streams 是打开后的两路日志；Close 负责 Sync + 关闭文件。
type Streams struct {
	Logger    *zap.Logger
	InfoPath  string
	ErrorPath string

	closers []func()
}

// Open 以追加模式打开（必要时创建）两个日志文件。
func Open(infoPath, errorPath string) (*Streams, error) {
	infoWS, closeInfo, err := openAppend(infoPath)
	if err != nil {
		return nil, err
	}
	errWS, closeErr, err := openAppend(errorPath)
	if err != nil {
		closeInfo()
		return nil, err
	}

	return &Streams{
		Logger:    New(infoWS, errWS),
		InfoPath:  infoPath,
		ErrorPath: errorPath,
		closers:   []func(){closeInfo, closeErr},
	}, nil
}

// Close 刷新缓冲并关闭底层文件；可重复调用。
func (s *Streams) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.Logger != nil {
		// 对普通文件 Sync 失败极少见；stdout/stderr 上的 EINVAL 则是已知噪音。
		if e := s.Logger.Sync(); e != nil && !errors.Is(e, os.ErrInvalid) {
			err = e
		}
	}
	for _, c := range s.closers {
		c()
	}
	s.closers = nil
	return err
}

// New 基于任意两个 writer 构建 logger（测试与嵌入方可直接使用）。
func New(info, errs io.Writer) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(encoderConfig())

	infoLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.InfoLevel && l < zapcore.ErrorLevel
	})
	errorLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.ErrorLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.AddSync(info), infoLevel),
		zapcore.NewCore(enc.Clone(), zapcore.AddSync(errs), errorLevel),
	)
	return zap.New(core)
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.CallerKey = zapcore.OmitKey
	cfg.StacktraceKey = zapcore.OmitKey
	return cfg
}

func openAppend(path string) (zapcore.WriteSyncer, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	// zap.Open 使用 O_APPEND|O_CREATE：多次运行的记录依次追加。
	return zap.Open(path)
}
