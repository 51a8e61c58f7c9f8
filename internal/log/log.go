package log

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	mu       sync.RWMutex
	sugar    *zap.SugaredLogger
	atom     = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	initOnce sync.Once
)

// initLogger installs the default console logger on stderr at INFO.
func initLogger() {
	initOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if sugar != nil {
			return
		}
		l, err := build("console")
		if err != nil {
			l = zap.NewNop()
		}
		sugar = l.Sugar()
	})
}

func build(format string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.Level = atom
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build(zap.AddCallerSkip(1))
}

// Configure rebuilds the global logger.
// level: "debug", "info", "warn", "error" (default: "info")
// format: "json" or "console" (default: "console")
func Configure(level, format string) error {
	l, err := build(format)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	SetLogger(l)
	SetLevel(ParseLevel(level))
	return nil
}

// SetLogger replaces the underlying zap logger. Tests use it with
// zaptest/observer.
func SetLogger(l *zap.Logger) {
	initOnce.Do(func() {})
	mu.Lock()
	sugar = l.Sugar()
	mu.Unlock()
}

// ParseLevel maps a config string onto a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "warn", "WARN", "warning":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func SetLevel(l Level) {
	initLogger()
	switch l {
	case LevelDebug:
		atom.SetLevel(zapcore.DebugLevel)
	case LevelWarn:
		atom.SetLevel(zapcore.WarnLevel)
	case LevelError:
		atom.SetLevel(zapcore.ErrorLevel)
	default:
		atom.SetLevel(zapcore.InfoLevel)
	}
}

func Debug(msg string, kv ...any) {
	logger().Debugw(msg, kv...)
}

func Info(msg string, kv ...any) {
	logger().Infow(msg, kv...)
}

func Warn(msg string, kv ...any) {
	logger().Warnw(msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	logger().Errorw(msg, extended...)
}

// Sync flushes buffered entries. Call before exit.
func Sync() {
	_ = logger().Sync()
}

func logger() *zap.SugaredLogger {
	initLogger()
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}
