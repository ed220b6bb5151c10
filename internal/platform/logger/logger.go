package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config defines the configuration for the logger.
type Config struct {
	Level       string // debug, info, warn, error
	Format      string // json, console
	EnableColor bool   // only honored in console mode
}

var (
	globalLogger *zap.Logger
	atom         = zap.NewAtomicLevel()
	mu           sync.Mutex
)

// DefaultConfig returns a sane default configuration based on environment variables.
func DefaultConfig() Config {
	return Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Format:      getEnv("LOG_FORMAT", "console"),
		EnableColor: shouldEnableColor(),
	}
}

// New builds a logger writing to w. The level is shared with the global
// logger so SetLevel affects both.
func New(cfg Config, w io.Writer) *zap.Logger {
	atom.SetLevel(parseLevel(cfg.Level))

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		if cfg.EnableColor {
			encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
			encoder = NewColoredConsoleEncoder(encoderConfig)
		} else {
			encoder = zapcore.NewConsoleEncoder(encoderConfig)
		}
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), atom)

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Level != "debug" {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	return zap.New(core, opts...)
}

// Initialize sets up the global logger writing to stdout.
func Initialize(cfg Config) *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = New(cfg, os.Stdout)
	zap.ReplaceGlobals(globalLogger)
	return globalLogger
}

// Get returns the global logger. Initializes with defaults if not already set.
func Get() *zap.Logger {
	mu.Lock()
	l := globalLogger
	mu.Unlock()
	if l == nil {
		return Initialize(DefaultConfig())
	}
	return l
}

// SetLevel changes the level of every logger built by this package.
func SetLevel(level string) {
	atom.SetLevel(parseLevel(level))
}

// Level returns the current level name.
func Level() string {
	return atom.Level().String()
}

func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.ToLower(value)
	}
	return fallback
}

func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// shouldEnableColor checks NO_COLOR (https://no-color.org/) and LOG_COLOR
func shouldEnableColor() bool {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}
	if val := os.Getenv("LOG_COLOR"); val != "" {
		return val == "true" || val == "1"
	}
	return true
}
