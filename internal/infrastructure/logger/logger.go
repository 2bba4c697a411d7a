// Package logger provides the process-wide leveled logger.
// Debug output is only written when verbose mode is enabled (--verbose or
// RAG_VERBOSE), everything else goes to stderr by default.
package logger

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugared = newSugared(os.Stderr)
)

func newSugared(w io.Writer) *zap.SugaredLogger {
	enc := zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05"),
		EncodeLevel:      encodeLevel,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core).Sugar()
}

// encodeLevel renders levels as "[DEBUG]", "[INFO]" and so on.
func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}

// SetVerbose enables or disables debug output.
func SetVerbose(v bool) {
	if v {
		level.SetLevel(zapcore.DebugLevel)
		return
	}
	level.SetLevel(zapcore.InfoLevel)
}

// IsVerbose reports whether debug output is enabled.
func IsVerbose() bool {
	return level.Enabled(zapcore.DebugLevel)
}

// SetOutput redirects all log output. Defaults to os.Stderr; tests use it
// to capture messages.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	sugared = newSugared(w)
}

// Sugar returns the underlying zap logger for callers that want fields.
func Sugar() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugared
}

// Debugf logs at debug level.
func Debugf(format string, args ...any) { Sugar().Debugf(format, args...) }

// Infof logs at info level.
func Infof(format string, args ...any) { Sugar().Infof(format, args...) }

// Warnf logs at warn level.
func Warnf(format string, args ...any) { Sugar().Warnf(format, args...) }

// Errorf logs at error level.
func Errorf(format string, args ...any) { Sugar().Errorf(format, args...) }

// Sync flushes buffered entries.
func Sync() error {
	return Sugar().Sync()
}
