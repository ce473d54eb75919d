// Package logging holds the process-wide zap logger. It defaults to a no-op
// logger so library code can log unconditionally.
package logging

import (
	"io"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global = zap.NewNop().Sugar()
)

// New builds a console logger writing to w. Verbose enables debug output;
// otherwise a no-op logger is returned.
func New(verbose bool, w io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), zapcore.DebugLevel)
	return zap.New(core)
}

// Init replaces the global logger. A nil logger restores the no-op default.
func Init(l *zap.SugaredLogger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	global = l
}

// Logger returns the global logger; never nil.
func Logger() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}
