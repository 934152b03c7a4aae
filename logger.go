package fiber

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	logger     atomic.Pointer[zap.Logger]
	loggerOnce sync.Once
)

// Logger returns the package's logger instance. It is a no-op logger
// until SetLogger installs a real one.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		logger.CompareAndSwap(nil, zap.NewNop())
	})
	return logger.Load()
}

// SetLogger installs l as the package logger. Transfer and teardown
// tracing is emitted at debug level.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

func debugf(format string, args ...any) {
	l := Logger()
	if l.Core().Enabled(zap.DebugLevel) {
		l.Sugar().Debugf(format, args...)
	}
}
