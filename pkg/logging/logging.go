package logging

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger *zap.Logger
	mu     sync.RWMutex
)

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	logger = l
}

// SetLogger replaces the package logger. Tests use it to silence or capture output.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// UseDevelopment switches to a human readable console logger.
func UseDevelopment() error {
	l, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

func get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Info(msg string, fields ...zap.Field) {
	get().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	get().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	get().Error(msg, fields...)
}

func Sync() {
	_ = get().Sync()
}
