package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu       sync.Mutex
	instance *zap.Logger
)

// Init inicializa el logger singleton. Solo la primera llamada tiene efecto.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		instance = build(cfg)
	}
}

// Replace swaps the singleton. Tests use it with zaptest/observer cores.
func Replace(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	instance = l
}

// L retorna el logger singleton (dev, info si Init no fue llamado).
func L() *zap.Logger {
	mu.Lock()
	l := instance
	mu.Unlock()
	if l == nil {
		Init(Config{Env: "dev", Level: "info"})
		return L()
	}
	return l
}

// Named retorna un logger con nombre de componente.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushea cualquier buffer pendiente.
func Sync() error {
	mu.Lock()
	defer mu.Unlock()
	if instance != nil {
		return instance.Sync()
	}
	return nil
}
