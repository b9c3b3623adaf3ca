package registry

import (
	"sync"

	"go.uber.org/zap"
)

var (
	globalMu       sync.Mutex
	globalRegistry *Registry
)

// Global returns the process-wide registry, creating it on first call.
func Global() *Registry {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalRegistry == nil {
		globalRegistry = New(WithLogger(zap.L()))
	}
	return globalRegistry
}

// InitGlobal installs r as the process-wide registry. Only the first call
// before any Global() has an effect; it reports whether r was installed.
func InitGlobal(r *Registry) bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalRegistry != nil {
		return false
	}
	globalRegistry = r
	return true
}

// ResetGlobal drops the process-wide registry together with its reset
// listeners. The next Global() call starts from scratch. Intended for tests.
func ResetGlobal() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalRegistry = nil
}
