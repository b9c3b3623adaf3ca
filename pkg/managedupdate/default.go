package managedupdate

import (
	"context"
	"sync"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/channel"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/registry"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay"
	"go.uber.org/zap"
)

var (
	defaultMu         sync.Mutex
	defaultDispatcher *Dispatcher
)

// Default returns the process-wide Dispatcher over registry.Global,
// creating it on first use.
func Default() *Dispatcher {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultDispatcher == nil {
		defaultDispatcher = New(registry.Global(), WithLogger(zap.L()))
	}
	return defaultDispatcher
}

// OnUpdate returns the process-wide update channel.
func OnUpdate() *channel.Channel { return Default().OnUpdate() }

// OnLateUpdate returns the process-wide late-update channel.
func OnLateUpdate() *channel.Channel { return Default().OnLateUpdate() }

// OnFixedUpdate returns the process-wide fixed-update channel.
func OnFixedUpdate() *channel.Channel { return Default().OnFixedUpdate() }

// ActiveRelay returns the relay registered in the global registry.
func ActiveRelay(ctx context.Context) *relay.Relay { return Default().Relay(ctx) }

// ResetDefault drops the process-wide Dispatcher and the global registry.
// Tests use it for isolation; production code resets through the registry.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultDispatcher != nil {
		defaultDispatcher.Close()
		defaultDispatcher = nil
	}
	registry.ResetGlobal()
}
