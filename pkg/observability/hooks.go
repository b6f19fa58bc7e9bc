// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about graph parsing, sequence store persistence, and HTTP
// requests served by the API.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are fire-and-forget: they receive events but can never change the
// outcome of the operation that emitted them.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetParseHooks(&myParseHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Parse().OnParseStart(ctx, path, totalLines)
//	// ... do parsing ...
//	observability.Parse().OnParseComplete(ctx, path, nodeCount, edgeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Parse Hooks
// =============================================================================

// ParseHooks receives events from the exchange-format parser.
type ParseHooks interface {
	// OnParseStart is called before the first record is read.
	// totalLines is 0 when the caller did not run a line-count pre-pass.
	OnParseStart(ctx context.Context, source string, totalLines int)

	// OnParseProgress reports a monotonically increasing count of processed lines.
	OnParseProgress(ctx context.Context, source string, done, total int)

	// OnParseComplete is called once, with err set when the parse failed.
	OnParseComplete(ctx context.Context, source string, nodeCount, edgeCount int, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from the sequence store.
type StoreHooks interface {
	// OnCommit records a flush of pending writes.
	OnCommit(path string, entries int, duration time.Duration, err error)

	// OnRollback records the destruction of a store.
	OnRollback(path string, err error)

	// OnSequenceMiss records a lookup of a key that was never written.
	OnSequenceMiss(path string, id int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response sent for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopParseHooks is a no-op implementation of ParseHooks.
type NoopParseHooks struct{}

func (NoopParseHooks) OnParseStart(context.Context, string, int)         {}
func (NoopParseHooks) OnParseProgress(context.Context, string, int, int) {}
func (NoopParseHooks) OnParseComplete(context.Context, string, int, int, time.Duration, error) {
}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnCommit(string, int, time.Duration, error) {}
func (NoopStoreHooks) OnRollback(string, error)                   {}
func (NoopStoreHooks) OnSequenceMiss(string, int)                 {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	parseHooks ParseHooks = NoopParseHooks{}
	storeHooks StoreHooks = NoopStoreHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetParseHooks registers custom parse hooks.
// This should be called once at application startup before any parsing.
func SetParseHooks(h ParseHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		parseHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store is opened.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Parse returns the registered parse hooks.
func Parse() ParseHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return parseHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	parseHooks = NoopParseHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
