// Package observability provides hooks for metrics and tracing.
//
// Instrumentation is optional and backend-agnostic. Libraries emit events
// through the registered hooks; main registers an implementation at
// startup. The defaults do nothing.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetServerHooks(&myServerHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnParseStart(ctx, "tabular")
//	// ... parse ...
//	observability.Pipeline().OnParseComplete(ctx, "tabular", courses, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the parse, analyze and render stages.
type PipelineHooks interface {
	// Parse events. format is "tabular" or "json".
	OnParseStart(ctx context.Context, format string)
	OnParseComplete(ctx context.Context, format string, courses int, duration time.Duration, err error)

	// Analyze events. system is "semester" or "quarter".
	OnAnalyzeStart(ctx context.Context, system string, courses int)
	OnAnalyzeComplete(ctx context.Context, system string, duration time.Duration, err error)

	// Render events. kind is "plan" or "nodelink".
	OnRenderStart(ctx context.Context, kind string, formats []string)
	OnRenderComplete(ctx context.Context, kind string, formats []string, duration time.Duration, err error)
}

// ServerHooks receives events from the HTTP server.
type ServerHooks interface {
	// OnRequest records an incoming request after routing.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnParseStart(context.Context, string) {}
func (NoopPipelineHooks) OnParseComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnAnalyzeStart(context.Context, string, int)                     {}
func (NoopPipelineHooks) OnAnalyzeComplete(context.Context, string, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string, []string)                 {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {
}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	serverHooks   ServerHooks   = NoopServerHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks. Nil is ignored.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetServerHooks registers custom server hooks. Nil is ignored.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	serverHooks = NoopServerHooks{}
}
