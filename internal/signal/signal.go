// Package signal ties context cancellation to SIGINT/SIGTERM and lets store
// writes hold off cancellation until they finish.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	mu            sync.Mutex
	blockCount    int
	pendingCancel context.CancelFunc
)

// WithSignalCancel returns a context that is cancelled when SIGINT or SIGTERM is received.
// The returned cancel function should be called to clean up resources when done.
func WithSignalCancel(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			mu.Lock()
			if blockCount > 0 {
				pendingCancel = cancel
				mu.Unlock()
				return
			}
			mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// BlockSignals defers signal-driven cancellation until the matching
// UnblockSignals. Calls nest.
func BlockSignals() {
	mu.Lock()
	defer mu.Unlock()
	blockCount++
}

// UnblockSignals ends a BlockSignals section. When the outermost section
// ends, a cancellation that arrived meanwhile is delivered.
func UnblockSignals() {
	mu.Lock()
	defer mu.Unlock()
	if blockCount > 0 {
		blockCount--
	}
	if blockCount == 0 && pendingCancel != nil {
		pendingCancel()
		pendingCancel = nil
	}
}

// Blocked reports whether a BlockSignals section is active.
func Blocked() bool {
	mu.Lock()
	defer mu.Unlock()
	return blockCount > 0
}
