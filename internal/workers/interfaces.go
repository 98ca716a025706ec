// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that runs
// several workers concurrently and waits for all of them.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
//
// Run blocks until the worker stops on its own or ctx is cancelled. A
// worker that stops because ctx was cancelled returns nil.
//
// Example implementation:
//
//	type MyWorker struct{}
//
//	func (w *MyWorker) Run(ctx context.Context) error {
//	    <-ctx.Done()
//	    return nil
//	}
type Worker interface {
	Run(ctx context.Context) error
}
