package session

import "context"

// Initializable is implemented by components that need a start step.
type Initializable interface {
	Init(ctx context.Context) error
}

// Disposable is implemented by components that hold resources.
type Disposable interface {
	Dispose()
}
