package future

import (
	"context"

	idberrors "github.com/facebook/idb-sub000/errors"
)

// ErrCancelled is the error a cancelled Future resolves with when no more
// specific reason was given to Cancel.
var ErrCancelled = idberrors.New(idberrors.Cancelled, "future was cancelled")

// Resolved returns a Future that is already Done with value v.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]("resolved")
	f.resolve(Done, v, nil)
	return f
}

// Rejected returns a Future that is already Failed with err.
func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]("rejected")
	f.resolve(Failed, *new(T), err)
	return f
}

// Go schedules fn on queue and returns a Future that resolves with its
// result. fn receives a context that is cancelled when the returned
// Future's Cancel is called; fn is expected to respect ctx.Done() and
// return ctx.Err() (or a more specific error) promptly.
func Go[T any](queue Queue, name string, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T](name)
	ctx, cancel := context.WithCancel(context.Background())
	f.AddCancelResponder(func() *Future[struct{}] {
		cancel()
		return Resolved(struct{}{})
	})
	queue.Submit(func() {
		v, err := fn(ctx)
		if err != nil && ctx.Err() != nil {
			// ctx is only cancelled by the responder above, so Cancel is in
			// flight and resolves f once every responder has resolved.
			return
		}
		if err != nil {
			f.resolve(Failed, *new(T), err)
			return
		}
		f.resolve(Done, v, nil)
	})
	return f
}

// Mutable is a handle that resolves a Future later, from code external to
// the Future itself (e.g. a callback from a lower-level API).
type Mutable[T any] struct {
	f *Future[T]
}

// NewMutable returns a Mutable handle and the Future it resolves.
func NewMutable[T any](name string) (*Mutable[T], *Future[T]) {
	f := newFuture[T](name)
	return &Mutable[T]{f: f}, f
}

// Future returns the Future this handle resolves.
func (m *Mutable[T]) Future() *Future[T] {
	return m.f
}

// Resolve transitions the Future to Done with value v. A no-op if already
// terminal.
func (m *Mutable[T]) Resolve(v T) {
	m.f.resolve(Done, v, nil)
}

// Reject transitions the Future to Failed with err. A no-op if already
// terminal.
func (m *Mutable[T]) Reject(err error) {
	m.f.resolve(Failed, *new(T), err)
}

// AddCancelResponder registers r to run when Cancel is called on the
// underlying Future.
func (m *Mutable[T]) AddCancelResponder(r CancelResponder) {
	m.f.AddCancelResponder(r)
}
