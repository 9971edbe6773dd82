package future

import (
	"fmt"
	"time"

	"code.cloudfoundry.org/clock"

	idberrors "github.com/facebook/idb-sub000/errors"
)

// propagateCancel makes out's Cancel() also Cancel() in, so a derived
// Future propagates cancellation upstream by default (§4.A).
func propagateCancel[T, U any](in *Future[T], out *Future[U]) {
	out.AddCancelResponder(func() *Future[struct{}] {
		return in.Cancel()
	})
}

// Map transforms f's success value with fn. If f fails or is cancelled, the
// result carries the same terminal state and error; fn is not invoked.
func Map[T, U any](f *Future[T], fn func(T) U) *Future[U] {
	out := newFuture[U](f.name + ".map")
	propagateCancel(f, out)
	f.OnComplete(Inline, func(st State, v T, err error) {
		if st != Done {
			out.resolve(st, *new(U), err)
			return
		}
		out.resolve(Done, fn(v), nil)
	})
	return out
}

// FlatMap transforms f's success value into another Future and flattens the
// result. If f fails or is cancelled, fn is not invoked.
func FlatMap[T, U any](f *Future[T], fn func(T) *Future[U]) *Future[U] {
	out := newFuture[U](f.name + ".flatMap")
	propagateCancel(f, out)
	f.OnComplete(Inline, func(st State, v T, err error) {
		if st != Done {
			out.resolve(st, *new(U), err)
			return
		}
		next := fn(v)
		propagateCancel(next, out)
		next.OnComplete(Inline, func(st2 State, v2 U, err2 error) {
			out.resolve(st2, v2, err2)
		})
	})
	return out
}

// Chain runs fn with whatever terminal f reached (success, failure, or
// cancellation) and flattens the result. Unlike HandleError, fn sees every
// terminal state, not just failures.
func Chain[T, U any](f *Future[T], fn func(State, T, error) *Future[U]) *Future[U] {
	out := newFuture[U](f.name + ".chain")
	propagateCancel(f, out)
	f.OnComplete(Inline, func(st State, v T, err error) {
		next := fn(st, v, err)
		propagateCancel(next, out)
		next.OnComplete(Inline, func(st2 State, v2 U, err2 error) {
			out.resolve(st2, v2, err2)
		})
	})
	return out
}

// HandleError recovers from a Failed f by running fn and flattening its
// result. Done and Cancelled pass through unchanged.
func HandleError[T any](f *Future[T], fn func(error) *Future[T]) *Future[T] {
	out := newFuture[T](f.name + ".handleError")
	propagateCancel(f, out)
	f.OnComplete(Inline, func(st State, v T, err error) {
		if st != Failed {
			out.resolve(st, v, err)
			return
		}
		next := fn(err)
		propagateCancel(next, out)
		next.OnComplete(Inline, func(st2 State, v2 T, err2 error) {
			out.resolve(st2, v2, err2)
		})
	})
	return out
}

// Fallback recovers from a Failed f by substituting fn(err) as the success
// value. Done and Cancelled pass through unchanged.
func Fallback[T any](f *Future[T], fn func(error) T) *Future[T] {
	out := newFuture[T](f.name + ".fallback")
	propagateCancel(f, out)
	f.OnComplete(Inline, func(st State, v T, err error) {
		if st == Failed {
			out.resolve(Done, fn(err), nil)
			return
		}
		out.resolve(st, v, err)
	})
	return out
}

// MapReplace ignores f's success value and substitutes v.
func MapReplace[T, U any](f *Future[T], v U) *Future[U] {
	return Map(f, func(T) U { return v })
}

// FlatMapReplace ignores f's success value and substitutes next.
func FlatMapReplace[T, U any](f *Future[T], next *Future[U]) *Future[U] {
	return FlatMap(f, func(T) *Future[U] { return next })
}

// Delay resolves with f's result, but not before d has elapsed, using clk so
// tests can use a fake clock.
func Delay[T any](f *Future[T], d time.Duration, clk clock.Clock) *Future[T] {
	out := newFuture[T](f.name + ".delay")
	propagateCancel(f, out)
	timer := clk.NewTimer(d)
	f.OnComplete(Inline, func(st State, v T, err error) {
		go func() {
			<-timer.C()
			out.resolve(st, v, err)
		}()
	})
	return out
}

// Timeout cancels f if it has not resolved after d elapses, using reason as
// the cancellation's error. It resolves with f's own result if f finishes
// first.
func Timeout[T any](f *Future[T], d time.Duration, reason error, clk clock.Clock) *Future[T] {
	out := newFuture[T](f.name + ".timeout")
	propagateCancel(f, out)

	timer := clk.NewTimer(d)
	done := make(chan struct{})
	go func() {
		select {
		case <-timer.C():
			f.Cancel()
		case <-done:
			timer.Stop()
		}
	}()
	f.OnComplete(Inline, func(st State, v T, err error) {
		close(done)
		if st == Cancelled {
			err = reason
		}
		out.resolve(st, v, err)
	})
	return out
}

// RephraseFailure rewrites a Failed f's error message using format (which
// receives the original error as its sole %v/%s argument), preserving Done
// and Cancelled untouched.
func RephraseFailure[T any](f *Future[T], format string) *Future[T] {
	out := newFuture[T](f.name + ".rephrase")
	propagateCancel(f, out)
	f.OnComplete(Inline, func(st State, v T, err error) {
		if st != Failed {
			out.resolve(st, v, err)
			return
		}
		out.resolve(Failed, v, idberrors.Wrap(idberrors.KindOf(err), err, fmt.Sprintf(format, err)))
	})
	return out
}
