package future

import "sync"

// All resolves when every member Future resolves successfully, with the
// values in the same order as futures. On the first failure, the aggregate
// fails with that error and every other still-running member is cancelled.
// Cancelling the aggregate cancels every still-running member.
func All[T any](futures []*Future[T]) *Future[[]T] {
	out := newFuture[[]T]("all")
	out.AddCancelResponder(func() *Future[struct{}] {
		cancels := make([]*Future[struct{}], len(futures))
		for i, f := range futures {
			cancels[i] = f.Cancel()
		}
		return MapReplace(All(cancels), struct{}{})
	})

	n := len(futures)
	if n == 0 {
		out.resolve(Done, nil, nil)
		return out
	}

	values := make([]T, n)
	remaining := n
	var failed bool
	var mu sync.Mutex
	for i, f := range futures {
		i, f := i, f
		f.OnComplete(Inline, func(st State, v T, err error) {
			mu.Lock()
			defer mu.Unlock()
			if out.State() != Running {
				return
			}
			switch st {
			case Done:
				values[i] = v
				remaining--
				if remaining == 0 && !failed {
					out.resolve(Done, values, nil)
				}
			default:
				if !failed {
					failed = true
					for j, other := range futures {
						if j != i {
							other.Cancel()
						}
					}
					if st == Cancelled {
						out.resolve(Cancelled, nil, err)
					} else {
						out.resolve(Failed, nil, err)
					}
				}
			}
		})
	}
	return out
}

// Race resolves with the first member Future to resolve (of any terminal
// state). Every other member receives a cancellation request.
func Race[T any](futures []*Future[T]) *Future[T] {
	out := newFuture[T]("race")
	out.AddCancelResponder(func() *Future[struct{}] {
		cancels := make([]*Future[struct{}], len(futures))
		for i, f := range futures {
			cancels[i] = f.Cancel()
		}
		return MapReplace(All(cancels), struct{}{})
	})

	var mu sync.Mutex
	for i, f := range futures {
		i, f := i, f
		f.OnComplete(Inline, func(st State, v T, err error) {
			mu.Lock()
			defer mu.Unlock()
			if out.State() != Running {
				return
			}
			out.resolve(st, v, err)
			for j, other := range futures {
				if j != i {
					other.Cancel()
				}
			}
		})
	}
	return out
}
