package future

import (
	"context"
	"errors"
	"testing"
	"time"

	"code.cloudfoundry.org/clock"
)

func awaitState[T any](t *testing.T, f *Future[T]) State {
	t.Helper()
	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("future did not resolve in time")
	}
	return f.State()
}

func TestResolvedTerminatesOnce(t *testing.T) {
	f := Resolved(42)
	var calls int
	f.OnComplete(Inline, func(State, int, error) { calls++ })
	f.OnComplete(Inline, func(State, int, error) { calls++ })
	if calls != 2 {
		t.Fatalf("calls = %d; want 2", calls)
	}
	if st := f.State(); st != Done {
		t.Fatalf("state = %v; want Done", st)
	}
}

func TestMapPropagatesFailure(t *testing.T) {
	wantErr := errors.New("boom")
	f := Rejected[int](wantErr)
	g := Map(f, func(v int) int { return v + 1 })
	awaitState(t, g)
	if st, _, err := g.Result(); st != Failed || err != wantErr {
		t.Fatalf("got (%v, %v); want (Failed, %v)", st, err, wantErr)
	}
}

func TestMapAppliesOnSuccess(t *testing.T) {
	f := Resolved(41)
	g := Map(f, func(v int) int { return v + 1 })
	awaitState(t, g)
	if v, ok := g.Value(); !ok || v != 42 {
		t.Fatalf("Value() = (%v, %v); want (42, true)", v, ok)
	}
}

func TestAllSuccess(t *testing.T) {
	fs := []*Future[int]{Resolved(1), Resolved(2), Resolved(3)}
	all := All(fs)
	awaitState(t, all)
	v, ok := all.Value()
	if !ok {
		t.Fatal("All() did not succeed")
	}
	want := []int{1, 2, 3}
	for i := range want {
		if v[i] != want[i] {
			t.Fatalf("All() = %v; want %v", v, want)
		}
	}
}

func TestAllFirstFailureCancelsRest(t *testing.T) {
	m, pending := NewMutable[int]("pending")
	var cancelled bool
	m.AddCancelResponder(func() *Future[struct{}] {
		cancelled = true
		return Resolved(struct{}{})
	})
	wantErr := errors.New("boom")
	all := All([]*Future[int]{Rejected[int](wantErr), pending})
	awaitState(t, all)
	if st, _, err := all.Result(); st != Failed || err != wantErr {
		t.Fatalf("got (%v, %v); want (Failed, %v)", st, err, wantErr)
	}
	// Cancel is a request served on its own goroutine: wait for the member
	// to reach its terminal state before checking its responder ran.
	awaitState(t, pending)
	if !cancelled {
		t.Fatal("All() did not cancel the still-running member")
	}
}

func TestRaceResolvesWithFirst(t *testing.T) {
	_, slow := NewMutable[int]("slow")
	fast := Resolved(7)
	r := Race([]*Future[int]{slow, fast})
	awaitState(t, r)
	if v, ok := r.Value(); !ok || v != 7 {
		t.Fatalf("Race() = (%v, %v); want (7, true)", v, ok)
	}
}

func TestCancelOnTerminalIsNoop(t *testing.T) {
	f := Resolved(1)
	c := f.Cancel()
	awaitState(t, c)
	if st := f.State(); st != Done {
		t.Fatalf("state = %v; want Done", st)
	}
}

func TestCancelWaitsForResponders(t *testing.T) {
	m, f := NewMutable[int]("m")
	cleanedUp := make(chan struct{})
	m.AddCancelResponder(func() *Future[struct{}] {
		out, done := NewMutable[struct{}]("cleanup")
		go func() {
			close(cleanedUp)
			out.Resolve(struct{}{})
		}()
		return done
	})
	cancel := f.Cancel()
	awaitState(t, cancel)
	select {
	case <-cleanedUp:
	default:
		t.Fatal("Cancel() resolved before responder finished")
	}
	if st := f.State(); st != Cancelled {
		t.Fatalf("state = %v; want Cancelled", st)
	}
}

func TestTimeoutCancelsThroughRealProtocol(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	f := Go(NewParallelQueue("work", 0), "work", func(ctx context.Context) (int, error) {
		close(started)
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-release:
			return 1, nil
		}
	})
	var responderRan bool
	f.AddCancelResponder(func() *Future[struct{}] {
		responderRan = true
		return Resolved(struct{}{})
	})
	<-started

	reason := errors.New("timed out")
	out := Timeout(f, time.Millisecond, reason, clock.NewClock())
	awaitState(t, out)

	if !responderRan {
		t.Fatal("Timeout() did not drive f's registered CancelResponder; the underlying operation was never told to stop")
	}
	if st, _, err := out.Result(); st != Cancelled || err != reason {
		t.Fatalf("got (%v, %v); want (Cancelled, %v)", st, err, reason)
	}
}

func TestTimeoutLetsFWinARace(t *testing.T) {
	f := Go(NewParallelQueue("work", 0), "work", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	out := Timeout(f, time.Hour, errors.New("should not fire"), clock.NewClock())
	awaitState(t, out)
	if v, ok := out.Value(); !ok || v != 42 {
		t.Fatalf("Value() = (%v, %v); want (42, true)", v, ok)
	}
}

func TestContextPopTearsDownAfterChainedWork(t *testing.T) {
	var tornDown bool
	ctx := NewContext("resource", func(State) *Future[struct{}] {
		tornDown = true
		return Resolved(struct{}{})
	})
	out := Pop(ctx, func(r string) *Future[int] {
		return Resolved(len(r))
	})
	awaitState(t, out)
	if !tornDown {
		t.Fatal("teardown did not run")
	}
	if v, ok := out.Value(); !ok || v != len("resource") {
		t.Fatalf("Value() = (%v, %v)", v, ok)
	}
}

func TestContextPushUnwindsLIFO(t *testing.T) {
	var order []int
	ctx := NewContext("resource", func(State) *Future[struct{}] {
		order = append(order, 1)
		return Resolved(struct{}{})
	})
	ctx.Push(func(State) *Future[struct{}] {
		order = append(order, 2)
		return Resolved(struct{}{})
	})
	out := Pop(ctx, func(string) *Future[struct{}] { return Resolved(struct{}{}) })
	awaitState(t, out)
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("teardown order = %v; want [2 1]", order)
	}
}
