package executor

import (
	"context"

	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/procio"
	"github.com/facebook/idb-sub000/target"
)

// TailCompanionLogs streams the companion daemon's own log lines to
// consumer. src is the owner of the companion process's log output (the
// daemon's own log sink, wired at startup).
func (e *Executor) TailCompanionLogs(ctx context.Context, src target.CompanionLogSource, consumer procio.LineConsumer) *future.Future[*future.Future[struct{}]] {
	return e.Target.TailCompanionLogs(ctx, src, consumer)
}

// DiagnosticInformation aggregates a small free-form diagnostic bundle: the
// target's current lifecycle state, and that state's name in Health. It
// carries no accessibility info; a client digs further with
// TailCompanionLogs or CrashList.
type DiagnosticInformation struct {
	State  target.State
	Health string
}

// DiagnosticInformation returns a snapshot diagnostic summary for the
// target (§4.H "diagnostic_information").
func (e *Executor) DiagnosticInformation(ctx context.Context) DiagnosticInformation {
	return DiagnosticInformation{State: e.Target.State(), Health: e.Target.State().String()}
}

// CrashList/CrashShow/CrashDelete filter the crashes device-service domain
// by pred.
func (e *Executor) CrashList(ctx context.Context, pred target.CrashLogPredicate) *future.Future[[]string] {
	return e.Target.CrashList(ctx, e.Devices, pred)
}
func (e *Executor) CrashShow(ctx context.Context, pred target.CrashLogPredicate) *future.Future[map[string]string] {
	return e.Target.CrashShow(ctx, e.Devices, pred)
}
func (e *Executor) CrashDelete(ctx context.Context, pred target.CrashLogPredicate) *future.Future[struct{}] {
	return e.Target.CrashDelete(ctx, e.Devices, pred)
}
