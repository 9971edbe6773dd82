package procio

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"golang.org/x/sys/unix"

	idberrors "github.com/facebook/idb-sub000/errors"
	"github.com/facebook/idb-sub000/future"
)

func cmdEnviron() []string {
	return os.Environ()
}

// Config builds a subprocess's launch path, argv, environment and stream
// bindings. The zero value has no argv and all three streams unconnected
// (DevNull-equivalent).
type Config struct {
	// Name is a diagnostic name, not passed to the OS.
	Name string
	// Path is the executable to launch.
	Path string
	// Args are the process's argv, excluding argv[0].
	Args []string
	// Env is either the full replacement environment (if MergeEnv is
	// false) or additions merged over os.Environ() (if true).
	Env      []string
	MergeEnv bool
	// Dir is the process's working directory; empty means inherit.
	Dir string

	Stdin  Sink
	Stdout Sink
	Stderr Sink
}

// Process is a handle to a spawned subprocess. Its exit and signal status
// are exposed as Futures (StatLoc, ExitCode, Signalled) so callers compose
// on them the same way they compose any other operation in this module.
type Process struct {
	config Config
	cmd    *exec.Cmd

	mu  sync.Mutex
	pid int

	// StatLoc resolves with the raw OS wait status once the process exits.
	StatLoc *future.Future[syscall.WaitStatus]
	// ExitCode resolves with the process's exit code; it fails if the
	// process was signalled rather than exiting normally.
	ExitCode *future.Future[int]
	// Signalled resolves with the signal that terminated the process; it
	// fails if the process exited normally rather than being signalled.
	Signalled *future.Future[syscall.Signal]

	stdoutResult *future.Future[Result]
	stderrResult *future.Future[Result]

	detach func() error
}

// PID returns the process's OS process ID. It is valid once Start returns.
func (p *Process) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

// Config returns the configuration the process was spawned with.
func (p *Process) Config() Config {
	return p.config
}

// Stdout resolves with the stdout Result once the process exits, if Stdout
// was bound to Bytes()/Text().
func (p *Process) Stdout() *future.Future[Result] { return p.stdoutResult }

// Stderr resolves with the stderr Result once the process exits, if Stderr
// was bound to Bytes()/Text().
func (p *Process) Stderr() *future.Future[Result] { return p.stderrResult }

// Start launches cfg and returns a running Process handle. The subprocess
// itself is not a Future; StatLoc/ExitCode/Signalled are.
func Start(ctx context.Context, cfg Config) (*Process, error) {
	cmd := exec.CommandContext(ctx, cfg.Path, cfg.Args...)
	cmd.Dir = cfg.Dir
	if cfg.MergeEnv {
		cmd.Env = append(append([]string(nil), cmdEnviron()...), cfg.Env...)
	} else if cfg.Env != nil {
		cmd.Env = cfg.Env
	}

	stdin, detachIn, err := cfg.Stdin.attachReader()
	if err != nil {
		return nil, idberrors.Wrap(idberrors.IO, err, "attach stdin")
	}
	stdout, finalizeOut, detachOut, err := cfg.Stdout.attachWriter()
	if err != nil {
		return nil, idberrors.Wrap(idberrors.IO, err, "attach stdout")
	}
	stderr, finalizeErr, detachErr, err := cfg.Stderr.attachWriter()
	if err != nil {
		return nil, idberrors.Wrap(idberrors.IO, err, "attach stderr")
	}
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdin, stdout, stderr

	detach := func() error {
		// Detach closes exactly once regardless of which code path
		// unwinds, matching FBProcessIO's IO attach/detach contract.
		var first error
		for _, d := range []func() error{detachIn, detachOut, detachErr} {
			if err := d(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}

	if err := cmd.Start(); err != nil {
		_ = detach()
		return nil, idberrors.Wrap(idberrors.Subprocess, err, "start "+cfg.Path)
	}

	statMutable, statFut := future.NewMutable[syscall.WaitStatus](cfg.Name + ".statLoc")
	exitMutable, exitFut := future.NewMutable[int](cfg.Name + ".exitCode")
	sigMutable, sigFut := future.NewMutable[syscall.Signal](cfg.Name + ".signal")
	outMutable, outFut := future.NewMutable[Result](cfg.Name + ".stdout")
	errMutable, errFut := future.NewMutable[Result](cfg.Name + ".stderr")

	p := &Process{
		config:       cfg,
		cmd:          cmd,
		pid:          cmd.Process.Pid,
		StatLoc:      statFut,
		ExitCode:     exitFut,
		Signalled:    sigFut,
		stdoutResult: outFut,
		stderrResult: errFut,
		detach:       detach,
	}

	go func() {
		waitErr := cmd.Wait()
		_ = detach()

		if out, oerr := finalizeOut(); oerr == nil {
			outMutable.Resolve(out)
		} else {
			outMutable.Reject(idberrors.Wrap(idberrors.IO, oerr, "finalize stdout"))
		}
		if errRes, eerr := finalizeErr(); eerr == nil {
			errMutable.Resolve(errRes)
		} else {
			errMutable.Reject(idberrors.Wrap(idberrors.IO, eerr, "finalize stderr"))
		}

		ws, _ := cmd.ProcessState.Sys().(syscall.WaitStatus)
		statMutable.Resolve(ws)

		if ws.Signaled() {
			sigMutable.Resolve(ws.Signal())
			exitMutable.Reject(idberrors.Errorf(idberrors.Subprocess, "%s was signalled: %v", cfg.Path, ws.Signal()))
			return
		}
		exitMutable.Resolve(ws.ExitStatus())
		sigMutable.Reject(idberrors.Errorf(idberrors.Subprocess, "%s exited normally with code %d", cfg.Path, ws.ExitStatus()))
		_ = waitErr // surfaced through ExitCode/Signalled instead of here
	}()

	return p, nil
}

// Signal sends signal n (a raw OS signal number, per §9) to the process.
func (p *Process) Signal(n int) error {
	return unix.Kill(p.PID(), unix.Signal(n))
}

// SignalWithFallback sends signal n; if the process has not exited after d,
// it escalates to SIGKILL. The returned Future resolves once the process
// has exited (by either signal).
func (p *Process) SignalWithFallback(n int, d time.Duration, clk clock.Clock) *future.Future[struct{}] {
	_ = p.Signal(n)
	out, result := future.NewMutable[struct{}]("signalWithFallback")
	timer := clk.NewTimer(d)
	done := make(chan struct{})
	go func() {
		select {
		case <-timer.C():
			_ = p.Signal(int(unix.SIGKILL))
		case <-done:
			timer.Stop()
		}
	}()
	p.StatLoc.OnComplete(future.Inline, func(future.State, syscall.WaitStatus, error) {
		close(done)
		out.Resolve(struct{}{})
	})
	return result
}

// RunUntilCompletion starts cfg and resolves once the process terminates,
// failing if its exit code is not in acceptableExitCodes. Cancelling the
// returned Future sends SIGTERM, then escalates to SIGKILL after
// gracePeriod.
func RunUntilCompletion(ctx context.Context, cfg Config, acceptableExitCodes map[int]bool, gracePeriod time.Duration) *future.Future[*Process] {
	return future.Go(future.NewParallelQueue(cfg.Name+".run", 0), cfg.Name, func(ctx context.Context) (*Process, error) {
		// Start gets a context that is never cancelled: exec would otherwise
		// SIGKILL the child at once, skipping the SIGTERM grace period below.
		p, err := Start(context.WithoutCancel(ctx), cfg)
		if err != nil {
			return nil, err
		}

		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = p.Signal(int(unix.SIGTERM))
				select {
				case <-done:
				case <-time.After(gracePeriod):
					_ = p.Signal(int(unix.SIGKILL))
				}
			case <-done:
			}
		}()

		<-p.StatLoc.Done()
		close(done)

		if ctx.Err() != nil {
			return p, idberrors.New(idberrors.Cancelled, "run was cancelled")
		}
		code, ok := p.ExitCode.Value()
		if !ok {
			return p, idberrors.Errorf(idberrors.Subprocess, "%s was signalled", cfg.Path)
		}
		if acceptableExitCodes != nil && !acceptableExitCodes[code] {
			return p, idberrors.Errorf(idberrors.Subprocess, "%s exited with unacceptable code %d", cfg.Path, code)
		}
		return p, nil
	})
}
