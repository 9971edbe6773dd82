package executor

import (
	"context"
	"io"

	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/procio"
)

// DAPSession is the handle returned by DAPServer: the spawned process plus
// a writer the caller drives to feed its stdin.
type DAPSession struct {
	Process *procio.Process
	Stdin   io.WriteCloser
}

// DAPServer spawns a Debug Adapter Protocol process at dapPath inside the
// target's context, piping its stdout to consumer (§4.H "dap_server").
func (e *Executor) DAPServer(ctx context.Context, dapPath string, args []string, consumer procio.LineConsumer) *future.Future[*DAPSession] {
	stdinR, stdinW := io.Pipe()
	spawned := e.Target.Spawn(ctx, procio.Config{
		Name:   "dap_server",
		Path:   dapPath,
		Args:   args,
		Stdin:  procio.Stream(pipeEnd{r: stdinR}),
		Stdout: procio.ToLineConsumer(consumer),
		Stderr: procio.DevNull(),
	})
	return future.Map(spawned, func(p *procio.Process) *DAPSession {
		return &DAPSession{Process: p, Stdin: stdinW}
	})
}

// pipeEnd adapts the read end of an io.Pipe to io.ReadWriteCloser for
// procio.Stream; only the read direction is ever exercised here, since the
// caller drives stdin directly through DAPSession.Stdin.
type pipeEnd struct {
	r io.Reader
}

func (p pipeEnd) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p pipeEnd) Write(b []byte) (int, error) { return 0, io.ErrClosedPipe }
func (p pipeEnd) Close() error                { return nil }
