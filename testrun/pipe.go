package testrun

import (
	"io"

	"github.com/facebook/idb-sub000/procio"
)

// halfDuplex adapts one end of an os.Pipe (or io.Pipe) to the
// io.ReadWriteCloser procio.Stream expects, even though only one direction
// is ever exercised by the caller.
type halfDuplex struct {
	r io.Reader
	w io.Writer
	c io.Closer
}

func (h halfDuplex) Read(p []byte) (int, error) {
	if h.r == nil {
		return 0, io.EOF
	}
	return h.r.Read(p)
}

func (h halfDuplex) Write(p []byte) (int, error) {
	if h.w == nil {
		return 0, io.ErrClosedPipe
	}
	return h.w.Write(p)
}

func (h halfDuplex) Close() error {
	if h.c == nil {
		return nil
	}
	return h.c.Close()
}

// bus is the host side of the test bus: a writer into the runner's stdin
// and a reader from the runner's stdout, plus the Sink values a
// RunnerLauncher should bind to procio.Config.Stdin/Stdout so the runner's
// process sees the other end of each pipe.
type bus struct {
	toRunner   io.WriteCloser
	fromRunner io.ReadCloser

	StdinSink  procio.Sink
	StdoutSink procio.Sink
}

// newBus allocates the pipe pair backing one test run's bus.
func newBus() *bus {
	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()
	return &bus{
		toRunner:   stdinW,
		fromRunner: stdoutR,
		StdinSink:  procio.Stream(halfDuplex{r: stdinR, c: stdinR}),
		StdoutSink: procio.Stream(halfDuplex{w: stdoutW, c: stdoutW}),
	}
}
