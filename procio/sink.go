// Package procio spawns subprocesses with fully-plumbed stdin/stdout/stderr
// sinks and exposes exit/signal status as Futures. It is grounded on the
// builder-pattern process spawning of FBProcessBuilder/FBTaskBuilder, and on
// the Future-returning process lifecycle used throughout this module.
package procio

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/facebook/idb-sub000/logging"
)

// LogLevel selects the logging.Logger method a Logger sink writes through.
type LogLevel int

const (
	// LogLevelDebug routes lines through Logger.Debug.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo routes lines through Logger.Info.
	LogLevelInfo
)

// Consumer receives bytes as they arrive on a stream.
type Consumer interface {
	Consume(p []byte) error
}

// ConsumerFunc adapts a function to a Consumer.
type ConsumerFunc func(p []byte) error

// Consume implements Consumer.
func (f ConsumerFunc) Consume(p []byte) error { return f(p) }

// LineConsumer receives whole lines (without the trailing "\n").
type LineConsumer interface {
	ConsumeLine(line []byte) error
}

// LineConsumerFunc adapts a function to a LineConsumer.
type LineConsumerFunc func(line []byte) error

// ConsumeLine implements LineConsumer.
func (f LineConsumerFunc) ConsumeLine(line []byte) error { return f(line) }

// Sink is a binding for one of a process's stdin/stdout/stderr streams. Use
// one of the DevNull/File/Bytes/Text/ToConsumer/ToLineConsumer/ToLogger/
// Stream/Data constructors; the zero value is an unconnected stream.
type Sink struct {
	kind sinkKind

	path     string
	consumer Consumer
	lines    LineConsumer
	logger   *logging.Logger
	level    LogLevel
	data     []byte
	stream   io.ReadWriteCloser // for Stream(); caller owns the other end
}

type sinkKind int

const (
	sinkNone sinkKind = iota
	sinkDevNull
	sinkFile
	sinkBytes
	sinkText
	sinkConsumer
	sinkLineConsumer
	sinkLogger
	sinkStream
	sinkData
)

// DevNull discards (for stdout/stderr) or supplies an empty stream (stdin).
func DevNull() Sink { return Sink{kind: sinkDevNull} }

// File redirects the stream to the given path, opening/creating it.
func File(path string) Sink { return Sink{kind: sinkFile, path: path} }

// Bytes accumulates the stream in memory, delivered as a []byte on exit.
// Only valid for stdout/stderr.
func Bytes() Sink { return Sink{kind: sinkBytes} }

// Text is like Bytes but the accumulated buffer is delivered as a UTF-8
// string. Only valid for stdout/stderr.
func Text() Sink { return Sink{kind: sinkText} }

// ToConsumer pushes bytes to c as they arrive. Only valid for stdout/stderr.
func ToConsumer(c Consumer) Sink { return Sink{kind: sinkConsumer, consumer: c} }

// ToLineConsumer is like ToConsumer, framed on '\n'. Only valid for
// stdout/stderr.
func ToLineConsumer(c LineConsumer) Sink { return Sink{kind: sinkLineConsumer, lines: c} }

// ToLogger forwards line-framed output to logger at the given level. Only
// valid for stdout/stderr.
func ToLogger(logger *logging.Logger, level LogLevel) Sink {
	return Sink{kind: sinkLogger, logger: logger, level: level}
}

// Stream exposes an OS-level stream endpoint the caller reads/writes
// directly; rw is closed when the attach context tears down.
func Stream(rw io.ReadWriteCloser) Sink { return Sink{kind: sinkStream, stream: rw} }

// Data feeds a fixed buffer to stdin. Only valid for stdin.
func Data(b []byte) Sink { return Sink{kind: sinkData, data: b} }

// attachWriter resolves a stdout/stderr sink into a concrete io.Writer plus
// a function to call after the process exits to finalize delivery (e.g.
// read back an in-memory buffer). detach closes anything that needs it.
func (s Sink) attachWriter() (w io.Writer, finalize func() (Result, error), detach func() error, err error) {
	switch s.kind {
	case sinkNone, sinkDevNull:
		f, ferr := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if ferr != nil {
			return nil, nil, nil, ferr
		}
		return f, func() (Result, error) { return Result{}, nil }, f.Close, nil
	case sinkFile:
		f, ferr := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if ferr != nil {
			return nil, nil, nil, ferr
		}
		return f, func() (Result, error) { return Result{}, nil }, f.Close, nil
	case sinkBytes:
		buf := &bytes.Buffer{}
		return buf, func() (Result, error) { return Result{Bytes: append([]byte(nil), buf.Bytes()...)}, nil }, func() error { return nil }, nil
	case sinkText:
		buf := &bytes.Buffer{}
		return buf, func() (Result, error) { return Result{Text: buf.String()}, nil }, func() error { return nil }, nil
	case sinkConsumer:
		pr, pw := io.Pipe()
		go pumpConsumer(pr, s.consumer)
		return pw, func() (Result, error) { return Result{}, nil }, pw.Close, nil
	case sinkLineConsumer:
		pr, pw := io.Pipe()
		go pumpLines(pr, s.lines)
		return pw, func() (Result, error) { return Result{}, nil }, pw.Close, nil
	case sinkLogger:
		pr, pw := io.Pipe()
		go pumpLines(pr, LineConsumerFunc(func(line []byte) error {
			switch s.level {
			case LogLevelDebug:
				s.logger.Debug(string(line))
			default:
				s.logger.Info(string(line))
			}
			return nil
		}))
		return pw, func() (Result, error) { return Result{}, nil }, pw.Close, nil
	case sinkStream:
		return s.stream, func() (Result, error) { return Result{}, nil }, s.stream.Close, nil
	default:
		f, ferr := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if ferr != nil {
			return nil, nil, nil, ferr
		}
		return f, func() (Result, error) { return Result{}, nil }, f.Close, nil
	}
}

// attachReader resolves a stdin sink into a concrete io.Reader.
func (s Sink) attachReader() (r io.Reader, detach func() error, err error) {
	switch s.kind {
	case sinkNone, sinkDevNull:
		f, ferr := os.Open(os.DevNull)
		if ferr != nil {
			return nil, nil, ferr
		}
		return f, f.Close, nil
	case sinkFile:
		f, ferr := os.Open(s.path)
		if ferr != nil {
			return nil, nil, ferr
		}
		return f, f.Close, nil
	case sinkData:
		return bytes.NewReader(s.data), func() error { return nil }, nil
	case sinkStream:
		return s.stream, s.stream.Close, nil
	default:
		f, ferr := os.Open(os.DevNull)
		if ferr != nil {
			return nil, nil, ferr
		}
		return f, f.Close, nil
	}
}

// Result is the terminal value of a stream bound to Bytes()/Text(); all
// other sinks deliver the zero Result.
type Result struct {
	Bytes []byte
	Text  string
}

func pumpConsumer(r io.Reader, c Consumer) {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			_ = c.Consume(append([]byte(nil), buf[:n]...))
		}
		if err != nil {
			return
		}
	}
}

func pumpLines(r io.Reader, c LineConsumer) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		_ = c.ConsumeLine(append([]byte(nil), sc.Bytes()...))
	}
}
