package backend

import (
	"bufio"
	"context"
	"os"
	"time"

	"github.com/facebook/idb-sub000/future"
	"github.com/facebook/idb-sub000/procio"
)

// tailPollInterval is how often a tailer checks for newly appended bytes.
// Grounded on poll-based tailing rather than inotify/FSEvents to stay
// portable across the backends that wrap host files directly.
const tailPollInterval = 200 * time.Millisecond

// tailFile streams appends to path into consumer until the returned Future
// is cancelled.
func tailFile(path string, consumer procio.LineConsumer) *future.Future[struct{}] {
	return future.Go(future.NewParallelQueue("tailFile", 0), "tailFile", func(ctx context.Context) (struct{}, error) {
		f, err := os.Open(path)
		if err != nil {
			return struct{}{}, err
		}
		defer f.Close()
		if _, err := f.Seek(0, os.SEEK_END); err != nil {
			return struct{}{}, err
		}
		reader := bufio.NewReader(f)
		ticker := time.NewTicker(tailPollInterval)
		defer ticker.Stop()
		var pending []byte
		for {
			select {
			case <-ctx.Done():
				return struct{}{}, ctx.Err()
			case <-ticker.C:
				for {
					line, err := reader.ReadBytes('\n')
					pending = append(pending, line...)
					if err != nil {
						break
					}
					_ = consumer.ConsumeLine(pending[:len(pending)-1])
					pending = nil
				}
			}
		}
	})
}
