// +build linux

package sink

import (
	"os"

	"github.com/google/vectorio"
)

// writev queues each Write as one iovec so a tag's previous-size word,
// header and payload reach the file in a single writev call on Flush.
type writev struct {
	bw      *vectorio.BufferedWritev
	pending int
}

func newWriter(f *os.File) (writeFlusher, error) {
	bw, err := vectorio.NewBufferedWritev(f)
	if err != nil {
		return nil, err
	}

	return &writev{bw: bw}, nil
}

func (w *writev) Write(p []byte) (int, error) {
	n, err := w.bw.Write(p)
	if err == nil {
		w.pending++
	}

	return n, err
}

func (w *writev) Flush() error {
	if w.pending == 0 {
		return nil
	}
	w.pending = 0

	_, err := w.bw.Flush()
	return err
}
