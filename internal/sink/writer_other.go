// +build !linux

package sink

import (
	"bufio"
	"os"
)

func newWriter(f *os.File) (writeFlusher, error) {
	return bufio.NewWriterSize(f, 64*1024), nil
}
