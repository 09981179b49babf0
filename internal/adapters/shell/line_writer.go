package shell

import (
	"bytes"
	"io"
	"sync"
)

// lineWriter forwards complete lines to w.
// The mutex is shared by the stdout and stderr writers of one process so a
// line from one stream is never split by a line from the other.
type lineWriter struct {
	mu  *sync.Mutex
	w   io.Writer
	buf []byte
}

func (lw *lineWriter) Write(p []byte) (n int, err error) {
	lw.buf = append(lw.buf, p...)

	for {
		i := bytes.IndexByte(lw.buf, '\n')
		if i < 0 {
			break
		}

		if err := lw.writeLine(lw.buf[:i]); err != nil {
			return len(p), err
		}
		lw.buf = lw.buf[i+1:]
	}

	return len(p), nil
}

// Close flushes a trailing line without newline.
func (lw *lineWriter) Close() error {
	if len(lw.buf) == 0 {
		return nil
	}
	err := lw.writeLine(lw.buf)
	lw.buf = nil
	return err
}

func (lw *lineWriter) writeLine(line []byte) error {
	// PTYs terminate lines with \r\n.
	line = bytes.TrimSuffix(line, []byte("\r"))

	out := make([]byte, 0, len(line)+1)
	out = append(out, line...)
	out = append(out, '\n')

	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err := lw.w.Write(out)
	return err
}
