// Package utils provides small filesystem and logging helpers shared by the mirror CLI and engine.
package utils

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"time"
)

// LogInterceptor is an io.Writer that prefixes every complete line with a
// sequence number and a timestamp before passing it to the target.
// Partial lines are held back until their newline arrives or Close is called.
type LogInterceptor struct {
	target io.Writer
	now    func() time.Time

	mu  sync.Mutex
	seq uint64
	buf bytes.Buffer
}

// NewLogInterceptor wraps target
func NewLogInterceptor(target io.Writer) *LogInterceptor {
	return &LogInterceptor{
		target: target,
		now:    time.Now,
	}
}

// Write implements io.Writer. It reports len(p) on success so callers such as
// slog handlers do not treat the added prefix as a short write.
func (i *LogInterceptor) Write(p []byte) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.buf.Write(p)
	for {
		idx := bytes.IndexByte(i.buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := i.buf.Next(idx + 1)
		if err := i.writeLine(bytes.TrimRight(line, "\r\n")); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Close flushes a trailing partial line, if any.
func (i *LogInterceptor) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.buf.Len() == 0 {
		return nil
	}
	line := bytes.Clone(i.buf.Bytes())
	i.buf.Reset()
	return i.writeLine(line)
}

func (i *LogInterceptor) writeLine(line []byte) error {
	i.seq++

	var out bytes.Buffer
	out.WriteString(slog.Uint64("line", i.seq).String())
	out.WriteByte(' ')
	out.WriteString(slog.String("time", i.now().Format(time.RFC3339)).String())
	out.WriteByte(' ')
	out.Write(line)
	out.WriteByte('\n')

	_, err := i.target.Write(out.Bytes())
	return err
}
