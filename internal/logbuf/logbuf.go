package logbuf

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Buffer is the shared diagnostic log. Every component appends to it; the
// terminal display reads it through Snapshot. Each line is also mirrored to
// a log file in append mode, best effort: a failing mirror write must never
// abort the caller's flow, so file errors are dropped.
type Buffer struct {
	mu    sync.Mutex
	path  string
	lines []string
}

// New returns a buffer mirroring to the given file path. The file is
// created lazily on the first append; an empty path disables mirroring.
func New(path string) *Buffer {
	return &Buffer{path: path}
}

// Append records a timestamped line with the given level prefix.
func (b *Buffer) Append(level, text string) {
	line := fmt.Sprintf("%s - [%s] - %s", time.Now().Format("2006-01-02T15:04:05"), level, text)
	b.mu.Lock()
	b.lines = append(b.lines, line)
	b.mu.Unlock()
	b.mirror(line)
}

func (b *Buffer) Infof(format string, args ...any)  { b.Append("INFO", fmt.Sprintf(format, args...)) }
func (b *Buffer) Warnf(format string, args ...any)  { b.Append("WARN", fmt.Sprintf(format, args...)) }
func (b *Buffer) Errorf(format string, args ...any) { b.Append("ERROR", fmt.Sprintf(format, args...)) }

// mirror runs outside the buffer lock so a slow disk cannot stall
// concurrent appends.
func (b *Buffer) mirror(line string) {
	if b.path == "" {
		return
	}
	f, err := os.OpenFile(b.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	_, _ = f.WriteString(line + "\n")
}

// Snapshot returns a copy of the current lines. The caller may iterate it
// freely while other goroutines keep appending.
func (b *Buffer) Snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Trim drops all but the newest keep lines from memory. The mirror file is
// untouched and keeps the full history.
func (b *Buffer) Trim(keep int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if keep < 0 || len(b.lines) <= keep {
		return
	}
	b.lines = append([]string(nil), b.lines[len(b.lines)-keep:]...)
}
