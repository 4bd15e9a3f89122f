package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level controls which messages a writer logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a config string to a Level. Unknown values default to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// writerLogger emits timestamped key=value lines to a single io.Writer.
type writerLogger struct {
	mu    *sync.Mutex
	w     io.Writer
	min   Level
	bound []Field
	now   func() time.Time
}

// NewLogger returns a Logger writing to w. Messages below min are dropped.
func NewLogger(w io.Writer, min Level) Logger {
	return &writerLogger{mu: &sync.Mutex{}, w: w, min: min, now: time.Now}
}

func (l *writerLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *writerLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *writerLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *writerLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

func (l *writerLogger) With(fields ...Field) Logger {
	child := *l
	child.bound = append(append([]Field(nil), l.bound...), fields...)
	return &child
}

func (l *writerLogger) log(level Level, msg string, fields []Field) {
	if level < l.min {
		return
	}
	var b strings.Builder
	b.WriteString(l.now().UTC().Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(level.String())
	b.WriteByte(' ')
	b.WriteString(msg)
	all := make([]Field, 0, len(l.bound)+len(fields))
	all = append(all, l.bound...)
	all = append(all, fields...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Key() < all[j].Key() })
	for _, f := range all {
		fmt.Fprintf(&b, " %s=%v", f.Key(), f.Value())
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.w, b.String())
}
