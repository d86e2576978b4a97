package tacit

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/itchyny/timefmt-go"
)

// LogLevel is the severity of a log line. Higher levels are more verbose.
type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l LogLevel) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a level name case-insensitively. Unknown names
// select LevelWarn.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(s) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "INFO":
		return LevelInfo
	case "DEBUG":
		return LevelDebug
	default:
		return LevelWarn
	}
}

// Logger receives the events of binding and execution.
//
// Levels are used as follows:
//   - Error: a host hook failed
//   - Warn: a hook registration replaced an earlier one
//   - Info: a call started or finished
//   - Debug: bindings, diagnostics, caught failures and one line per
//     executed instruction
type Logger interface {
	// IsEnabled reports whether lines at level are written. Callers check
	// it before building fields such as stack previews.
	IsEnabled(level LogLevel) bool

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	// With returns a child logger augmented with the provided fields.
	With(fields map[string]any) Logger
}

// DefaultLogTimeFormat is the strftime pattern used for log timestamps.
const DefaultLogTimeFormat = "%Y-%m-%dT%H:%M:%S.%fZ"

// textFormatter writes one line per event:
//
//	[LEVEL] ts msg key1=val1 key2=val2
type textFormatter struct {
	timeFormat string // strftime; empty omits the timestamp
}

func (f textFormatter) format(ts time.Time, level LogLevel, msg string, fields map[string]any) []byte {
	var b strings.Builder
	b.Grow(128)

	b.WriteByte('[')
	b.WriteString(level.String())
	b.WriteString("] ")
	if f.timeFormat != "" {
		b.WriteString(timefmt.Format(ts.UTC(), f.timeFormat))
		b.WriteByte(' ')
	}
	b.WriteString(msg)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fieldString(fields[k]))
	}

	b.WriteByte('\n')
	return []byte(b.String())
}

// fieldString renders a field value. Values are summarized so a large
// array never lands in a log line, and strings with spaces are quoted.
func fieldString(v any) string {
	switch t := v.(type) {
	case Value:
		return valueSummary(t)
	case string:
		if strings.IndexFunc(t, func(r rune) bool { return r <= ' ' }) >= 0 {
			return fmt.Sprintf("%q", t)
		}
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

type textLogger struct {
	out    io.Writer
	level  LogLevel
	format textFormatter
	fields map[string]any

	// mu is shared by a logger and its children.
	mu *sync.Mutex
}

// NewLogger creates a text logger writing lines at level and below to w,
// or to os.Stderr when w is nil.
func NewLogger(level LogLevel, w io.Writer) Logger {
	return newLogger(level, w, DefaultLogTimeFormat)
}

func newLogger(level LogLevel, w io.Writer, timeFormat string) Logger {
	if w == nil {
		w = os.Stderr
	}
	if timeFormat == "" {
		timeFormat = DefaultLogTimeFormat
	}
	return &textLogger{
		out:    w,
		level:  level,
		format: textFormatter{timeFormat: timeFormat},
		mu:     &sync.Mutex{},
	}
}

func (l *textLogger) IsEnabled(level LogLevel) bool {
	return level <= l.level
}

func (l *textLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	child := *l
	child.fields = merged
	return &child
}

func (l *textLogger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *textLogger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *textLogger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *textLogger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

func (l *textLogger) logf(level LogLevel, format string, args ...any) {
	if !l.IsEnabled(level) {
		return
	}
	line := l.format.format(time.Now(), level, fmt.Sprintf(format, args...), l.fields)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(line)
}

type nopLogger struct{}

func (nopLogger) IsEnabled(LogLevel) bool           { return false }
func (nopLogger) Debugf(format string, args ...any) {}
func (nopLogger) Infof(format string, args ...any)  {}
func (nopLogger) Warnf(format string, args ...any)  {}
func (nopLogger) Errorf(format string, args ...any) {}
func (l nopLogger) With(map[string]any) Logger      { return l }

// NopLogger returns a logger that discards all output.
func NopLogger() Logger { return nopLogger{} }

// valueSummary returns a compact one-line representation of a value.
// Large arrays and boxes are reduced to kind and shape.
func valueSummary(v Value) string {
	if v.ElementCount() <= 8 && v.kind != KindBox {
		return v.String()
	}
	if v.IsScalar() {
		return v.kind.String()
	}
	return v.kind.String() + v.shape.String()
}

// stackPreview summarizes the top depth values, top first.
func stackPreview(vals []Value, depth int) string {
	items := make([]string, 0, min(depth, len(vals)))
	for i := len(vals) - 1; i >= 0 && len(items) < depth; i-- {
		items = append(items, valueSummary(vals[i]))
	}
	return truncateList(items, len(vals))
}

// truncateList joins items with "," and appends +N for the rest of total.
func truncateList(items []string, total int) string {
	s := strings.Join(items, ",")
	if rest := total - len(items); rest > 0 {
		if s != "" {
			s += ","
		}
		s += fmt.Sprintf("+%d", rest)
	}
	return "[" + s + "]"
}
