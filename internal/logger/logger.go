// Package logger prints leveled, colored log lines to the console.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stderr

	timeColor    = color.New(color.FgHiBlack)
	infoColor    = color.New(color.FgBlue)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	methodColor  = color.New(color.FgMagenta)
	pathColor    = color.New(color.FgWhite)
)

// SetOutput redirects log output. It returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

func write(c *color.Color, prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%s %s\n",
		timeColor.Sprintf("[%s]", time.Now().Format("15:04:05")),
		c.Sprint(prefix+fmt.Sprintf(format, args...)))
}

// Info logs a general message.
func Info(format string, args ...any) {
	write(infoColor, "", format, args...)
}

// Success logs a completed operation.
func Success(format string, args ...any) {
	write(successColor, "✓ ", format, args...)
}

// Warning logs a recoverable problem.
func Warning(format string, args ...any) {
	write(warningColor, "⚠ ", format, args...)
}

// Error logs a failure.
func Error(format string, args ...any) {
	write(errorColor, "✗ ", format, args...)
}

// Request logs one HTTP request with its status and duration.
func Request(method, path string, status int, duration time.Duration) {
	var statusColor *color.Color
	switch {
	case status >= 500:
		statusColor = errorColor
	case status >= 400:
		statusColor = warningColor
	case status >= 300:
		statusColor = infoColor
	default:
		statusColor = successColor
	}

	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%s %s %s %s %s\n",
		timeColor.Sprintf("[%s]", time.Now().Format("15:04:05")),
		methodColor.Sprintf("%-6s", method),
		pathColor.Sprintf("%-40s", path),
		statusColor.Sprintf("[%d]", status),
		timeColor.Sprintf("(%s)", formatDuration(duration)))
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
