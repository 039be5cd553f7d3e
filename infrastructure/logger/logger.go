package logger

import (
	"TUI_channel_research/internal/core/ports"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// callerSkip points runtime.Caller at the code that called Info/Error/...
const callerSkip = 3

type fileLogger struct {
	mu      sync.Mutex
	logFile io.WriteCloser
	zl      zerolog.Logger
	closed  bool
}

// NewFileLogger writes one JSON object per line to
// <logDir>/<logPrefix>_<timestamp>.json.
func NewFileLogger(logDir, logPrefix string) (ports.LoggerPort, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory '%s': %w", logDir, err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logFilePath := filepath.Join(logDir, fmt.Sprintf("%s_%s.json", logPrefix, timestamp))

	file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file '%s': %w", logFilePath, err)
	}

	return newLogger(file), nil
}

// NewWriterLogger logs to an arbitrary writer. Close closes w when it is an io.Closer.
func NewWriterLogger(w io.Writer) ports.LoggerPort {
	wc, ok := w.(io.WriteCloser)
	if !ok {
		wc = nopCloser{w}
	}
	return newLogger(wc)
}

// NewNopLogger discards everything.
func NewNopLogger() ports.LoggerPort {
	return &fileLogger{zl: zerolog.Nop(), logFile: nopCloser{io.Discard}}
}

func newLogger(w io.WriteCloser) *fileLogger {
	zerolog.TimeFieldFormat = time.RFC3339
	zl := zerolog.New(w).With().Timestamp().Logger()
	return &fileLogger{logFile: w, zl: zl}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (l *fileLogger) write(level zerolog.Level, msg string, errIn error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		fmt.Fprintf(os.Stderr, "logger is closed, dropping log: %s\n", msg)
		return
	}

	file, function := callerInfo(callerSkip)

	event := l.zl.WithLevel(level).
		Str("file", file).
		Str("function", function)
	if errIn != nil {
		event = event.Str("err", errIn.Error())
	}
	event.Msg(msg)
}

func callerInfo(skip int) (string, string) {
	pc, filePath, _, ok := runtime.Caller(skip)
	if !ok {
		return "???", "???"
	}

	funcName := "???"
	if fn := runtime.FuncForPC(pc); fn != nil {
		parts := strings.Split(fn.Name(), ".")
		funcName = parts[len(parts)-1]
	}

	return filepath.Base(filePath), funcName
}

func (l *fileLogger) Debug(msg string) {
	l.write(zerolog.DebugLevel, msg, nil)
}

func (l *fileLogger) Info(msg string) {
	l.write(zerolog.InfoLevel, msg, nil)
}

func (l *fileLogger) Warning(msg string) {
	l.write(zerolog.WarnLevel, msg, nil)
}

func (l *fileLogger) Error(msg string, err error) {
	l.write(zerolog.ErrorLevel, msg, err)
}

func (l *fileLogger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true

	if err := l.logFile.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "error while closing log file: %v\n", err)
	}
}
