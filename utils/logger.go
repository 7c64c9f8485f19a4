package utils

import (
	"fmt"
	"log"
	"os"
	"time"
)

// Logger provides leveled logging with the operator-facing severity tags
// ([INFO], [AVISO], [ERRO], [SUCESSO]) printed to the console and mirrored,
// without ANSI colors, to an optional log file.
type Logger struct {
	info    *log.Logger
	aviso   *log.Logger
	erro    *log.Logger
	sucesso *log.Logger
	file    *os.File
	sink    *log.Logger
}

// NewLogger creates a Logger writing to stdout/stderr only.
func NewLogger() *Logger {
	flags := 0
	return &Logger{
		info:    log.New(os.Stdout, "", flags),
		aviso:   log.New(os.Stdout, "", flags),
		erro:    log.New(os.Stderr, "", flags),
		sucesso: log.New(os.Stdout, "", flags),
	}
}

// NewFileLogger creates a Logger that also appends every line to the file at
// path. The file is truncated at startup so each run keeps its own log.
func NewFileLogger(path string) (*Logger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("logger: criar arquivo de log %q: %w", path, err)
	}
	l := NewLogger()
	l.file = f
	l.sink = log.New(f, "", 0)
	return l, nil
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) emit(out *log.Logger, color, tag, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	out.Printf("[%s] %s[%s]\033[0m %s\n", l.timestamp(), color, tag, msg)
	if l.sink != nil {
		l.sink.Printf("[%s] [%s] %s", l.timestamp(), tag, msg)
	}
}

func (l *Logger) Info(format string, args ...any) {
	l.emit(l.info, "\033[36m", "INFO", format, args...)
}

func (l *Logger) Aviso(format string, args ...any) {
	l.emit(l.aviso, "\033[33m", "AVISO", format, args...)
}

func (l *Logger) Erro(format string, args ...any) {
	l.emit(l.erro, "\033[31m", "ERRO", format, args...)
}

func (l *Logger) Sucesso(format string, args ...any) {
	l.emit(l.sucesso, "\033[32m", "SUCESSO", format, args...)
}
