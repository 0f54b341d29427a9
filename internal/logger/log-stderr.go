package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// StdErrLogger writes "LEVEL: message" lines, dropping those below its level.
type StdErrLogger struct {
	logLevel LogLevel
	out      *log.Logger
}

// NewWriterLogger logs to w instead of stderr.
func NewWriterLogger(w io.Writer, level LogLevel) *StdErrLogger {
	return &StdErrLogger{logLevel: level, out: log.New(w, "", log.LstdFlags)}
}

func (l *StdErrLogger) Printf(level LogLevel, format string, a ...interface{}) {
	if level < l.logLevel {
		return
	}
	txt := logLevelPrefix[level] + ": " + fmt.Sprintf(format, a...)
	if l.out == nil {
		l.out = log.New(os.Stderr, "", log.LstdFlags)
	}
	l.out.Println(txt)
}
func (l *StdErrLogger) Debugf(format string, a ...interface{}) {
	l.Printf(LogDebug, format, a...)
}
func (l *StdErrLogger) Infof(format string, a ...interface{}) {
	l.Printf(LogInfo, format, a...)
}
func (l *StdErrLogger) Errorf(format string, a ...interface{}) {
	l.Printf(LogError, format, a...)
}

func (l *StdErrLogger) SetLogLevel(level LogLevel) {
	l.logLevel = level
}
func (l *StdErrLogger) GetLogLevel() LogLevel {
	return l.logLevel
}
