// Package utils provides logging and identifier helpers for sysreport
//
//nolint:revive // utils is a common pattern for internal utilities
package utils

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/crewjam/rfc5424"
)

// AppName is the RFC 5424 APP-NAME of every record
const AppName = "sysreport"

// Logger defines the interface for logging operations
type Logger interface {
	LogInfo(message string, meta map[string]string)
	LogWarn(message string, meta map[string]string)
	LogError(message string, meta map[string]string)
	LogDebug(message string, meta map[string]string)
}

// RFC5424Logger implements Logger with RFC 5424 compliant syslog format using crewjam/rfc5424
type RFC5424Logger struct {
	appName   string
	hostname  string
	processID string
	facility  rfc5424.Priority
	minLevel  rfc5424.Priority
	out       io.Writer
	mu        sync.Mutex
	logs      []string // formatted copies, kept for the run summary
}

// NewRFC5424Logger creates a logger writing to out. A nil writer means stdout.
func NewRFC5424Logger(appName string, out io.Writer) *RFC5424Logger {
	if out == nil {
		out = os.Stdout
	}
	return &RFC5424Logger{
		appName:   appName,
		hostname:  getHostname(),
		processID: strconv.Itoa(os.Getpid()),
		facility:  rfc5424.User,
		minLevel:  rfc5424.Info,
		out:       out,
		logs:      make([]string, 0),
	}
}

// getHostname retrieves the system hostname dynamically.
func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return hostname
}

// ParseLevel maps a config level name to a syslog severity. Unknown names mean info.
func ParseLevel(level string) rfc5424.Priority {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return rfc5424.Debug
	case "warn", "warning":
		return rfc5424.Warning
	case "error":
		return rfc5424.Error
	default:
		return rfc5424.Info
	}
}

// SetLevel sets the least severe level that is still written
func (l *RFC5424Logger) SetLevel(level rfc5424.Priority) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

func (l *RFC5424Logger) createMessage(severity rfc5424.Priority, message string, meta map[string]string) *rfc5424.Message {
	msg := &rfc5424.Message{
		Priority:  l.facility | severity,
		Timestamp: time.Now().UTC(),
		Hostname:  l.hostname,
		AppName:   l.appName,
		ProcessID: l.processID,
		MessageID: "ID" + strings.ReplaceAll(GenerateRandomID(), "-", "")[:8],
		Message:   []byte(message),
	}

	for key, value := range meta {
		msg.AddDatum("meta@1", key, value)
	}

	return msg
}

// writeLog formats one record, writes it and keeps a copy in memory.
// Lower numeric severity is more severe in syslog.
func (l *RFC5424Logger) writeLog(severity rfc5424.Priority, message string, meta map[string]string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if severity > l.minLevel {
		return
	}

	msg := l.createMessage(severity, message, meta)
	formatted, err := msg.MarshalBinary()
	if err != nil {
		formatted = []byte(fmt.Sprintf("<%d>1 %s %s %s %s - - %s",
			int(l.facility|severity),
			msg.Timestamp.Format(time.RFC3339),
			l.hostname, l.appName, l.processID, message))
	}

	_, _ = fmt.Fprintln(l.out, string(formatted))
	l.logs = append(l.logs, string(formatted))
}

// LogInfo logs an informational message (severity Info)
func (l *RFC5424Logger) LogInfo(message string, meta map[string]string) {
	l.writeLog(rfc5424.Info, message, meta)
}

// LogWarn logs a warning message (severity Warning)
func (l *RFC5424Logger) LogWarn(message string, meta map[string]string) {
	l.writeLog(rfc5424.Warning, message, meta)
}

// LogError logs an error message (severity Error)
func (l *RFC5424Logger) LogError(message string, meta map[string]string) {
	l.writeLog(rfc5424.Error, message, meta)
}

// LogDebug logs a debug message (severity Debug)
func (l *RFC5424Logger) LogDebug(message string, meta map[string]string) {
	l.writeLog(rfc5424.Debug, message, meta)
}

// GetLogs returns a copy of all captured logs
func (l *RFC5424Logger) GetLogs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	logsCopy := make([]string, len(l.logs))
	copy(logsCopy, l.logs)
	return logsCopy
}

// ClearLogs clears the in-memory log buffer
func (l *RFC5424Logger) ClearLogs() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = make([]string, 0)
}

// DefaultLogger is the global logger instance
var DefaultLogger *RFC5424Logger

// InitDefaultLogger initializes the global logger on stdout
func InitDefaultLogger() error {
	return InitDefaultLoggerTo(os.Stdout)
}

// InitDefaultLoggerTo initializes the global logger on the given writer
func InitDefaultLoggerTo(out io.Writer) error {
	if out == nil {
		return fmt.Errorf("logger output is nil")
	}
	DefaultLogger = NewRFC5424Logger(AppName, out)
	return nil
}

// Convenience functions using the global logger

// LogInfo logs an informational message using the default logger
func LogInfo(message string, meta map[string]string) {
	if DefaultLogger != nil {
		DefaultLogger.LogInfo(message, meta)
	}
}

// LogWarn logs a warning message using the default logger
func LogWarn(message string, meta map[string]string) {
	if DefaultLogger != nil {
		DefaultLogger.LogWarn(message, meta)
	}
}

// LogError logs an error message using the default logger
func LogError(message string, meta map[string]string) {
	if DefaultLogger != nil {
		DefaultLogger.LogError(message, meta)
	}
}

// LogDebug logs a debug message using the default logger
func LogDebug(message string, meta map[string]string) {
	if DefaultLogger != nil {
		DefaultLogger.LogDebug(message, meta)
	}
}

// SetLevel changes the level of the default logger
func SetLevel(level string) {
	if DefaultLogger != nil {
		DefaultLogger.SetLevel(ParseLevel(level))
	}
}

// GetLogs returns logs from the default logger
func GetLogs() []string {
	if DefaultLogger != nil {
		return DefaultLogger.GetLogs()
	}
	return []string{}
}

// ClearLogs clears logs from the default logger
func ClearLogs() {
	if DefaultLogger != nil {
		DefaultLogger.ClearLogs()
	}
}
