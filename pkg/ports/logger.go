// Package ports defines the interfaces and value types shared between
// the decode subsystem, the scanner and their adapters.
package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for component-level internal processing logs
	// (per-request decode details, scan progress per file).
	LevelDebug LogLevel = iota
	// LevelInfo is for coarse progress messages.
	LevelInfo
	// LevelWarn is for recoverable problems (a file that failed to
	// probe, a decode that produced no frame).
	LevelWarn
	// LevelError is for problems that stop an operation.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a string into a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger abstracts logging operations. Background decode loops log
// through this interface only; they never write to the terminal
// directly.
type Logger interface {
	// Debug logs a debug message with optional format arguments.
	// The msg parameter is a message key that can be translated.
	Debug(msg string, args ...interface{})

	// Info logs an informational message.
	Info(msg string, args ...interface{})

	// Warn logs a warning message.
	Warn(msg string, args ...interface{})

	// Error logs an error message.
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the
	// component name.
	WithComponent(component string) Logger
}
