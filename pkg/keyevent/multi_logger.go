package keyevent

// MultiLogger fans an event out to several Loggers — typically a
// SlogAdapter for console output and a FileLogger for a durable
// record. Adapted from the teacher's pkg/log.MultiLogger.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger sending to all of loggers.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log sends event to every configured logger.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
