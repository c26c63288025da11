package logger

type nopLogger struct{}

// NewNopLogger returns a logger that discards everything. Useful in tests.
func NewNopLogger() Logger {
	return &nopLogger{}
}

func (n *nopLogger) Debug(msg string)                       {}
func (n *nopLogger) Debugf(format string, args ...any)      {}
func (n *nopLogger) Info(msg string)                        {}
func (n *nopLogger) Infof(format string, args ...any)       {}
func (n *nopLogger) Warn(msg string)                        {}
func (n *nopLogger) Warnf(format string, args ...any)       {}
func (n *nopLogger) Error(msg string)                       {}
func (n *nopLogger) Errorf(format string, args ...any)      {}
func (n *nopLogger) Fatal(msg string)                       {}
func (n *nopLogger) Fatalf(format string, args ...any)      {}
func (n *nopLogger) WithField(key string, value any) Logger { return n }
func (n *nopLogger) WithFields(fields Fields) Logger        { return n }
