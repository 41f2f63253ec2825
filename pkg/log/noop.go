package log

// noopLogger discards all messages.
type noopLogger struct{}

// NewNoop returns a Logger that discards everything.
func NewNoop() Logger { return noopLogger{} }

func (noopLogger) Debug(string, ...Field)    {}
func (noopLogger) Info(string, ...Field)     {}
func (noopLogger) Warn(string, ...Field)     {}
func (noopLogger) Error(string, ...Field)    {}
func (noopLogger) With(...Field) Logger      { return noopLogger{} }
