package logging

import "github.com/rs/zerolog"

// InternalLogger is used by background tasks and directory fetchers for logging.
// It decouples them from zerolog so their output can also be kept in the task log.
type InternalLogger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

var _ InternalLogger = ZLogger{}

// ZLogger writes to a zerolog logger.
type ZLogger struct {
	ZLog zerolog.Logger
}

func NewZLogger(zlog zerolog.Logger) ZLogger {
	return ZLogger{ZLog: zlog}
}

func (l ZLogger) log(level zerolog.Level, format string, args ...any) {
	l.ZLog.WithLevel(level).Msgf(format, args...)
}

func (l ZLogger) Debug(format string, args ...any) { l.log(zerolog.DebugLevel, format, args...) }
func (l ZLogger) Info(format string, args ...any)  { l.log(zerolog.InfoLevel, format, args...) }
func (l ZLogger) Warn(format string, args ...any)  { l.log(zerolog.WarnLevel, format, args...) }
func (l ZLogger) Error(format string, args ...any) { l.log(zerolog.ErrorLevel, format, args...) }

var _ InternalLogger = MultiLogger{}

// MultiLogger fans every line out to all loggers, in order.
type MultiLogger struct {
	Loggers []InternalLogger
}

func NewMultiLogger(loggers ...InternalLogger) MultiLogger {
	return MultiLogger{Loggers: loggers}
}

func (l MultiLogger) each(fn func(InternalLogger)) {
	for _, logger := range l.Loggers {
		fn(logger)
	}
}

func (l MultiLogger) Debug(format string, args ...any) {
	l.each(func(o InternalLogger) { o.Debug(format, args...) })
}

func (l MultiLogger) Info(format string, args ...any) {
	l.each(func(o InternalLogger) { o.Info(format, args...) })
}

func (l MultiLogger) Warn(format string, args ...any) {
	l.each(func(o InternalLogger) { o.Warn(format, args...) })
}

func (l MultiLogger) Error(format string, args ...any) {
	l.each(func(o InternalLogger) { o.Error(format, args...) })
}
