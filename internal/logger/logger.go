package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Root is the name of the application logger. Components log under it,
// e.g. "pipeboard.careers".
const Root = "pipeboard"

// Component logger names.
const (
	ComponentCareers = "careers"
	ComponentBoard   = "kanban"
	ComponentSandbox = "sandbox"
)

// New builds the application logger: console or JSON encoding, info or debug
// level, written to stderr so that rendered boards on stdout stay readable.
func New(json bool, debug bool) (*zap.Logger, error) {
	logger, err := config(json, debug).Build()
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	return logger.Named(Root), nil
}

// Component returns the logger of a named component, a no-op logger when l is nil.
func Component(l *zap.Logger, name string) *zap.Logger {
	return WithFields(l).Named(name)
}

func config(json bool, debug bool) zap.Config {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoder := zapcore.EncoderConfig{
		MessageKey: "msg",
		NameKey:    "logger",
		EncodeName: zapcore.FullNameEncoder,

		LevelKey:    "level",
		EncodeLevel: zapcore.LowercaseLevelEncoder,

		TimeKey:    "time",
		EncodeTime: zapcore.RFC3339TimeEncoder,

		CallerKey:    "caller",
		EncodeCaller: zapcore.ShortCallerEncoder,

		StacktraceKey:  "stacktrace",
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	encoding := "console"
	if json {
		encoding = "json"
	} else {
		// Terminal sessions like watch only need the wall clock.
		encoder.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	}

	return zap.Config{
		Encoding:          encoding,
		Level:             zap.NewAtomicLevelAt(level),
		DisableStacktrace: !debug,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		EncoderConfig:     encoder,
	}
}
