package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Params struct {
	// Level is one of trace, debug, info, warn, error. Unknown values mean info.
	Level string
	// File, when set, receives rotated logs. A missing .log suffix is added.
	File string
	// Stdout also writes to Stderr when File is set. Ignored otherwise.
	Stdout bool
	JSON   bool
	// Output replaces os.Stderr as the console stream. Used by tests.
	Output io.Writer
}

// New builds a logger from p. The returned close func flushes and closes
// the rotating file, if any.
func New(p Params) (*logrus.Logger, func() error) {
	logger := logrus.New()
	closeFn := Setup(logger, p)
	return logger, closeFn
}

// Setup configures logger in place.
func Setup(logger *logrus.Logger, p Params) func() error {
	if p.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logger.SetLevel(GetLevel(p.Level))

	console := p.Output
	if console == nil {
		console = os.Stderr
	}

	if p.File == "" {
		logger.SetOutput(console)
		return func() error { return nil }
	}

	if !strings.HasSuffix(p.File, ".log") {
		p.File += ".log"
	}
	lumberJackLogger := &lumberjack.Logger{
		Filename:  p.File,
		MaxSize:   20, // megabytes
		MaxAge:    90, // days
		LocalTime: false,
		Compress:  true,
	}

	if p.Stdout {
		logger.SetOutput(io.MultiWriter(console, lumberJackLogger))
	} else {
		logger.SetOutput(lumberJackLogger)
	}
	return lumberJackLogger.Close
}

func GetLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}
