package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger = logrus.New()

// Init configures the shared logger. With a file path it writes rotated JSON
// logs there as well as stderr; with an empty path it logs to stderr only.
func Init(logFile string) {
	Logger.SetFormatter(&logrus.JSONFormatter{})
	Logger.SetLevel(logrus.InfoLevel)

	if logFile == "" {
		Logger.SetOutput(os.Stderr)
		return
	}

	rotated := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	Logger.SetOutput(io.MultiWriter(os.Stderr, rotated))
}
