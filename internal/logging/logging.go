// Package logging builds the logrus logger used by the vctree command.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
)

const (
	logFileName      = "vctree.log"
	debugLogFileName = "vctree-debug.log"
)

// Config controls where logs go and how verbose they are.
type Config struct {
	// Level is a logrus level name. Empty means info.
	Level string `yaml:"level"`

	// Dir holds the log files. Empty means ~/.vctree, or the working
	// directory when there is no home directory.
	Dir string `yaml:"dir"`
}

// Logger is a configured logger together with the files it writes to.
type Logger struct {
	*logrus.Logger
	files []*os.File
}

// New creates a logger that writes JSON entries to two files: warnings and
// errors to vctree.log, everything else to vctree-debug.log.
func New(cfg Config) (*Logger, error) {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}

	dir, err := logDir(cfg.Dir)
	if err != nil {
		return nil, err
	}

	logFile, err := openLogFile(filepath.Join(dir, logFileName))
	if err != nil {
		return nil, err
	}
	debugLogFile, err := openLogFile(filepath.Join(dir, debugLogFileName))
	if err != nil {
		logFile.Close()
		return nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.AddHook(&writer.Hook{
		Writer: logFile,
		LogLevels: []logrus.Level{
			logrus.WarnLevel,
			logrus.ErrorLevel,
			logrus.FatalLevel,
			logrus.PanicLevel,
		},
	})
	logger.AddHook(&writer.Hook{
		Writer: debugLogFile,
		LogLevels: []logrus.Level{
			logrus.TraceLevel,
			logrus.DebugLevel,
			logrus.InfoLevel,
		},
	})

	return &Logger{Logger: logger, files: []*os.File{logFile, debugLogFile}}, nil
}

// Close closes the log files. It is meant for defer calls.
func (l *Logger) Close() error {
	var first error
	for _, f := range l.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func logDir(dir string) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ".", nil
		}
		dir = filepath.Join(home, ".vctree")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}
	return dir, nil
}

func openLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
