// Package logger holds the process-wide zap logger. Until Init or Use is
// called every helper is a no-op, so packages can log unconditionally.
package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	L       *zap.Logger
	S       *zap.SugaredLogger
	logFile *os.File
)

// Init opens the log file from logPath, truncating it, and installs a
// console-encoded logger at Info, or Debug when debug is set.
func Init(debug bool) error {
	path, err := logPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	logFile = f

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(f), level)

	Use(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)))
	S.Infow("logger initialized", "path", path, "level", level.String())
	return nil
}

// Use installs l, e.g. an observer core in tests.
func Use(l *zap.Logger) {
	L = l
	S = l.Sugar()
}

// Close flushes the logger and closes the log file.
func Close() {
	if L != nil {
		_ = L.Sync()
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// logPath is $VTEXT_LOG_FILE, else vtext.log in the config directory.
func logPath() (string, error) {
	if v := os.Getenv("VTEXT_LOG_FILE"); v != "" {
		return v, nil
	}
	dir := os.Getenv("VTEXT_CONFIG_HOME")
	if dir == "" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			dir = filepath.Join(xdg, "vtext")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dir = filepath.Join(home, ".config", "vtext")
		}
	}
	return filepath.Join(dir, "vtext.log"), nil
}

func Debug(msg string, keysAndValues ...any) {
	if S != nil {
		S.Debugw(msg, keysAndValues...)
	}
}

func Info(msg string, keysAndValues ...any) {
	if S != nil {
		S.Infow(msg, keysAndValues...)
	}
}

func Warn(msg string, keysAndValues ...any) {
	if S != nil {
		S.Warnw(msg, keysAndValues...)
	}
}

func Error(msg string, keysAndValues ...any) {
	if S != nil {
		S.Errorw(msg, keysAndValues...)
	}
}
