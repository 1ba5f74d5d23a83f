package logger

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLogFilePerm = 0o644
	defaultLogDirPerm  = 0o755
)

// TodayFilename returns the daily log filename for now.
func TodayFilename(now time.Time) string {
	return "stdout_" + now.Format("1-2-06") + ".log"
}

// DailyWriter appends to a log file that rolls over at midnight.
type DailyWriter struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// NewDailyWriter creates dir if needed and returns a writer into it.
func NewDailyWriter(dir string) (*DailyWriter, error) {
	if err := os.MkdirAll(dir, defaultLogDirPerm); err != nil {
		return nil, err
	}
	return &DailyWriter{dir: dir, now: time.Now}, nil
}

// Path returns the file written to at the current time.
func (w *DailyWriter) Path() string {
	return filepath.Join(w.dir, TodayFilename(w.now()))
}

func (w *DailyWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	file, err := os.OpenFile(w.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, defaultLogFilePerm)
	if err != nil {
		return 0, err
	}

	n, writeErr := file.Write(p)
	closeErr := file.Close()
	if writeErr != nil {
		return n, writeErr
	}
	return n, closeErr
}

func (w *DailyWriter) Sync() error {
	return nil
}

// NewZapLogger creates a console-encoded zap logger writing to stdout and a
// daily file under dir. Debug level is enabled when debug is set.
func NewZapLogger(dir string, debug bool) (*zap.Logger, error) {
	writer, err := NewDailyWriter(dir)
	if err != nil {
		return nil, err
	}

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		level.SetLevel(zap.DebugLevel)
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")

	encoder := zapcore.NewConsoleEncoder(encoderConfig)
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(encoder, zapcore.AddSync(writer), level),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	_ = zap.RedirectStdLog(logger)
	return logger, nil
}

// MustNew returns NewZapLogger or, when the file sink is unusable, a
// production logger writing to stderr.
func MustNew(dir string, debug bool) *zap.Logger {
	if l, err := NewZapLogger(dir, debug); err == nil {
		return l
	}
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	l.Warn("file logger unavailable, falling back to stderr", zap.String("dir", dir))
	return l
}
