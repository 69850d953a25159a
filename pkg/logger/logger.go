// Package logger
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var Log *zap.Logger
var m sync.Mutex

// Options configures the process-wide logger. LogFile may be empty, in
// which case only the console core is built.
type Options struct {
	Level   string
	LogFile string
}

// InitLogger builds the process-wide logger from opts. Console output
// always goes to stderr so it never collides with a job's own stdout;
// when LogFile is set, a second core writes the same records through a
// lumberjack-rotated sink, per SPEC_FULL.md's log sink component.
func InitLogger(opts Options) {
	m.Lock()
	defer m.Unlock()

	Log = newZapLogger(opts)
}

func Logging(prefix string) *zap.SugaredLogger {
	return Log.Named(prefix).Sugar()
}

func newZapLogger(opts Options) *zap.Logger {
	level := parseLevel(opts.Level)
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), level),
	}

	if opts.LogFile != "" {
		fileEncoder := zapcore.NewJSONEncoder(encoderCfg)
		rotator := &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(rotator), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.Set(level); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
