package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process wide logger. It discards everything until InitLogging is called.
var Logger = zap.NewNop()

// InitLogging - initialize the logging submodule.
// mode "development" logs at debug level to stdout as well as to logFile;
// any other mode logs at info level. An empty logFile logs to stdout only.
func InitLogging(mode, logFile string) (*zap.Logger, error) {
	var cfg zap.Config
	if mode != "development" {
		cfg = zap.NewProductionConfig()
		cfg.DisableCaller = true
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.LevelKey = "level"
		cfg.EncoderConfig.NameKey = "name"
		cfg.EncoderConfig.MessageKey = "msg"
		cfg.EncoderConfig.CallerKey = "caller"
		cfg.EncoderConfig.StacktraceKey = "stacktrace"
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var ws zapcore.WriteSyncer = zapcore.AddSync(os.Stdout)
	if logFile != "" {
		fileWriter := getWriteSyncer(logFile)
		if mode == "development" {
			ws = zapcore.NewMultiWriteSyncer(ws, fileWriter)
		} else {
			ws = fileWriter
		}
	}

	core := zapcore.NewCore(getEncoder(cfg), ws, cfg.Level)
	l, err := cfg.Build(zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))
	if err != nil {
		return nil, err
	}
	Logger = l
	return l, nil
}

func getEncoder(conf zap.Config) zapcore.Encoder {
	var enc zapcore.Encoder
	switch conf.Encoding {
	case "json":
		enc = zapcore.NewJSONEncoder(conf.EncoderConfig)
	case "console":
		enc = zapcore.NewConsoleEncoder(conf.EncoderConfig)
	default:
		panic("unknown encoding")
	}
	return enc
}

func getWriteSyncer(logName string) zapcore.WriteSyncer {
	var ioWriter = &lumberjack.Logger{
		Filename:   logName,
		MaxSize:    100, // MB
		MaxBackups: 5,   // number of backups
		MaxAge:     28,  // days
		LocalTime:  false,
		Compress:   false,
	}
	return zapcore.AddSync(ioWriter)
}

// LogError records a failure of a named processing stage.
func LogError(stage string, err error) {
	Logger.Error("stage failed", zap.String("stage", stage), zap.Error(err))
}
