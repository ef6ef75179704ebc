package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"Sonicbar/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalLogger *zap.Logger
	once         sync.Once

	// 终端输出的级别可以在运行时调高，交互式控制台需要安静的 stderr
	consoleLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// LogLevel 定义日志级别
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// Config 定义日志配置
type Config struct {
	Level      LogLevel
	OutputPath string // 为空时只写终端
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// FromAppConfig 从应用配置构造日志配置
func FromAppConfig(cfg *config.Config) Config {
	return Config{
		Level:      LogLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel))),
		OutputPath: cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel, "warning":
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitLogger 初始化日志系统。终端是可读格式并写 stderr，stdout 留给
// 播放器；文件是 JSON，由 lumberjack 轮转。
func InitLogger(config Config) {
	once.Do(func() {
		level := config.Level.zapLevel()
		consoleLevel.SetLevel(level)

		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
		encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

		termConfig := encoderConfig
		termConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		termConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		termConfig.CallerKey = zapcore.OmitKey

		cores := []zapcore.Core{
			zapcore.NewCore(zapcore.NewConsoleEncoder(termConfig), zapcore.Lock(os.Stderr), consoleLevel),
		}

		if config.OutputPath != "" {
			if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0o755); err != nil {
				// 文件日志不可用时仍然可以运行
				os.Stderr.WriteString("logger: " + err.Error() + "\n")
			} else {
				fileWriter := zapcore.AddSync(&lumberjack.Logger{
					Filename:   config.OutputPath,
					MaxSize:    config.MaxSize,
					MaxBackups: config.MaxBackups,
					MaxAge:     config.MaxAge,
					Compress:   config.Compress,
				})
				cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level))
			}
		}

		globalLogger = zap.New(zapcore.NewTee(cores...),
			zap.AddCaller(),
			zap.AddCallerSkip(1), // 跳过本包的包装函数
			zap.AddStacktrace(zapcore.ErrorLevel),
		)
	})
}

// SetConsoleLevel changes the stderr threshold only; the log file keeps
// the configured level.
func SetConsoleLevel(l LogLevel) {
	consoleLevel.SetLevel(l.zapLevel())
}

// Sync 刷新缓冲日志，进程退出前调用
func Sync() {
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}

func Debug(msg string, fields ...zap.Field) {
	if globalLogger != nil {
		globalLogger.Debug(msg, fields...)
	}
}

func Info(msg string, fields ...zap.Field) {
	if globalLogger != nil {
		globalLogger.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...zap.Field) {
	if globalLogger != nil {
		globalLogger.Warn(msg, fields...)
	}
}

func Error(msg string, fields ...zap.Field) {
	if globalLogger != nil {
		globalLogger.Error(msg, fields...)
	}
}

// 字段
func String(key string, val string) zap.Field { return zap.String(key, val) }

func Int(key string, val int) zap.Field { return zap.Int(key, val) }

func Int64(key string, val int64) zap.Field { return zap.Int64(key, val) }

func Bool(key string, val bool) zap.Field { return zap.Bool(key, val) }

func Any(key string, val interface{}) zap.Field { return zap.Any(key, val) }

// ErrorField 创建错误字段
func ErrorField(err error) zap.Field {
	return zap.Error(err)
}
