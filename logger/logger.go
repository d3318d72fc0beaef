package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 是全局可用的 SugaredLogger；未初始化时为 nop，库代码与测试可直接使用
var Log = zap.NewNop().Sugar()

// Init 按级别初始化全局日志
// filePath 为空时写到 stderr，否则写入滚动文件（10MB/文件，3 个备份，7 天）
func Init(filePath, level string) error {
	lvl := zapcore.DebugLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return err
		}
	}

	var sink zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if filePath != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		})
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = "ts"
	enc.StacktraceKey = "stack"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), sink, lvl)

	Log = zap.New(core, zap.AddCaller()).Sugar()
	return nil
}

// Named 返回带模块名的子 logger
func Named(name string) *zap.SugaredLogger { return Log.Named(name) }

// Sync 刷新缓冲
func Sync() { _ = Log.Sync() }
