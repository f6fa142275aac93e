// 包 logger：统一初始化与获取日志器，避免各模块重复配置；通过环境变量或命令行控制日志级别、格式与输出目标
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 默认日志器：在进程级复用，避免多处初始化导致输出不一致
var (
	mu            sync.RWMutex
	defaultLogger *zap.SugaredLogger
)

// Setup：按环境变量初始化默认日志器
// 背景：集中化日志配置，便于按环境统一调整级别与格式
// 约束：LOG_FILE 打开失败时回退到标准错误，不中断启动
func Setup() *zap.SugaredLogger {
	l, err := Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Getenv("LOG_FILE"))
	if err != nil {
		l, _ = Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), "")
		l.Warnw("log_file_open_error", "path", os.Getenv("LOG_FILE"), "err", err)
	}
	return l
}

// Configure：以显式参数初始化默认日志器
// 背景：命令行入口在读取配置文件后调用；终端界面运行时需把日志写入文件，避免覆盖画面
// 约束：level 取 debug/info/warn/error，未知值按 info；format 为 json 时输出 JSON，否则为控制台格式
func Configure(level, format, path string) (*zap.SugaredLogger, error) {
	lvl := zapcore.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if strings.ToLower(format) == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	out := zapcore.Lock(os.Stderr)
	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = zapcore.AddSync(f)
	}
	l := zap.New(zapcore.NewCore(enc, out, lvl)).Sugar()
	Set(l)
	return l, nil
}

// Set：替换默认日志器
// 背景：测试中注入观察者日志器以断言输出
func Set(l *zap.SugaredLogger) {
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

// L：获取默认日志器
// 背景：为业务代码提供快捷访问；若未初始化则回退到 Setup
func L() *zap.SugaredLogger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l == nil {
		return Setup()
	}
	return l
}

// Sync：退出前刷新缓冲
func Sync() {
	_ = L().Sync()
}
