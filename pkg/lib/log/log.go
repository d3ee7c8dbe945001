// Package log 提供 topicmesh 统一日志接口
//
// 基于 Go 标准库 log/slog 封装，按组件输出结构化日志。
// 日志文件输出通过 lumberjack 滚动切割。
//
// 使用方式：
//
//	var logger = log.Logger("directory/store")
//	logger.Info("节点已注册", "node", id, "topics", len(topics))
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format 日志输出格式
type Format string

const (
	// FormatText 文本格式（默认）
	FormatText Format = "text"
	// FormatJSON JSON 格式
	FormatJSON Format = "json"
)

var setupMu sync.Mutex

// ============================================================================
//                              输出配置
// ============================================================================

// Options 日志输出配置
type Options struct {
	// Level 日志级别
	Level slog.Level

	// Format 输出格式
	Format Format

	// File 日志文件路径；为空时输出到 stderr
	File string

	// MaxSizeMB 单个日志文件最大尺寸（MB）
	MaxSizeMB int

	// MaxBackups 保留的旧日志文件数
	MaxBackups int

	// MaxAgeDays 旧日志文件保留天数
	MaxAgeDays int
}

// Setup 根据配置设置默认 logger
//
// 返回的 io.Closer 用于在退出时关闭日志文件（stderr 输出时为 nil）。
func Setup(opts Options) (io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer
	)

	if opts.File != "" {
		rw := NewRotatingWriter(opts.File, opts.MaxSizeMB, opts.MaxBackups, opts.MaxAgeDays)
		w = rw
		closer = rw
	}

	setupMu.Lock()
	defer setupMu.Unlock()

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var handler slog.Handler
	switch opts.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, handlerOpts)
	case FormatText, "":
		handler = slog.NewTextHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	slog.SetDefault(slog.New(handler))
	return closer, nil
}

// NewRotatingWriter 创建按尺寸滚动的日志文件 Writer
func NewRotatingWriter(path string, maxSizeMB, maxBackups, maxAgeDays int) *lumberjack.Logger {
	if maxSizeMB <= 0 {
		maxSizeMB = 100
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
}

// SetOutput 设置日志输出目标（文本格式）
//
// 常用于测试中捕获日志。
func SetOutput(w io.Writer, level slog.Level) {
	setupMu.Lock()
	defer setupMu.Unlock()
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时都从 slog.Default() 获取最新的 handler，
// 因此包级变量可以在 Setup 之前声明。
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) base() *slog.Logger {
	return slog.Default().With("component", l.component)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.base().Debug(msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.base().Info(msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.base().Warn(msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.base().Error(msg, args...)
}

// With 添加额外的属性
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return l.base().With(args...)
}

// Component 返回组件名
func (l *LazyLogger) Component() string {
	return l.component
}
