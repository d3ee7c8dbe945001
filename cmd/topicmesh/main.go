// Package main 提供 topicmesh 命令行入口
//
// 子命令：
//   - directory  运行目录服务
//   - peer       运行节点
//   - version    显示版本信息
//
// 配置优先级（低 → 高）：默认值 → 配置文件 → .env / TOPICMESH_* 环境变量 → 命令行参数。
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-topicmesh/config"
	"github.com/dep2p/go-topicmesh/pkg/lib/log"
)

var logger = log.Logger("cmd")

// 全局参数
var (
	configPath string
	envFiles   []string
	logLevel   string
	logFormat  string
	logFile    string
	fxDebug    bool
)

var rootCmd = &cobra.Command{
	Use:   "topicmesh",
	Short: "Peer-to-peer pub/sub overlay coordinated by a directory service",
	Long: `topicmesh runs either the directory service, which maps topics to the
node hosting them, or a peer node, which hosts topics, buffers messages and
forwards subscriptions to the owning peer.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file (.json / .yaml)")
	pf.StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to load before reading TOPICMESH_* variables")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug/info/warn/error)")
	pf.StringVar(&logFormat, "log-format", "", "log format (text/json)")
	pf.StringVar(&logFile, "log-file", "", "log file path (rotated); empty logs to stderr")
	pf.BoolVar(&fxDebug, "fx-debug", false, "print dependency injection events")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// ============================================================================
//                              公共流程
// ============================================================================

// loadConfig 按优先级加载配置（不含子命令参数）
func loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()

	if configPath != "" {
		if err := cfg.LoadFile(configPath); err != nil {
			return nil, err
		}
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	return cfg, nil
}

// setupLogging 根据配置初始化日志
func setupLogging(cfg config.LogConfig) (io.Closer, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return log.Setup(log.Options{
		Level:      level,
		Format:     log.Format(cfg.Format),
		File:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
	})
}

// signalContext 返回在收到 SIGINT / SIGTERM 时取消的上下文
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// closeQuietly 关闭日志文件
func closeQuietly(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
	}
}
