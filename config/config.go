// Package config 提供统一的配置管理
//
// 本包采用与命令行分层的配置模式：
//   - 主 Config 结构体嵌入所有子配置（日志、目录服务、节点）
//   - 支持从 JSON / YAML 文件加载
//   - 支持 TOPICMESH_* 环境变量覆盖（可由 .env 文件提供）
//   - 命令行参数具有最高优先级（由 cmd 层应用）
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	if err := cfg.LoadFile("topicmesh.yaml"); err != nil { ... }
//	if err := cfg.ApplyEnv(os.LookupEnv); err != nil { ... }
//	if err := cfg.Validate(); err != nil { ... }
package config

import "time"

// Config topicmesh 的完整配置结构
type Config struct {
	// Log 日志配置
	Log LogConfig `json:"log" yaml:"log"`

	// Directory 目录服务配置
	Directory DirectoryConfig `json:"directory" yaml:"directory"`

	// Peer 节点配置
	Peer PeerConfig `json:"peer" yaml:"peer"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别 (debug/info/warn/error)
	Level string `json:"level" yaml:"level"`

	// Format 输出格式 (text/json)
	Format string `json:"format" yaml:"format"`

	// File 日志文件路径，为空输出到 stderr
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// MaxSizeMB 单个文件最大尺寸
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups 保留旧文件数
	MaxBackups int `json:"max_backups" yaml:"max_backups"`

	// MaxAgeDays 旧文件保留天数
	MaxAgeDays int `json:"max_age_days" yaml:"max_age_days"`
}

// DirectoryConfig 目录服务配置
type DirectoryConfig struct {
	// ListenAddr HTTP 监听地址
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`

	// MetricsCacheSize 保留上报指标的最大节点数
	MetricsCacheSize int `json:"metrics_cache_size" yaml:"metrics_cache_size"`

	// MetricsTTL 上报指标的保留时长
	MetricsTTL Duration `json:"metrics_ttl" yaml:"metrics_ttl"`

	// EnablePrometheus 是否暴露 /metrics/prometheus
	EnablePrometheus bool `json:"enable_prometheus" yaml:"enable_prometheus"`
}

// PeerConfig 节点配置
type PeerConfig struct {
	// ListenAddr HTTP 监听地址
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`

	// AdvertiseAddr 注册到目录的可达地址（如 http://10.0.0.2:8081）
	// 为空时由监听地址推导
	AdvertiseAddr string `json:"advertise_addr,omitempty" yaml:"advertise_addr,omitempty"`

	// DirectoryURL 目录服务地址；非空时启动即初始化并注册
	DirectoryURL string `json:"directory_url,omitempty" yaml:"directory_url,omitempty"`

	// ForwardTimeout 转发订阅的超时
	ForwardTimeout Duration `json:"forward_timeout" yaml:"forward_timeout"`

	// DirectoryTimeout 访问目录服务的超时
	DirectoryTimeout Duration `json:"directory_timeout" yaml:"directory_timeout"`

	// ShutdownTimeout 关闭时注销与停止服务的总超时
	ShutdownTimeout Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`

	// EnablePrometheus 是否暴露 /metrics/prometheus
	EnablePrometheus bool `json:"enable_prometheus" yaml:"enable_prometheus"`
}

// ============================================================================
//                              默认值
// ============================================================================

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Log:       DefaultLogConfig(),
		Directory: DefaultDirectoryConfig(),
		Peer:      DefaultPeerConfig(),
	}
}

// DefaultLogConfig 默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "text",
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 7,
	}
}

// DefaultDirectoryConfig 默认目录服务配置
func DefaultDirectoryConfig() DirectoryConfig {
	return DirectoryConfig{
		ListenAddr:       ":8080",
		MetricsCacheSize: 1024,
		MetricsTTL:       Duration(30 * time.Minute),
		EnablePrometheus: true,
	}
}

// DefaultPeerConfig 默认节点配置
//
// 转发超时取 5 秒：远端节点无响应时订阅请求不会无限阻塞。
func DefaultPeerConfig() PeerConfig {
	return PeerConfig{
		ListenAddr:       ":8081",
		ForwardTimeout:   Duration(5 * time.Second),
		DirectoryTimeout: Duration(5 * time.Second),
		ShutdownTimeout:  Duration(10 * time.Second),
		EnablePrometheus: true,
	}
}
