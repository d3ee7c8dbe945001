package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "TOPICMESH_"

// LookupFunc 环境变量查询函数，签名与 os.LookupEnv 一致
type LookupFunc func(key string) (string, bool)

// ============================================================================
//                              文件加载
// ============================================================================

// LoadFile 从文件加载配置并覆盖当前值
//
// 按扩展名选择格式：.yaml / .yml 使用 YAML，其余使用 JSON。
// 文件中未出现的字段保持原值（通常是默认值）。
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse json config: %w", err)
		}
	}
	return nil
}

// FromJSON 从 JSON 创建配置（基于默认值）
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToJSON 序列化为 JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// LoadDotEnv 加载 .env 文件到进程环境
//
// 文件不存在时静默跳过；已存在的环境变量不会被覆盖。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ============================================================================
//                              环境变量覆盖
// ============================================================================

// ApplyEnv 应用 TOPICMESH_* 环境变量覆盖
//
// 支持的变量：
//
//	TOPICMESH_LOG_LEVEL, TOPICMESH_LOG_FORMAT, TOPICMESH_LOG_FILE
//	TOPICMESH_DIRECTORY_LISTEN, TOPICMESH_DIRECTORY_METRICS_TTL
//	TOPICMESH_PEER_LISTEN, TOPICMESH_PEER_ADVERTISE, TOPICMESH_PEER_DIRECTORY_URL
//	TOPICMESH_PEER_FORWARD_TIMEOUT, TOPICMESH_PEER_DIRECTORY_TIMEOUT
//	TOPICMESH_PROMETHEUS (true/false，同时作用于目录和节点)
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = Duration(d)
		return nil
	}

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("LOG_FILE", &c.Log.File)
	str("DIRECTORY_LISTEN", &c.Directory.ListenAddr)
	str("PEER_LISTEN", &c.Peer.ListenAddr)
	str("PEER_ADVERTISE", &c.Peer.AdvertiseAddr)
	str("PEER_DIRECTORY_URL", &c.Peer.DirectoryURL)

	if err := dur("DIRECTORY_METRICS_TTL", &c.Directory.MetricsTTL); err != nil {
		return err
	}
	if err := dur("PEER_FORWARD_TIMEOUT", &c.Peer.ForwardTimeout); err != nil {
		return err
	}
	if err := dur("PEER_DIRECTORY_TIMEOUT", &c.Peer.DirectoryTimeout); err != nil {
		return err
	}

	if v, ok := lookup(EnvPrefix + "PROMETHEUS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sPROMETHEUS: %w", EnvPrefix, err)
		}
		c.Directory.EnablePrometheus = b
		c.Peer.EnablePrometheus = b
	}

	return nil
}
