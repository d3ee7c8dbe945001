package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate 验证整个配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Directory.Validate(); err != nil {
		return fmt.Errorf("directory: %w", err)
	}
	if err := c.Peer.Validate(); err != nil {
		return fmt.Errorf("peer: %w", err)
	}
	return nil
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown level %q", c.Level)
	}
	switch c.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}

// Validate 验证目录服务配置
func (c DirectoryConfig) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if c.MetricsCacheSize <= 0 {
		return errors.New("metrics_cache_size must be positive")
	}
	if c.MetricsTTL < 0 {
		return errors.New("metrics_ttl must be non-negative")
	}
	return nil
}

// Validate 验证节点配置
func (c PeerConfig) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if c.ForwardTimeout <= 0 {
		return errors.New("forward_timeout must be positive")
	}
	if c.DirectoryTimeout <= 0 {
		return errors.New("directory_timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown_timeout must be positive")
	}
	for name, raw := range map[string]string{
		"advertise_addr": c.AdvertiseAddr,
		"directory_url":  c.DirectoryURL,
	} {
		if raw == "" {
			continue
		}
		if err := validateHTTPURL(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// validateHTTPURL 检查是否为 http(s) 绝对地址
func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is required")
	}
	return nil
}
