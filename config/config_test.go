package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig_Defaults 测试默认配置
func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Directory.ListenAddr)
	assert.Equal(t, ":8081", cfg.Peer.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.Peer.ForwardTimeout.Duration())
	assert.True(t, cfg.Directory.EnablePrometheus)
}

// TestValidate_Errors 测试无效配置
func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"empty directory listen", func(c *Config) { c.Directory.ListenAddr = "" }},
		{"zero cache", func(c *Config) { c.Directory.MetricsCacheSize = 0 }},
		{"zero forward timeout", func(c *Config) { c.Peer.ForwardTimeout = 0 }},
		{"bad advertise scheme", func(c *Config) { c.Peer.AdvertiseAddr = "ftp://x:1" }},
		{"advertise without host", func(c *Config) { c.Peer.AdvertiseAddr = "http://" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

// TestLoadFile_JSON 测试 JSON 文件加载
func TestLoadFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topicmesh.json")
	data := `{"peer": {"listen_addr": ":9001", "forward_timeout": "2s"}, "log": {"level": "debug"}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, ":9001", cfg.Peer.ListenAddr)
	assert.Equal(t, 2*time.Second, cfg.Peer.ForwardTimeout.Duration())
	assert.Equal(t, "debug", cfg.Log.Level)
	// 未出现的字段保持默认值
	assert.Equal(t, ":8080", cfg.Directory.ListenAddr)
}

// TestLoadFile_YAML 测试 YAML 文件加载
func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topicmesh.yaml")
	data := "directory:\n  listen_addr: \":7000\"\n  metrics_ttl: 1m\npeer:\n  directory_url: http://127.0.0.1:7000\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, ":7000", cfg.Directory.ListenAddr)
	assert.Equal(t, time.Minute, cfg.Directory.MetricsTTL.Duration())
	assert.Equal(t, "http://127.0.0.1:7000", cfg.Peer.DirectoryURL)
	require.NoError(t, cfg.Validate())
}

// TestLoadFile_Missing 测试文件不存在
func TestLoadFile_Missing(t *testing.T) {
	cfg := NewConfig()
	assert.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "nope.json")))
}

// TestApplyEnv 测试环境变量覆盖
func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TOPICMESH_LOG_LEVEL":            "warn",
		"TOPICMESH_PEER_LISTEN":          ":9100",
		"TOPICMESH_PEER_DIRECTORY_URL":   "http://dir:8080",
		"TOPICMESH_PEER_FORWARD_TIMEOUT": "750ms",
		"TOPICMESH_PROMETHEUS":           "false",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := NewConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":9100", cfg.Peer.ListenAddr)
	assert.Equal(t, "http://dir:8080", cfg.Peer.DirectoryURL)
	assert.Equal(t, 750*time.Millisecond, cfg.Peer.ForwardTimeout.Duration())
	assert.False(t, cfg.Peer.EnablePrometheus)
	assert.False(t, cfg.Directory.EnablePrometheus)
}

// TestApplyEnv_BadDuration 测试无效时长
func TestApplyEnv_BadDuration(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "TOPICMESH_PEER_FORWARD_TIMEOUT" {
			return "soon", true
		}
		return "", false
	}
	assert.Error(t, NewConfig().ApplyEnv(lookup))
}

// TestLoadDotEnv 测试 .env 加载
func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TOPICMESH_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TOPICMESH_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "loaded", os.Getenv("TOPICMESH_TEST_DOTENV"))
}

// TestDuration_JSON 测试 Duration JSON 编解码
func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.NoError(t, json.Unmarshal([]byte(`1000`), &d))
	assert.Equal(t, time.Microsecond, d.Duration())

	assert.Error(t, json.Unmarshal([]byte(`"later"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	out, err := json.Marshal(Duration(3 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"3s"`, string(out))
}
