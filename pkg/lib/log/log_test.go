package log

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseLevel 测试级别解析
func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for name, want := range cases {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

// TestLazyLogger_UsesCurrentDefault 测试 LazyLogger 使用最新的默认 handler
func TestLazyLogger_UsesCurrentDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	l := Logger("test/component")

	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelDebug)

	l.Info("hello", "k", "v")
	out := buf.String()
	assert.Contains(t, out, "component=test/component")
	assert.Contains(t, out, "k=v")
	assert.Equal(t, "test/component", l.Component())
}

// TestSetup_File 测试文件输出
func TestSetup_File(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	path := filepath.Join(t.TempDir(), "topicmesh.log")
	closer, err := Setup(Options{Level: slog.LevelInfo, Format: FormatJSON, File: path})
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()

	Logger("file").Info("written")
	assert.FileExists(t, path)
}

// TestSetup_UnknownFormat 测试未知格式
func TestSetup_UnknownFormat(t *testing.T) {
	_, err := Setup(Options{Format: "xml"})
	assert.Error(t, err)
}
