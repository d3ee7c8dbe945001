package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-topicmesh/config"
	"github.com/dep2p/go-topicmesh/internal/directory"
	"github.com/dep2p/go-topicmesh/internal/httpserver"
	"github.com/dep2p/go-topicmesh/internal/peer"
	"github.com/dep2p/go-topicmesh/internal/peer/lifecycle"
	"github.com/dep2p/go-topicmesh/pkg/types"
)

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Directory.ListenAddr = "127.0.0.1:0"
	cfg.Peer.ListenAddr = "127.0.0.1:0"
	return cfg
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// TestModules_UnknownRole 测试未知角色
func TestModules_UnknownRole(t *testing.T) {
	_, err := Modules("relay", testConfig(), Options{})
	assert.Error(t, err)
}

// TestModules_InvalidConfig 测试配置校验
func TestModules_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Directory.ListenAddr = ""
	_, err := New(RoleDirectory, cfg, Options{})
	assert.Error(t, err)
}

// TestDirectoryApp 测试目录服务应用的装配与启动
func TestDirectoryApp(t *testing.T) {
	var (
		server *httpserver.Server
		svc    *directory.Service
	)
	modules, err := Modules(RoleDirectory, testConfig(), Options{
		Extra: []fx.Option{fx.Populate(&server, &svc)},
	})
	require.NoError(t, err)

	app := fxtest.New(t, modules...)
	app.RequireStart()
	defer app.RequireStop()

	_, err = svc.Register("p1", "", []types.TopicName{"news"})
	require.NoError(t, err)

	base := "http://" + server.Addr()
	var found types.DirectoryResponse
	assert.Equal(t, http.StatusOK, getJSON(t, base+"/indexing/query_topic/news", &found))
	assert.Equal(t, types.NodeID("p1"), found.NodeID)

	resp, err := http.Get(base + httpserver.PrometheusPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "topicmesh_directory_registrations_total"))
}

// TestPeerApp 测试节点应用启动即注册、停止即注销
func TestPeerApp(t *testing.T) {
	var (
		dirServer *httpserver.Server
		dirSvc    *directory.Service
	)
	dirModules, err := Modules(RoleDirectory, testConfig(), Options{
		Extra: []fx.Option{fx.Populate(&dirServer, &dirSvc)},
	})
	require.NoError(t, err)
	dirApp := fxtest.New(t, dirModules...)
	dirApp.RequireStart()
	defer dirApp.RequireStop()

	cfg := testConfig()
	cfg.Peer.DirectoryURL = "http://" + dirServer.Addr()

	var node *peer.Node
	peerModules, err := Modules(RolePeer, cfg, Options{
		Extra: []fx.Option{fx.Populate(&node)},
	})
	require.NoError(t, err)
	peerApp := fxtest.New(t, peerModules...)
	peerApp.RequireStart()

	assert.Equal(t, lifecycle.StateRegistered, node.State())
	_, ok := dirSvc.Store().Get(node.NodeID())
	require.True(t, ok)

	peerApp.RequireStop()
	assert.Equal(t, lifecycle.StateTerminated, node.State())
	_, ok = dirSvc.Store().Get(node.NodeID())
	assert.False(t, ok)
}

// TestRun 测试运行到上下文取消
func TestRun(t *testing.T) {
	app, err := New(RoleDirectory, testConfig(), Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, app, 5*time.Second) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
