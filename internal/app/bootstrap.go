// Package app 提供 topicmesh 应用编排层
//
// app 包负责：
//   - 按进程角色（directory / peer）组装 fx 模块
//   - 提供共享依赖（配置、时钟、Prometheus 注册表、HTTP 服务）
//   - 运行应用直到上下文取消，再按生命周期关闭
package app

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-topicmesh/config"
	"github.com/dep2p/go-topicmesh/internal/directory"
	"github.com/dep2p/go-topicmesh/internal/httpserver"
	"github.com/dep2p/go-topicmesh/internal/peer"
	"github.com/dep2p/go-topicmesh/pkg/lib/log"
)

var logger = log.Logger("app")

// Role 进程角色
type Role string

const (
	// RoleDirectory 目录服务
	RoleDirectory Role = "directory"
	// RolePeer 节点
	RolePeer Role = "peer"
)

// DefaultStartTimeout 启动超时
const DefaultStartTimeout = 15 * time.Second

// Options 应用选项
type Options struct {
	// FxDebug 输出 fx 的依赖注入日志
	FxDebug bool

	// Extra 额外的 fx 选项（测试中用于 fx.Populate 等）
	Extra []fx.Option
}

// ============================================================================
//                              构建
// ============================================================================

// New 按角色构建 fx 应用（不启动）
func New(role Role, cfg *config.Config, opts Options) (*fx.App, error) {
	modules, err := Modules(role, cfg, opts)
	if err != nil {
		return nil, err
	}

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

// Modules 返回角色对应的全部 fx 选项
//
// 加载顺序：配置与共享依赖 → HTTP 服务 → 角色模块 → 额外选项 → fx 日志。
func Modules(role Role, cfg *config.Config, opts Options) ([]fx.Option, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(cfg),
		fx.Provide(
			newClock,
			newRegistry,
		),
	}

	switch role {
	case RoleDirectory:
		modules = append(modules,
			fx.Provide(newDirectoryServer),
			directory.Module(),
		)
	case RolePeer:
		modules = append(modules,
			fx.Provide(newPeerServer),
			peer.Module(),
		)
	default:
		return nil, fmt.Errorf("app: unknown role %q", role)
	}

	modules = append(modules, opts.Extra...)
	modules = append(modules, fxLogger(opts.FxDebug))
	return modules, nil
}

// ============================================================================
//                              共享依赖
// ============================================================================

// registryOut Prometheus 注册表的两种视图
type registryOut struct {
	fx.Out

	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

func newRegistry() registryOut {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registryOut{Registerer: reg, Gatherer: reg}
}

func newClock() clock.Clock {
	return clock.New()
}

func newDirectoryServer(cfg *config.Config, gatherer prometheus.Gatherer) *httpserver.Server {
	sc := httpserver.Config{Name: string(RoleDirectory), Addr: cfg.Directory.ListenAddr}
	if cfg.Directory.EnablePrometheus {
		sc.Gatherer = gatherer
	}
	return httpserver.New(sc)
}

func newPeerServer(cfg *config.Config, gatherer prometheus.Gatherer) *httpserver.Server {
	sc := httpserver.Config{Name: string(RolePeer), Addr: cfg.Peer.ListenAddr}
	if cfg.Peer.EnablePrometheus {
		sc.Gatherer = gatherer
	}
	return httpserver.New(sc)
}

// fxLogger 默认丢弃 fx 日志，debug 时输出到 zap 开发日志
func fxLogger(debug bool) fx.Option {
	if !debug {
		return fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		})
	}
	return fx.WithLogger(func() fxevent.Logger {
		l, err := zap.NewDevelopment()
		if err != nil {
			l = zap.NewNop()
		}
		return &fxevent.ZapLogger{Logger: l}
	})
}
