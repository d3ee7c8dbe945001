package peer

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-topicmesh/config"
	"github.com/dep2p/go-topicmesh/internal/httpserver"
)

// Module 返回节点 Fx 模块
func Module() fx.Option {
	return fx.Module("peer",
		fx.Provide(
			ConfigFromUnified,
			NewMetricsFromParams,
			NewNodeFromParams,
			NewHandler,
		),
		fx.Invoke(registerLifecycle),
	)
}

// MetricsParams 指标依赖参数
type MetricsParams struct {
	fx.In

	Registerer prometheus.Registerer `optional:"true"`
}

// NodeParams 节点依赖参数
type NodeParams struct {
	fx.In

	Config  Config
	Metrics *Metrics
	Clock   clock.Clock `optional:"true"`
}

// ConfigFromUnified 从统一配置创建节点配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	c.Address = cfg.Peer.AdvertiseAddr
	c.DirectoryURL = cfg.Peer.DirectoryURL
	if d := cfg.Peer.DirectoryTimeout.Duration(); d > 0 {
		c.DirectoryTimeout = d
	}
	if d := cfg.Peer.ForwardTimeout.Duration(); d > 0 {
		c.ForwardTimeout = d
	}
	return c
}

// NewMetricsFromParams 从参数创建指标
func NewMetricsFromParams(params MetricsParams) *Metrics {
	return NewMetrics(params.Registerer)
}

// NewNodeFromParams 从参数创建节点
func NewNodeFromParams(params NodeParams) *Node {
	return NewNode(params.Config, Options{
		Clock:   params.Clock,
		Metrics: params.Metrics,
	})
}

// registerLifecycle 注册生命周期钩子
//
// 启动：HTTP 服务 → 节点（需要实际监听地址）。
// 停止：节点注销 → HTTP 服务，错误合并返回。
func registerLifecycle(lc fx.Lifecycle, server *httpserver.Server, node *Node, h *Handler) {
	h.Mount(server.Echo())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := server.Start(ctx); err != nil {
				return err
			}
			return node.Start(ctx, server.Addr())
		},
		OnStop: func(ctx context.Context) error {
			node.Stop(ctx)
			return multierr.Append(server.Stop(ctx), ctx.Err())
		},
	})
}
