package directory

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-topicmesh/config"
	"github.com/dep2p/go-topicmesh/internal/httpserver"
)

// Module 返回目录服务 Fx 模块
func Module() fx.Option {
	return fx.Module("directory",
		fx.Provide(
			ServiceConfigFromUnified,
			NewStoreFromParams,
			NewMetricsFromParams,
			NewService,
			NewHandler,
		),
		fx.Invoke(registerLifecycle),
	)
}

// ModuleParams 目录模块依赖参数
type ModuleParams struct {
	fx.In

	Clock      clock.Clock           `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// ServiceConfigFromUnified 从统一配置创建服务配置
func ServiceConfigFromUnified(cfg *config.Config) ServiceConfig {
	sc := DefaultServiceConfig()
	if cfg == nil {
		return sc
	}
	if cfg.Directory.MetricsCacheSize > 0 {
		sc.MetricsCacheSize = cfg.Directory.MetricsCacheSize
	}
	sc.MetricsTTL = cfg.Directory.MetricsTTL.Duration()
	return sc
}

// NewStoreFromParams 从参数创建存储
func NewStoreFromParams(params ModuleParams) *Store {
	return NewStore(params.Clock)
}

// NewMetricsFromParams 从参数创建指标（未提供 Registerer 时不注册）
func NewMetricsFromParams(params ModuleParams) *Metrics {
	return NewMetrics(params.Registerer)
}

// registerLifecycle 挂载路由并注册 HTTP 服务生命周期
func registerLifecycle(lc fx.Lifecycle, server *httpserver.Server, h *Handler) {
	h.Mount(server.Echo())

	lc.Append(fx.Hook{
		OnStart: server.Start,
		OnStop:  server.Stop,
	})
}
