// Package httpserver 提供目录服务与节点共用的 HTTP 服务
//
// 基于 echo 路由，统一处理：
//   - 请求日志与 panic 恢复
//   - {status, message} 形式的错误响应
//   - 可选的 /metrics/prometheus 端点
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-topicmesh/pkg/lib/log"
)

var logger = log.Logger("httpserver")

// PrometheusPath Prometheus 抓取路径
const PrometheusPath = "/metrics/prometheus"

// Config 服务配置
type Config struct {
	// Name 服务名（日志用）
	Name string

	// Addr 监听地址，例如 ":8080"
	Addr string

	// Gatherer 非空时暴露 Prometheus 端点
	Gatherer prometheus.Gatherer
}

// Server HTTP 服务
type Server struct {
	name string
	addr string

	echo *echo.Echo

	// HTTP 服务器
	server   *http.Server
	listener net.Listener

	// 状态
	running bool
	mu      sync.Mutex
}

// New 创建 HTTP 服务
func New(cfg Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(cfg.Name))

	if cfg.Gatherer != nil {
		e.GET(PrometheusPath, echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	return &Server{
		name: cfg.Name,
		addr: cfg.Addr,
		echo: e,
	}
}

// Echo 返回路由器，用于注册业务路由
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Handler 返回 http.Handler（测试中配合 httptest 使用）
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start 启动服务
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP 服务异常退出", "name", s.name, "error", err)
		}
	}()

	s.running = true
	logger.Info("HTTP 服务已启动", "name", s.name, "addr", listener.Addr().String())
	return nil
}

// Stop 停止服务
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if err := s.server.Shutdown(ctx); err != nil {
		logger.Error("关闭 HTTP 服务失败", "name", s.name, "error", err)
		return err
	}

	s.running = false
	logger.Info("HTTP 服务已停止", "name", s.name)
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// ============================================================================
//                              中间件
// ============================================================================

// requestLogger 记录每个请求的方法、路径、状态码与耗时
func requestLogger(name string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			logger.Debug("HTTP 请求",
				"name", name,
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"elapsed", time.Since(start),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)
			return nil
		}
	}
}
