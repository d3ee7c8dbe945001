// Package peer 组装 topicmesh 节点
//
// Node 把主题托管、订阅路由、生命周期管理与事件日志组合在一起，
// Handler 把 Node 的操作暴露为 /peer 下的 HTTP 端点。
package peer

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-topicmesh/internal/directory"
	"github.com/dep2p/go-topicmesh/internal/peer/eventlog"
	"github.com/dep2p/go-topicmesh/internal/peer/lifecycle"
	"github.com/dep2p/go-topicmesh/internal/peer/router"
	"github.com/dep2p/go-topicmesh/internal/peer/topichost"
	"github.com/dep2p/go-topicmesh/pkg/interfaces"
	"github.com/dep2p/go-topicmesh/pkg/lib/log"
	"github.com/dep2p/go-topicmesh/pkg/types"
)

var logger = log.Logger("peer")

// Config 节点配置
type Config struct {
	// Address 注册到目录的本节点地址，为空时启动后由监听地址推导
	Address string

	// DirectoryURL 非空时启动即初始化并注册
	DirectoryURL string

	// DirectoryTimeout 访问目录服务的超时
	DirectoryTimeout time.Duration

	// ForwardTimeout 转发订阅的超时
	ForwardTimeout time.Duration
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		DirectoryTimeout: 5 * time.Second,
		ForwardTimeout:   router.DefaultForwardTimeout,
	}
}

// Options 可替换的依赖（测试用）
type Options struct {
	Clock         clock.Clock
	Metrics       *Metrics
	Forwarder     interfaces.Forwarder
	ClientFactory lifecycle.ClientFactory
}

// ============================================================================
//                              Node
// ============================================================================

// Node topicmesh 节点
type Node struct {
	cfg Config

	host      *topichost.Host
	events    *eventlog.Log
	lifecycle *lifecycle.Manager
	router    *router.Router
	metrics   *Metrics
}

// NewNode 创建节点
func NewNode(cfg Config, opts Options) *Node {
	if cfg.DirectoryTimeout <= 0 {
		cfg.DirectoryTimeout = DefaultConfig().DirectoryTimeout
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.Forwarder == nil {
		opts.Forwarder = router.NewHTTPForwarder(cfg.ForwardTimeout)
	}
	if opts.ClientFactory == nil {
		timeout := cfg.DirectoryTimeout
		opts.ClientFactory = func(url string) interfaces.DirectoryClient {
			return directory.NewClient(url, timeout)
		}
	}

	host := topichost.New()
	events := eventlog.New(opts.Clock)
	lc := lifecycle.NewManager(cfg.Address, host, events, opts.ClientFactory)

	return &Node{
		cfg:       cfg,
		host:      host,
		events:    events,
		lifecycle: lc,
		router:    router.New(host, lc, opts.Forwarder, events),
		metrics:   opts.Metrics,
	}
}

// Start 启动节点
//
// listenAddr 为 HTTP 服务的实际监听地址；配置了目录地址时立即初始化并注册，
// 注册失败只记录日志，节点照常提供服务。
func (n *Node) Start(ctx context.Context, listenAddr string) error {
	if n.lifecycle.Address() == "" {
		n.lifecycle.SetAddress(lifecycle.AdvertiseAddress(listenAddr))
	}
	if n.cfg.DirectoryURL == "" {
		return nil
	}

	if _, err := n.Initialize(n.cfg.DirectoryURL); err != nil {
		return err
	}
	if _, err := n.RegisterWithDirectory(ctx); err != nil {
		logger.Warn("启动时注册失败", "directory", n.cfg.DirectoryURL, "error", err)
	}
	return nil
}

// Stop 停止节点：尽力注销并丢弃本地主题
func (n *Node) Stop(ctx context.Context) {
	n.lifecycle.Shutdown(ctx)
	n.host.Clear()
	n.metrics.Topics.Set(0)
}

// ============================================================================
//                              节点操作
// ============================================================================

// Initialize 分配节点 ID 并绑定目录服务
func (n *Node) Initialize(directoryURL string) (types.NodeID, error) {
	return n.lifecycle.Initialize(directoryURL)
}

// RegisterWithDirectory 把当前主题集合注册到目录服务
func (n *Node) RegisterWithDirectory(ctx context.Context) (*types.DirectoryResponse, error) {
	resp, err := n.lifecycle.RegisterWithDirectory(ctx)
	if err != nil {
		n.metrics.Registrations.WithLabelValues("error").Inc()
		return nil, err
	}
	n.metrics.Registrations.WithLabelValues("ok").Inc()
	// 注册响应可能带回迁移来的主题
	n.metrics.Topics.Set(float64(len(n.host.Topics())))
	return resp, nil
}

// CreateResult 创建主题的结果
type CreateResult struct {
	// Created 主题此前不存在
	Created bool

	// RegistrationErr 同步到目录失败的原因；本地主题不回滚
	RegistrationErr error
}

// CreateTopic 创建本地主题并同步到目录
func (n *Node) CreateTopic(ctx context.Context, topic types.TopicName) (CreateResult, error) {
	created, err := n.host.CreateTopic(topic)
	if err != nil {
		return CreateResult{}, err
	}
	if created {
		n.events.Append(eventlog.KindTopicCreated, topic.String())
		n.metrics.Topics.Set(float64(len(n.host.Topics())))
		logger.Info("主题已创建", "topic", topic)
	}

	res := CreateResult{Created: created}
	if _, err := n.RegisterWithDirectory(ctx); err != nil {
		res.RegistrationErr = err
	}
	return res, nil
}

// Publish 向本地主题发布消息
//
// 主题不在本地但目录已把它解析到本节点（迁移）时，先接收再发布。
func (n *Node) Publish(ctx context.Context, topic types.TopicName, message string) error {
	err := n.claimOnMiss(ctx, topic, func() error {
		return n.host.Publish(topic, message)
	})
	if err != nil {
		logger.Warn("发布到非本地主题", "topic", topic)
		return err
	}
	n.metrics.Published.Inc()
	n.events.Appendf(eventlog.KindPublished, "Topic: %s, Message: %s", topic, message)
	return nil
}

// PullMessages 取走本地主题的全部消息
func (n *Node) PullMessages(ctx context.Context, topic types.TopicName) ([]string, error) {
	var msgs []string
	err := n.claimOnMiss(ctx, topic, func() error {
		var err error
		msgs, err = n.host.PullMessages(topic)
		return err
	})
	if err != nil {
		return nil, err
	}
	n.metrics.Pulled.Add(float64(len(msgs)))
	n.events.Appendf(eventlog.KindPulled, "Topic: %s, Count: %d", topic, len(msgs))
	return msgs, nil
}

// Subscribe 订阅主题（必要时转发到主题所在节点）
func (n *Node) Subscribe(ctx context.Context, req router.Request) (router.Result, error) {
	res, err := n.router.Subscribe(ctx, req)
	switch {
	case err != nil:
		n.metrics.Subscriptions.WithLabelValues("error").Inc()
	case res.Relayed:
		n.metrics.Subscriptions.WithLabelValues("forwarded").Inc()
	default:
		n.metrics.Subscriptions.WithLabelValues("local").Inc()
		n.metrics.Topics.Set(float64(len(n.host.Topics())))
	}
	return res, err
}

// ReportMetrics 记录指标上报，并尽力转交目录服务
//
// 节点未初始化或目录不可达时只记录本地事件。
func (n *Node) ReportMetrics(ctx context.Context, metrics map[string]any) {
	n.events.Append(eventlog.KindMetricsReported, fmt.Sprint(metrics))

	dir, err := n.lifecycle.Directory()
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.DirectoryTimeout)
	defer cancel()
	if err := dir.ReportMetrics(ctx, n.lifecycle.NodeID(), maps.Clone(metrics)); err != nil {
		logger.Debug("转交指标失败", "error", err)
	}
}

// LocalMetrics 返回本地指标
func (n *Node) LocalMetrics() types.PeerMetrics {
	stats := n.host.Stats()
	return types.PeerMetrics{
		NodeID:              n.lifecycle.NodeID(),
		NumberOfTopics:      stats.Topics,
		Topics:              types.TopicsToStrings(n.host.Topics()),
		NumberOfSubscribers: stats.Subscribers,
		NumberOfMessages:    stats.Messages,
	}
}

// EventLog 返回事件日志文本
func (n *Node) EventLog() []string {
	return n.events.Strings()
}

// NodeID 返回本节点 ID
func (n *Node) NodeID() types.NodeID {
	return n.lifecycle.NodeID()
}

// State 返回生命周期状态
func (n *Node) State() lifecycle.State {
	return n.lifecycle.State()
}

// Host 返回主题托管（测试用）
func (n *Node) Host() *topichost.Host {
	return n.host
}

// claimOnMiss 执行 op；主题不在本地时向目录确认归属，归本节点则接收后重试一次
//
// 目录不可达或主题不归本节点时返回 op 的原始错误。
func (n *Node) claimOnMiss(ctx context.Context, topic types.TopicName, op func() error) error {
	err := op()
	if !errors.Is(err, topichost.ErrNotHosted) {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.DirectoryTimeout)
	defer cancel()
	owned, cerr := n.router.Claim(ctx, topic)
	if cerr != nil {
		logger.Debug("确认主题归属失败", "topic", topic, "error", cerr)
		return err
	}
	if !owned {
		return err
	}
	n.metrics.Topics.Set(float64(len(n.host.Topics())))
	return op()
}
