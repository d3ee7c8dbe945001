// Package router 实现订阅路由
//
// 订阅请求先经目录服务解析主题所在节点：
//   - 主题在本节点：记录订阅者并返回成功
//   - 主题在其他节点：转发到该节点并原样返回其响应
//
// 转发只允许一跳，被转发的请求在目标节点上若仍不是本地主题则失败，
// 避免目录条目过期时在节点间来回转发。
package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dep2p/go-topicmesh/internal/peer/eventlog"
	"github.com/dep2p/go-topicmesh/internal/peer/topichost"
	"github.com/dep2p/go-topicmesh/pkg/interfaces"
	"github.com/dep2p/go-topicmesh/pkg/lib/log"
	"github.com/dep2p/go-topicmesh/pkg/types"
)

var logger = log.Logger("router")

// Request 订阅请求
type Request struct {
	// Topic 订阅的主题
	Topic types.TopicName

	// Subscriber 订阅者节点 ID；为空时记为本节点
	Subscriber types.NodeID

	// Forwarded 请求已由其他节点转发过
	Forwarded bool
}

// Result 订阅结果
type Result struct {
	// StatusCode 返回给请求者的 HTTP 状态码
	StatusCode int

	// Response 返回给请求者的响应体（转发时为远端响应的解析结果）
	Response types.SubscribeResponse

	// ContentType 与 Body 为转发时远端响应的原文，非空时应原样返回
	ContentType string
	Body        []byte

	// Owner 主题所在节点
	Owner types.NodeID

	// Relayed 响应来自远端节点
	Relayed bool
}

// Router 订阅路由器
type Router struct {
	host      *topichost.Host
	registrar interfaces.Registrar
	forwarder interfaces.Forwarder
	events    *eventlog.Log
}

// New 创建路由器
func New(host *topichost.Host, registrar interfaces.Registrar, forwarder interfaces.Forwarder, events *eventlog.Log) *Router {
	if events == nil {
		events = eventlog.New(nil)
	}
	return &Router{
		host:      host,
		registrar: registrar,
		forwarder: forwarder,
		events:    events,
	}
}

// Subscribe 订阅主题
//
// 转发失败不重试；目录中的主题已迁移到本节点但本地尚无状态时，先接收该主题。
func (r *Router) Subscribe(ctx context.Context, req Request) (Result, error) {
	if req.Topic.IsEmpty() {
		return Result{}, types.ErrEmptyTopic
	}

	dir, err := r.registrar.Directory()
	if err != nil {
		return Result{}, err
	}

	entry, ok, err := dir.Lookup(ctx, req.Topic)
	if err != nil {
		logger.Warn("查询主题失败", "topic", req.Topic, "error", err)
		return Result{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrTopicNotFound, req.Topic)
	}

	self := r.registrar.NodeID()
	subscriber := req.Subscriber
	if subscriber.IsEmpty() {
		subscriber = self
	}

	if entry.NodeID == self {
		return r.subscribeLocal(req.Topic, subscriber)
	}

	if req.Forwarded {
		return Result{}, fmt.Errorf("%w: %s resolves to %s", ErrForwardLoop, req.Topic, entry.NodeID)
	}
	return r.forward(ctx, entry, req.Topic, subscriber)
}

// Claim 目录把主题解析到本节点、但本地尚无该主题时接收它
//
// 用于迁移来的主题在被订阅之前就被发布或拉取的情况。返回主题是否归本节点。
func (r *Router) Claim(ctx context.Context, topic types.TopicName) (bool, error) {
	if topic.IsEmpty() {
		return false, types.ErrEmptyTopic
	}

	dir, err := r.registrar.Directory()
	if err != nil {
		return false, err
	}

	entry, ok, err := dir.Lookup(ctx, topic)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	if !ok || entry.NodeID != r.registrar.NodeID() {
		return false, nil
	}

	if r.host.Adopt(topic) {
		r.events.Appendf(eventlog.KindTopicAdopted, "Topic: %s", topic)
	}
	return true, nil
}

// ============================================================================
//                              内部方法
// ============================================================================

func (r *Router) subscribeLocal(topic types.TopicName, subscriber types.NodeID) (Result, error) {
	if r.host.Adopt(topic) {
		r.events.Appendf(eventlog.KindTopicAdopted, "Topic: %s", topic)
	}
	if err := r.host.RecordSubscriber(topic, subscriber); err != nil {
		return Result{}, err
	}

	r.events.Appendf(eventlog.KindSubscribed, "Topic: %s, Subscriber: %s", topic, subscriber)
	logger.Debug("本地订阅", "topic", topic, "subscriber", subscriber)
	return Result{
		StatusCode: http.StatusOK,
		Response:   types.SubscribeResponse{Status: types.StatusSubscribed, Topic: topic.String()},
		Owner:      r.registrar.NodeID(),
	}, nil
}

func (r *Router) forward(ctx context.Context, entry types.DirectoryEntry, topic types.TopicName, subscriber types.NodeID) (Result, error) {
	if entry.Address == "" {
		r.events.Appendf(eventlog.KindForwardError, "Topic: %s, Owner: %s, Error: no address", topic, entry.NodeID)
		return Result{}, fmt.Errorf("%w: node %s has no registered address", ErrForwarding, entry.NodeID)
	}

	res, err := r.forwarder.ForwardSubscribe(ctx, entry.Address, topic, subscriber)
	if err != nil {
		r.events.Appendf(eventlog.KindForwardError, "Topic: %s, Owner: %s, Error: %v", topic, entry.NodeID, err)
		logger.Warn("转发订阅失败", "topic", topic, "owner", entry.NodeID, "address", entry.Address, "error", err)
		return Result{}, fmt.Errorf("%w: %w", ErrForwarding, err)
	}

	r.events.Appendf(eventlog.KindForwarded, "Topic: %s, Owner: %s, Status: %d", topic, entry.NodeID, res.StatusCode)
	logger.Debug("订阅已转发", "topic", topic, "owner", entry.NodeID, "status", res.StatusCode)
	return Result{
		StatusCode:  res.StatusCode,
		Response:    res.Response,
		ContentType: res.ContentType,
		Body:        res.Body,
		Owner:       entry.NodeID,
		Relayed:     true,
	}, nil
}
