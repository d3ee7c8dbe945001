package interfaces

import (
	"context"

	"github.com/dep2p/go-topicmesh/pkg/types"
)

// ForwardResult 转发订阅的远端结果
//
// 远端状态码与响应体原样透传给原始请求者。
type ForwardResult struct {
	// StatusCode 远端 HTTP 状态码
	StatusCode int

	// ContentType 远端响应的 Content-Type
	ContentType string

	// Body 远端响应体原文；为空时透传 Response 的 JSON 编码
	Body []byte

	// Response 从 Body 解析出的响应（非 JSON 时为零值，仅用于日志）
	Response types.SubscribeResponse
}

// Forwarder 定义跨节点订阅转发接口
//
// 实现位置：internal/peer/router/forwarder.go
type Forwarder interface {
	// ForwardSubscribe 将订阅请求转发到 address 指向的节点
	//
	// 网络错误或超时返回 error；远端返回的业务错误放在 ForwardResult 中。
	ForwardSubscribe(ctx context.Context, address string, topic types.TopicName, subscriber types.NodeID) (ForwardResult, error)
}
