package mocks

import (
	"context"
	"net/http"
	"sync"

	"github.com/dep2p/go-topicmesh/pkg/interfaces"
	"github.com/dep2p/go-topicmesh/pkg/types"
)

var _ interfaces.Forwarder = (*MockForwarder)(nil)

// MockForwarder 模拟 Forwarder 接口实现
//
// 默认返回 {status: subscribed, topic}（Body 为空，由调用方编码 Response）。
type MockForwarder struct {
	mu sync.Mutex

	// 可覆盖的方法
	ForwardSubscribeFunc func(ctx context.Context, address string, topic types.TopicName, subscriber types.NodeID) (interfaces.ForwardResult, error)

	// 调用记录
	Calls []ForwardCall
}

// ForwardCall 记录 ForwardSubscribe 调用
type ForwardCall struct {
	Address    string
	Topic      types.TopicName
	Subscriber types.NodeID
}

// NewMockForwarder 创建 MockForwarder
func NewMockForwarder() *MockForwarder {
	return &MockForwarder{}
}

// ForwardSubscribe 转发订阅
func (m *MockForwarder) ForwardSubscribe(ctx context.Context, address string, topic types.TopicName, subscriber types.NodeID) (interfaces.ForwardResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, ForwardCall{Address: address, Topic: topic, Subscriber: subscriber})
	fn := m.ForwardSubscribeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, address, topic, subscriber)
	}
	return interfaces.ForwardResult{
		StatusCode: http.StatusOK,
		Response:   types.SubscribeResponse{Status: types.StatusSubscribed, Topic: string(topic)},
	}, nil
}

// CallCount 返回调用次数
func (m *MockForwarder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
