// Package topichost 实现节点本地的主题托管
//
// 每个主题持有一个 FIFO 消息队列与一个订阅者集合：
//   - Publish 追加消息
//   - PullMessages 一次取走全部消息（交换为空队列）
//   - RecordSubscriber 只做记录，不影响发布
//
// 主题从本节点迁移到其他节点时只迁移名字，队列与订阅者不随之迁移；
// 通过 Adopt 接收的主题总是从空队列开始。
package topichost

import (
	"fmt"
	"sync"

	"github.com/dep2p/go-topicmesh/pkg/lib/log"
	"github.com/dep2p/go-topicmesh/pkg/types"
)

var logger = log.Logger("topichost")

// ============================================================================
//                              topicState
// ============================================================================

// topicState 单个主题的状态，由自身的锁保护
type topicState struct {
	mu          sync.Mutex
	queue       []string
	subscribers map[types.NodeID]struct{}
}

func newTopicState() *topicState {
	return &topicState{subscribers: make(map[types.NodeID]struct{})}
}

// ============================================================================
//                              Host
// ============================================================================

// Host 主题托管
//
// 主题表由读写锁保护；每个主题有独立的锁，同一主题上的发布与拉取是线性一致的，
// 不同主题之间互不阻塞。
type Host struct {
	mu     sync.RWMutex
	topics map[types.TopicName]*topicState

	// order 主题创建顺序（Topics 按此顺序返回）
	order []types.TopicName
}

// New 创建主题托管
func New() *Host {
	return &Host{topics: make(map[types.TopicName]*topicState)}
}

// CreateTopic 创建本地主题
//
// 重复创建是幂等的，返回 created=false。
func (h *Host) CreateTopic(topic types.TopicName) (created bool, err error) {
	if topic.IsEmpty() {
		return false, types.ErrEmptyTopic
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.topics[topic]; ok {
		return false, nil
	}
	h.topics[topic] = newTopicState()
	h.order = append(h.order, topic)

	logger.Debug("主题已创建", "topic", topic)
	return true, nil
}

// Adopt 接收目录迁移到本节点的主题
//
// 与 CreateTopic 相同，但不触发重新注册；迁移前的消息与订阅者不会出现在这里。
func (h *Host) Adopt(topic types.TopicName) bool {
	created, err := h.CreateTopic(topic)
	if err != nil {
		return false
	}
	if created {
		logger.Info("接收迁移主题", "topic", topic)
	}
	return created
}

// Hosts 检查主题是否在本节点
func (h *Host) Hosts(topic types.TopicName) bool {
	_, ok := h.get(topic)
	return ok
}

// Publish 向本地主题发布消息
func (h *Host) Publish(topic types.TopicName, message string) error {
	st, ok := h.get(topic)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotHosted, topic)
	}

	st.mu.Lock()
	st.queue = append(st.queue, message)
	st.mu.Unlock()
	return nil
}

// PullMessages 取走主题队列中的全部消息
//
// 每条消息只会被一次拉取返回，按发布顺序排列。
func (h *Host) PullMessages(topic types.TopicName) ([]string, error) {
	st, ok := h.get(topic)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotHosted, topic)
	}

	st.mu.Lock()
	batch := st.queue
	st.queue = nil
	st.mu.Unlock()

	if len(batch) == 0 {
		return nil, ErrNoMessages
	}
	return batch, nil
}

// RecordSubscriber 记录订阅者
func (h *Host) RecordSubscriber(topic types.TopicName, nodeID types.NodeID) error {
	st, ok := h.get(topic)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotHosted, topic)
	}

	st.mu.Lock()
	st.subscribers[nodeID] = struct{}{}
	st.mu.Unlock()
	return nil
}

// Subscribers 返回主题的订阅者
func (h *Host) Subscribers(topic types.TopicName) ([]types.NodeID, error) {
	st, ok := h.get(topic)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotHosted, topic)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]types.NodeID, 0, len(st.subscribers))
	for id := range st.subscribers {
		out = append(out, id)
	}
	return out, nil
}

// Topics 按创建顺序返回本地主题
func (h *Host) Topics() []types.TopicName {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]types.TopicName, len(h.order))
	copy(out, h.order)
	return out
}

// Clear 丢弃全部主题（节点关闭时调用）
func (h *Host) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.topics = make(map[types.TopicName]*topicState)
	h.order = nil
}

// Stats 统计信息
type Stats struct {
	Topics      int
	Subscribers int
	Messages    int
}

// Stats 返回主题数、订阅者总数与待拉取消息总数
func (h *Host) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := Stats{Topics: len(h.topics)}
	for _, st := range h.topics {
		st.mu.Lock()
		stats.Subscribers += len(st.subscribers)
		stats.Messages += len(st.queue)
		st.mu.Unlock()
	}
	return stats
}

// ============================================================================
//                              内部方法
// ============================================================================

func (h *Host) get(topic types.TopicName) (*topicState, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	st, ok := h.topics[topic]
	return st, ok
}
