package mocks

import (
	"context"
	"sync"

	"github.com/dep2p/go-topicmesh/internal/directory"
	"github.com/dep2p/go-topicmesh/pkg/interfaces"
	"github.com/dep2p/go-topicmesh/pkg/types"
)

var _ interfaces.DirectoryClient = (*MockDirectoryClient)(nil)

// MockDirectoryClient 模拟 DirectoryClient 接口实现
//
// 默认行为基于内存表：Register 覆盖主题，Lookup 查表，Unregister 删除条目。
type MockDirectoryClient struct {
	mu sync.Mutex

	// Entries 内存中的注册表
	Entries map[types.NodeID]types.DirectoryEntry

	// URL BaseURL 返回值
	URL string

	// 可覆盖的方法
	RegisterFunc      func(ctx context.Context, nodeID types.NodeID, address string, topics []types.TopicName) (*types.DirectoryResponse, error)
	AddTopicsFunc     func(ctx context.Context, nodeID types.NodeID, topics []types.TopicName) (*types.DirectoryResponse, error)
	UnregisterFunc    func(ctx context.Context, nodeID types.NodeID) (*types.DirectoryResponse, error)
	LookupFunc        func(ctx context.Context, topic types.TopicName) (types.DirectoryEntry, bool, error)
	ReportMetricsFunc func(ctx context.Context, nodeID types.NodeID, metrics map[string]any) error

	// 调用记录
	RegisterCalls      []RegisterCall
	AddTopicsCalls     []RegisterCall
	UnregisterCalls    []types.NodeID
	LookupCalls        []types.TopicName
	ReportMetricsCalls []types.NodeID
}

// RegisterCall 记录 Register 调用
type RegisterCall struct {
	NodeID  types.NodeID
	Address string
	Topics  []types.TopicName
}

// NewMockDirectoryClient 创建带有默认值的 MockDirectoryClient
func NewMockDirectoryClient() *MockDirectoryClient {
	return &MockDirectoryClient{
		Entries: make(map[types.NodeID]types.DirectoryEntry),
		URL:     "http://directory.mock",
	}
}

// Register 注册节点
func (m *MockDirectoryClient) Register(ctx context.Context, nodeID types.NodeID, address string, topics []types.TopicName) (*types.DirectoryResponse, error) {
	m.mu.Lock()
	m.RegisterCalls = append(m.RegisterCalls, RegisterCall{NodeID: nodeID, Address: address, Topics: topics})
	fn := m.RegisterFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, nodeID, address, topics)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries[nodeID] = types.DirectoryEntry{NodeID: nodeID, Address: address, Topics: topics}
	return &types.DirectoryResponse{
		Status: types.StatusRegistered,
		NodeID: nodeID,
		Topics: types.TopicsToStrings(topics),
	}, nil
}

// AddTopics 合并主题；节点不存在时返回 directory.ErrNodeNotFound
func (m *MockDirectoryClient) AddTopics(ctx context.Context, nodeID types.NodeID, topics []types.TopicName) (*types.DirectoryResponse, error) {
	m.mu.Lock()
	m.AddTopicsCalls = append(m.AddTopicsCalls, RegisterCall{NodeID: nodeID, Topics: topics})
	fn := m.AddTopicsFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, nodeID, topics)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.Entries[nodeID]
	if !ok {
		return nil, directory.ErrNodeNotFound
	}
	entry.Topics = types.DedupTopics(append(entry.Topics, topics...))
	m.Entries[nodeID] = entry
	return &types.DirectoryResponse{
		Status: types.StatusUpdated,
		NodeID: nodeID,
		Topics: types.TopicsToStrings(entry.Topics),
	}, nil
}

// Assign 直接把主题分配给节点（模拟目录侧迁移）
func (m *MockDirectoryClient) Assign(nodeID types.NodeID, topics ...types.TopicName) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := m.Entries[nodeID]
	entry.NodeID = nodeID
	entry.Topics = types.DedupTopics(append(entry.Topics, topics...))
	m.Entries[nodeID] = entry
}

// Set 直接写入条目（覆盖）
func (m *MockDirectoryClient) Set(entry types.DirectoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries[entry.NodeID] = entry
}

// Calls 返回 Register 与 AddTopics 调用记录的副本
func (m *MockDirectoryClient) Calls() (registers, adds []RegisterCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RegisterCall(nil), m.RegisterCalls...), append([]RegisterCall(nil), m.AddTopicsCalls...)
}

// Unregister 注销节点
func (m *MockDirectoryClient) Unregister(ctx context.Context, nodeID types.NodeID) (*types.DirectoryResponse, error) {
	m.mu.Lock()
	m.UnregisterCalls = append(m.UnregisterCalls, nodeID)
	fn := m.UnregisterFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, nodeID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Entries, nodeID)
	return &types.DirectoryResponse{Status: types.StatusUnregistered, NodeID: nodeID}, nil
}

// Lookup 查询主题
func (m *MockDirectoryClient) Lookup(ctx context.Context, topic types.TopicName) (types.DirectoryEntry, bool, error) {
	m.mu.Lock()
	m.LookupCalls = append(m.LookupCalls, topic)
	fn := m.LookupFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, topic)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.Hosts(topic) {
			return e, true, nil
		}
	}
	return types.DirectoryEntry{}, false, nil
}

// ReportMetrics 上报指标
func (m *MockDirectoryClient) ReportMetrics(ctx context.Context, nodeID types.NodeID, metrics map[string]any) error {
	m.mu.Lock()
	m.ReportMetricsCalls = append(m.ReportMetricsCalls, nodeID)
	fn := m.ReportMetricsFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, nodeID, metrics)
	}
	return nil
}

// BaseURL 返回目录地址
func (m *MockDirectoryClient) BaseURL() string {
	return m.URL
}
