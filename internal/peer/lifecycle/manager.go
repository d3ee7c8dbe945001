// Package lifecycle 管理节点身份与目录注册
//
// Manager 负责分配节点 ID、绑定目录服务、注册当前主题集合，
// 并在关闭时尽力注销（由目录负责迁移主题）。
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/dep2p/go-topicmesh/internal/directory"
	"github.com/dep2p/go-topicmesh/internal/peer/eventlog"
	"github.com/dep2p/go-topicmesh/pkg/interfaces"
	"github.com/dep2p/go-topicmesh/pkg/lib/log"
	"github.com/dep2p/go-topicmesh/pkg/types"
)

var logger = log.Logger("lifecycle")

// TopicSource 本节点托管的主题集合
type TopicSource interface {
	// Topics 返回当前托管的主题
	Topics() []types.TopicName

	// Adopt 接收目录分配给本节点的主题，已托管时返回 false
	Adopt(topic types.TopicName) bool
}

// ClientFactory 根据目录地址创建客户端
type ClientFactory func(directoryURL string) interfaces.DirectoryClient

var _ interfaces.Registrar = (*Manager)(nil)

// ============================================================================
//                              Manager
// ============================================================================

// Manager 节点生命周期管理器
//
// 状态与绑定信息由 mu 保护；访问目录的网络调用在 mu 之外进行。
// regMu 串行化注册，保证目录看到的主题集合按本地变化的顺序更新。
type Manager struct {
	topics    TopicSource
	events    *eventlog.Log
	newClient ClientFactory

	regMu sync.Mutex

	mu      sync.Mutex
	state   State
	nodeID  types.NodeID
	address string
	client  interfaces.DirectoryClient
}

// NewManager 创建管理器
//
// address 为注册到目录的本节点地址，可稍后通过 SetAddress 设置。
func NewManager(address string, topics TopicSource, events *eventlog.Log, newClient ClientFactory) *Manager {
	if events == nil {
		events = eventlog.New(nil)
	}
	return &Manager{
		topics:    topics,
		events:    events,
		newClient: newClient,
		address:   address,
	}
}

// Initialize 分配新的节点 ID 并绑定目录服务
//
// 未注册时每次调用都会分配新的 ID；已注册后拒绝，避免旧 ID 下的主题成为孤儿。
func (m *Manager) Initialize(directoryURL string) (types.NodeID, error) {
	if strings.TrimSpace(directoryURL) == "" {
		return "", fmt.Errorf("%w: empty directory address", types.ErrInvalidRequest)
	}

	m.mu.Lock()
	switch m.state {
	case StateRegistered:
		id := m.nodeID
		m.mu.Unlock()
		return id, ErrAlreadyRegistered
	case StateUnregistering, StateTerminated:
		m.mu.Unlock()
		return "", ErrTerminated
	}

	id := types.NewNodeID()
	m.nodeID = id
	m.client = m.newClient(directoryURL)
	m.state = StateInitialized
	m.mu.Unlock()

	m.events.Appendf(eventlog.KindInitialized, "Node ID: %s, Indexing Server: %s", id, directoryURL)
	logger.Info("节点已初始化", "node", id, "directory", directoryURL)
	return id, nil
}

// RegisterWithDirectory 把当前主题集合同步到目录服务
//
// 首次注册使用覆盖式 register；已注册后改用合并式 add_topics，
// 目录已分配给本节点的主题（包括迁移来的）不会被覆盖，并在本地接收。
// 取主题快照与发送由 regMu 串行化，较旧的快照不会晚于较新的快照到达目录。
// 失败时状态不变，不重试。
func (m *Manager) RegisterWithDirectory(ctx context.Context) (*types.DirectoryResponse, error) {
	m.regMu.Lock()
	defer m.regMu.Unlock()

	m.mu.Lock()
	switch m.state {
	case StateUninitialized:
		m.mu.Unlock()
		return nil, ErrNotInitialized
	case StateUnregistering, StateTerminated:
		m.mu.Unlock()
		return nil, ErrTerminated
	}
	id, address, client := m.nodeID, m.address, m.client
	registered := m.state == StateRegistered
	m.mu.Unlock()

	topics := m.topics.Topics()
	resp, err := m.send(ctx, client, id, address, topics, registered)
	if err != nil {
		m.events.Appendf(eventlog.KindRegistrationError, "Node ID: %s, Error: %v", id, err)
		logger.Warn("注册到目录服务失败", "node", id, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrRegistration, err)
	}
	if resp != nil {
		m.adopt(resp.Topics)
	}

	m.mu.Lock()
	if m.nodeID == id && m.state == StateInitialized {
		m.state = StateRegistered
	}
	m.mu.Unlock()

	m.events.Appendf(eventlog.KindRegistered, "Node ID: %s, Topics: %v", id, topics)
	logger.Info("已注册到目录服务", "node", id, "topics", len(topics))
	return resp, nil
}

// Shutdown 关闭节点
//
// 已注册时尽力注销；目录不可达只记录日志，状态总会变为 Terminated。
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	prev := m.state
	if prev == StateTerminated || prev == StateUnregistering {
		m.mu.Unlock()
		return
	}
	m.state = StateUnregistering
	id, client := m.nodeID, m.client
	m.mu.Unlock()

	if prev == StateRegistered {
		resp, err := client.Unregister(ctx, id)
		switch {
		case err != nil:
			logger.Warn("注销失败，目录中的条目将保留", "node", id, "error", err)
		case resp.TopicsMigratedTo != "":
			m.events.Appendf(eventlog.KindUnregistered, "Node ID: %s, Topics migrated to: %s", id, resp.TopicsMigratedTo)
			logger.Info("已注销，主题已迁移", "node", id, "to", resp.TopicsMigratedTo)
		default:
			m.events.Appendf(eventlog.KindUnregistered, "Node ID: %s", id)
			logger.Info("已注销", "node", id)
		}
	}

	m.mu.Lock()
	m.state = StateTerminated
	m.mu.Unlock()

	m.events.Appendf(eventlog.KindShutdown, "Node ID: %s", id)
}

// ============================================================================
//                              内部方法
// ============================================================================

// send 选择 register 或 add_topics 发送主题集合
func (m *Manager) send(ctx context.Context, client interfaces.DirectoryClient, id types.NodeID, address string, topics []types.TopicName, registered bool) (*types.DirectoryResponse, error) {
	if !registered {
		return client.Register(ctx, id, address, topics)
	}

	resp, err := client.AddTopics(ctx, id, topics)
	if errors.Is(err, directory.ErrNodeNotFound) {
		// 目录中已没有本节点的条目（例如目录重启）
		logger.Info("目录中没有本节点条目，重新注册", "node", id)
		return client.Register(ctx, id, address, topics)
	}
	return resp, err
}

// adopt 在本地接收目录分配给本节点、但本地尚未托管的主题
func (m *Manager) adopt(assigned []string) {
	for _, topic := range types.TopicsFromStrings(assigned) {
		if m.topics.Adopt(topic) {
			m.events.Appendf(eventlog.KindTopicAdopted, "Topic: %s", topic)
		}
	}
}

// ============================================================================
//                              访问器
// ============================================================================

// NodeID 返回本节点 ID
func (m *Manager) NodeID() types.NodeID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nodeID
}

// State 返回当前状态
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Directory 返回当前绑定的目录客户端
func (m *Manager) Directory() (interfaces.DirectoryClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateUninitialized:
		return nil, ErrNotInitialized
	case StateTerminated:
		return nil, ErrTerminated
	}
	return m.client, nil
}

// Address 返回注册到目录的本节点地址
func (m *Manager) Address() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.address
}

// SetAddress 设置注册到目录的本节点地址
func (m *Manager) SetAddress(address string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.address = address
}

// ============================================================================
//                              工具函数
// ============================================================================

// DirectoryURL 由 IP 与端口拼出目录服务地址
//
// host 已带协议前缀时原样使用。
func DirectoryURL(host, port string) string {
	host = strings.TrimSpace(host)
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		if port == "" {
			return host
		}
		return strings.TrimRight(host, "/") + ":" + port
	}
	if port == "" {
		return "http://" + host
	}
	return "http://" + net.JoinHostPort(host, port)
}

// AdvertiseAddress 由监听地址推导对外地址
//
// 监听在通配地址（":8081"、"0.0.0.0:8081"）时使用 127.0.0.1。
func AdvertiseAddress(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return "http://" + listenAddr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}
