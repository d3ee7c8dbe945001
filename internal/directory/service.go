package directory

import (
	"errors"
	"maps"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dep2p/go-topicmesh/pkg/lib/log"
	"github.com/dep2p/go-topicmesh/pkg/types"
)

var logger = log.Logger("directory")

// ServiceConfig 目录服务配置
type ServiceConfig struct {
	// MetricsCacheSize 保留上报指标的最大节点数
	MetricsCacheSize int

	// MetricsTTL 上报指标的保留时长（0 表示不过期）
	MetricsTTL time.Duration
}

// DefaultServiceConfig 默认配置
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MetricsCacheSize: 1024,
		MetricsTTL:       30 * time.Minute,
	}
}

// ============================================================================
//                              Service
// ============================================================================

// Service 目录服务
//
// 在 Store 之上提供注册、注销（含迁移）、更新主题、查询与指标收集，
// 并负责日志与 Prometheus 计数。
type Service struct {
	store   *Store
	metrics *Metrics

	// reported: nodeID -> 节点上报的最新指标
	reported *expirable.LRU[types.NodeID, map[string]any]
}

// NewService 创建目录服务
func NewService(store *Store, metrics *Metrics, cfg ServiceConfig) *Service {
	if cfg.MetricsCacheSize <= 0 {
		cfg.MetricsCacheSize = DefaultServiceConfig().MetricsCacheSize
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Service{
		store:    store,
		metrics:  metrics,
		reported: expirable.NewLRU[types.NodeID, map[string]any](cfg.MetricsCacheSize, nil, cfg.MetricsTTL),
	}
}

// Store 返回底层存储
func (s *Service) Store() *Store {
	return s.store
}

// Register 注册节点及其主题集合（覆盖语义）
func (s *Service) Register(nodeID types.NodeID, address string, topics []types.TopicName) (types.DirectoryEntry, error) {
	entry, err := s.store.Register(nodeID, address, topics)
	if err != nil {
		s.reject("register", err)
		logger.Warn("节点注册被拒绝", "node", nodeID, "error", err)
		return types.DirectoryEntry{}, err
	}

	s.metrics.Registrations.Inc()
	s.refreshGauges()
	logger.Info("节点已注册", "node", nodeID, "address", entry.Address, "topics", len(entry.Topics))
	return entry, nil
}

// Unregister 注销节点，并把其主题迁移到剩余节点
func (s *Service) Unregister(nodeID types.NodeID) (types.MigrationResult, error) {
	result, err := s.store.Unregister(nodeID)
	if err != nil {
		s.reject("unregister", err)
		logger.Warn("节点注销失败", "node", nodeID, "error", err)
		return result, err
	}

	switch {
	case result.Migrated():
		s.metrics.Unregistrations.WithLabelValues("migrated").Inc()
		logger.Info("节点已注销，主题已迁移", "node", nodeID, "to", result.MigratedTo, "topics", len(result.Topics))
	case result.Deleted:
		s.metrics.Unregistrations.WithLabelValues("deleted").Inc()
		logger.Info("节点已注销，无可用节点，主题已删除", "node", nodeID, "topics", len(result.Topics))
	default:
		s.metrics.Unregistrations.WithLabelValues("empty").Inc()
		logger.Info("节点已注销", "node", nodeID)
	}

	s.reported.Remove(nodeID)
	s.refreshGauges()
	return result, nil
}

// UpdateTopics 整体替换节点的主题集合
func (s *Service) UpdateTopics(nodeID types.NodeID, topics []types.TopicName) error {
	entry, err := s.store.UpdateTopics(nodeID, topics)
	if err != nil {
		s.reject("update_topics", err)
		logger.Warn("更新主题失败", "node", nodeID, "error", err)
		return err
	}

	s.refreshGauges()
	logger.Debug("主题已更新", "node", nodeID, "topics", len(entry.Topics))
	return nil
}

// AddTopics 向节点追加主题，返回合并后的条目
func (s *Service) AddTopics(nodeID types.NodeID, topics []types.TopicName) (types.DirectoryEntry, error) {
	entry, err := s.store.AddTopics(nodeID, topics)
	if err != nil {
		s.reject("add_topics", err)
		logger.Warn("追加主题失败", "node", nodeID, "error", err)
		return types.DirectoryEntry{}, err
	}

	s.refreshGauges()
	logger.Debug("主题已追加", "node", nodeID, "topics", len(entry.Topics))
	return entry, nil
}

// Lookup 查询托管主题的节点
func (s *Service) Lookup(topic types.TopicName) (types.DirectoryEntry, bool) {
	entry, ok := s.store.Lookup(topic)
	if ok {
		s.metrics.Lookups.WithLabelValues("found").Inc()
	} else {
		s.metrics.Lookups.WithLabelValues("not_found").Inc()
	}
	return entry, ok
}

// Nodes 返回所有条目的快照
func (s *Service) Nodes() []types.DirectoryEntry {
	return s.store.Entries()
}

// ReportMetrics 记录节点上报的指标（覆盖该节点上一次上报）
//
// 只接受已注册节点的上报，注销后迟到的上报不会重新生成条目。
func (s *Service) ReportMetrics(nodeID types.NodeID, metrics map[string]any) error {
	if nodeID.IsEmpty() {
		return types.ErrEmptyNodeID
	}
	if _, ok := s.store.Get(nodeID); !ok {
		s.reject("report_metrics", ErrNodeNotFound)
		return ErrNodeNotFound
	}
	s.reported.Add(nodeID, maps.Clone(metrics))
	logger.Debug("收到节点指标", "node", nodeID, "keys", len(metrics))
	return nil
}

// SnapshotMetrics 返回已收集指标的只读副本
func (s *Service) SnapshotMetrics() map[types.NodeID]map[string]any {
	out := make(map[types.NodeID]map[string]any)
	for _, id := range s.reported.Keys() {
		if m, ok := s.reported.Peek(id); ok {
			out[id] = maps.Clone(m)
		}
	}
	return out
}

// ============================================================================
//                              内部方法
// ============================================================================

func (s *Service) reject(op string, err error) {
	reason := "invalid"
	switch {
	case errors.Is(err, ErrNodeNotFound):
		reason = "not_found"
	case errors.Is(err, ErrTopicConflict):
		reason = "conflict"
	}
	s.metrics.Rejections.WithLabelValues(op, reason).Inc()
}

func (s *Service) refreshGauges() {
	stats := s.store.Stats()
	s.metrics.Nodes.Set(float64(stats.Nodes))
	s.metrics.Topics.Set(float64(stats.Topics))
}
