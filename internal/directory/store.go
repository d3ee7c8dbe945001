package directory

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-topicmesh/pkg/types"
)

// ============================================================================
//                              Store 存储
// ============================================================================

// Store 主题归属表
//
// NodeID → DirectoryEntry，按首次注册顺序保存。所有读写共用一把读写锁：
// 查询不会观察到迁移中途的状态，两个并发注销也不会迁移同一组主题。
//
// 不变量：同一主题至多出现在一个条目下。注册/更新若会破坏该不变量则被拒绝，
// 注销时的迁移在写锁内一次完成。
type Store struct {
	clock clock.Clock

	mu sync.RWMutex

	// entries: nodeID -> entry
	entries map[types.NodeID]*types.DirectoryEntry

	// order: 首次注册顺序，决定查询与迁移目标的确定性
	order []types.NodeID
}

// NewStore 创建存储
func NewStore(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.New()
	}
	return &Store{
		clock:   clk,
		entries: make(map[types.NodeID]*types.DirectoryEntry),
	}
}

// ============================================================================
//                              写操作
// ============================================================================

// Register 插入或替换节点条目
//
// 对同一 nodeID 的再次注册会丢弃之前的主题集合（覆盖语义），
// 但保留首次注册的位置与时间。address 为空时沿用旧地址。
func (s *Store) Register(nodeID types.NodeID, address string, topics []types.TopicName) (types.DirectoryEntry, error) {
	if nodeID.IsEmpty() {
		return types.DirectoryEntry{}, types.ErrEmptyNodeID
	}
	topics = types.DedupTopics(topics)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkConflictsLocked(nodeID, topics); err != nil {
		return types.DirectoryEntry{}, err
	}

	entry, exists := s.entries[nodeID]
	if !exists {
		entry = &types.DirectoryEntry{
			NodeID:       nodeID,
			RegisteredAt: s.clock.Now(),
		}
		s.entries[nodeID] = entry
		s.order = append(s.order, nodeID)
	}
	entry.Topics = topics
	if address != "" {
		entry.Address = address
	}

	return entry.Clone(), nil
}

// UpdateTopics 整体替换节点的主题集合（不合并）
func (s *Store) UpdateTopics(nodeID types.NodeID, topics []types.TopicName) (types.DirectoryEntry, error) {
	topics = types.DedupTopics(topics)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[nodeID]
	if !exists {
		return types.DirectoryEntry{}, ErrNodeNotFound
	}
	if err := s.checkConflictsLocked(nodeID, topics); err != nil {
		return types.DirectoryEntry{}, err
	}

	entry.Topics = topics
	return entry.Clone(), nil
}

// AddTopics 把 topics 合并进节点已有的主题集合
//
// 与 UpdateTopics 不同，目录已分配给该节点的主题（包括迁移来的）不会被丢弃。
// 返回合并后的完整条目。
func (s *Store) AddTopics(nodeID types.NodeID, topics []types.TopicName) (types.DirectoryEntry, error) {
	topics = types.DedupTopics(topics)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[nodeID]
	if !exists {
		return types.DirectoryEntry{}, ErrNodeNotFound
	}
	if err := s.checkConflictsLocked(nodeID, topics); err != nil {
		return types.DirectoryEntry{}, err
	}

	entry.Topics = types.DedupTopics(append(entry.Topics, topics...))
	return entry.Clone(), nil
}

// Unregister 移除节点条目并迁移其主题
//
// 迁移目标是剩余节点中注册最早的一个；没有剩余节点时主题被丢弃。
// 只迁移主题名，消息队列与订阅者列表属于原节点进程，不随之迁移。
func (s *Store) Unregister(nodeID types.NodeID) (types.MigrationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[nodeID]
	if !exists {
		return types.MigrationResult{}, ErrNodeNotFound
	}

	delete(s.entries, nodeID)
	s.removeFromOrderLocked(nodeID)

	result := types.MigrationResult{
		NodeID: nodeID,
		Topics: entry.Topics,
	}
	if len(entry.Topics) == 0 {
		return result, nil
	}

	if len(s.order) == 0 {
		result.Deleted = true
		return result, nil
	}

	target := s.entries[s.order[0]]
	target.Topics = types.DedupTopics(append(target.Topics, entry.Topics...))
	result.MigratedTo = target.NodeID

	return result, nil
}

// ============================================================================
//                              查询操作
// ============================================================================

// Lookup 查询托管指定主题的节点
//
// 按注册顺序线性扫描，返回第一个匹配的条目。
func (s *Store) Lookup(topic types.TopicName) (types.DirectoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		entry := s.entries[id]
		if entry.Hosts(topic) {
			return entry.Clone(), true
		}
	}
	return types.DirectoryEntry{}, false
}

// Get 获取节点条目
func (s *Store) Get(nodeID types.NodeID) (types.DirectoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[nodeID]
	if !ok {
		return types.DirectoryEntry{}, false
	}
	return entry.Clone(), true
}

// Entries 按注册顺序返回所有条目的快照
func (s *Store) Entries() []types.DirectoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.DirectoryEntry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id].Clone())
	}
	return out
}

// Stats 返回节点数与主题数
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{Nodes: len(s.entries)}
	for _, e := range s.entries {
		stats.Topics += len(e.Topics)
	}
	return stats
}

// Stats 统计信息
type Stats struct {
	Nodes  int
	Topics int
}

// ============================================================================
//                              内部方法
// ============================================================================

// checkConflictsLocked 检查 topics 是否已被其他节点托管（调用方持有写锁）
func (s *Store) checkConflictsLocked(nodeID types.NodeID, topics []types.TopicName) error {
	if len(topics) == 0 {
		return nil
	}
	for _, id := range s.order {
		if id == nodeID {
			continue
		}
		other := s.entries[id]
		for _, t := range topics {
			if other.Hosts(t) {
				return fmt.Errorf("%w: %q is hosted by %s", ErrTopicConflict, t, id)
			}
		}
	}
	return nil
}

// removeFromOrderLocked 从注册顺序中移除节点（调用方持有写锁）
func (s *Store) removeFromOrderLocked(nodeID types.NodeID) {
	for i, id := range s.order {
		if id == nodeID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
