package types

import "time"

// ============================================================================
//                              目录条目
// ============================================================================

// DirectoryEntry 目录条目
//
// NodeID → 该节点当前托管的主题集合。同一主题不会同时出现在两个条目下。
type DirectoryEntry struct {
	// NodeID 节点标识
	NodeID NodeID `json:"node_id"`

	// Address 节点可达的 HTTP 基地址，例如 "http://10.0.0.2:8081"
	// 转发订阅时使用；为空表示该节点未声明地址。
	Address string `json:"address,omitempty"`

	// Topics 托管的主题（去重，保持首次出现顺序）
	Topics []TopicName `json:"topics"`

	// RegisteredAt 首次注册时间
	RegisteredAt time.Time `json:"registered_at"`
}

// Hosts 检查条目是否托管指定主题
func (e *DirectoryEntry) Hosts(topic TopicName) bool {
	for _, t := range e.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// Clone 返回深拷贝
func (e DirectoryEntry) Clone() DirectoryEntry {
	topics := make([]TopicName, len(e.Topics))
	copy(topics, e.Topics)
	e.Topics = topics
	return e
}

// ============================================================================
//                              迁移结果
// ============================================================================

// MigrationResult 注销节点时的主题迁移结果
type MigrationResult struct {
	// NodeID 被注销的节点
	NodeID NodeID

	// MigratedTo 接收迁移主题的节点；为空表示未迁移
	MigratedTo NodeID

	// Topics 被迁移（或删除）的主题
	Topics []TopicName

	// Deleted 没有存活节点可接收时为 true，主题被丢弃
	Deleted bool
}

// Migrated 是否发生了迁移
func (r MigrationResult) Migrated() bool {
	return !r.MigratedTo.IsEmpty()
}
