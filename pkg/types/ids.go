package types

import (
	"strings"

	"github.com/google/uuid"
)

// ============================================================================
//                              NodeID - 节点标识
// ============================================================================

// NodeID 节点唯一标识符
//
// 由节点生命周期管理器在初始化时分配，在目录中注册期间保持不变。
// 格式: "peer-" + UUID。
type NodeID string

// EmptyNodeID 空节点ID
const EmptyNodeID NodeID = ""

// nodeIDPrefix NodeID 前缀
const nodeIDPrefix = "peer-"

// NewNodeID 生成新的 NodeID
func NewNodeID() NodeID {
	return NodeID(nodeIDPrefix + uuid.NewString())
}

// String 返回字符串表示
func (id NodeID) String() string {
	return string(id)
}

// ShortString 返回短字符串表示（日志用）
//
// 去掉前缀后取 UUID 前 8 个字符。
func (id NodeID) ShortString() string {
	s := strings.TrimPrefix(string(id), nodeIDPrefix)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// IsEmpty 检查 NodeID 是否为空
func (id NodeID) IsEmpty() bool {
	return id == EmptyNodeID
}

// ============================================================================
//                              TopicName - 主题名称
// ============================================================================

// TopicName 主题名称
//
// 在整个覆盖网络内唯一：任一时刻至多一个节点是该主题的权威宿主。
type TopicName string

// String 返回字符串表示
func (t TopicName) String() string {
	return string(t)
}

// IsEmpty 检查主题名是否为空
func (t TopicName) IsEmpty() bool {
	return strings.TrimSpace(string(t)) == ""
}

// TopicsFromStrings 从字符串切片构造主题列表
func TopicsFromStrings(ss []string) []TopicName {
	if ss == nil {
		return nil
	}
	out := make([]TopicName, 0, len(ss))
	for _, s := range ss {
		out = append(out, TopicName(s))
	}
	return out
}

// TopicsToStrings 将主题列表转换为字符串切片
func TopicsToStrings(ts []TopicName) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, string(t))
	}
	return out
}

// DedupTopics 去重并保持首次出现的顺序，忽略空主题名
func DedupTopics(ts []TopicName) []TopicName {
	seen := make(map[TopicName]struct{}, len(ts))
	out := make([]TopicName, 0, len(ts))
	for _, t := range ts {
		if t.IsEmpty() {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
