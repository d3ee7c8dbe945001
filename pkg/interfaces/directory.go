package interfaces

import (
	"context"

	"github.com/dep2p/go-topicmesh/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
// DirectoryClient 接口
// ════════════════════════════════════════════════════════════════════════════

// DirectoryClient 定义节点访问目录服务的接口
//
// 所有方法都是单次调用，失败不重试。
//
// 实现位置：internal/directory/client.go
type DirectoryClient interface {
	// Register 注册节点及其主题集合（覆盖之前的注册）
	Register(ctx context.Context, nodeID types.NodeID, address string, topics []types.TopicName) (*types.DirectoryResponse, error)

	// AddTopics 把主题合并进节点在目录中的主题集合
	//
	// 响应的 Topics 为合并后的完整集合，包含迁移到该节点的主题。
	// 节点未注册时返回的错误满足 errors.Is(err, directory.ErrNodeNotFound)。
	AddTopics(ctx context.Context, nodeID types.NodeID, topics []types.TopicName) (*types.DirectoryResponse, error)

	// Unregister 注销节点，目录负责迁移其主题
	Unregister(ctx context.Context, nodeID types.NodeID) (*types.DirectoryResponse, error)

	// Lookup 查询主题所在节点
	//
	// 主题不存在时返回 ok=false、err=nil。
	Lookup(ctx context.Context, topic types.TopicName) (entry types.DirectoryEntry, ok bool, err error)

	// ReportMetrics 上报节点指标
	ReportMetrics(ctx context.Context, nodeID types.NodeID, metrics map[string]any) error

	// BaseURL 返回目录服务地址
	BaseURL() string
}
