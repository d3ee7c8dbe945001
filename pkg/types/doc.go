// Package types 定义 topicmesh 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在目录服务、节点和 HTTP 层之间传递数据。
//
// # 文件组织
//
//   - ids.go       - NodeID, TopicName
//   - directory.go - DirectoryEntry, MigrationResult
//   - wire.go      - HTTP 请求/响应载荷
//   - errors.go    - 公共错误定义
package types
