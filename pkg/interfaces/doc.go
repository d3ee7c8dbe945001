// Package interfaces 定义 topicmesh 的公共接口
//
// 节点内部组件之间通过这里的接口协作，便于在测试中替换为 mock：
//   - directory.go      - 目录服务客户端（注册、注销、查询）
//   - forwarder.go      - 跨节点订阅转发
//   - registrar.go      - 节点身份与目录绑定（由生命周期管理器实现）
//
// 实现位置：
//   - DirectoryClient → internal/directory.Client
//   - Forwarder       → internal/peer/router.HTTPForwarder
//   - Registrar       → internal/peer/lifecycle.Manager
package interfaces
