// Package topicmesh 是一个由目录服务协调的点对点发布/订阅覆盖网络
//
// # 核心概念
//
//   - 目录服务（directory）：维护 主题 → 节点 的归属表，处理注册、注销、
//     主题迁移与查询
//   - 节点（peer）：托管一部分主题，为每个主题缓存消息与订阅者，
//     并把非本地主题的订阅请求转发到主题所在节点
//
// 任一时刻一个主题至多由一个节点托管。节点注销时，目录把它的主题
// 迁移到注册最早的存活节点；只迁移主题名，消息与订阅者不随之迁移。
//
// # 运行
//
//	topicmesh directory --listen :8080
//	topicmesh peer --listen :8081 --directory http://127.0.0.1:8080
//
// 代码组织：
//   - internal/directory      目录存储、服务与 HTTP 端点
//   - internal/peer           节点组装与 HTTP 端点
//   - internal/peer/topichost 主题托管
//   - internal/peer/router    订阅路由与转发
//   - internal/peer/lifecycle 节点身份与注册
//   - internal/peer/eventlog  事件日志
//   - internal/app            fx 应用编排
//   - cmd/topicmesh           命令行入口
package topicmesh
