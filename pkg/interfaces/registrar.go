package interfaces

import (
	"github.com/dep2p/go-topicmesh/pkg/types"
)

// Registrar 提供本节点身份与当前绑定的目录服务
//
// 实现位置：internal/peer/lifecycle/manager.go
type Registrar interface {
	// NodeID 返回本节点 ID，未初始化时为空
	NodeID() types.NodeID

	// Directory 返回当前绑定的目录客户端
	//
	// 节点尚未初始化时返回 lifecycle.ErrNotInitialized。
	Directory() (DirectoryClient, error)
}
