package mocks

import (
	"errors"

	"github.com/dep2p/go-topicmesh/pkg/interfaces"
	"github.com/dep2p/go-topicmesh/pkg/types"
)

var _ interfaces.Registrar = (*MockRegistrar)(nil)

// ErrMockNotInitialized MockRegistrar 未设置目录时返回
var ErrMockNotInitialized = errors.New("mocks: registrar not initialized")

// MockRegistrar 模拟 Registrar 接口实现
type MockRegistrar struct {
	ID     types.NodeID
	Client interfaces.DirectoryClient

	// DirectoryErr 非空时 Directory 返回该错误
	DirectoryErr error
}

// NewMockRegistrar 创建 MockRegistrar
func NewMockRegistrar(id types.NodeID, client interfaces.DirectoryClient) *MockRegistrar {
	return &MockRegistrar{ID: id, Client: client}
}

// NodeID 返回节点ID
func (m *MockRegistrar) NodeID() types.NodeID {
	return m.ID
}

// Directory 返回目录客户端
func (m *MockRegistrar) Directory() (interfaces.DirectoryClient, error) {
	if m.DirectoryErr != nil {
		return nil, m.DirectoryErr
	}
	if m.Client == nil {
		return nil, ErrMockNotInitialized
	}
	return m.Client, nil
}
