package types

import "errors"

// ============================================================================
//                              公共错误
// ============================================================================

var (
	// ErrEmptyNodeID 空节点 ID
	ErrEmptyNodeID = errors.New("empty node ID")

	// ErrEmptyTopic 空主题名
	ErrEmptyTopic = errors.New("empty topic name")

	// ErrInvalidRequest 无效请求
	ErrInvalidRequest = errors.New("invalid request")
)
