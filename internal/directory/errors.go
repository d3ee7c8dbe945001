package directory

import (
	"errors"
)

// 预定义错误
var (
	// ErrNodeNotFound 节点未注册
	ErrNodeNotFound = errors.New("directory: node not found")

	// ErrTopicConflict 主题已由其他节点托管
	ErrTopicConflict = errors.New("directory: topic already hosted by another node")

	// ErrUnavailable 目录服务不可达
	ErrUnavailable = errors.New("directory: service unavailable")

	// ErrRemote 目录服务返回了无法归类的错误
	ErrRemote = errors.New("directory: remote error")
)
