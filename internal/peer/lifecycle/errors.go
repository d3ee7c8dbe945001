package lifecycle

import "errors"

// 预定义错误
var (
	// ErrNotInitialized 节点尚未初始化
	ErrNotInitialized = errors.New("lifecycle: node not initialized")

	// ErrAlreadyRegistered 节点已注册，拒绝重新初始化
	ErrAlreadyRegistered = errors.New("lifecycle: node already registered")

	// ErrTerminated 节点已关闭
	ErrTerminated = errors.New("lifecycle: node terminated")

	// ErrRegistration 无法在目录服务注册
	ErrRegistration = errors.New("lifecycle: registration with directory failed")
)
