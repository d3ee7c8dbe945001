package router

import "errors"

// 预定义错误
var (
	// ErrTopicNotFound 目录中没有托管该主题的节点
	ErrTopicNotFound = errors.New("router: topic not found")

	// ErrLookupFailed 查询目录服务失败
	ErrLookupFailed = errors.New("router: directory lookup failed")

	// ErrForwarding 转发到主题所在节点失败
	ErrForwarding = errors.New("router: failed to forward subscription")

	// ErrForwardLoop 已转发过的请求仍未落在主题所在节点
	ErrForwardLoop = errors.New("router: forwarded subscription is not local")
)
