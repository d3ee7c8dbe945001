package topichost

import "errors"

// 预定义错误
var (
	// ErrNotHosted 主题不在本节点
	ErrNotHosted = errors.New("topichost: topic not hosted here")

	// ErrNoMessages 主题队列为空
	ErrNoMessages = errors.New("topichost: no messages available")
)
