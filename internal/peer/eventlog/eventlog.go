// Package eventlog 提供节点的追加式事件日志
//
// 事件日志只用于观测（GET /peer/event_log），不参与任何控制决策，
// 在节点生命周期内只追加、不压缩。
package eventlog

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Kind 事件类型
type Kind string

// 事件类型
const (
	KindInitialized       Kind = "Node Initialized"
	KindRegistered        Kind = "Registered with Indexing Server"
	KindRegistrationError Kind = "Registration Failed"
	KindTopicCreated      Kind = "Topic Created"
	KindTopicAdopted      Kind = "Topic Adopted"
	KindPublished         Kind = "Message Published"
	KindSubscribed        Kind = "Subscribed"
	KindForwarded         Kind = "Subscription Forwarded"
	KindForwardError      Kind = "Forwarding Failed"
	KindPulled            Kind = "Messages Pulled"
	KindMetricsReported   Kind = "Metrics Reported"
	KindUnregistered      Kind = "Unregistered"
	KindShutdown          Kind = "Node Shutdown"
)

// Entry 一条事件记录
type Entry struct {
	Time   time.Time
	Kind   Kind
	Detail string
}

// String 返回 "<时间> - Event: <类型>, Details: <详情>"
func (e Entry) String() string {
	return fmt.Sprintf("%s - Event: %s, Details: %s", e.Time.Format(time.RFC3339Nano), e.Kind, e.Detail)
}

// Log 追加式事件日志
type Log struct {
	clock clock.Clock

	mu      sync.RWMutex
	entries []Entry
}

// New 创建事件日志
func New(clk clock.Clock) *Log {
	if clk == nil {
		clk = clock.New()
	}
	return &Log{clock: clk}
}

// Append 追加一条记录
func (l *Log) Append(kind Kind, detail string) Entry {
	e := Entry{Time: l.clock.Now(), Kind: kind, Detail: detail}

	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
	return e
}

// Appendf 以格式化详情追加一条记录
func (l *Log) Appendf(kind Kind, format string, args ...any) Entry {
	return l.Append(kind, fmt.Sprintf(format, args...))
}

// Entries 返回全部记录的副本
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Strings 返回全部记录的文本形式
func (l *Log) Strings() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.String())
	}
	return out
}

// Len 返回记录数
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
