package lifecycle

// State 节点生命周期状态
//
//	Uninitialized → Initialized → Registered → Unregistering → Terminated
type State int

const (
	// StateUninitialized 未分配节点 ID
	StateUninitialized State = iota
	// StateInitialized 已分配节点 ID 并绑定目录地址
	StateInitialized
	// StateRegistered 已在目录服务注册
	StateRegistered
	// StateUnregistering 正在注销
	StateUnregistering
	// StateTerminated 已关闭
	StateTerminated
)

// String 返回状态名
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateRegistered:
		return "registered"
	case StateUnregistering:
		return "unregistering"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
