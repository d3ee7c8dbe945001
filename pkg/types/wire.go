package types

// ============================================================================
//                              状态值
// ============================================================================

// 响应中 status 字段的取值
const (
	StatusRegistered        = "registered"
	StatusUnregistered      = "unregistered"
	StatusUpdated           = "updated"
	StatusFound             = "found"
	StatusNotFound          = "not_found"
	StatusError             = "error"
	StatusInitialized       = "initialized"
	StatusPublished         = "published"
	StatusSubscribed        = "subscribed"
	StatusSuccess           = "success"
	StatusCreated           = "created"
	StatusMetricsReported   = "metrics_reported"
	MessageTopicsDeleted    = "Topics deleted"
	MessageNoMessages       = "No messages available"
	MessageTopicNotHosted   = "Topic not hosted here"
	MessageTopicNotFound    = "Topic not found"
	MessageNodeNotFound     = "Node not found"
	MessageForwardingFailed = "Failed to forward subscription"
)

// ============================================================================
//                              目录服务载荷
// ============================================================================

// RegisterRequest register / update_topics 请求体
type RegisterRequest struct {
	NodeID  NodeID   `json:"node_id"`
	Address string   `json:"address,omitempty"`
	Topics  []string `json:"topics"`
}

// UnregisterRequest unregister 请求体
type UnregisterRequest struct {
	NodeID NodeID `json:"node_id"`
}

// ReportMetricsRequest 目录 report_metrics 请求体
type ReportMetricsRequest struct {
	NodeID  NodeID         `json:"node_id"`
	Metrics map[string]any `json:"metrics"`
}

// DirectoryResponse 目录服务通用响应
//
// 各端点只填充与之相关的字段。
type DirectoryResponse struct {
	Status           string `json:"status"`
	NodeID           NodeID `json:"node_id,omitempty"`
	Address          string `json:"address,omitempty"`
	TopicsMigratedTo NodeID `json:"topics_migrated_to,omitempty"`
	Message          string `json:"message,omitempty"`

	// Topics register / add_topics 之后该节点在目录中的完整主题集合
	Topics []string `json:"topics,omitempty"`
}

// MetricsResponse 目录 metrics 响应
type MetricsResponse struct {
	PeerMetrics map[NodeID]map[string]any `json:"peer_metrics"`
}

// NodesResponse 目录 nodes 响应
type NodesResponse struct {
	Nodes []DirectoryEntry `json:"nodes"`
}

// ============================================================================
//                              节点载荷
// ============================================================================

// PublishRequest publish 请求体
type PublishRequest struct {
	Topic   TopicName `json:"topic"`
	Message string    `json:"message"`
}

// PeerResponse 节点通用响应
type PeerResponse struct {
	Status            string   `json:"status"`
	NodeID            NodeID   `json:"node_id,omitempty"`
	Topic             string   `json:"topic,omitempty"`
	Message           string   `json:"message,omitempty"`
	Messages          []string `json:"messages,omitempty"`
	RegistrationError string   `json:"registration_error,omitempty"`
}

// SubscribeResponse subscribe 响应
//
// 本地订阅与转发订阅返回同一结构，转发时原样透传远端响应。
type SubscribeResponse struct {
	Status  string `json:"status"`
	Topic   string `json:"topic,omitempty"`
	Message string `json:"message,omitempty"`
}

// PeerMetrics 节点本地指标（get_metrics）
type PeerMetrics struct {
	NodeID              NodeID   `json:"node_id"`
	NumberOfTopics      int      `json:"number_of_topics"`
	Topics              []string `json:"topics"`
	NumberOfSubscribers int      `json:"number_of_subscribers"`
	NumberOfMessages    int      `json:"number_of_messages"`
}

// PeerMetricsResponse get_metrics 响应
type PeerMetricsResponse struct {
	Status  string      `json:"status"`
	Metrics PeerMetrics `json:"metrics"`
}

// EventLogResponse event_log 响应
type EventLogResponse struct {
	EventLog []string `json:"event_log"`
}
