package peer

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dep2p/go-topicmesh/internal/httpserver"
	"github.com/dep2p/go-topicmesh/internal/peer/lifecycle"
	"github.com/dep2p/go-topicmesh/internal/peer/router"
	"github.com/dep2p/go-topicmesh/internal/peer/topichost"
	"github.com/dep2p/go-topicmesh/pkg/types"
)

// BasePath 节点路由前缀
const BasePath = "/peer"

// maxTopicBody create_topic 请求体上限
const maxTopicBody = 64 << 10

// Handler 节点 HTTP 处理器
//
// 端点：
//   - POST /peer/initialize?indexServerIp=&indexServerPort=
//   - POST /peer/publish
//   - GET  /peer/subscribe/:topic[?subscriber=&forwarded=1]
//   - GET  /peer/pull_messages/:topic
//   - POST /peer/register_with_indexing_server
//   - POST /peer/create_topic
//   - POST /peer/report_metrics
//   - GET  /peer/get_metrics
//   - GET  /peer/event_log
type Handler struct {
	node *Node
}

// NewHandler 创建处理器
func NewHandler(node *Node) *Handler {
	return &Handler{node: node}
}

// Mount 在 echo 上注册路由
func (h *Handler) Mount(e *echo.Echo) {
	g := e.Group(BasePath)
	g.POST("/initialize", h.handleInitialize)
	g.POST("/publish", h.handlePublish)
	g.GET("/subscribe/:topic", h.handleSubscribe)
	g.GET("/pull_messages/:topic", h.handlePullMessages)
	g.POST("/register_with_indexing_server", h.handleRegister)
	g.POST("/create_topic", h.handleCreateTopic)
	g.POST("/report_metrics", h.handleReportMetrics)
	g.GET("/get_metrics", h.handleGetMetrics)
	g.GET("/event_log", h.handleEventLog)
}

// ============================================================================
//                              处理函数
// ============================================================================

func (h *Handler) handleInitialize(c echo.Context) error {
	ip := c.QueryParam("indexServerIp")
	if ip == "" {
		return httpserver.JSONError(c, http.StatusBadRequest, "missing indexServerIp")
	}
	url := lifecycle.DirectoryURL(ip, c.QueryParam("indexServerPort"))

	id, err := h.node.Initialize(url)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, types.PeerResponse{Status: types.StatusInitialized, NodeID: id})
}

func (h *Handler) handlePublish(c echo.Context) error {
	var req types.PublishRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.JSONError(c, http.StatusBadRequest, "invalid request body")
	}

	if err := h.node.Publish(c.Request().Context(), req.Topic, req.Message); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, types.PeerResponse{Status: types.StatusPublished, Topic: req.Topic.String()})
}

func (h *Handler) handleSubscribe(c echo.Context) error {
	req := router.Request{
		Topic:      types.TopicName(httpserver.PathParam(c, "topic")),
		Subscriber: types.NodeID(c.QueryParam(router.QuerySubscriber)),
		Forwarded:  c.QueryParam(router.QueryForwarded) != "",
	}

	res, err := h.node.Subscribe(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	if res.Relayed && len(res.Body) > 0 {
		contentType := res.ContentType
		if contentType == "" {
			contentType = echo.MIMEApplicationJSON
		}
		return c.Blob(res.StatusCode, contentType, res.Body)
	}
	return c.JSON(res.StatusCode, res.Response)
}

func (h *Handler) handlePullMessages(c echo.Context) error {
	topic := types.TopicName(httpserver.PathParam(c, "topic"))

	msgs, err := h.node.PullMessages(c.Request().Context(), topic)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, types.PeerResponse{Status: types.StatusSuccess, Messages: msgs})
}

func (h *Handler) handleRegister(c echo.Context) error {
	resp, err := h.node.RegisterWithDirectory(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) handleCreateTopic(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxTopicBody))
	if err != nil {
		return httpserver.JSONError(c, http.StatusBadRequest, "invalid request body")
	}
	topic := parseTopicBody(body)

	res, err := h.node.CreateTopic(c.Request().Context(), topic)
	if err != nil {
		return writeError(c, err)
	}

	resp := types.PeerResponse{Status: types.StatusCreated, Topic: topic.String()}
	if res.RegistrationErr != nil {
		resp.RegistrationError = res.RegistrationErr.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) handleReportMetrics(c echo.Context) error {
	metrics := make(map[string]any)
	if err := json.NewDecoder(c.Request().Body).Decode(&metrics); err != nil {
		return httpserver.JSONError(c, http.StatusBadRequest, "invalid request body")
	}

	h.node.ReportMetrics(c.Request().Context(), metrics)
	return c.JSON(http.StatusOK, types.PeerResponse{Status: types.StatusMetricsReported})
}

func (h *Handler) handleGetMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, types.PeerMetricsResponse{
		Status:  types.StatusSuccess,
		Metrics: h.node.LocalMetrics(),
	})
}

func (h *Handler) handleEventLog(c echo.Context) error {
	return c.JSON(http.StatusOK, types.EventLogResponse{EventLog: h.node.EventLog()})
}

// ============================================================================
//                              辅助函数
// ============================================================================

// parseTopicBody 解析 create_topic 请求体
//
// 支持纯文本、JSON 字符串（"news"）与 {"topic": "news"} 三种形式。
func parseTopicBody(body []byte) types.TopicName {
	raw := strings.TrimSpace(string(body))

	switch {
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return types.TopicName(s)
		}
	case strings.HasPrefix(raw, "{"):
		var obj struct {
			Topic string `json:"topic"`
		}
		if err := json.Unmarshal([]byte(raw), &obj); err == nil {
			return types.TopicName(obj.Topic)
		}
	}
	return types.TopicName(raw)
}

// writeError 将节点错误转换为 {status: error, message}
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, topichost.ErrNotHosted):
		return httpserver.JSONError(c, http.StatusNotFound, types.MessageTopicNotHosted)
	case errors.Is(err, topichost.ErrNoMessages):
		return httpserver.JSONError(c, http.StatusNotFound, types.MessageNoMessages)
	case errors.Is(err, router.ErrTopicNotFound):
		return httpserver.JSONError(c, http.StatusNotFound, types.MessageTopicNotFound)
	case errors.Is(err, router.ErrForwarding):
		return httpserver.JSONError(c, http.StatusBadGateway, types.MessageForwardingFailed)
	case errors.Is(err, router.ErrLookupFailed), errors.Is(err, router.ErrForwardLoop):
		return httpserver.JSONError(c, http.StatusBadGateway, err.Error())
	case errors.Is(err, lifecycle.ErrRegistration):
		return httpserver.JSONError(c, http.StatusBadGateway, err.Error())
	case errors.Is(err, lifecycle.ErrNotInitialized), errors.Is(err, lifecycle.ErrAlreadyRegistered):
		return httpserver.JSONError(c, http.StatusConflict, err.Error())
	case errors.Is(err, lifecycle.ErrTerminated):
		return httpserver.JSONError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, types.ErrEmptyTopic), errors.Is(err, types.ErrInvalidRequest):
		return httpserver.JSONError(c, http.StatusBadRequest, err.Error())
	default:
		return httpserver.JSONError(c, http.StatusInternalServerError, err.Error())
	}
}
