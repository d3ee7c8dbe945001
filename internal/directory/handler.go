package directory

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dep2p/go-topicmesh/internal/httpserver"
	"github.com/dep2p/go-topicmesh/pkg/types"
)

// BasePath 目录服务路由前缀
const BasePath = "/indexing"

// Handler 目录服务 HTTP 处理器
//
// 端点：
//   - POST /indexing/register
//   - POST /indexing/unregister
//   - POST /indexing/update_topics
//   - POST /indexing/add_topics
//   - GET  /indexing/query_topic/:topic
//   - GET  /indexing/metrics
//   - POST /indexing/report_metrics
//   - GET  /indexing/nodes
type Handler struct {
	svc *Service
}

// NewHandler 创建处理器
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Mount 在 echo 上注册路由
func (h *Handler) Mount(e *echo.Echo) {
	g := e.Group(BasePath)
	g.POST("/register", h.handleRegister)
	g.POST("/unregister", h.handleUnregister)
	g.POST("/update_topics", h.handleUpdateTopics)
	g.POST("/add_topics", h.handleAddTopics)
	g.GET("/query_topic/:topic", h.handleQueryTopic)
	g.GET("/metrics", h.handleMetrics)
	g.POST("/report_metrics", h.handleReportMetrics)
	g.GET("/nodes", h.handleNodes)
}

// ============================================================================
//                              处理函数
// ============================================================================

func (h *Handler) handleRegister(c echo.Context) error {
	var req types.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.JSONError(c, http.StatusBadRequest, "invalid request body")
	}

	entry, err := h.svc.Register(req.NodeID, req.Address, types.TopicsFromStrings(req.Topics))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, types.DirectoryResponse{
		Status: types.StatusRegistered,
		NodeID: entry.NodeID,
		Topics: types.TopicsToStrings(entry.Topics),
	})
}

func (h *Handler) handleUnregister(c echo.Context) error {
	var req types.UnregisterRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.JSONError(c, http.StatusBadRequest, "invalid request body")
	}

	result, err := h.svc.Unregister(req.NodeID)
	if err != nil {
		return writeError(c, err)
	}

	resp := types.DirectoryResponse{
		Status: types.StatusUnregistered,
		NodeID: result.NodeID,
	}
	if result.Migrated() {
		resp.TopicsMigratedTo = result.MigratedTo
	}
	if result.Deleted {
		resp.Message = types.MessageTopicsDeleted
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) handleUpdateTopics(c echo.Context) error {
	var req types.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.JSONError(c, http.StatusBadRequest, "invalid request body")
	}

	if err := h.svc.UpdateTopics(req.NodeID, types.TopicsFromStrings(req.Topics)); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, types.DirectoryResponse{
		Status: types.StatusUpdated,
		NodeID: req.NodeID,
	})
}

func (h *Handler) handleAddTopics(c echo.Context) error {
	var req types.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.JSONError(c, http.StatusBadRequest, "invalid request body")
	}

	entry, err := h.svc.AddTopics(req.NodeID, types.TopicsFromStrings(req.Topics))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, types.DirectoryResponse{
		Status: types.StatusUpdated,
		NodeID: entry.NodeID,
		Topics: types.TopicsToStrings(entry.Topics),
	})
}

func (h *Handler) handleQueryTopic(c echo.Context) error {
	topic := types.TopicName(httpserver.PathParam(c, "topic"))

	entry, ok := h.svc.Lookup(topic)
	if !ok {
		return c.JSON(http.StatusNotFound, types.DirectoryResponse{Status: types.StatusNotFound})
	}

	return c.JSON(http.StatusOK, types.DirectoryResponse{
		Status:  types.StatusFound,
		NodeID:  entry.NodeID,
		Address: entry.Address,
	})
}

func (h *Handler) handleMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, types.MetricsResponse{PeerMetrics: h.svc.SnapshotMetrics()})
}

func (h *Handler) handleReportMetrics(c echo.Context) error {
	var req types.ReportMetricsRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.JSONError(c, http.StatusBadRequest, "invalid request body")
	}

	if err := h.svc.ReportMetrics(req.NodeID, req.Metrics); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, types.DirectoryResponse{Status: types.StatusMetricsReported})
}

func (h *Handler) handleNodes(c echo.Context) error {
	return c.JSON(http.StatusOK, types.NodesResponse{Nodes: h.svc.Nodes()})
}

// ============================================================================
//                              错误映射
// ============================================================================

// writeError 将目录错误转换为 {status: error, message}
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrNodeNotFound):
		return httpserver.JSONError(c, http.StatusNotFound, types.MessageNodeNotFound)
	case errors.Is(err, ErrTopicConflict):
		return httpserver.JSONError(c, http.StatusConflict, err.Error())
	case errors.Is(err, types.ErrEmptyNodeID), errors.Is(err, types.ErrInvalidRequest):
		return httpserver.JSONError(c, http.StatusBadRequest, err.Error())
	default:
		return httpserver.JSONError(c, http.StatusInternalServerError, err.Error())
	}
}
