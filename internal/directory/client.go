package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dep2p/go-topicmesh/pkg/types"
)

// maxResponseSize 目录响应体上限
const maxResponseSize = 4 << 20

// Client 目录服务 HTTP 客户端
//
// 节点通过 Client 完成注册、注销、更新主题与主题查询。
// 所有调用都是一次性的：失败立即返回，不做重试。
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient 创建客户端
//
// baseURL 为目录服务根地址，例如 "http://127.0.0.1:8080"；
// 结尾的 /indexing 可有可无。
func NewClient(baseURL string, timeout time.Duration) *Client {
	base := strings.TrimRight(baseURL, "/")
	base = strings.TrimSuffix(base, BasePath)
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL 返回目录服务根地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Register 注册节点
func (c *Client) Register(ctx context.Context, nodeID types.NodeID, address string, topics []types.TopicName) (*types.DirectoryResponse, error) {
	req := types.RegisterRequest{
		NodeID:  nodeID,
		Address: address,
		Topics:  types.TopicsToStrings(topics),
	}
	return c.post(ctx, "/register", req)
}

// UpdateTopics 更新节点主题
func (c *Client) UpdateTopics(ctx context.Context, nodeID types.NodeID, topics []types.TopicName) (*types.DirectoryResponse, error) {
	req := types.RegisterRequest{
		NodeID: nodeID,
		Topics: types.TopicsToStrings(topics),
	}
	return c.post(ctx, "/update_topics", req)
}

// AddTopics 向节点追加主题
//
// 响应的 Topics 为目录中该节点合并后的完整主题集合。
func (c *Client) AddTopics(ctx context.Context, nodeID types.NodeID, topics []types.TopicName) (*types.DirectoryResponse, error) {
	req := types.RegisterRequest{
		NodeID: nodeID,
		Topics: types.TopicsToStrings(topics),
	}
	return c.post(ctx, "/add_topics", req)
}

// Unregister 注销节点
func (c *Client) Unregister(ctx context.Context, nodeID types.NodeID) (*types.DirectoryResponse, error) {
	return c.post(ctx, "/unregister", types.UnregisterRequest{NodeID: nodeID})
}

// ReportMetrics 上报节点指标
func (c *Client) ReportMetrics(ctx context.Context, nodeID types.NodeID, metrics map[string]any) error {
	_, err := c.post(ctx, "/report_metrics", types.ReportMetricsRequest{NodeID: nodeID, Metrics: metrics})
	return err
}

// Lookup 查询主题所在节点
//
// 主题不存在时返回 ok=false 且 err=nil；网络错误返回 ErrUnavailable。
func (c *Client) Lookup(ctx context.Context, topic types.TopicName) (types.DirectoryEntry, bool, error) {
	path := "/query_topic/" + url.PathEscape(string(topic))
	resp, code, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return types.DirectoryEntry{}, false, err
	}

	switch resp.Status {
	case types.StatusFound:
		return types.DirectoryEntry{
			NodeID:  resp.NodeID,
			Address: resp.Address,
			Topics:  []types.TopicName{topic},
		}, true, nil
	case types.StatusNotFound:
		return types.DirectoryEntry{}, false, nil
	default:
		return types.DirectoryEntry{}, false, remoteError(code, resp.Message)
	}
}

// ============================================================================
//                              内部方法
// ============================================================================

func (c *Client) post(ctx context.Context, path string, body any) (*types.DirectoryResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	resp, code, err := c.do(ctx, http.MethodPost, path, data)
	if err != nil {
		return nil, err
	}
	if resp.Status == types.StatusError || code >= http.StatusBadRequest {
		return resp, remoteError(code, resp.Message)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*types.DirectoryResponse, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+BasePath+path, reader)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer httpResp.Body.Close()

	var resp types.DirectoryResponse
	if err := json.NewDecoder(io.LimitReader(httpResp.Body, maxResponseSize)).Decode(&resp); err != nil {
		return nil, httpResp.StatusCode, fmt.Errorf("%w: decode response (HTTP %d): %v", ErrRemote, httpResp.StatusCode, err)
	}
	return &resp, httpResp.StatusCode, nil
}

// remoteError 根据 HTTP 状态码还原目录错误
func remoteError(code int, message string) error {
	switch code {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNodeNotFound, message)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrTopicConflict, message)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", types.ErrInvalidRequest, message)
	default:
		return fmt.Errorf("%w: HTTP %d: %s", ErrRemote, code, message)
	}
}
