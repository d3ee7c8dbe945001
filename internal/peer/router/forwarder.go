package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dep2p/go-topicmesh/pkg/interfaces"
	"github.com/dep2p/go-topicmesh/pkg/types"
)

const (
	// DefaultForwardTimeout 转发订阅的默认超时
	DefaultForwardTimeout = 5 * time.Second

	// SubscribePath 节点订阅端点前缀
	SubscribePath = "/peer/subscribe/"

	// QuerySubscriber 订阅者 ID 查询参数
	QuerySubscriber = "subscriber"

	// QueryForwarded 标记请求已被转发过一次
	QueryForwarded = "forwarded"

	maxForwardResponse = 1 << 20
)

var _ interfaces.Forwarder = (*HTTPForwarder)(nil)

// HTTPForwarder 通过 HTTP 把订阅请求转发到其他节点
type HTTPForwarder struct {
	timeout time.Duration
	client  *http.Client
}

// NewHTTPForwarder 创建转发器
//
// timeout <= 0 时使用 DefaultForwardTimeout。
func NewHTTPForwarder(timeout time.Duration) *HTTPForwarder {
	if timeout <= 0 {
		timeout = DefaultForwardTimeout
	}
	return &HTTPForwarder{
		timeout: timeout,
		client:  &http.Client{},
	}
}

// Timeout 返回转发超时
func (f *HTTPForwarder) Timeout() time.Duration {
	return f.timeout
}

// ForwardSubscribe 转发订阅请求
func (f *HTTPForwarder) ForwardSubscribe(ctx context.Context, address string, topic types.TopicName, subscriber types.NodeID) (interfaces.ForwardResult, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	q := url.Values{}
	q.Set(QueryForwarded, "1")
	if !subscriber.IsEmpty() {
		q.Set(QuerySubscriber, subscriber.String())
	}
	target := strings.TrimRight(address, "/") + SubscribePath + url.PathEscape(topic.String()) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return interfaces.ForwardResult{}, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return interfaces.ForwardResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxForwardResponse))
	if err != nil {
		return interfaces.ForwardResult{}, fmt.Errorf("read response (HTTP %d): %w", resp.StatusCode, err)
	}

	res := interfaces.ForwardResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
	// 非 JSON 响应（例如代理错误页）同样原样透传
	_ = json.Unmarshal(body, &res.Response)
	return res, nil
}
