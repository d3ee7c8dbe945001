package httpserver

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/dep2p/go-topicmesh/pkg/types"
)

// ErrorBody 错误响应体
type ErrorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// JSONError 写出 {status: error, message} 响应
func JSONError(c echo.Context, code int, message string) error {
	return c.JSON(code, ErrorBody{Status: types.StatusError, Message: message})
}

// PathParam 读取路径参数
//
// 请求路径含转义字符（例如 %2F）时 echo 按原始路径匹配，这里统一解码。
func PathParam(c echo.Context, name string) string {
	v := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// errorHandler 将未处理的错误转换为 {status, message} 响应
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := err.Error()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = JSONError(c, code, message)
}
