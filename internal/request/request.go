// 包 request：选择器与实时数据两个模块共用的通用请求助手，统一超时、出站日志与错误分类
package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"locfeed/internal/logger"
)

// DefaultTimeout：单次请求的整体超时，含读取响应体
const DefaultTimeout = 60 * time.Second

// maxBody：响应体读取上限，超出部分按解码失败处理
const maxBody = 4 << 20

// ErrStatus：远端返回非 2xx 状态
var ErrStatus = errors.New("unexpected status")

// 文档注释：传输层错误
// 背景：超时、网络错误、非 2xx、响应无法解码均归为此类；调用方仅记录日志，不向用户展示。
// 约束：Status 为 0 表示未收到响应；Err 保留底层原因以便 errors.Is/As 判定。
type Error struct {
	Method string
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Doer：发送 HTTP 请求的最小接口，便于测试替换
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// 文档注释：通用请求客户端
// 背景：两个模块只需“发请求、按 JSON 解码”这一种交互；不做重试、去重与取消后续请求。
type Client struct {
	doer Doer
}

// New：使用给定 HTTP 客户端构建；为空时使用 60s 超时并带出站日志的默认客户端
func New(hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout, Transport: &logger.Transport{}}
	}
	return &Client{doer: hc}
}

// NewWithDoer：使用自定义 Doer 构建
func NewWithDoer(d Doer) *Client { return &Client{doer: d} }

// 文档注释：发送请求并将 JSON 响应解码到 out
// 参数：
// - method：GET 或 POST；POST 时 form 以 application/x-www-form-urlencoded 提交，可为空；
// - rawURL：完整地址（含查询参数）；
// - out：解码目标，可实现 json.Unmarshaler 以控制解码细节。
// 返回：任何传输层问题均以 *Error 返回。
func (c *Client) JSON(ctx context.Context, method, rawURL string, form url.Values, out any) error {
	var body io.Reader
	if method == http.MethodPost {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return &Error{Method: method, URL: rawURL, Err: err}
	}
	req.Header.Set("accept", "application/json")
	if body != nil {
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
	}
	resp, err := c.doer.Do(req)
	if err != nil {
		return &Error{Method: method, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return &Error{Method: method, URL: rawURL, Status: resp.StatusCode, Err: ErrStatus}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return &Error{Method: method, URL: rawURL, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// 文档注释：在基础地址上合并查询参数
// 背景：根地址可能已自带查询串，直接拼接 "?type=" 会产生非法地址；按键覆盖合并。
func WithQuery(base string, params url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range params {
		q.Del(k)
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
