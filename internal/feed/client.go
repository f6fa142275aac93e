package feed

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"locfeed/internal/logger"
	"locfeed/internal/metrics"
	"locfeed/internal/request"
)

// ErrNoValue：响应体为 null，没有可渲染的数据点
var ErrNoValue = errors.New("feed: response carried no value")

const (
	dataPath    = "/data"
	commandPath = "/api/command"
)

// 文档注释：按需拉取客户端
// 背景：/data 可带 format 参数；/api/command 以 command 与 session_id 提交命令并取回结果，二者响应同构。
// 约束：响应为 null 时返回 nil 值（渲染步骤视为缺失）；传输失败返回 *request.Error，仅记录日志。
type Client struct {
	base string
	req  *request.Client
}

// NewClient：base 为服务根地址（如 http://host:5000）；rc 为空时使用默认客户端
func NewClient(base string, rc *request.Client) *Client {
	if rc == nil {
		rc = request.New(nil)
	}
	return &Client{base: strings.TrimRight(base, "/"), req: rc}
}

// Data：GET /data[?format=]
func (c *Client) Data(ctx context.Context, format string) (*Value, error) {
	q := url.Values{}
	if format != "" {
		q.Set("format", format)
	}
	return c.get(ctx, dataPath, q)
}

// Command：GET /api/command?command=&session_id=
func (c *Client) Command(ctx context.Context, command, sessionID string) (*Value, error) {
	q := url.Values{}
	q.Set("command", command)
	q.Set("session_id", sessionID)
	return c.get(ctx, commandPath, q)
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (*Value, error) {
	u, err := request.WithQuery(c.base+path, q)
	if err != nil {
		return nil, &request.Error{Method: http.MethodGet, URL: c.base + path, Err: err}
	}
	metrics.FeedFetchTotal.WithLabelValues(path).Inc()
	var v *Value
	if err := c.req.JSON(ctx, http.MethodGet, u, nil, &v); err != nil {
		metrics.FeedFetchFailTotal.WithLabelValues(path).Inc()
		logger.L().Errorw("feed_fetch_error", "path", path, "err", err)
		return nil, err
	}
	logger.L().Debugw("feed_fetch", "path", path, "absent", v == nil)
	return v, nil
}

// LoadData：拉取 /data 并渲染
func (v *Viewer) LoadData(ctx context.Context, c *Client, format string) (bool, error) {
	val, err := c.Data(ctx, format)
	if err != nil {
		return false, err
	}
	return v.Render(val), nil
}

// SubmitCommand：提交命令并渲染返回的数据点
func (v *Viewer) SubmitCommand(ctx context.Context, c *Client, command, sessionID string) (bool, error) {
	val, err := c.Command(ctx, command, sessionID)
	if err != nil {
		return false, err
	}
	return v.Render(val), nil
}
