package location

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"locfeed/internal/logger"
	"locfeed/internal/metrics"
	"locfeed/internal/request"
)

// Fetcher：按层级与父级标识拉取列表；控制器只依赖此接口
type Fetcher interface {
	Fetch(ctx context.Context, level Level, parentID string) (Result, error)
}

// 文档注释：联动列表远端客户端
// 背景：三个列表共用同一固定地址，以 type 查询参数区分；父级标识同样放在查询串中，请求体为空表单。
// 约束：方法固定为 POST，响应为 JSON；超时与出站日志由 request.Client 统一处理。
type Client struct {
	root string
	req  *request.Client
}

// NewClient：root 为远端根地址；rc 为空时使用默认 60s 超时客户端
func NewClient(root string, rc *request.Client) *Client {
	if rc == nil {
		rc = request.New(nil)
	}
	return &Client{root: root, req: rc}
}

func (c *Client) Countries(ctx context.Context) (Result, error) {
	return c.Fetch(ctx, Country, "")
}

func (c *Client) States(ctx context.Context, countryID string) (Result, error) {
	return c.Fetch(ctx, State, countryID)
}

func (c *Client) Cities(ctx context.Context, stateID string) (Result, error) {
	return c.Fetch(ctx, City, stateID)
}

// 文档注释：拉取指定层级的列表
// 返回：远端可达且响应可解码时返回 Success 或 Failure；传输层问题返回 *request.Error，由调用方仅记录日志。
func (c *Client) Fetch(ctx context.Context, level Level, parentID string) (Result, error) {
	q := url.Values{}
	q.Set("type", level.requestType())
	if p := level.parentParam(); p != "" {
		q.Set(p, parentID)
	}
	u, err := request.WithQuery(c.root, q)
	if err != nil {
		return nil, &request.Error{Method: http.MethodPost, URL: c.root, Err: err}
	}
	typ := level.requestType()
	t0 := time.Now()
	metrics.LocationRequestsTotal.WithLabelValues(typ).Inc()
	logger.L().Debugw("location_req", "type", typ, "parent", parentID)
	var r response
	err = c.req.JSON(ctx, http.MethodPost, u, url.Values{}, &r)
	dur := time.Since(t0).Milliseconds()
	metrics.LocationDurationMs.WithLabelValues(typ).Observe(float64(dur))
	if err != nil {
		metrics.LocationFailTotal.WithLabelValues(typ, "transport").Inc()
		return nil, err
	}
	res := r.toResult()
	if f, ok := res.(Failure); ok {
		metrics.LocationFailTotal.WithLabelValues(typ, "app").Inc()
		logger.L().Infow("location_failure", "type", typ, "parent", parentID, "msg", f.Message, "duration_ms", dur)
		return res, nil
	}
	logger.L().Debugw("location_resp", "type", typ, "parent", parentID, "options", len(r.options), "duration_ms", dur)
	return res, nil
}
