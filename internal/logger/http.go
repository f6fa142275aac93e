// 包 logger：http 访问日志，统一记录入站与出站请求的关键维度（方法、路径、状态、耗时、字节数）
package logger

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// statusWriter：包装 ResponseWriter 以捕获状态码与写出字节数
// 背景：标准库不暴露已写状态，需中间件层统计响应信息
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

// WriteHeader：捕获状态码并透传写头
func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Write：累加写出字节数并透传写入
func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// AccessMiddleware：生成访问日志中间件
// 为什么：指标监听端口对外暴露，统一记录抓取访问便于排查；不读取请求体
func AccessMiddleware(l *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: 200}
			start := time.Now()
			next.ServeHTTP(sw, r)
			dur := time.Since(start)
			l.Debugw("http_access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"bytes", sw.bytes,
				"duration_ms", dur.Milliseconds(),
				"ip", r.RemoteAddr,
			)
		})
	}
}

// Transport：出站请求日志 RoundTripper
// 背景：客户端侧与 AccessMiddleware 对称，记录每次远端调用；Base 为空时使用 http.DefaultTransport
// 约束：不读取也不缓冲响应体，字节数取自 Content-Length（未知时为 -1）
type Transport struct {
	Base http.RoundTripper
	Log  *zap.SugaredLogger
}

func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	l := t.Log
	if l == nil {
		l = L()
	}
	start := time.Now()
	resp, err := base.RoundTrip(r)
	dur := time.Since(start)
	if err != nil {
		l.Debugw("http_out_error",
			"method", r.Method,
			"host", r.URL.Host,
			"path", r.URL.Path,
			"duration_ms", dur.Milliseconds(),
			"err", err,
		)
		return nil, err
	}
	l.Debugw("http_out",
		"method", r.Method,
		"host", r.URL.Host,
		"path", r.URL.Path,
		"status", resp.StatusCode,
		"bytes", resp.ContentLength,
		"duration_ms", dur.Milliseconds(),
	)
	return resp, nil
}
