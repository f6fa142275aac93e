package feed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"locfeed/internal/logger"
	"locfeed/internal/metrics"
)

// DefaultUpdatesPath：推送通道路径
const DefaultUpdatesPath = "/api/get_updates"

// DisconnectNotice：通道关闭后的常驻提示
const DisconnectNotice = "SERVER DISCONNECT"

// State：推送通道状态
type State int32

const (
	Connecting State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "CONNECTING"
	case Open:
		return "OPEN"
	case Closed:
		return "CLOSED"
	}
	return "UNKNOWN"
}

// 文档注释：由服务根地址推导推送通道地址
// 背景：http → ws，https → wss；path 为空时使用默认路径。
func UpdatesURL(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if path == "" {
		path = DefaultUpdatesPath
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = ""
	return u.String(), nil
}

// 文档注释：推送通道
// 背景：单条长连接，状态 CONNECTING → OPEN → CLOSED；仅 CLOSED 有可见效果（常驻断开提示），消息原样透传不解析。
// 约束：不重连、不退避；Run 只能调用一次。
type Channel struct {
	url     string
	dialer  *websocket.Dialer
	display Display
	state   atomic.Int32
}

// NewChannel：rawURL 为 ws:// 或 wss:// 地址
func NewChannel(rawURL string, d Display) *Channel {
	c := &Channel{url: rawURL, dialer: websocket.DefaultDialer, display: d}
	c.setState(Connecting)
	return c
}

// State：当前状态
func (c *Channel) State() State { return State(c.state.Load()) }

// 文档注释：建立连接并读取消息直到连接关闭或 ctx 取消
// 返回：ctx 取消或服务端正常关闭时返回 nil；连接失败或异常断开返回错误。两种情况都会进入 CLOSED 并显示断开提示。
func (c *Channel) Run(ctx context.Context) error {
	conn, resp, err := c.dialer.DialContext(ctx, c.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		c.close()
		if ctx.Err() != nil {
			return nil
		}
		logger.L().Errorw("channel_dial_error", "url", c.url, "err", err)
		return fmt.Errorf("dial %s: %w", c.url, err)
	}
	c.setState(Open)
	logger.L().Infow("channel_open", "url", c.url)

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closed"), deadlineSoon())
			_ = conn.Close()
		case <-done:
		}
	}()

	var readErr error
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			readErr = err
			break
		}
		metrics.ChannelMessagesTotal.Inc()
		logger.L().Debugw("channel_message", "bytes", len(data))
		c.display.Message(string(data))
	}
	close(done)
	<-stopped
	_ = conn.Close()
	c.close()

	if ctx.Err() != nil || websocket.IsCloseError(readErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logger.L().Infow("channel_closed", "url", c.url)
		return nil
	}
	logger.L().Errorw("channel_read_error", "url", c.url, "err", readErr)
	return fmt.Errorf("read %s: %w", c.url, readErr)
}

func (c *Channel) close() {
	c.setState(Closed)
	c.display.Disconnected(DisconnectNotice)
}

func (c *Channel) setState(s State) {
	c.state.Store(int32(s))
	metrics.ChannelState.Set(float64(s))
}

func deadlineSoon() time.Time { return time.Now().Add(time.Second) }
