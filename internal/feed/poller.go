package feed

import (
	"context"
	"time"

	"locfeed/internal/logger"
)

// 文档注释：定时拉取器
// 背景：按固定周期拉取 /data 并渲染，作为推送通道之外的可选刷新方式；默认关闭。
// 约束：启动时立即拉取一次；单次失败只记录日志，循环继续；ctx 取消时停止。
type Poller struct {
	viewer   *Viewer
	client   *Client
	format   string
	interval time.Duration
}

func NewPoller(v *Viewer, c *Client, format string, interval time.Duration) *Poller {
	return &Poller{viewer: v, client: c, format: format, interval: interval}
}

// Run：阻塞运行直到 ctx 取消
func (p *Poller) Run(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	rendered, err := p.viewer.LoadData(ctx, p.client, p.format)
	if err != nil {
		if ctx.Err() == nil {
			logger.L().Debugw("poll_fail", "err", err)
		}
		return
	}
	logger.L().Debugw("poll_ok", "rendered", rendered)
}
