package feed

import (
	"sync"
	"time"

	"locfeed/internal/logger"
	"locfeed/internal/metrics"
)

// DefaultIndicatorDelay：“已更新”提示显示后自动隐藏的延迟
const DefaultIndicatorDelay = 2500 * time.Millisecond

// 文档注释：展示区抽象
// 背景：渲染副作用集中在此接口；终端界面与测试各自实现。
// 约束：实现可能被多个 goroutine 调用（推送读取、定时器、拉取），需自行保证并发安全；不得回调 Viewer。
type Display interface {
	SetSummary(text string)
	SetContents(text string)
	SetIndicator(visible bool)
	// Disconnected：推送通道关闭后的常驻提示
	Disconnected(notice string)
	// Message：推送通道收到的原始消息，仅透传展示
	Message(payload string)
}

// AfterFunc：延迟执行 f，返回取消函数；测试中替换为可手动触发的调度器
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// ViewerOption：Viewer 可选项
type ViewerOption func(*Viewer)

// WithIndicatorDelay：覆盖提示隐藏延迟；非正值忽略
func WithIndicatorDelay(d time.Duration) ViewerOption {
	return func(v *Viewer) {
		if d > 0 {
			v.delay = d
		}
	}
}

// WithAfterFunc：替换定时调度器
func WithAfterFunc(f AfterFunc) ViewerOption {
	return func(v *Viewer) {
		if f != nil {
			v.after = f
		}
	}
}

// 文档注释：渲染步骤
// 背景：上一数据点作为私有状态保存在此，仅用于计算差值；推送与拉取两条路径最终都汇入 Render。
// 约束：同一时刻只有一个渲染在写展示区；每次有效渲染各自安排一次隐藏，互不重置。
type Viewer struct {
	mu      sync.Mutex
	prev    *Value
	display Display
	delay   time.Duration
	after   AfterFunc
	stops   []func() bool
	closed  bool
}

// NewViewer：初始化展示区（隐藏提示、内容区显示等待文字）
func NewViewer(d Display, opts ...ViewerOption) *Viewer {
	v := &Viewer{display: d, delay: DefaultIndicatorDelay, after: timeAfterFunc}
	for _, o := range opts {
		o(v)
	}
	d.SetIndicator(false)
	d.SetContents(AwaitingText)
	return v
}

// Render：渲染一个数据点；返回是否发生重绘
func (v *Viewer) Render(cur *Value) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	u, ok := Compute(v.prev, cur)
	if !ok {
		metrics.FeedSkipsTotal.Inc()
		logger.L().Debugw("feed_render_skip", "absent", cur == nil)
		return false
	}
	if u.First {
		logger.L().Debugw("feed_render", "value", u.Value.Value, "prev", nil)
	} else {
		logger.L().Debugw("feed_render", "value", u.Value.Value, "prev", v.prev.Value)
	}
	v.display.SetSummary(u.Message())
	v.display.SetContents(u.Contents)
	c := u.Value
	v.prev = &c
	metrics.FeedRendersTotal.Inc()

	v.display.SetIndicator(true)
	if !v.closed {
		v.stops = append(v.stops, v.after(v.delay, v.hideIndicator))
	}
	return true
}

// Previous：最近一次渲染的数据点
func (v *Viewer) Previous() (Value, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.prev == nil {
		return Value{}, false
	}
	return *v.prev, true
}

// Close：取消尚未触发的隐藏定时器
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	for _, stop := range v.stops {
		stop()
	}
	v.stops = nil
}

func (v *Viewer) hideIndicator() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.stops) > 0 {
		v.stops = v.stops[1:]
	}
	v.display.SetIndicator(false)
}
