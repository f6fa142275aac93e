package location

import (
	"context"
	"strings"
	"sync"

	"locfeed/internal/logger"
	"locfeed/internal/metrics"
)

// Notifier：把远端失败提示原样展示给用户
type Notifier interface {
	Notify(message string)
}

// NotifierFunc：函数适配器
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// 文档注释：联动控制器
// 背景：把 Selector 状态机与远端拉取组合为 loadCountries/loadStates/loadCities 三个操作及列表选择事件。
// 约束：状态修改在锁内完成，网络调用期间不持锁；不重试、不去重、不取消在途请求，过期响应按代数丢弃。
type Controller struct {
	mu       sync.Mutex
	sel      *Selector
	fetch    Fetcher
	notify   Notifier
	onChange func()
}

// NewController：n 为空时失败提示只写日志
func NewController(f Fetcher, n Notifier) *Controller {
	return &Controller{sel: NewSelector(), fetch: f, notify: n}
}

// OnChange：注册状态变化回调（在锁外调用，可能来自任意 goroutine）
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) LoadCountries(ctx context.Context) (Result, error) {
	return c.load(ctx, Country, "")
}

func (c *Controller) LoadStates(ctx context.Context, countryID string) (Result, error) {
	return c.load(ctx, State, countryID)
}

func (c *Controller) LoadCities(ctx context.Context, stateID string) (Result, error) {
	return c.load(ctx, City, stateID)
}

// 文档注释：列表选择事件
// 背景：选择具体项时加载直接子级；选择首项（空标识）时清空全部后代且不发请求。
// 返回：无需请求时结果与错误均为 nil。
func (c *Controller) Choose(ctx context.Context, level Level, id string) (Result, error) {
	c.mu.Lock()
	child, load, err := c.sel.Choose(level, id)
	var t Ticket
	if err == nil && load {
		t = c.sel.Begin(child, id)
	}
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	c.changed()
	if !load {
		logger.L().Debugw("location_choose", "level", level.String(), "id", id)
		return nil, nil
	}
	return c.finish(ctx, t)
}

// ChooseMatching：选择 level 中第一个满足 match 的选项
func (c *Controller) ChooseMatching(ctx context.Context, level Level, match func(Option) bool) (Result, error) {
	c.mu.Lock()
	l := c.sel.List(level)
	c.mu.Unlock()
	for _, o := range l.Options {
		if match(o) {
			return c.Choose(ctx, level, o.ID)
		}
	}
	return nil, ErrUnknownOption
}

// ChooseLabel：按名称（忽略大小写）或标识选择
func (c *Controller) ChooseLabel(ctx context.Context, level Level, label string) (Result, error) {
	return c.ChooseMatching(ctx, level, func(o Option) bool {
		return o.ID == label || strings.EqualFold(o.Label, label)
	})
}

// List：返回指定层级的当前状态副本
func (c *Controller) List(level Level) List {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.List(level)
}

// Lists：返回全部列表的当前状态副本
func (c *Controller) Lists() []List {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Lists()
}

func (c *Controller) load(ctx context.Context, level Level, parent string) (Result, error) {
	c.mu.Lock()
	t := c.sel.Begin(level, parent)
	c.mu.Unlock()
	c.changed()
	return c.finish(ctx, t)
}

func (c *Controller) finish(ctx context.Context, t Ticket) (Result, error) {
	res, err := c.fetch.Fetch(ctx, t.Level, t.Parent)
	c.mu.Lock()
	var applied bool
	if err != nil {
		applied = c.sel.Abandon(t)
	} else {
		applied = c.sel.Apply(t, res)
	}
	c.mu.Unlock()
	if err != nil {
		logger.L().Errorw("location_transport_error", "level", t.Level.String(), "parent", t.Parent, "err", err)
		if applied {
			c.changed()
		}
		return nil, err
	}
	if !applied {
		metrics.LocationStaleTotal.WithLabelValues(t.Level.requestType()).Inc()
		logger.L().Infow("location_stale_dropped", "level", t.Level.String(), "parent", t.Parent)
		return res, ErrStale
	}
	c.changed()
	if f, ok := res.(Failure); ok && c.notify != nil {
		c.notify.Notify(f.Message)
	}
	return res, nil
}

func (c *Controller) changed() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
