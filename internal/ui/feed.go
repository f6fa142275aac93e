package ui

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"locfeed/internal/feed"
	"locfeed/internal/logger"
)

const (
	maxMessages  = 50
	shownMessage = 5
)

// FeedSnapshot：展示区某一时刻的内容
type FeedSnapshot struct {
	Summary   string
	Contents  string
	Indicator bool
	Notice    string
	Messages  []string
}

// 文档注释：feed.Display 的终端实现
// 背景：渲染步骤、推送读取与隐藏定时器都从各自的 goroutine 写入；每次写入后向 Changed 发一个合并信号，界面据此重绘。
// 约束：信号通道容量为 1，写入方从不阻塞。
type FeedDisplay struct {
	mu      sync.Mutex
	snap    FeedSnapshot
	changed chan struct{}
}

func NewFeedDisplay() *FeedDisplay {
	return &FeedDisplay{changed: make(chan struct{}, 1)}
}

func (d *FeedDisplay) SetSummary(text string) {
	d.update(func(s *FeedSnapshot) { s.Summary = text })
}

func (d *FeedDisplay) SetContents(text string) {
	d.update(func(s *FeedSnapshot) { s.Contents = text })
}

func (d *FeedDisplay) SetIndicator(visible bool) {
	d.update(func(s *FeedSnapshot) { s.Indicator = visible })
}

func (d *FeedDisplay) Disconnected(notice string) {
	d.update(func(s *FeedSnapshot) { s.Notice = notice })
}

// Message：保留最近 maxMessages 条
func (d *FeedDisplay) Message(payload string) {
	d.update(func(s *FeedSnapshot) {
		s.Messages = append(s.Messages, payload)
		if over := len(s.Messages) - maxMessages; over > 0 {
			s.Messages = append([]string(nil), s.Messages[over:]...)
		}
	})
}

// Snapshot：当前内容副本
func (d *FeedDisplay) Snapshot() FeedSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.snap
	s.Messages = append([]string(nil), d.snap.Messages...)
	return s
}

// Changed：内容变化信号
func (d *FeedDisplay) Changed() <-chan struct{} { return d.changed }

func (d *FeedDisplay) update(fn func(*FeedSnapshot)) {
	d.mu.Lock()
	fn(&d.snap)
	d.mu.Unlock()
	select {
	case d.changed <- struct{}{}:
	default:
	}
}

type displayChangedMsg struct{}

type fetchedMsg struct {
	rendered bool
	err      error
}

// FeedOption：实时数据界面可选项
type FeedOption func(*FeedModel)

// WithFormat：/data 的 format 参数
func WithFormat(format string) FeedOption {
	return func(m *FeedModel) { m.format = format }
}

// WithSession：命令提交使用的 session_id
func WithSession(id string) FeedOption {
	return func(m *FeedModel) { m.session = id }
}

// WithChannelState：推送通道状态来源，用于标题栏显示
func WithChannelState(state func() feed.State) FeedOption {
	return func(m *FeedModel) { m.state = state }
}

// 文档注释：实时数据界面
// 背景：内容区显示最新数据点（HTML 转为纯文本），标题栏显示通道状态与“已更新”提示；r 重新拉取 /data，: 输入命令。
// 约束：所有网络调用在 tea.Cmd 中执行；失败只记日志，界面不提示。
type FeedModel struct {
	ctx        context.Context
	display    *FeedDisplay
	viewer     *feed.Viewer
	client     *feed.Client
	state      func() feed.State
	format     string
	session    string
	input      textinput.Model
	commanding bool
	keys       feedKeys
	help       help.Model
	styles     Styles
}

// NewFeedModel：viewer 应以 d 为展示区构造
func NewFeedModel(ctx context.Context, d *FeedDisplay, v *feed.Viewer, c *feed.Client, opts ...FeedOption) FeedModel {
	in := textinput.New()
	in.Prompt = "command> "
	in.Placeholder = "command"
	m := FeedModel{
		ctx:     ctx,
		display: d,
		viewer:  v,
		client:  c,
		input:   in,
		keys:    newFeedKeys(),
		help:    help.New(),
		styles:  DefaultStyles(),
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

func (m FeedModel) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.reload())
}

func (m FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.input.Width = msg.Width - len(m.input.Prompt) - 1
		return m, nil

	case displayChangedMsg:
		return m, m.waitForChange()

	case fetchedMsg:
		if msg.err != nil {
			logger.L().Debugw("ui_fetch_error", "err", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		if m.commanding {
			return m.handleInput(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reload):
			return m, m.reload()
		case key.Matches(msg, m.keys.Command):
			m.commanding = true
			return m, m.input.Focus()
		}
	}
	return m, nil
}

func (m FeedModel) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		text := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		m.input.Blur()
		m.commanding = false
		if text == "" {
			return m, nil
		}
		return m, m.submit(text)
	case key.Matches(msg, m.keys.Cancel):
		m.input.Reset()
		m.input.Blur()
		m.commanding = false
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m FeedModel) waitForChange() tea.Cmd {
	ctx, ch := m.ctx, m.display.Changed()
	return func() tea.Msg {
		select {
		case <-ch:
			return displayChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m FeedModel) reload() tea.Cmd {
	ctx, v, c, format := m.ctx, m.viewer, m.client, m.format
	return func() tea.Msg {
		rendered, err := v.LoadData(ctx, c, format)
		return fetchedMsg{rendered: rendered, err: err}
	}
}

func (m FeedModel) submit(command string) tea.Cmd {
	ctx, v, c, session := m.ctx, m.viewer, m.client, m.session
	return func() tea.Msg {
		rendered, err := v.SubmitCommand(ctx, c, command, session)
		return fetchedMsg{rendered: rendered, err: err}
	}
}

func (m FeedModel) View() string {
	s := m.display.Snapshot()

	header := []string{m.styles.Title.Render("Live feed")}
	if m.state != nil {
		header = append(header, m.styles.Muted.Render("["+m.state().String()+"]"))
	}
	if s.Indicator {
		header = append(header, m.styles.Indicator.Render("UPDATED"))
	}
	if s.Notice != "" {
		header = append(header, m.styles.Disconnect.Render(s.Notice))
	}

	var b strings.Builder
	b.WriteString(strings.Join(header, " "))
	b.WriteString("\n")
	if s.Summary != "" {
		b.WriteString(m.styles.Summary.Render(s.Summary))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Contents.Render(feed.PlainText(s.Contents)))
	b.WriteString("\n")
	msgs := s.Messages
	if len(msgs) > shownMessage {
		msgs = msgs[len(msgs)-shownMessage:]
	}
	for _, p := range msgs {
		b.WriteString(m.styles.MessageLine.Render("· " + p))
		b.WriteString("\n")
	}
	if m.commanding {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
