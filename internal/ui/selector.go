package ui

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"locfeed/internal/location"
	"locfeed/internal/logger"
)

// StatusLine：失败提示的展示位置（替代弹窗）；实现 location.Notifier，可被任意 goroutine 调用
type StatusLine struct {
	mu   sync.Mutex
	text string
}

func NewStatusLine() *StatusLine { return &StatusLine{} }

func (s *StatusLine) Notify(message string) {
	s.mu.Lock()
	s.text = message
	s.mu.Unlock()
}

func (s *StatusLine) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

func (s *StatusLine) Clear() { s.Notify("") }

// RefreshMsg：联动状态在事件循环之外发生变化（如请求开始），通知界面重绘
type RefreshMsg struct{}

type loadedMsg struct {
	res       location.Result
	err       error
	countries bool
	preselect bool
}

// SelectorOption：选择界面可选项
type SelectorOption func(*SelectorModel)

// WithPreselect：国家列表首次加载成功后自动选择第一个满足 match 的国家
func WithPreselect(match func(location.Option) bool) SelectorOption {
	return func(m *SelectorModel) { m.preselect = match }
}

// WithStyles：覆盖默认样式
func WithStyles(s Styles) SelectorOption {
	return func(m *SelectorModel) { m.styles = s }
}

// 文档注释：三级联动选择界面
// 背景：三列分别对应国家、省/州、城市；每列首项为“Select X”或请求中的占位文字，回车选择当前项。
// 约束：选择与加载在 tea.Cmd 中执行，状态以 Controller 为准，界面只保存焦点与光标。
type SelectorModel struct {
	ctx       context.Context
	ctrl      *location.Controller
	status    *StatusLine
	preselect func(location.Option) bool
	focus     location.Level
	cursor    [len(location.Levels)]int
	rows      int
	spinner   spinner.Model
	keys      selectorKeys
	help      help.Model
	styles    Styles
}

// NewSelectorModel：status 应与构造 ctrl 时传入的 Notifier 为同一实例
func NewSelectorModel(ctx context.Context, ctrl *location.Controller, status *StatusLine, opts ...SelectorOption) SelectorModel {
	m := SelectorModel{
		ctx:    ctx,
		ctrl:   ctrl,
		status: status,
		rows:   12,
		keys:   newSelectorKeys(),
		help:   help.New(),
		styles: DefaultStyles(),
	}
	for _, o := range opts {
		o(&m)
	}
	m.spinner = spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(m.styles.Cursor))
	return m
}

func (m SelectorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCountries())
}

func (m SelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		if rows := msg.Height - 10; rows >= 3 {
			m.rows = rows
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case RefreshMsg:
		return m, nil

	case loadedMsg:
		if msg.err != nil && !errors.Is(msg.err, location.ErrStale) {
			logger.L().Debugw("ui_load_error", "err", msg.err)
		}
		if msg.preselect {
			l := m.ctrl.List(location.Country)
			m.cursor[location.Country] = indexOf(l, l.Selected)
			m.cursor[location.State], m.cursor[location.City] = 0, 0
			m.focus = location.State
		}
		m.clampCursors()
		if msg.countries && msg.err == nil && m.preselect != nil {
			if _, ok := msg.res.(location.Success); ok {
				match := m.preselect
				m.preselect = nil
				return m, m.chooseMatching(match)
			}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m SelectorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		if m.focus > location.Country {
			m.focus--
		}
	case key.Matches(msg, m.keys.Right):
		if child, ok := m.focus.Child(); ok {
			m.focus = child
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor[m.focus] > 0 {
			m.cursor[m.focus]--
		}
	case key.Matches(msg, m.keys.Down):
		l := m.ctrl.List(m.focus)
		if m.cursor[m.focus] < len(l.Options) {
			m.cursor[m.focus]++
		}
	case key.Matches(msg, m.keys.Choose):
		l := m.ctrl.List(m.focus)
		if !l.Enabled {
			return m, nil
		}
		id := ""
		if c := m.cursor[m.focus]; c > 0 && c <= len(l.Options) {
			id = l.Options[c-1].ID
		}
		for lv := m.focus + 1; int(lv) < len(m.cursor); lv++ {
			m.cursor[lv] = 0
		}
		m.status.Clear()
		return m, m.choose(m.focus, id)
	}
	return m, nil
}

func (m SelectorModel) loadCountries() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		res, err := ctrl.LoadCountries(ctx)
		return loadedMsg{res: res, err: err, countries: true}
	}
}

func (m SelectorModel) choose(level location.Level, id string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		res, err := ctrl.Choose(ctx, level, id)
		return loadedMsg{res: res, err: err}
	}
}

func (m SelectorModel) chooseMatching(match func(location.Option) bool) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		res, err := ctrl.ChooseMatching(ctx, location.Country, match)
		if errors.Is(err, location.ErrUnknownOption) {
			logger.L().Infow("ui_preselect_miss")
			return loadedMsg{}
		}
		return loadedMsg{res: res, err: err, preselect: true}
	}
}

func (m *SelectorModel) clampCursors() {
	for _, lv := range location.Levels {
		n := len(m.ctrl.List(lv).Options)
		if m.cursor[lv] > n {
			m.cursor[lv] = n
		}
	}
}

func (m SelectorModel) View() string {
	cols := make([]string, 0, len(location.Levels))
	for _, l := range m.ctrl.Lists() {
		cols = append(cols, m.renderList(l))
	}
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Select a location"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n")
	if s := m.status.Text(); s != "" {
		b.WriteString(m.styles.Status.Render(s))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m SelectorModel) renderList(l location.List) string {
	focused := l.Level == m.focus
	title := strings.ToUpper(l.Level.String()[:1]) + l.Level.String()[1:]
	if l.Pending {
		title += " " + m.spinner.View()
	}
	lines := []string{m.styles.Title.Render(title)}

	entries := make([]string, 0, len(l.Options)+1)
	entries = append(entries, l.Sentinel)
	for _, o := range l.Options {
		entries = append(entries, o.Label)
	}
	sel := indexOf(l, l.Selected)
	start, end := window(len(entries), m.cursor[l.Level], m.rows)
	for i := start; i < end; i++ {
		prefix := "  "
		if focused && i == m.cursor[l.Level] {
			prefix = m.styles.Cursor.Render("> ")
		}
		text := entries[i]
		switch {
		case !l.Enabled:
			text = m.styles.Disabled.Render(text)
		case i == 0:
			text = m.styles.Muted.Render(text)
		case i == sel:
			text = m.styles.Selected.Render(text + " ✓")
		}
		lines = append(lines, prefix+text)
	}

	style := m.styles.Column
	if focused {
		style = m.styles.Focused
	}
	return style.Render(strings.Join(lines, "\n"))
}

// indexOf：id 在列表项中的位置（首项为 0）；空标识或未找到返回 0
func indexOf(l location.List, id string) int {
	if id == "" {
		return 0
	}
	for i, o := range l.Options {
		if o.ID == id {
			return i + 1
		}
	}
	return 0
}

// window：n 行中以 cursor 为中心截取最多 size 行
func window(n, cursor, size int) (int, int) {
	if size <= 0 || n <= size {
		return 0, n
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > n {
		start = n - size
	}
	return start, start + size
}

// Chosen：按父到子顺序返回已选择的项，遇到未选择的层级即停止
func Chosen(lists []location.List) []location.Option {
	var out []location.Option
	for _, l := range lists {
		o, ok := l.Find(l.Selected)
		if l.Selected == "" || !ok {
			break
		}
		out = append(out, o)
	}
	return out
}
