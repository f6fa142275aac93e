package location

// 文档注释：单个列表的可见状态
// 背景：Sentinel 为首项文字（“Select X”或请求中的占位文字），不计入 Options。
// 约束：Enabled 仅在父级有具体选择且本级加载成功时为 true；Selected 为空表示停在首项。
type List struct {
	Level    Level
	Sentinel string
	Options  []Option
	Enabled  bool
	Selected string
	Pending  bool
}

// Find：按标识查找选项
func (l List) Find(id string) (Option, bool) {
	for _, o := range l.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// 文档注释：请求凭据
// 背景：每次加载递增所在层级的代数；响应回来时代数已过期则说明有更新的选择，结果丢弃。
type Ticket struct {
	Level  Level
	Parent string
	gen    uint64
}

// 文档注释：三级联动状态机（纯状态，不含网络与并发控制）
// 背景：父级变化时清空并禁用全部后代，再为直接子级发起加载；选择首项只清空后代，不发请求。
// 约束：非并发安全，由 Controller 加锁或由单一事件循环独占使用。
type Selector struct {
	lists [len(Levels)]List
	gen   [len(Levels)]uint64
}

func NewSelector() *Selector {
	s := &Selector{}
	for _, l := range Levels {
		s.lists[l] = List{Level: l, Sentinel: l.SentinelLabel()}
	}
	return s
}

// List：返回指定层级的副本
func (s *Selector) List(level Level) List {
	l := s.lists[level]
	l.Options = append([]Option(nil), l.Options...)
	return l
}

// Lists：按父到子顺序返回全部列表副本
func (s *Selector) Lists() []List {
	out := make([]List, 0, len(Levels))
	for _, l := range Levels {
		out = append(out, s.List(l))
	}
	return out
}

// Begin：开始加载 level；清空本级与后代，首项显示占位文字
func (s *Selector) Begin(level Level, parent string) Ticket {
	s.clearFrom(level)
	l := &s.lists[level]
	l.Sentinel = PendingLabel
	l.Pending = true
	return Ticket{Level: level, Parent: parent, gen: s.gen[level]}
}

// Current：凭据是否仍对应本级最新一次加载
func (s *Selector) Current(t Ticket) bool {
	return t.gen == s.gen[t.Level]
}

// Apply：应用远端结果；凭据过期时不做任何修改并返回 false
func (s *Selector) Apply(t Ticket, r Result) bool {
	if !s.Current(t) {
		return false
	}
	l := &s.lists[t.Level]
	l.Pending = false
	l.Sentinel = t.Level.SentinelLabel()
	switch v := r.(type) {
	case Success:
		l.Options = append([]Option(nil), v.Options...)
		l.Enabled = true
	default:
		l.Options = nil
		l.Enabled = false
	}
	return true
}

// Abandon：传输失败，仅结束等待；首项保留占位文字，列表保持禁用
func (s *Selector) Abandon(t Ticket) bool {
	if !s.Current(t) {
		return false
	}
	s.lists[t.Level].Pending = false
	return true
}

// 文档注释：在 level 列表中选择 id
// 返回：child 为需加载的直接子级；load 为 false 时无需请求（选择首项或已是叶级）。
// 约束：禁用列表返回 ErrListDisabled；未知标识返回 ErrUnknownOption；二者均不改变状态。
func (s *Selector) Choose(level Level, id string) (child Level, load bool, err error) {
	if !level.valid() {
		return level, false, ErrUnknownOption
	}
	l := &s.lists[level]
	if !l.Enabled {
		return level, false, ErrListDisabled
	}
	if id != "" {
		if _, ok := l.Find(id); !ok {
			return level, false, ErrUnknownOption
		}
	}
	l.Selected = id
	child, ok := level.Child()
	if !ok {
		return level, false, nil
	}
	if id == "" {
		s.clearFrom(child)
		return child, false, nil
	}
	return child, true, nil
}

// clearFrom：清空并禁用 level 及其全部后代；递增代数使在途响应失效
func (s *Selector) clearFrom(level Level) {
	for l := level; l.valid(); l++ {
		s.gen[l]++
		s.lists[l] = List{Level: l, Sentinel: l.SentinelLabel()}
	}
}
