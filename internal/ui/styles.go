// 包 ui：终端界面；三级联动选择与实时数据展示两个 bubbletea 模型
package ui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#8B7CF6"}
	muted  = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	danger = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6B6B"}
	okay   = lipgloss.AdaptiveColor{Light: "#1E8449", Dark: "#58D68D"}
)

// Styles：界面样式集合
type Styles struct {
	Title       lipgloss.Style
	Column      lipgloss.Style
	Focused     lipgloss.Style
	Disabled    lipgloss.Style
	Cursor      lipgloss.Style
	Selected    lipgloss.Style
	Muted       lipgloss.Style
	Status      lipgloss.Style
	Summary     lipgloss.Style
	Indicator   lipgloss.Style
	Disconnect  lipgloss.Style
	Contents    lipgloss.Style
	MessageLine lipgloss.Style
}

// DefaultStyles：默认样式
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Column: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1).
			Width(28),

		Focused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1).
			Width(28),

		Disabled: lipgloss.NewStyle().
			Foreground(muted),

		Cursor: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Foreground(okay),

		Muted: lipgloss.NewStyle().
			Foreground(muted),

		Status: lipgloss.NewStyle().
			Foreground(danger).
			Bold(true),

		Summary: lipgloss.NewStyle().
			Bold(true),

		Indicator: lipgloss.NewStyle().
			Background(okay).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Disconnect: lipgloss.NewStyle().
			Background(danger).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Contents: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false).
			BorderForeground(muted).
			Padding(0, 1),

		MessageLine: lipgloss.NewStyle().
			Foreground(muted),
	}
}
