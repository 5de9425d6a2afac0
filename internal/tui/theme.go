package tui

import (
	"github.com/charmbracelet/lipgloss"

	"pocket/internal/flow"
)

// Theme 定义 TUI 主题色彩和样式
// Theme defines TUI colors and styles
type Theme struct {
	// 基础色 / Base colors
	Primary Color
	Danger  Color
	Success Color
	Muted   Color
	Text    Color
	TextDim Color
	Border  Color

	// 预构建样式 / Pre-built styles
	TitleStyle     lipgloss.Style
	StatusBarStyle lipgloss.Style
	PanelStyle     lipgloss.Style
	InputStyle     lipgloss.Style
	ErrorStyle     lipgloss.Style
	SuccessStyle   lipgloss.Style
	MutedStyle     lipgloss.Style

	// 阶段样式 / Per-phase styles
	PhaseStyles map[flow.PhaseKind]lipgloss.Style
}

type Color = lipgloss.Color

// DarkTheme 暗色主题（默认）
// DarkTheme is the default dark theme
func DarkTheme() Theme {
	t := Theme{
		Primary: Color("#7C3AED"),
		Danger:  Color("#EF4444"),
		Success: Color("#10B981"),
		Muted:   Color("#6B7280"),
		Text:    Color("#E5E7EB"),
		TextDim: Color("#9CA3AF"),
		Border:  Color("#374151"),
	}

	t.TitleStyle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.StatusBarStyle = lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(Color("#111827"))

	t.PanelStyle = lipgloss.NewStyle().
		Foreground(t.Text)

	t.InputStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(t.Danger).
		Bold(true)

	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(t.Success)

	t.MutedStyle = lipgloss.NewStyle().
		Foreground(t.Muted)

	t.PhaseStyles = map[flow.PhaseKind]lipgloss.Style{
		flow.PhaseIdle:         lipgloss.NewStyle().Foreground(t.Muted),
		flow.PhaseAnticipation: lipgloss.NewStyle().Foreground(Color("#06B6D4")),
		flow.PhaseEngagement:   lipgloss.NewStyle().Foreground(Color("#F59E0B")).Bold(true),
		flow.PhaseListening:    lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		flow.PhaseProcessing:   lipgloss.NewStyle().Foreground(Color("#F59E0B")),
		flow.PhaseCompletion:   lipgloss.NewStyle().Foreground(t.Success).Bold(true),
	}

	return t
}

// PhaseStyle 返回阶段对应的样式 / PhaseStyle returns the style for a phase
func (t Theme) PhaseStyle(k flow.PhaseKind) lipgloss.Style {
	if s, ok := t.PhaseStyles[k]; ok {
		return s
	}
	return t.PanelStyle
}
