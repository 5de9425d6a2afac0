package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"pocket/internal/flow"
	"pocket/internal/i18n"
	"pocket/internal/storage"
	"pocket/internal/task"
)

// RenderMarkdown 使用 Glamour 渲染 markdown 文本
// RenderMarkdown renders markdown text using Glamour
func RenderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimRight(rendered, "\n")
}

// PhaseLabel 阶段的展示文案 / PhaseLabel is the display line for a phase
func PhaseLabel(p flow.Phase) string {
	switch p.Kind {
	case flow.PhaseProcessing:
		if p.Status != "" {
			return fmt.Sprintf("%s · %s", i18n.T("phase.processing"), p.Status)
		}
		return i18n.T("phase.processing")
	case flow.PhaseCompletion:
		if p.Success {
			return fmt.Sprintf("%s %s", i18n.T("phase.completion"), i18n.T("status.success"))
		}
		return fmt.Sprintf("%s %s", i18n.T("phase.completion"), i18n.T("status.failure"))
	default:
		return i18n.T("phase." + p.Kind.String())
	}
}

// RenderPredictions 预测动作列表，每行一个候选
// RenderPredictions formats the prediction list, one candidate per line
func RenderPredictions(preds []flow.Prediction) string {
	if len(preds) == 0 {
		return ""
	}
	lines := make([]string, 0, len(preds)+1)
	lines = append(lines, i18n.T("tui.predictions"))
	for i, p := range preds {
		lines = append(lines, fmt.Sprintf("  %d. %s %-14s %.0f%%", i+1, p.Icon, p.Label, p.Confidence*100))
	}
	return strings.Join(lines, "\n")
}

// RenderHistory 历史面板内容 / RenderHistory formats the history panel
func RenderHistory(entries []storage.HistoryEntry) string {
	if len(entries) == 0 {
		return i18n.T("repl.history_none")
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		mark := "✓"
		if e.Status != string(task.StatusCompleted) {
			mark = "✗"
		}
		lines = append(lines, fmt.Sprintf("%s %-10s %-20s %s", mark, e.ActionKind, e.ItemName, e.FinishedAt))
	}
	return strings.Join(lines, "\n")
}
