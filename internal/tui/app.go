package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pocket/internal/flow"
	"pocket/internal/i18n"
	"pocket/internal/intent"
	"pocket/internal/item"
	"pocket/internal/storage"
	"pocket/internal/task"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Tea Messages ---

// PhaseMsg 状态机阶段变更 / PhaseMsg carries a state-machine phase change
type PhaseMsg flow.Phase

// TaskDoneMsg 一次「说出命令」周期结束 / TaskDoneMsg ends one speak cycle
type TaskDoneMsg struct{ Task *task.Task }

// listenTimeoutMsg 聆听超时：按空命令处理（默认 hold）
// listenTimeoutMsg fires when listening expires; an empty transcript is
// submitted, resolving to the hold default
type listenTimeoutMsg struct{ seq int }

// Options TUI 依赖注入 / Options injects the TUI's collaborators
type Options struct {
	Machine       *flow.Machine
	History       *storage.HistoryStore
	Phases        <-chan flow.Phase // fed by the machine's phase-change callback
	ListenTimeout time.Duration     // 0 disables the listening timeout
	ModelName     string
}

// App Bubble Tea 主 Model：模拟「拖-放-说」交互并可视化状态机
// App is the main Bubble Tea model. It simulates the drag-drop-speak
// interaction and visualizes the state machine.
type App struct {
	// 布局 / Layout
	width  int
	height int

	// 面板 / Panels
	logView viewport.Model

	// 输入 / Input
	input textarea.Model

	// 协作方 / Collaborators
	machine *flow.Machine
	history *storage.HistoryStore
	phases  <-chan flow.Phase

	// 内容缓冲。Model 在每次 Update 中按值复制，因此用切片而非 Builder。
	// Content buffer. The model is copied by value on every Update, so this
	// is a slice rather than a strings.Builder.
	logLines []string

	// 状态 / State
	phase         flow.Phase
	busy          bool
	lastError     string
	modelName     string
	listenTimeout time.Duration
	listenSeq     int // bumps on every listening entry; stale timeouts no-op

	// 配置 / Config
	theme Theme
	keys  KeyMap
}

// NewApp 创建 TUI 应用 / NewApp creates a new TUI application
func NewApp(opts Options) App {
	ta := textarea.New()
	ta.Placeholder = i18n.T("tui.input_placeholder")
	ta.CharLimit = 1024
	ta.SetHeight(1)
	ta.Focus()

	return App{
		input:         ta,
		machine:       opts.Machine,
		history:       opts.History,
		phases:        opts.Phases,
		phase:         opts.Machine.Phase(),
		modelName:     opts.ModelName,
		listenTimeout: opts.ListenTimeout,
		theme:         DarkTheme(),
		keys:          DefaultKeyMap(),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, a.listenPhases())
}

// listenPhases 等待下一次阶段变更 / listenPhases waits for the next phase change
func (a App) listenPhases() tea.Cmd {
	if a.phases == nil {
		return nil
	}
	ch := a.phases
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return PhaseMsg(p)
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Cancel):
			a.input.Reset()
			return a, nil
		case key.Matches(msg, a.keys.ScrollUp):
			a.logView.HalfViewUp()
			return a, nil
		case key.Matches(msg, a.keys.ScrollDown):
			a.logView.HalfViewDown()
			return a, nil
		case key.Matches(msg, a.keys.Submit):
			line := strings.TrimSpace(a.input.Value())
			a.input.Reset()
			if line == "" {
				return a, nil
			}
			return a.dispatch(line)
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.relayout()
		return a, nil

	case PhaseMsg:
		a.phase = flow.Phase(msg)
		a.appendLog("→ " + PhaseLabel(a.phase))
		cmds := []tea.Cmd{a.listenPhases()}
		if a.phase.Kind == flow.PhaseListening && a.listenTimeout > 0 {
			a.listenSeq++
			seq := a.listenSeq
			cmds = append(cmds, tea.Tick(a.listenTimeout, func(time.Time) tea.Msg {
				return listenTimeoutMsg{seq: seq}
			}))
		}
		return a, tea.Batch(cmds...)

	case listenTimeoutMsg:
		// 仅在仍处于同一次 listening 时生效 / Only acts when still inside
		// the same listening window
		if msg.seq != a.listenSeq || a.busy || a.machine.Phase().Kind != flow.PhaseListening {
			return a, nil
		}
		a.busy = true
		a.appendLog("(no voice command)")
		return a, a.speakCmd("")

	case TaskDoneMsg:
		a.busy = false
		a.phase = a.machine.Phase()
		if msg.Task != nil {
			a.appendTaskOutcome(msg.Task)
		}
		return a, nil
	}

	// 更新输入区 / Update input area
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// dispatch 把一行输入映射到状态机信号 / dispatch maps one input line to
// state-machine signals
func (a App) dispatch(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "quit", "exit":
		return a, tea.Quit
	case "drag":
		a.machine.OnDragDetected()
	case "hover":
		if len(args) > 0 && strings.EqualFold(args[0], "out") {
			a.machine.OnHoverExit()
		} else {
			a.machine.OnHoverEnter()
		}
	case "drop":
		if len(args) < 2 {
			a.appendLog("usage: drop <type> <name> [inline payload...]")
			return a, nil
		}
		payload := strings.Join(args[2:], " ")
		if payload == "" {
			payload = "(empty payload)"
		}
		it := item.New(item.ParseContentType(args[0]), args[1], []byte(payload), nil)
		a.machine.OnDropConfirmed(it)
	case "say":
		if a.busy {
			return a, nil
		}
		utterance := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		a.busy = true
		return a, a.speakCmd(utterance)
	case "history":
		a.refreshHistory()
	default:
		// 非命令输入视为直接说话 / Bare input is treated as speech
		if a.busy {
			return a, nil
		}
		a.busy = true
		return a, a.speakCmd(line)
	}

	a.phase = a.machine.Phase()
	return a, nil
}

// speakCmd 分类与执行可能走网络，放到 tea.Cmd 里跑
// speakCmd runs classification and execution off the update loop since
// they may hit the network
func (a App) speakCmd(utterance string) tea.Cmd {
	m := a.machine
	return func() tea.Msg {
		t := m.OnTranscriptReady(context.Background(), utterance)
		return TaskDoneMsg{Task: t}
	}
}

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}

	title := a.theme.TitleStyle.Render(" " + i18n.T("tui.title"))
	phaseLine := " " + a.theme.PhaseStyle(a.phase.Kind).Render(PhaseLabel(a.phase))

	var pendingBlock string
	if it, ok := a.machine.PendingItem(); ok {
		pendingBlock = lipgloss.JoinVertical(lipgloss.Left,
			" "+i18n.T("tui.pending")+": "+it.Name+" ("+string(it.Type)+")",
			" "+RenderPredictions(flow.Predict(it.Type)),
		)
	}

	inputBox := a.theme.InputStyle.Width(a.width).Render(a.input.View())
	statusBar := a.renderStatusBar(a.width)

	sections := []string{title, phaseLine}
	if pendingBlock != "" {
		sections = append(sections, pendingBlock)
	}
	sections = append(sections, a.logView.View(), inputBox, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// --- 内部方法 / Internal methods ---

func (a *App) relayout() {
	logHeight := a.height - 10
	if logHeight < 3 {
		logHeight = 3
	}
	a.logView = viewport.New(a.width, logHeight)
	a.logView.SetContent(strings.Join(a.logLines, "\n"))
	a.input.SetWidth(a.width - 4)
}

func (a *App) appendLog(text string) {
	a.logLines = append(a.logLines, text)
	a.logView.SetContent(strings.Join(a.logLines, "\n"))
	a.logView.GotoBottom()
}

func (a *App) appendTaskOutcome(t *task.Task) {
	in := t.Intent
	a.appendLog(fmt.Sprintf("intent: %s (%.2f)", in.Action.Description(), in.Confidence))
	switch t.Status {
	case task.StatusCompleted:
		if in.Action.Kind == intent.KindExtract && t.Result != "" {
			a.appendLog(RenderMarkdown(t.Result, a.width-2))
		} else if t.Result != "" {
			a.appendLog(t.Result)
		}
	case task.StatusFailed:
		a.lastError = t.FailReason
		a.appendLog(a.theme.ErrorStyle.Render(fmt.Sprintf(i18n.T("err.execute"), t.FailReason)))
	case task.StatusCancelled:
		a.appendLog(a.theme.MutedStyle.Render("cycle superseded"))
	}
}

func (a *App) refreshHistory() {
	if a.history == nil {
		a.appendLog(i18n.T("repl.history_none"))
		return
	}
	entries, err := a.history.Recent(10)
	if err != nil {
		a.appendLog("load history: " + err.Error())
		return
	}
	a.appendLog(i18n.T("tui.history") + "\n" + RenderHistory(entries))
}

func (a App) renderStatusBar(width int) string {
	status := i18n.T("status.ready")
	if a.busy {
		status = i18n.T("phase.processing")
	}

	left := fmt.Sprintf(" %s · %s", a.modelName, status)
	right := a.phase.Kind.String() + "  "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return a.theme.StatusBarStyle.Width(width).Render(bar)
}

// Run 启动 Bubble Tea TUI / Run starts the Bubble Tea TUI application
func Run(opts Options) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
