package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pocket/internal/flow"
	"pocket/internal/i18n"
	"pocket/internal/intent"
	"pocket/internal/item"
	"pocket/internal/provider"
	"pocket/internal/storage"
	"pocket/internal/task"

	"github.com/chzyer/readline"
)

// Options REPL 依赖注入 / Options injects the REPL's collaborators
type Options struct {
	Machine     *flow.Machine
	History     *storage.HistoryStore
	Transcriber *provider.Client // optional; enables the listen command
	HistoryFile string           // readline input history path
	Out         io.Writer
}

// Session 行编辑交互循环，模拟拖放与语音信号来驱动状态机
// Session is the line-edited interaction loop. It drives the state machine
// through simulated drag/hover/drop/speak signals.
type Session struct {
	machine     *flow.Machine
	history     *storage.HistoryStore
	transcriber *provider.Client
	historyFile string
	out         io.Writer
}

// New 创建 REPL 会话 / New creates a REPL session
func New(opts Options) *Session {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Session{
		machine:     opts.Machine,
		history:     opts.History,
		transcriber: opts.Transcriber,
		historyFile: opts.HistoryFile,
		out:         out,
	}
}

// Run 运行交互循环直到 exit / Run runs the loop until exit
func (s *Session) Run(ctx context.Context) error {
	input, err := newLineInput(s.historyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "line editor unavailable, fallback to basic input: %v\n", err)
	}
	defer input.Close()

	fmt.Fprintln(s.out, i18n.T("repl.welcome"))
	fmt.Fprintln(s.out, i18n.T("repl.help"))

	for {
		line, err := input.ReadLine(s.prompt())
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(s.out, i18n.T("repl.goodbye"))
			return nil
		case err != nil:
			return fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if done := s.dispatch(ctx, line); done {
			fmt.Fprintln(s.out, i18n.T("repl.goodbye"))
			return nil
		}
	}
}

// prompt 提示符携带当前阶段 / prompt carries the current phase
func (s *Session) prompt() string {
	p := s.machine.Phase()
	return fmt.Sprintf("[%s] > ", p.Kind)
}

// dispatch 处理一条命令；返回 true 表示退出
// dispatch handles one command; true means exit
func (s *Session) dispatch(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "exit", "quit":
		return true
	case "help":
		fmt.Fprintln(s.out, i18n.T("repl.help"))
	case "drag":
		s.machine.OnDragDetected()
		s.printPhase()
	case "hover":
		if len(args) > 0 && strings.EqualFold(args[0], "out") {
			s.machine.OnHoverExit()
		} else {
			s.machine.OnHoverEnter()
		}
		s.printPhase()
	case "drop":
		s.cmdDrop(args)
	case "say":
		s.cmdSay(ctx, strings.TrimSpace(strings.TrimPrefix(line, fields[0])))
	case "listen":
		s.cmdListen(ctx, args)
	case "predict":
		s.cmdPredict(args)
	case "history":
		s.cmdHistory(args)
	case "phase":
		s.printPhase()
	default:
		fmt.Fprintf(s.out, "unknown command: %s\n", cmd)
		fmt.Fprintln(s.out, i18n.T("repl.help"))
	}
	return false
}

func (s *Session) cmdDrop(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "usage: drop <type> <name> [inline payload...]")
		return
	}
	contentType := item.ParseContentType(args[0])
	name := args[1]
	payload := strings.Join(args[2:], " ")
	if payload == "" {
		payload = "(empty payload)"
	}

	it := item.New(contentType, name, []byte(payload), nil)
	s.machine.OnDropConfirmed(it)
	fmt.Fprintf(s.out, i18n.T("repl.item_pending")+"\n", it.Name, it.Type)
	s.printPhase()
}

func (s *Session) cmdSay(ctx context.Context, utterance string) {
	if _, ok := s.machine.PendingItem(); !ok {
		fmt.Fprintln(s.out, i18n.T("repl.no_item"))
		return
	}
	t := s.machine.OnTranscriptReady(ctx, utterance)
	if t == nil {
		s.printPhase()
		return
	}
	s.printTask(t)
}

// cmdListen 读取 WAV 文件，经转写端点得到文本后再走正常分类流程
// cmdListen reads a WAV file, transcribes it, then feeds the transcript
// through the normal classification flow.
func (s *Session) cmdListen(ctx context.Context, args []string) {
	if s.transcriber == nil {
		fmt.Fprintln(s.out, "no transcription endpoint configured")
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(s.out, "usage: listen <wavfile> [language]")
		return
	}
	if _, ok := s.machine.PendingItem(); !ok {
		fmt.Fprintln(s.out, i18n.T("repl.no_item"))
		return
	}

	audio, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "read audio: %v\n", err)
		return
	}
	language := ""
	if len(args) > 1 {
		language = args[1]
	}
	transcript, err := s.transcriber.Transcribe(ctx, audio, language)
	if err != nil {
		fmt.Fprintf(s.out, "transcribe: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "heard: %q\n", transcript)
	if t := s.machine.OnTranscriptReady(ctx, transcript); t != nil {
		s.printTask(t)
	}
}

func (s *Session) cmdPredict(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "usage: predict <type>")
		return
	}
	for i, p := range flow.Predict(item.ParseContentType(args[0])) {
		fmt.Fprintf(s.out, "  %d. %s %s (%.2f)\n", i+1, p.Icon, p.Label, p.Confidence)
	}
}

func (s *Session) cmdHistory(args []string) {
	if s.history == nil {
		fmt.Fprintln(s.out, i18n.T("repl.history_none"))
		return
	}
	n := 10
	if len(args) > 0 {
		if parsed, err := strconv.Atoi(args[0]); err == nil && parsed > 0 {
			n = parsed
		}
	}
	entries, err := s.history.Recent(n)
	if err != nil {
		fmt.Fprintf(s.out, "load history: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(s.out, i18n.T("repl.history_none"))
		return
	}
	for _, e := range entries {
		mark := "✓"
		if e.Status != string(task.StatusCompleted) {
			mark = "✗"
		}
		fmt.Fprintf(s.out, "  %s %-10s %-24s %s\n", mark, e.ActionKind, e.ItemName, e.FinishedAt)
	}
}

func (s *Session) printPhase() {
	p := s.machine.Phase()
	switch p.Kind {
	case flow.PhaseProcessing:
		fmt.Fprintf(s.out, "phase: %s (%s)\n", p.Kind, p.Status)
	case flow.PhaseCompletion:
		label := i18n.T("status.success")
		if !p.Success {
			label = i18n.T("status.failure")
		}
		fmt.Fprintf(s.out, "phase: %s %s\n", p.Kind, label)
	default:
		fmt.Fprintf(s.out, "phase: %s\n", p.Kind)
	}
}

func (s *Session) printTask(t *task.Task) {
	in := t.Intent
	fmt.Fprintf(s.out, "intent: %s (confidence %.2f)\n", in.Action.Description(), in.Confidence)
	switch t.Status {
	case task.StatusCompleted:
		if in.Action.Kind == intent.KindExtract && t.Result != "" {
			// 提取结果多为 markdown，用 Glamour 渲染
			// Extraction output tends to be markdown; render it
			fmt.Fprintln(s.out, renderMarkdown(t.Result, 80))
		} else if t.Result != "" {
			fmt.Fprintln(s.out, t.Result)
		}
		fmt.Fprintln(s.out, i18n.T("status.success"))
	case task.StatusFailed:
		fmt.Fprintf(s.out, i18n.T("err.execute")+"\n", t.FailReason)
	case task.StatusCancelled:
		fmt.Fprintln(s.out, "cycle superseded")
	}
}

type lineInput interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

type readlineInput struct {
	instance *readline.Instance
}

func newReadlineInput(historyPath string) (*readlineInput, error) {
	if historyPath != "" {
		if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	instance, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyPath,
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, err
	}
	return &readlineInput{instance: instance}, nil
}

func (r *readlineInput) ReadLine(prompt string) (string, error) {
	r.instance.SetPrompt(prompt)
	return r.instance.Readline()
}

func (r *readlineInput) Close() error {
	if r == nil || r.instance == nil {
		return nil
	}
	return r.instance.Close()
}

type basicLineInput struct {
	reader *bufio.Reader
	out    io.Writer
}

func (b *basicLineInput) ReadLine(prompt string) (string, error) {
	if b.out != nil {
		fmt.Fprint(b.out, prompt)
	}
	line, err := b.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (b *basicLineInput) Close() error { return nil }

func newLineInput(historyPath string) (lineInput, error) {
	readlineReader, err := newReadlineInput(historyPath)
	if err == nil {
		return readlineReader, nil
	}
	return &basicLineInput{reader: bufio.NewReader(os.Stdin), out: os.Stdout}, err
}
