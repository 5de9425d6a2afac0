package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pocket/internal/classifier"
	"pocket/internal/config"
	"pocket/internal/flow"
	"pocket/internal/i18n"
	"pocket/internal/provider"
	"pocket/internal/repl"
	"pocket/internal/storage"
	"pocket/internal/task"
	"pocket/internal/tui"
)

func main() {
	var (
		configPath string
		useTUI     bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config JSON/JSONC")
	flag.BoolVar(&useTUI, "tui", false, "Run the full-screen TUI instead of the REPL")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	i18n.Init(cfg.Locale)

	providerClient := provider.NewClient(cfg.Provider)

	// 无 API key 时离线运行：缓存 + 模式匹配仍然可用，LLM 层走兜底
	// Without an API key the app runs offline: cache and pattern matching
	// still work, the LLM tier falls back.
	var completer classifier.Completer
	var text task.TextService
	var transcriber task.Transcriber
	var replTranscriber *provider.Client
	if cfg.Provider.APIKey != "" {
		completer = providerClient
		text = providerClient
		transcriber = providerClient
		replTranscriber = providerClient
	} else {
		fmt.Fprintln(os.Stderr, "no API key configured; running with patterns only")
	}

	cls := classifier.New(completer, classifier.Options{
		CacheSize:         cfg.Classifier.CacheSize,
		PromptTokenBudget: cfg.Classifier.PromptTokenBudget,
	})

	history, err := storage.NewHistoryStore(
		filepath.Join(cfg.Storage.BaseDir, "history.db"),
		cfg.Storage.HistoryLimit,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init history failed: %v\n", err)
		os.Exit(1)
	}
	defer history.Close()

	executor := task.NewLocalExecutor(cfg.Storage.BaseDir, text, transcriber)

	opts := flow.Options{
		Classifier:      cls,
		Executor:        executor,
		History:         history,
		CompletionDelay: time.Duration(cfg.Interaction.CompletionDelayMS) * time.Millisecond,
	}

	if useTUI {
		phases := make(chan flow.Phase, 16)
		opts.OnPhaseChange = func(p flow.Phase) {
			// 回调在状态机锁内触发，不可阻塞 / The callback fires under the
			// machine's lock and must not block
			select {
			case phases <- p:
			default:
			}
		}
		machine := flow.NewMachine(opts)
		if err := tui.Run(tui.Options{
			Machine:       machine,
			History:       history,
			Phases:        phases,
			ListenTimeout: time.Duration(cfg.Interaction.ListenTimeoutMS) * time.Millisecond,
			ModelName:     providerClient.Model(),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "tui failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	machine := flow.NewMachine(opts)
	session := repl.New(repl.Options{
		Machine:     machine,
		History:     history,
		Transcriber: replTranscriber,
		HistoryFile: filepath.Join(cfg.Storage.BaseDir, "repl.history"),
	})
	if err := session.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "repl failed: %v\n", err)
		os.Exit(1)
	}
}
