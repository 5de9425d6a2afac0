package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ProviderConfig Groq / OpenAI 兼容端点配置
// ProviderConfig configures the Groq / OpenAI-compatible endpoint
type ProviderConfig struct {
	BaseURL         string  `json:"base_url"`
	Model           string  `json:"model"`
	TranscribeModel string  `json:"transcribe_model"`
	APIKey          string  `json:"api_key"`
	TimeoutMS       int     `json:"timeout_ms"`
	MaxRetries      int     `json:"max_retries"`
	Temperature     float64 `json:"temperature"`
	MaxTokens       int     `json:"max_tokens"`
}

type ClassifierConfig struct {
	CacheSize         int `json:"cache_size"`
	PromptTokenBudget int `json:"prompt_token_budget"`
}

type InteractionConfig struct {
	// CompletionDelayMS completion 阶段自动回到 idle 的延迟
	// CompletionDelayMS is the delay before completion resets to idle.
	CompletionDelayMS int `json:"completion_delay_ms"`
	// ListenTimeoutMS 前端等待语音转写的超时；超时按空命令处理
	// ListenTimeoutMS is how long frontends wait for a transcript before
	// treating the command as absent.
	ListenTimeoutMS int `json:"listen_timeout_ms"`
}

type StorageConfig struct {
	BaseDir      string `json:"base_dir"`
	HistoryLimit int    `json:"history_limit"`
}

type Config struct {
	Provider    ProviderConfig    `json:"provider"`
	Classifier  ClassifierConfig  `json:"classifier"`
	Interaction InteractionConfig `json:"interaction"`
	Storage     StorageConfig     `json:"storage"`
	Locale      string            `json:"locale"`
}

type fileClassifierConfig struct {
	CacheSize         *int `json:"cache_size"`
	PromptTokenBudget *int `json:"prompt_token_budget"`
}

type fileInteractionConfig struct {
	CompletionDelayMS *int `json:"completion_delay_ms"`
	ListenTimeoutMS   *int `json:"listen_timeout_ms"`
}

type fileConfig struct {
	Provider    *ProviderConfig        `json:"provider"`
	Classifier  *fileClassifierConfig  `json:"classifier"`
	Interaction *fileInteractionConfig `json:"interaction"`
	Storage     *StorageConfig         `json:"storage"`
	Locale      *string                `json:"locale"`
}

func Default() Config {
	return Config{
		Provider: ProviderConfig{
			BaseURL:         "https://api.groq.com/openai/v1",
			Model:           "llama-3.1-8b-instant",
			TranscribeModel: "whisper-large-v3",
			TimeoutMS:       30000,
			MaxRetries:      2,
			Temperature:     0.1,
			MaxTokens:       256,
		},
		Classifier: ClassifierConfig{
			CacheSize:         100,
			PromptTokenBudget: 192,
		},
		Interaction: InteractionConfig{
			CompletionDelayMS: 2000,
			ListenTimeoutMS:   8000,
		},
		Storage: StorageConfig{
			BaseDir:      "~/.pocket",
			HistoryLimit: 200,
		},
	}
}

// Load 读取配置：默认值 → 全局配置 → 项目配置 → 环境变量，逐层覆盖
// Load layers config: defaults, then global file, then project file, then
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("POCKET_CONFIG_PATH")); envPath != "" {
		resolvedPath = envPath
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return applyEnv(cfg)
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, ".pocket", "config.json")}
}

func findProjectConfigPath() string {
	candidates := []string{
		"pocket.config.json",
		".pocket/config.json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	cleaned := stripJSONComments(data)
	var fileCfg fileConfig
	if err := json.Unmarshal(cleaned, &fileCfg); err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}
	applyFileConfig(cfg, fileCfg)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Provider != nil {
		cfg.Provider = mergeProvider(cfg.Provider, *fc.Provider)
	}
	if fc.Classifier != nil {
		if fc.Classifier.CacheSize != nil {
			cfg.Classifier.CacheSize = *fc.Classifier.CacheSize
		}
		if fc.Classifier.PromptTokenBudget != nil {
			cfg.Classifier.PromptTokenBudget = *fc.Classifier.PromptTokenBudget
		}
	}
	if fc.Interaction != nil {
		if fc.Interaction.CompletionDelayMS != nil {
			cfg.Interaction.CompletionDelayMS = *fc.Interaction.CompletionDelayMS
		}
		if fc.Interaction.ListenTimeoutMS != nil {
			cfg.Interaction.ListenTimeoutMS = *fc.Interaction.ListenTimeoutMS
		}
	}
	if fc.Storage != nil {
		cfg.Storage = mergeStorage(cfg.Storage, *fc.Storage)
	}
	if fc.Locale != nil {
		cfg.Locale = strings.TrimSpace(*fc.Locale)
	}
}

func mergeProvider(base ProviderConfig, override ProviderConfig) ProviderConfig {
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = override.BaseURL
	}
	if strings.TrimSpace(override.Model) != "" {
		base.Model = override.Model
	}
	if strings.TrimSpace(override.TranscribeModel) != "" {
		base.TranscribeModel = override.TranscribeModel
	}
	if strings.TrimSpace(override.APIKey) != "" {
		base.APIKey = override.APIKey
	}
	if override.TimeoutMS > 0 {
		base.TimeoutMS = override.TimeoutMS
	}
	if override.MaxRetries > 0 {
		base.MaxRetries = override.MaxRetries
	}
	if override.Temperature > 0 {
		base.Temperature = override.Temperature
	}
	if override.MaxTokens > 0 {
		base.MaxTokens = override.MaxTokens
	}
	return base
}

func mergeStorage(base StorageConfig, override StorageConfig) StorageConfig {
	if strings.TrimSpace(override.BaseDir) != "" {
		base.BaseDir = override.BaseDir
	}
	if override.HistoryLimit > 0 {
		base.HistoryLimit = override.HistoryLimit
	}
	return base
}

func normalize(cfg *Config) error {
	def := Default()
	if strings.TrimSpace(cfg.Provider.BaseURL) == "" {
		cfg.Provider.BaseURL = def.Provider.BaseURL
	}
	if strings.TrimSpace(cfg.Provider.Model) == "" {
		cfg.Provider.Model = def.Provider.Model
	}
	if strings.TrimSpace(cfg.Provider.TranscribeModel) == "" {
		cfg.Provider.TranscribeModel = def.Provider.TranscribeModel
	}
	if cfg.Provider.TimeoutMS <= 0 {
		cfg.Provider.TimeoutMS = def.Provider.TimeoutMS
	}
	if cfg.Provider.MaxRetries <= 0 {
		cfg.Provider.MaxRetries = def.Provider.MaxRetries
	}
	if cfg.Provider.Temperature <= 0 || cfg.Provider.Temperature > 2 {
		cfg.Provider.Temperature = def.Provider.Temperature
	}
	if cfg.Provider.MaxTokens <= 0 {
		cfg.Provider.MaxTokens = def.Provider.MaxTokens
	}

	if cfg.Classifier.CacheSize <= 0 {
		cfg.Classifier.CacheSize = def.Classifier.CacheSize
	}
	if cfg.Classifier.PromptTokenBudget <= 0 {
		cfg.Classifier.PromptTokenBudget = def.Classifier.PromptTokenBudget
	}

	if cfg.Interaction.CompletionDelayMS <= 0 {
		cfg.Interaction.CompletionDelayMS = def.Interaction.CompletionDelayMS
	}
	if cfg.Interaction.ListenTimeoutMS <= 0 {
		cfg.Interaction.ListenTimeoutMS = def.Interaction.ListenTimeoutMS
	}

	if cfg.Storage.HistoryLimit <= 0 {
		cfg.Storage.HistoryLimit = def.Storage.HistoryLimit
	}
	baseDir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return err
	}
	if baseDir == "" {
		baseDir, err = expandPath(def.Storage.BaseDir)
		if err != nil {
			return err
		}
	}
	cfg.Storage.BaseDir = baseDir
	return nil
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("POCKET_BASE_URL")); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("POCKET_MODEL")); v != "" {
		cfg.Provider.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("POCKET_API_KEY")); v != "" {
		cfg.Provider.APIKey = v
	} else if v := strings.TrimSpace(os.Getenv("GROQ_API_KEY")); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("POCKET_DATA_DIR")); v != "" {
		cfg.Storage.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv("POCKET_HISTORY_LIMIT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid POCKET_HISTORY_LIMIT: %q", v)
		}
		cfg.Storage.HistoryLimit = n
	}
	if v := strings.TrimSpace(os.Getenv("POCKET_LANG")); v != "" {
		cfg.Locale = v
	}

	return cfg, normalize(&cfg)
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			if c == '"' {
				state = stateString
				out.WriteByte(c)
				continue
			}
			if c == '/' && next == '/' {
				state = stateLineComment
				i++
				continue
			}
			if c == '/' && next == '*' {
				state = stateBlockComment
				i++
				continue
			}
			out.WriteByte(c)
		case stateString:
			out.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	return out.Bytes()
}
