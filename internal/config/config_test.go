package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// 隔离 HOME 和环境变量，避免机器上的真实配置渗入
// Isolate HOME and env vars so real machine config cannot leak in
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"POCKET_CONFIG_PATH", "POCKET_BASE_URL", "POCKET_MODEL",
		"POCKET_API_KEY", "GROQ_API_KEY", "POCKET_DATA_DIR",
		"POCKET_HISTORY_LIMIT", "POCKET_LANG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Provider.BaseURL != "https://api.groq.com/openai/v1" {
		t.Fatalf("base url = %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.Model != "llama-3.1-8b-instant" {
		t.Fatalf("model = %q", cfg.Provider.Model)
	}
	if cfg.Provider.TranscribeModel != "whisper-large-v3" {
		t.Fatalf("transcribe model = %q", cfg.Provider.TranscribeModel)
	}
	if cfg.Provider.Temperature != 0.1 || cfg.Provider.MaxTokens != 256 {
		t.Fatalf("sampling = %v / %d", cfg.Provider.Temperature, cfg.Provider.MaxTokens)
	}
	if cfg.Classifier.CacheSize != 100 || cfg.Classifier.PromptTokenBudget != 192 {
		t.Fatalf("classifier = %+v", cfg.Classifier)
	}
	if cfg.Interaction.CompletionDelayMS != 2000 || cfg.Interaction.ListenTimeoutMS != 8000 {
		t.Fatalf("interaction = %+v", cfg.Interaction)
	}
	if cfg.Storage.HistoryLimit != 200 {
		t.Fatalf("history limit = %d", cfg.Storage.HistoryLimit)
	}
	if !filepath.IsAbs(cfg.Storage.BaseDir) {
		t.Fatalf("base dir not expanded: %q", cfg.Storage.BaseDir)
	}
}

func TestLoadJSONCFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.jsonc")
	content := `{
		// completion endpoint
		"provider": {
			"model": "llama-3.3-70b-versatile", /* bigger model */
			"api_key": "gsk_test"
		},
		"classifier": { "cache_size": 50 },
		"locale": "zh-CN"
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Provider.Model != "llama-3.3-70b-versatile" {
		t.Fatalf("model = %q", cfg.Provider.Model)
	}
	if cfg.Provider.APIKey != "gsk_test" {
		t.Fatalf("api key = %q", cfg.Provider.APIKey)
	}
	if cfg.Classifier.CacheSize != 50 {
		t.Fatalf("cache size = %d", cfg.Classifier.CacheSize)
	}
	// 未覆盖的字段保留默认值 / Untouched fields keep their defaults
	if cfg.Classifier.PromptTokenBudget != 192 {
		t.Fatalf("token budget = %d", cfg.Classifier.PromptTokenBudget)
	}
	if cfg.Provider.BaseURL != "https://api.groq.com/openai/v1" {
		t.Fatalf("base url = %q", cfg.Provider.BaseURL)
	}
	if cfg.Locale != "zh-CN" {
		t.Fatalf("locale = %q", cfg.Locale)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("POCKET_MODEL", "llama-guard-3-8b")
	t.Setenv("GROQ_API_KEY", "gsk_env")
	t.Setenv("POCKET_HISTORY_LIMIT", "42")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider.Model != "llama-guard-3-8b" {
		t.Fatalf("model = %q", cfg.Provider.Model)
	}
	if cfg.Provider.APIKey != "gsk_env" {
		t.Fatalf("api key = %q", cfg.Provider.APIKey)
	}
	if cfg.Storage.HistoryLimit != 42 {
		t.Fatalf("history limit = %d", cfg.Storage.HistoryLimit)
	}
}

// POCKET_API_KEY 优先于 GROQ_API_KEY / POCKET_API_KEY wins over GROQ_API_KEY
func TestAPIKeyPrecedence(t *testing.T) {
	isolateEnv(t)
	t.Setenv("POCKET_API_KEY", "gsk_pocket")
	t.Setenv("GROQ_API_KEY", "gsk_groq")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider.APIKey != "gsk_pocket" {
		t.Fatalf("api key = %q", cfg.Provider.APIKey)
	}
}

func TestInvalidHistoryLimitEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("POCKET_HISTORY_LIMIT", "lots")

	if _, err := Load(""); err == nil {
		t.Fatal("expected an error for a non-numeric history limit")
	}
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"provider": {"temperature": 5.0, "max_tokens": -1}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// 超出范围的值回退默认 / Out-of-range values fall back to defaults
	if cfg.Provider.Temperature != 0.1 {
		t.Fatalf("temperature = %v", cfg.Provider.Temperature)
	}
	if cfg.Provider.MaxTokens != 256 {
		t.Fatalf("max tokens = %d", cfg.Provider.MaxTokens)
	}
}

func TestLoadMissingFileIsFine(t *testing.T) {
	isolateEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err != nil {
		t.Fatalf("missing config should be tolerated: %v", err)
	}
}

func TestLoadBrokenJSON(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"provider": `), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestStripJSONComments(t *testing.T) {
	in := `{
		// line comment
		"url": "https://example.com//path", /* block */
		"note": "keep // this and /* that */"
	}`
	out := string(stripJSONComments([]byte(in)))

	if strings.Contains(out, "line comment") || strings.Contains(out, "block") {
		t.Fatalf("comments survived: %s", out)
	}
	if !strings.Contains(out, "https://example.com//path") {
		t.Fatalf("string content mangled: %s", out)
	}
	if !strings.Contains(out, "keep // this and /* that */") {
		t.Fatalf("string content mangled: %s", out)
	}
}
