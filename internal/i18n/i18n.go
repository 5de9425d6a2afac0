package i18n

import (
	"fmt"
	"os"
	"strings"
)

// I18n 持有一个语言环境的消息目录。目录在构造后只读。
// I18n holds the message catalog for one locale. The catalog is read-only
// after construction.
type I18n struct {
	locale   string
	messages map[string]string
}

var global = New("")

// Init 按配置的 locale 重建全局实例，应在启动早期调用一次
// Init rebuilds the global instance for the configured locale; call it once
// during startup.
func Init(locale string) {
	global = New(locale)
}

// T 全局翻译快捷函数
// T is the global translation shortcut
func T(key string, args ...any) string {
	return global.T(key, args...)
}

// New 创建 i18n 实例；locale 为空时从环境变量检测
// New creates an i18n instance, detecting the locale from the environment
// when it is empty.
func New(locale string) *I18n {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DetectLocale()
	}
	locale = normalizeLocale(locale)

	i := &I18n{
		locale:   locale,
		messages: make(map[string]string),
	}

	// 先加载英文作为 fallback / Load English as fallback first
	for k, v := range EnMessages {
		i.messages[k] = v
	}
	if locale == "zh-CN" || locale == "zh" {
		for k, v := range ZhCNMessages {
			i.messages[k] = v
		}
	}
	return i
}

// T 翻译函数；未知键原样返回 / T translates a key, returning unknown keys
// verbatim.
func (i *I18n) T(key string, args ...any) string {
	tmpl, ok := i.messages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Locale 返回当前 locale
// Locale returns the current locale
func (i *I18n) Locale() string {
	return i.locale
}

// DetectLocale 从环境变量检测 locale
// DetectLocale detects the locale from the environment
func DetectLocale() string {
	for _, env := range []string{"POCKET_LANG", "LANG", "LC_ALL", "LC_MESSAGES"} {
		v := strings.TrimSpace(os.Getenv(env))
		if v == "" {
			continue
		}
		return normalizeLocale(v)
	}
	return "en"
}

func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "en"
	}
	// 去掉 .UTF-8 等后缀 / Strip .UTF-8 style suffixes
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		s = s[:idx]
	}
	s = strings.ReplaceAll(s, "_", "-")
	lower := strings.ToLower(s)

	if strings.HasPrefix(lower, "zh") {
		return "zh-CN"
	}
	if strings.HasPrefix(lower, "en") {
		return "en"
	}
	return s
}
