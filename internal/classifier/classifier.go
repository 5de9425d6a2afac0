package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"pocket/internal/intent"
	"pocket/internal/item"
)

// Completer 文本补全端点抽象，由 provider 客户端实现
// Completer abstracts the text-completion endpoint; the provider client
// implements it, tests stub it.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Options 分类器配置 / Options configures a Classifier
type Options struct {
	CacheSize         int
	PromptTokenBudget int // corrected utterance budget before the LLM call
}

// Classifier 将 (转写文本, 物品类型) 解析为 Intent。
// 解析顺序：空命令默认 hold → 纠错 → LRU 缓存 → 确定性模式匹配 → LLM 兜底。
// Classifier maps (transcript, item type) to an Intent. Resolution order:
// empty command defaults to hold, then correction, LRU cache, deterministic
// pattern match, LLM fallback.
type Classifier struct {
	completer Completer
	cache     *intentCache
	tokenizer *Tokenizer
	budget    int

	mu      sync.RWMutex
	lastErr error
}

// New 创建分类器；completer 可为 nil（离线模式，LLM 层直接走兜底）
// New creates a classifier. completer may be nil (offline mode: the LLM
// tier goes straight to the fallback).
func New(completer Completer, opts Options) *Classifier {
	budget := opts.PromptTokenBudget
	if budget <= 0 {
		budget = 192
	}
	return &Classifier{
		completer: completer,
		cache:     newIntentCache(opts.CacheSize),
		tokenizer: NewTokenizer(),
		budget:    budget,
	}
}

// Classify 解析单物品会话的语音命令 / Classify resolves a single-item command
func (c *Classifier) Classify(ctx context.Context, rawUtterance string, itemType item.ContentType) intent.Intent {
	return c.classify(ctx, rawUtterance, itemType, 1)
}

// ClassifyBatch 解析批量会话的命令；stagedCount > 1 时允许模型返回 apply_to_all
// ClassifyBatch resolves a command for a batch session; when stagedCount
// exceeds one, the model may set apply_to_all for uniform actions.
func (c *Classifier) ClassifyBatch(ctx context.Context, rawUtterance string, itemType item.ContentType, stagedCount int) intent.Intent {
	if stagedCount < 1 {
		stagedCount = 1
	}
	return c.classify(ctx, rawUtterance, itemType, stagedCount)
}

func (c *Classifier) classify(ctx context.Context, rawUtterance string, itemType item.ContentType, stagedCount int) intent.Intent {
	raw := strings.TrimSpace(rawUtterance)
	if raw == "" {
		// 无语音命令：默认 hold，不触网 / No voice command: hold, no network
		return intent.New(intent.Hold(), "", 1.0)
	}

	corrected := Correct(raw)
	key := cacheKey(corrected, itemType)
	if cached, ok := c.cache.get(key); ok {
		return cached
	}

	if action, ok := matchPattern(corrected, raw); ok {
		resolved := intent.New(action, raw, PatternConfidence)
		c.cache.put(key, resolved)
		return resolved
	}

	resolved, err := c.classifyWithModel(ctx, corrected, raw, itemType, stagedCount)
	if err != nil {
		c.setLastError(err)
		return intent.New(intent.Hold(), raw, 0.5)
	}
	c.setLastError(nil)
	c.cache.put(key, resolved)
	return resolved
}

// LastError 最近一次 LLM 分类失败的诊断信息；成功后清空
// LastError returns the diagnostic from the most recent failed LLM
// classification; cleared after the next success.
func (c *Classifier) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// CacheLen 当前缓存条数，用于诊断 / CacheLen reports cached entries
func (c *Classifier) CacheLen() int {
	return c.cache.len()
}

func (c *Classifier) setLastError(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

func cacheKey(corrected string, itemType item.ContentType) string {
	return corrected + "|" + string(itemType)
}

// --- LLM fallback ---

const classifySystemPrompt = `You interpret short voice commands about a file the user just dropped.
Reply with ONLY a JSON object, no prose, no markdown:
{"action": "<action>", "target": "<argument or empty>", "confidence": <0..1>, "apply_to_all": <bool>}

Actions: hold, send, convert, summarize, extract_text, translate, transcribe, print, airplay.
- "target" carries the send recipient, convert format, translate language, or airplay device.
- Set "apply_to_all" true only when the user clearly means every staged item.
- When unsure, answer {"action": "hold", "target": "", "confidence": 0.3, "apply_to_all": false}.

Examples:
Command: "can you make this shorter" -> {"action": "summarize", "target": "", "confidence": 0.85, "apply_to_all": false}
Command: "把这个发给妈妈" -> {"action": "send", "target": "妈妈", "confidence": 0.9, "apply_to_all": false}
Command: "read out whats written here" -> {"action": "extract_text", "target": "", "confidence": 0.8, "apply_to_all": false}
Command: "put them all on the tv" -> {"action": "airplay", "target": "tv", "confidence": 0.85, "apply_to_all": true}`

type modelReply struct {
	Action     string   `json:"action"`
	Target     string   `json:"target"`
	Confidence *float64 `json:"confidence"`
	ApplyToAll bool     `json:"apply_to_all"`
}

func (c *Classifier) classifyWithModel(ctx context.Context, corrected, raw string, itemType item.ContentType, stagedCount int) (intent.Intent, error) {
	if c.completer == nil {
		return intent.Intent{}, fmt.Errorf("no completion endpoint configured")
	}

	command := c.tokenizer.Truncate(corrected, c.budget)
	var user strings.Builder
	fmt.Fprintf(&user, "Item type: %s\n", itemType)
	if stagedCount > 1 {
		fmt.Fprintf(&user, "Staged items in session: %d\n", stagedCount)
	}
	fmt.Fprintf(&user, "Command: %q", command)

	content, err := c.completer.Complete(ctx, classifySystemPrompt, user.String())
	if err != nil {
		return intent.Intent{}, fmt.Errorf("completion request: %w", err)
	}

	reply, err := parseModelReply(content)
	if err != nil {
		return intent.Intent{}, err
	}

	action, ok := intent.FromModelAction(reply.Action, reply.Target)
	if !ok {
		return intent.Intent{}, fmt.Errorf("unrecognized action %q", reply.Action)
	}

	confidence := 0.8
	if reply.Confidence != nil {
		confidence = *reply.Confidence
	}

	resolved := intent.New(action, raw, confidence)
	if stagedCount > 1 {
		resolved.ApplyToAll = reply.ApplyToAll
	}
	return resolved, nil
}

// parseModelReply 严格解析模型回复：剥掉可能的 markdown 围栏，要求根对象
// 且 action 字段存在；其余情况一律判定失败走兜底。
// parseModelReply strictly parses the model reply: strips a possible
// markdown fence, requires a root object with an action field; anything
// else fails into the deterministic fallback.
func parseModelReply(content string) (modelReply, error) {
	cleaned := stripCodeFence(content)
	start := strings.IndexByte(cleaned, '{')
	end := strings.LastIndexByte(cleaned, '}')
	if start < 0 || end <= start {
		return modelReply{}, fmt.Errorf("reply has no JSON object: %q", truncateForError(content))
	}

	var reply modelReply
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &reply); err != nil {
		return modelReply{}, fmt.Errorf("parse reply JSON: %w", err)
	}
	if strings.TrimSpace(reply.Action) == "" {
		return modelReply{}, fmt.Errorf("reply missing action field")
	}
	return reply, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// 围栏语言标记（```json）占第一行 / The fence language tag takes line one
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "json" || first == "" {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncateForError(s string) string {
	const max = 120
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
