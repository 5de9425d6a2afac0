package classifier

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Tokenizer 统计提示词 token，tiktoken 不可用时回退到启发式估算
// Tokenizer counts prompt tokens, falling back to a heuristic estimate
// when tiktoken is unavailable (offline environments lack the BPE cache).
type Tokenizer struct {
	encoder  *tiktoken.Tiktoken
	fallback bool
	mu       sync.RWMutex
}

// NewTokenizer 创建 tokenizer / NewTokenizer creates a tokenizer
func NewTokenizer() *Tokenizer {
	t := &Tokenizer{}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		t.fallback = true
		return t
	}
	t.encoder = enc
	return t
}

// CountText 统计单段文本的 token 数 / CountText counts tokens for one string
func (t *Tokenizer) CountText(text string) int {
	if text == "" {
		return 0
	}
	if t.fallback {
		return heuristicTokenCount(text)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.encoder.Encode(text, nil, nil))
}

// Truncate 将文本裁剪到 token 预算内，防止失控的长转写撑爆提示词
// Truncate trims text to the token budget so a runaway transcript cannot
// blow up the classification prompt.
func (t *Tokenizer) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}
	if t.CountText(text) <= maxTokens {
		return text
	}
	if !t.fallback {
		t.mu.RLock()
		tokens := t.encoder.Encode(text, nil, nil)
		t.mu.RUnlock()
		if len(tokens) > maxTokens {
			tokens = tokens[:maxTokens]
		}
		t.mu.RLock()
		defer t.mu.RUnlock()
		return t.encoder.Decode(tokens)
	}

	// 启发式：按比例裁剪 rune / Heuristic: trim runes proportionally
	runes := []rune(text)
	estimated := heuristicTokenCount(text)
	keep := len(runes) * maxTokens / estimated
	if keep >= len(runes) {
		return text
	}
	if keep < 1 {
		keep = 1
	}
	return string(runes[:keep])
}

// heuristicTokenCount CJK 约 1.5 token/字，ASCII 约 4 字符/token
// heuristicTokenCount: CJK ~1.5 tokens per rune, ASCII ~4 chars per token
func heuristicTokenCount(text string) int {
	cjkCount := 0
	asciiCount := 0
	for _, r := range text {
		if isCJK(r) {
			cjkCount++
		} else {
			asciiCount++
		}
	}
	estimate := int(float64(cjkCount)*1.5 + float64(asciiCount)*0.25)
	if estimate < 1 {
		estimate = 1
	}
	return estimate
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || // CJK Unified
		(r >= 0x3400 && r <= 0x4DBF) || // CJK Extension A
		(r >= 0x3000 && r <= 0x303F) || // CJK Symbols
		(r >= 0xFF00 && r <= 0xFFEF) // Fullwidth Forms
}
