package classifier

import (
	"strings"
	"testing"
)

func TestTokenizerCountText(t *testing.T) {
	tok := NewTokenizer()

	if got := tok.CountText(""); got != 0 {
		t.Fatalf("empty text counted %d tokens", got)
	}
	short := tok.CountText("send to mom")
	long := tok.CountText(strings.Repeat("send this file to my mother ", 50))
	if short <= 0 {
		t.Fatalf("short text counted %d tokens", short)
	}
	if long <= short {
		t.Fatalf("longer text should count more tokens: %d vs %d", long, short)
	}
}

func TestTokenizerTruncate(t *testing.T) {
	tok := NewTokenizer()

	// 预算内的文本原样返回 / Text within budget comes back unchanged
	if got := tok.Truncate("hold this", 64); got != "hold this" {
		t.Fatalf("short text was modified: %q", got)
	}
	if got := tok.Truncate("anything", 0); got != "anything" {
		t.Fatalf("zero budget should disable truncation, got %q", got)
	}

	long := strings.Repeat("convert this document into a portable format ", 40)
	got := tok.Truncate(long, 16)
	if len(got) >= len(long) {
		t.Fatalf("long text was not truncated: %d >= %d", len(got), len(long))
	}
	if got == "" {
		t.Fatal("truncation produced an empty string")
	}
}

func TestHeuristicTokenCount(t *testing.T) {
	ascii := heuristicTokenCount("send this to john right now")
	cjk := heuristicTokenCount("把这个文件发送给我的妈妈看看")

	if ascii < 1 || cjk < 1 {
		t.Fatalf("estimates must be positive: ascii=%d cjk=%d", ascii, cjk)
	}
	// 中文按字计重，应明显高于等长 ASCII / CJK weighs per rune, well above
	// same-length ASCII
	if cjk <= ascii/2 {
		t.Fatalf("cjk estimate suspiciously low: %d vs ascii %d", cjk, ascii)
	}
}

func TestIsCJK(t *testing.T) {
	for _, r := range "转换打印" {
		if !isCJK(r) {
			t.Fatalf("%c should be CJK", r)
		}
	}
	for _, r := range "abc123" {
		if isCJK(r) {
			t.Fatalf("%c should not be CJK", r)
		}
	}
}
