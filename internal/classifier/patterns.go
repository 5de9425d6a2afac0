package classifier

import (
	"strings"

	"pocket/internal/intent"
)

// PatternConfidence 模式命中时的固定置信度
// PatternConfidence is the fixed confidence for deterministic matches
const PatternConfidence = 0.9

// 各动作的触发短语，按优先级排列：hold > send > convert > summarize >
// translate > print。先命中的类别获胜，因此同时包含 "hold" 和 "send"
// 短语的命令解析为 hold。
// Trigger phrases per action, in precedence order: hold > send > convert >
// summarize > translate > print. First matching category wins, so an
// utterance containing both hold and send phrases resolves to hold.
var patternCategories = []struct {
	name    string
	phrases []string
}{
	{"hold", []string{
		"hold", "keep this", "keep it", "hang on", "stash",
		"先放着", "拿着", "保存", "存一下", "放进口袋",
	}},
	{"send", []string{
		"send", "share",
		"发送", "发给", "分享", "传给",
	}},
	{"convert", []string{
		"convert", "turn into", "change to", "change into",
		"转换", "转成", "变成",
	}},
	{"summarize", []string{
		"summarize", "summary", "sum up", "tldr",
		"总结", "概括", "摘要",
	}},
	{"translate", []string{
		"translate", "翻译", "译成",
	}},
	{"print", []string{
		"print", "打印",
	}},
}

// matchPattern 在纠错后的文本上做确定性匹配。raw 保留原始大小写，
// 用于提取发送目标等参数。未命中返回 ok=false。
// matchPattern runs the deterministic match over the corrected text. raw
// keeps the original casing for argument extraction (send targets).
// Returns ok=false when no category matches.
func matchPattern(corrected, raw string) (intent.Action, bool) {
	for _, cat := range patternCategories {
		matched := ""
		for _, phrase := range cat.phrases {
			if strings.Contains(corrected, phrase) {
				matched = phrase
				break
			}
		}
		if matched == "" {
			continue
		}

		switch cat.name {
		case "hold":
			return intent.Hold(), true
		case "send":
			return intent.Send(extractSendTarget(raw)), true
		case "convert":
			return intent.Convert(extractFormat(corrected)), true
		case "summarize":
			return intent.Summarize(), true
		case "translate":
			return intent.Translate(extractLanguage(corrected)), true
		case "print":
			return intent.Print(extractCopies(corrected), intent.PrintOptions{}), true
		}
	}
	return intent.Action{}, false
}

// extractSendTarget 从原始命令中取 "to" 之后的目标名，保留原大小写
// extractSendTarget takes the name after "to" from the original command,
// preserving its casing ("send this to John" -> "John").
func extractSendTarget(raw string) string {
	fields := strings.Fields(raw)
	for i, word := range fields {
		lower := strings.ToLower(strings.Trim(word, ".,!?"))
		if (lower == "to" || lower == "给") && i+1 < len(fields) {
			return cleanArgument(strings.Join(fields[i+1:], " "))
		}
	}
	// 中文 "发给张三" / "传给妈妈" 没有空格分隔
	for _, marker := range []string{"发给", "传给", "发送给", "分享给"} {
		if idx := strings.Index(raw, marker); idx >= 0 {
			return cleanArgument(raw[idx+len(marker):])
		}
	}
	return ""
}

// extractFormat 取 "to"/"into"/"成" 之后的格式 token
// extractFormat takes the format token after "to"/"into"/"成"
func extractFormat(corrected string) string {
	fields := strings.Fields(corrected)
	for i, word := range fields {
		if (word == "to" || word == "into") && i+1 < len(fields) {
			return strings.Trim(fields[i+1], ".,!?")
		}
	}
	for _, marker := range []string{"转换成", "转换为", "转成", "变成"} {
		if idx := strings.Index(corrected, marker); idx >= 0 {
			return cleanArgument(corrected[idx+len(marker):])
		}
	}
	// 常见格式词直接出现时取之 / Known format tokens used directly
	for _, format := range []string{"pdf", "jpeg", "png", "txt", "docx"} {
		if strings.Contains(corrected, format) {
			return format
		}
	}
	return ""
}

// extractLanguage 取目标语言 / extractLanguage takes the target language
func extractLanguage(corrected string) string {
	fields := strings.Fields(corrected)
	for i, word := range fields {
		if (word == "to" || word == "into") && i+1 < len(fields) {
			return strings.Trim(fields[i+1], ".,!?")
		}
	}
	for _, marker := range []string{"翻译成", "翻译为", "译成"} {
		if idx := strings.Index(corrected, marker); idx >= 0 {
			return cleanArgument(corrected[idx+len(marker):])
		}
	}
	return ""
}

// extractCopies 取文本中第一段十进制数字作为份数，缺省为 1。
// 中文输入法/语音转写常产出全角数字（"打印５份"），需与半角同样处理。
// extractCopies parses the first run of decimal digits as the copy count,
// defaulting to 1 when absent. Chinese IME and ASR output often carries
// fullwidth digits ("打印５份"), treated the same as ASCII ones.
func extractCopies(corrected string) int {
	n, inRun := 0, false
	for _, r := range corrected {
		d := digitValue(r)
		if d < 0 {
			if inRun {
				break
			}
			continue
		}
		inRun = true
		n = n*10 + d
		if n > 999 {
			return 999
		}
	}
	if n < 1 {
		return 1
	}
	return n
}

// digitValue 返回半角/全角十进制数字的值，其余返回 -1
// digitValue returns the value of an ASCII or fullwidth decimal digit,
// -1 for anything else.
func digitValue(r rune) int {
	switch {
	case '0' <= r && r <= '9':
		return int(r - '0')
	case '０' <= r && r <= '９':
		return int(r - '０')
	}
	return -1
}

func cleanArgument(s string) string {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), ".,!?。，！？"))
	// 去掉常见的礼貌后缀 / Drop trailing politeness words
	for _, suffix := range []string{" please", " now", " 吧", "吧"} {
		s = strings.TrimSuffix(s, suffix)
	}
	return strings.TrimSpace(s)
}
