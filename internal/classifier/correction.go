package classifier

import "strings"

// 语音纠错表。短语规则先于单词规则应用：短语更长，必须优先，
// 否则单词规则会先拆散短语（如 "pee dee eff"）。
// Voice auto-correction tables. Phrase rules run before word rules:
// phrases are longer and must win, otherwise word rules would break
// them apart first (e.g. "pee dee eff").
//
// 规则的输出不得再命中任何规则，保证纠错幂等。
// Rule outputs must not match any rule again, keeping correction idempotent.
var phraseCorrections = []struct {
	from string
	to   string
}{
	// English homophones / misrecognitions
	{"pee dee eff", "pdf"},
	{"p d f", "pdf"},
	{"jay peg", "jpeg"},
	{"air play", "airplay"},
	{"send it too", "send it to"},
	{"cent to", "send to"},
	{"whole this", "hold this"},
	{"some arise", "summarize"},
	{"trans late", "translate"},

	// 中文常见误识别 / Curated Chinese misrecognitions
	{"专换", "转换"},
	{"砖换", "转换"},
	{"法送", "发送"},
	{"发宋", "发送"},
	{"打映", "打印"},
	{"大印", "打印"},
	{"总结一夏", "总结一下"},
	{"翻译城", "翻译成"},
	{"保寸", "保存"},
}

var wordCorrections = map[string]string{
	"sent":      "send",
	"scent":     "send",
	"hould":     "hold",
	"covert":    "convert",
	"summerize": "summarize",
	"summarise": "summarize",
	"translait": "translate",
	"prent":     "print",
	"jpg":       "jpeg",
}

// Correct 对转写文本做纠错：小写化后先整句应用短语规则，再逐词应用单词规则。
// 含空格的英文短语按整词序列匹配，避免撕裂更长的单词（"percent to" 含子串
// "cent to" 但不是该短语）；中文规则没有空格，按子串替换。
// Correct lowercases the transcript, applies phrase rules over the whole
// string first, then word rules token by token. English phrases (the ones
// containing spaces) match whole token runs only, so substrings inside
// larger words ("percent to" contains "cent to") are left alone; the CJK
// rules have no spaces and substitute by substring. Whitespace collapses
// to single spaces; the result is stable under repeated application.
func Correct(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	for _, rule := range phraseCorrections {
		if strings.ContainsRune(rule.from, ' ') {
			s = replacePhrase(s, rule.from, rule.to)
		} else {
			s = strings.ReplaceAll(s, rule.from, rule.to)
		}
	}

	fields := strings.Fields(s)
	for i, word := range fields {
		if fixed, ok := wordCorrections[word]; ok {
			fields[i] = fixed
		}
	}
	return strings.Join(fields, " ")
}

// replacePhrase 以空白分词后替换连续整词命中的短语
// replacePhrase replaces occurrences of from that appear as a run of whole
// whitespace-delimited tokens.
func replacePhrase(s, from, to string) string {
	target := strings.Fields(from)
	words := strings.Fields(s)
	if len(words) < len(target) {
		return s
	}

	out := make([]string, 0, len(words))
	for i := 0; i < len(words); {
		if tokensAt(words[i:], target) {
			out = append(out, to)
			i += len(target)
			continue
		}
		out = append(out, words[i])
		i++
	}
	return strings.Join(out, " ")
}

func tokensAt(words, target []string) bool {
	if len(words) < len(target) {
		return false
	}
	for i, t := range target {
		if words[i] != t {
			return false
		}
	}
	return true
}
