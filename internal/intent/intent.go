package intent

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind 动作类别 / Kind enumerates the action categories
type Kind string

const (
	KindHold    Kind = "hold"
	KindSend    Kind = "send"
	KindConvert Kind = "convert"
	KindExtract Kind = "extract"
	KindPrint   Kind = "print"
	KindAirPlay Kind = "airplay"
)

// ExtractionKind 提取操作类别 / ExtractionKind enumerates extraction operations
type ExtractionKind string

const (
	ExtractSummarize  ExtractionKind = "summarize"
	ExtractText       ExtractionKind = "extract_text"
	ExtractTranslate  ExtractionKind = "translate"
	ExtractTranscribe ExtractionKind = "transcribe"
	ExtractCustom     ExtractionKind = "custom"
)

// Extraction 提取操作及其参数
// Extraction is one extraction operation with its per-kind payload
type Extraction struct {
	Kind           ExtractionKind `json:"kind"`
	TargetLanguage string         `json:"target_language,omitempty"`
	Prompt         string         `json:"prompt,omitempty"`
}

// PrintOptions 打印参数 / PrintOptions carries print job parameters
type PrintOptions struct {
	ColorMode string `json:"color_mode,omitempty"`
	Duplex    bool   `json:"duplex,omitempty"`
	PaperSize string `json:"paper_size,omitempty"`
}

// Action 带负载的动作变体。Kind 决定哪些负载字段有效。
// Action is the tagged action variant. Kind decides which payload fields
// are meaningful; the rest stay zero.
type Action struct {
	Kind       Kind         `json:"kind"`
	Target     string       `json:"target,omitempty"` // send target or airplay device
	Format     string       `json:"format,omitempty"` // convert output format
	Extraction Extraction   `json:"extraction,omitempty"`
	Copies     int          `json:"copies,omitempty"`
	Print      PrintOptions `json:"print,omitempty"`
}

func Hold() Action                    { return Action{Kind: KindHold} }
func Send(target string) Action      { return Action{Kind: KindSend, Target: target} }
func Convert(format string) Action   { return Action{Kind: KindConvert, Format: format} }
func Extract(op Extraction) Action   { return Action{Kind: KindExtract, Extraction: op} }
func AirPlay(device string) Action   { return Action{Kind: KindAirPlay, Target: device} }
func Summarize() Action              { return Extract(Extraction{Kind: ExtractSummarize}) }
func Translate(lang string) Action   { return Extract(Extraction{Kind: ExtractTranslate, TargetLanguage: lang}) }
func Print(copies int, opts PrintOptions) Action {
	if copies < 1 {
		copies = 1
	}
	return Action{Kind: KindPrint, Copies: copies, Print: opts}
}

// Description 动作的人类可读描述，用于 processing 阶段的状态文案
// Description renders the action for the processing phase status message
func (a Action) Description() string {
	switch a.Kind {
	case KindHold:
		return "Holding item"
	case KindSend:
		if a.Target != "" {
			return "Sending to " + a.Target
		}
		return "Sending"
	case KindConvert:
		if a.Format != "" {
			return "Converting to " + strings.ToUpper(a.Format)
		}
		return "Converting"
	case KindExtract:
		switch a.Extraction.Kind {
		case ExtractSummarize:
			return "Summarizing"
		case ExtractText:
			return "Extracting text"
		case ExtractTranslate:
			if a.Extraction.TargetLanguage != "" {
				return "Translating to " + a.Extraction.TargetLanguage
			}
			return "Translating"
		case ExtractTranscribe:
			return "Transcribing"
		default:
			return "Processing"
		}
	case KindPrint:
		if a.Copies > 1 {
			return fmt.Sprintf("Printing %d copies", a.Copies)
		}
		return "Printing"
	case KindAirPlay:
		if a.Target != "" {
			return "Casting to " + a.Target
		}
		return "Casting"
	}
	return "Processing"
}

// Intent 一次语音命令的解析结果；创建后不可变
// Intent is the resolved meaning of one voice command. It is produced
// exactly once per interaction cycle and never mutated afterwards.
type Intent struct {
	ID         string    `json:"id"`
	Action     Action    `json:"action"`
	RawCommand string    `json:"raw_command,omitempty"` // empty when no voice command was given
	Confidence float64   `json:"confidence"`
	ApplyToAll bool      `json:"apply_to_all,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// New 构造 Intent / New constructs an immutable Intent
func New(action Action, rawCommand string, confidence float64) Intent {
	return Intent{
		ID:         uuid.NewString(),
		Action:     action,
		RawCommand: rawCommand,
		Confidence: confidence,
		ResolvedAt: time.Now().UTC(),
	}
}

// FromModelAction 将模型返回的 action 字符串（含同义词）映射为 Action
// FromModelAction maps a model-returned action string (case-insensitive,
// synonyms included) plus its target argument onto an Action. The second
// return value is false for unrecognized action strings.
func FromModelAction(action, target string) (Action, bool) {
	target = strings.TrimSpace(target)
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "hold", "store", "save", "keep":
		return Hold(), true
	case "send", "share":
		return Send(target), true
	case "convert", "change":
		return Convert(strings.ToLower(target)), true
	case "summarize", "summary":
		return Summarize(), true
	case "extract", "extract_text", "ocr":
		return Extract(Extraction{Kind: ExtractText}), true
	case "translate":
		return Translate(target), true
	case "transcribe":
		return Extract(Extraction{Kind: ExtractTranscribe}), true
	case "print":
		return Print(1, PrintOptions{}), true
	case "airplay", "cast", "mirror":
		return AirPlay(target), true
	}
	return Action{}, false
}
