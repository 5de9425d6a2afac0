package flow

import (
	"pocket/internal/i18n"
	"pocket/internal/intent"
	"pocket/internal/item"
)

// Prediction 基于物品类型的候选动作，用于跳过语音直接投放到预测动作上
// Prediction is a candidate action ranked purely from the item's content
// type, letting a user skip voice input by dropping onto a prediction.
type Prediction struct {
	Action     intent.Action
	Icon       string
	Label      string
	Confidence float64
	Color      string
}

// Predict 纯函数：按内容类型给出至多 4 个候选动作，hold 恒为首位，
// 置信度为手工调定的常量。
// Predict is pure and stateless: up to 4 ranked candidates per content
// type, hold always first, confidences are hand-tuned constants.
func Predict(t item.ContentType) []Prediction {
	hold := Prediction{
		Action:     intent.Hold(),
		Icon:       "📥",
		Label:      i18n.T("action.hold"),
		Confidence: 0.95,
		Color:      "blue",
	}

	switch t {
	case item.TypeImage:
		return []Prediction{
			hold,
			{intent.Send(""), "📤", i18n.T("action.send"), 0.7, "green"},
			{intent.Convert("pdf"), "📄", i18n.T("action.convert"), 0.6, "orange"},
			{intent.AirPlay(""), "📺", i18n.T("action.airplay"), 0.4, "purple"},
		}
	case item.TypeDocument:
		return []Prediction{
			hold,
			{intent.Summarize(), "📝", i18n.T("action.summarize"), 0.75, "teal"},
			{intent.Print(1, intent.PrintOptions{}), "🖨", i18n.T("action.print"), 0.55, "gray"},
			{intent.Send(""), "📤", i18n.T("action.send"), 0.5, "green"},
		}
	case item.TypeLink:
		return []Prediction{
			hold,
			{intent.Summarize(), "📝", i18n.T("action.summarize"), 0.7, "teal"},
			{intent.Send(""), "📤", i18n.T("action.send"), 0.6, "green"},
		}
	case item.TypeText:
		return []Prediction{
			hold,
			{intent.Translate(""), "🌐", i18n.T("action.translate"), 0.65, "cyan"},
			{intent.Summarize(), "📝", i18n.T("action.summarize"), 0.6, "teal"},
			{intent.Send(""), "📤", i18n.T("action.send"), 0.5, "green"},
		}
	case item.TypeVideo:
		return []Prediction{
			hold,
			{intent.AirPlay(""), "📺", i18n.T("action.airplay"), 0.7, "purple"},
			{intent.Send(""), "📤", i18n.T("action.send"), 0.55, "green"},
		}
	case item.TypeAudio:
		return []Prediction{
			hold,
			{intent.Extract(intent.Extraction{Kind: intent.ExtractTranscribe}), "🎙", i18n.T("action.transcribe"), 0.75, "red"},
			{intent.Send(""), "📤", i18n.T("action.send"), 0.5, "green"},
		}
	}
	return []Prediction{hold}
}
