package flow

import (
	"testing"

	"pocket/internal/intent"
	"pocket/internal/item"
)

func TestPredict(t *testing.T) {
	types := []item.ContentType{
		item.TypeImage, item.TypeDocument, item.TypeLink,
		item.TypeText, item.TypeVideo, item.TypeAudio,
	}

	for _, typ := range types {
		t.Run(string(typ), func(t *testing.T) {
			preds := Predict(typ)
			if len(preds) == 0 || len(preds) > 4 {
				t.Fatalf("%d predictions, want 1..4", len(preds))
			}
			// hold 恒为首位且置信度最高 / Hold always ranks first
			if preds[0].Action.Kind != intent.KindHold {
				t.Fatalf("first prediction = %s, want hold", preds[0].Action.Kind)
			}
			for i := 1; i < len(preds); i++ {
				if preds[i].Confidence >= preds[0].Confidence {
					t.Fatalf("prediction %d confidence %v not below hold's %v",
						i, preds[i].Confidence, preds[0].Confidence)
				}
			}
			for _, p := range preds {
				if p.Icon == "" || p.Label == "" {
					t.Fatalf("prediction missing presentation: %+v", p)
				}
			}
		})
	}
}

func TestPredictPerTypeHighlights(t *testing.T) {
	hasKind := func(preds []Prediction, kind intent.Kind) bool {
		for _, p := range preds {
			if p.Action.Kind == kind {
				return true
			}
		}
		return false
	}
	hasExtraction := func(preds []Prediction, ek intent.ExtractionKind) bool {
		for _, p := range preds {
			if p.Action.Kind == intent.KindExtract && p.Action.Extraction.Kind == ek {
				return true
			}
		}
		return false
	}

	if !hasKind(Predict(item.TypeImage), intent.KindConvert) {
		t.Fatal("images should suggest conversion")
	}
	if !hasExtraction(Predict(item.TypeDocument), intent.ExtractSummarize) {
		t.Fatal("documents should suggest summarizing")
	}
	if !hasExtraction(Predict(item.TypeAudio), intent.ExtractTranscribe) {
		t.Fatal("audio should suggest transcription")
	}
	if !hasKind(Predict(item.TypeVideo), intent.KindAirPlay) {
		t.Fatal("video should suggest airplay")
	}
}

func TestPredictUnknownTypeHoldsOnly(t *testing.T) {
	preds := Predict(item.ContentType("mystery"))
	if len(preds) != 1 || preds[0].Action.Kind != intent.KindHold {
		t.Fatalf("predictions = %+v, want hold only", preds)
	}
}

// Predict 是纯函数：相同输入给出相同动作序列
// Predict is pure: identical input yields an identical action sequence
func TestPredictDeterministic(t *testing.T) {
	a := Predict(item.TypeDocument)
	b := Predict(item.TypeDocument)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Action != b[i].Action || a[i].Confidence != b[i].Confidence {
			t.Fatalf("prediction %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
