package intent

import "testing"

func TestFromModelAction(t *testing.T) {
	tests := []struct {
		action string
		target string
		want   Action
		ok     bool
	}{
		{"hold", "", Hold(), true},
		{"store", "", Hold(), true},
		{"KEEP", "", Hold(), true},
		{"send", "mom", Send("mom"), true},
		{"share", "John", Send("John"), true},
		{"convert", "PDF", Convert("pdf"), true},
		{"summarize", "", Summarize(), true},
		{"summary", "", Summarize(), true},
		{"extract_text", "", Extract(Extraction{Kind: ExtractText}), true},
		{"ocr", "", Extract(Extraction{Kind: ExtractText}), true},
		{"translate", "french", Translate("french"), true},
		{"transcribe", "", Extract(Extraction{Kind: ExtractTranscribe}), true},
		{"print", "", Print(1, PrintOptions{}), true},
		{"airplay", "tv", AirPlay("tv"), true},
		{"cast", "tv", AirPlay("tv"), true},
		{"dance", "", Action{}, false},
		{"", "", Action{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			got, ok := FromModelAction(tt.action, tt.target)
			if ok != tt.ok {
				t.Fatalf("FromModelAction(%q) ok = %v, want %v", tt.action, ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("FromModelAction(%q) = %+v, want %+v", tt.action, got, tt.want)
			}
		})
	}
}

func TestActionDescription(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   string
	}{
		{"hold", Hold(), "Holding item"},
		{"send with target", Send("John"), "Sending to John"},
		{"send without target", Send(""), "Sending"},
		{"convert", Convert("pdf"), "Converting to PDF"},
		{"summarize", Summarize(), "Summarizing"},
		{"translate", Translate("French"), "Translating to French"},
		{"transcribe", Extract(Extraction{Kind: ExtractTranscribe}), "Transcribing"},
		{"print single", Print(1, PrintOptions{}), "Printing"},
		{"print multiple", Print(3, PrintOptions{}), "Printing 3 copies"},
		{"airplay", AirPlay("living room tv"), "Casting to living room tv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.action.Description(); got != tt.want {
				t.Fatalf("Description() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintClampsCopies(t *testing.T) {
	if got := Print(0, PrintOptions{}); got.Copies != 1 {
		t.Fatalf("copies = %d, want 1", got.Copies)
	}
	if got := Print(-3, PrintOptions{}); got.Copies != 1 {
		t.Fatalf("copies = %d, want 1", got.Copies)
	}
}

func TestNewIntent(t *testing.T) {
	in := New(Send("mom"), "send this to mom", 0.9)
	if in.ID == "" {
		t.Fatal("intent must carry an ID")
	}
	if in.ResolvedAt.IsZero() {
		t.Fatal("ResolvedAt must be set")
	}
	if in.ApplyToAll {
		t.Fatal("ApplyToAll defaults to false")
	}
}
