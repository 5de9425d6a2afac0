package task

import (
	"testing"

	"pocket/internal/intent"
	"pocket/internal/item"
)

func newTestTask() *Task {
	it := item.New(item.TypeDocument, "report.pdf", []byte("doc"), nil)
	return New(it, intent.New(intent.Hold(), "hold this", 0.9))
}

func TestTaskLifecycle(t *testing.T) {
	tk := newTestTask()
	if tk.Status != StatusPending {
		t.Fatalf("status = %s, want pending", tk.Status)
	}
	if tk.ID == "" || tk.CreatedAt.IsZero() {
		t.Fatal("task must carry an ID and creation time")
	}

	if err := tk.Advance(StatusProcessing); err != nil {
		t.Fatalf("pending -> processing: %v", err)
	}
	if err := tk.Complete("held"); err != nil {
		t.Fatalf("processing -> completed: %v", err)
	}
	if tk.Result != "held" {
		t.Fatalf("result = %q", tk.Result)
	}
	if tk.Progress != 1.0 {
		t.Fatalf("progress = %v, want 1.0", tk.Progress)
	}
	if tk.FinishedAt.IsZero() {
		t.Fatal("FinishedAt must be set on a terminal status")
	}
}

func TestTaskIllegalTransitions(t *testing.T) {
	tests := []struct {
		name string
		run  func(*Task) error
	}{
		{"pending to completed", func(tk *Task) error {
			return tk.Advance(StatusCompleted)
		}},
		{"pending to failed", func(tk *Task) error {
			return tk.Advance(StatusFailed)
		}},
		{"completed to processing", func(tk *Task) error {
			_ = tk.Advance(StatusProcessing)
			_ = tk.Advance(StatusCompleted)
			return tk.Advance(StatusProcessing)
		}},
		{"cancelled is final", func(tk *Task) error {
			_ = tk.Advance(StatusCancelled)
			return tk.Advance(StatusProcessing)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(newTestTask()); err == nil {
				t.Fatal("expected an illegal-transition error")
			}
		})
	}
}

func TestTaskFail(t *testing.T) {
	tk := newTestTask()
	_ = tk.Advance(StatusProcessing)
	if err := tk.Fail("network unreachable"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if tk.Status != StatusFailed || tk.FailReason != "network unreachable" {
		t.Fatalf("status=%s reason=%q", tk.Status, tk.FailReason)
	}
	if tk.Progress != 0 {
		t.Fatalf("failed task progress = %v, want 0", tk.Progress)
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := []Status{StatusCompleted, StatusFailed, StatusCancelled}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusProcessing} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}
