package storage

import (
	"path/filepath"
	"testing"

	"pocket/internal/intent"
	"pocket/internal/item"
	"pocket/internal/task"
)

func newTestStore(t *testing.T, limit int) *HistoryStore {
	t.Helper()
	store, err := NewHistoryStore(filepath.Join(t.TempDir(), "history.db"), limit)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func finishedTask(t *testing.T, name string, status task.Status) *task.Task {
	t.Helper()
	it := item.New(item.TypeDocument, name, []byte("data"), nil)
	tk := task.New(it, intent.New(intent.Hold(), "hold this", 0.9))
	if err := tk.Advance(task.StatusProcessing); err != nil {
		t.Fatalf("advance: %v", err)
	}
	var err error
	switch status {
	case task.StatusCompleted:
		err = tk.Complete("held " + name)
	case task.StatusFailed:
		err = tk.Fail("boom")
	default:
		err = tk.Advance(status)
	}
	if err != nil {
		t.Fatalf("finish task: %v", err)
	}
	return tk
}

func TestAppendRejectsNonTerminalTask(t *testing.T) {
	store := newTestStore(t, 10)
	it := item.New(item.TypeText, "note.txt", nil, nil)
	tk := task.New(it, intent.New(intent.Hold(), "", 1.0))

	if err := store.Append(tk); err == nil {
		t.Fatal("appending a pending task should error")
	}
	if err := store.Append(nil); err == nil {
		t.Fatal("appending nil should error")
	}
}

func TestAppendAndRecent(t *testing.T) {
	store := newTestStore(t, 10)
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if err := store.Append(finishedTask(t, name, task.StatusCompleted)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := store.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// 最近完结的在前 / Latest finished first
	if entries[0].ItemName != "c.pdf" || entries[1].ItemName != "b.pdf" {
		t.Fatalf("order = %s, %s", entries[0].ItemName, entries[1].ItemName)
	}
	if entries[0].ActionKind != "hold" || entries[0].Status != "completed" {
		t.Fatalf("entry = %+v", entries[0])
	}
	if entries[0].FinishedAt == "" || entries[0].CreatedAt == "" {
		t.Fatal("timestamps must be recorded")
	}
}

// 保留上限：插入时淘汰最旧的行
// Retention cap: oldest rows are evicted on insert
func TestRetentionCap(t *testing.T) {
	store := newTestStore(t, 3)
	for _, name := range []string{"1", "2", "3", "4", "5"} {
		if err := store.Append(finishedTask(t, name, task.StatusCompleted)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}

	entries, err := store.Recent(0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if entries[0].ItemName != "5" || entries[len(entries)-1].ItemName != "3" {
		t.Fatalf("retained window wrong: first=%s last=%s",
			entries[0].ItemName, entries[len(entries)-1].ItemName)
	}
}

func TestByStatus(t *testing.T) {
	store := newTestStore(t, 10)
	_ = store.Append(finishedTask(t, "ok.pdf", task.StatusCompleted))
	_ = store.Append(finishedTask(t, "bad.pdf", task.StatusFailed))

	failed, err := store.ByStatus(task.StatusFailed, 10)
	if err != nil {
		t.Fatalf("by status: %v", err)
	}
	if len(failed) != 1 || failed[0].ItemName != "bad.pdf" {
		t.Fatalf("failed entries = %+v", failed)
	}
	if failed[0].FailReason != "boom" {
		t.Fatalf("fail reason = %q", failed[0].FailReason)
	}
}
