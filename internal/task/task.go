package task

import (
	"context"
	"fmt"
	"time"

	"pocket/internal/intent"
	"pocket/internal/item"

	"github.com/google/uuid"
)

// Status 任务执行状态 / Status is the task execution state
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal 是否为终态 / Terminal reports whether the status is terminal
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// 前向合法迁移表。状态只能前进，不允许回退。
// Legal forward transitions. Status only moves forward, never back.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled},
}

// Result 执行产物 / Result is what an execution produced
type Result struct {
	Output  string           // human-readable outcome (or extraction text)
	Derived *item.PocketItem // superseding item (conversion output), if any
}

// Task 绑定一个物品和一个意图，外加可变执行状态。
// 由运行它的 orchestrator 独占持有；进入终态后归档。
// Task binds one item to one intent plus mutable execution state. It is
// owned exclusively by the orchestrator running it, and is archived once
// a terminal status is reached.
type Task struct {
	ID         string          `json:"id"`
	Item       item.PocketItem `json:"item"`
	Intent     intent.Intent   `json:"intent"`
	Status     Status          `json:"status"`
	Result     string          `json:"result,omitempty"`
	FailReason string          `json:"fail_reason,omitempty"`
	Progress   float64         `json:"progress"`
	CreatedAt  time.Time       `json:"created_at"`
	FinishedAt time.Time       `json:"finished_at,omitempty"`
}

// New 在意图解析完成、执行开始时创建任务
// New creates a task when an intent is resolved and execution begins
func New(it item.PocketItem, in intent.Intent) *Task {
	return &Task{
		ID:        uuid.NewString(),
		Item:      it,
		Intent:    in,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Advance 按前向迁移表推进状态，非法迁移报错
// Advance moves the status forward; illegal transitions error out.
func (t *Task) Advance(to Status) error {
	for _, allowed := range transitions[t.Status] {
		if allowed == to {
			t.Status = to
			if to.Terminal() {
				t.FinishedAt = time.Now().UTC()
				if to == StatusCompleted {
					t.Progress = 1.0
				}
			}
			return nil
		}
	}
	return fmt.Errorf("illegal task transition: %s -> %s", t.Status, to)
}

// Complete 标记完成并记录产物 / Complete marks success with its result
func (t *Task) Complete(result string) error {
	if err := t.Advance(StatusCompleted); err != nil {
		return err
	}
	t.Result = result
	return nil
}

// Fail 标记失败并记录原因 / Fail marks failure with its reason
func (t *Task) Fail(reason string) error {
	if err := t.Advance(StatusFailed); err != nil {
		return err
	}
	t.FailReason = reason
	return nil
}

// Executor 任务执行协作方（文件/网络服务）
// Executor is the task-execution collaborator (file/network services)
type Executor interface {
	Execute(ctx context.Context, t *Task) (Result, error)
}
