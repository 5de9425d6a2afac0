package flow

import (
	"context"
	"sync"
	"time"

	"pocket/internal/classifier"
	"pocket/internal/item"
	"pocket/internal/task"
)

// PhaseChangeFunc 阶段变更回调，供 UI / 触觉等协作方订阅
// PhaseChangeFunc is the phase-change callback for UI / haptics collaborators
type PhaseChangeFunc func(Phase)

// HistoryAppender 已完结任务的归档端 / HistoryAppender archives finished tasks
type HistoryAppender interface {
	Append(t *task.Task) error
}

// Options 状态机配置 / Options configures a Machine
type Options struct {
	Classifier      *classifier.Classifier
	Executor        task.Executor // nil: execution is driven externally via OnExecutionResult
	History         HistoryAppender
	CompletionDelay time.Duration // completion -> idle delay; default 2s
	OnPhaseChange   PhaseChangeFunc
}

// Machine 一次「拖-放-说-执行」周期的有限状态机。
// 显式构造、依赖注入，整个应用只应存在一个活动实例；所有迁移在单一
// 逻辑执行流上串行发生，锁只为防御性保护。
// Machine is the finite-state machine for one drag-drop-speak-execute
// cycle. It is explicitly constructed and dependency-injected; exactly one
// live instance is expected per application, all transitions happen
// serially on one logical execution context, and the lock is defensive.
type Machine struct {
	mu      sync.Mutex
	phase   Phase
	pending *item.PocketItem

	cls     *classifier.Classifier
	exec    task.Executor
	history HistoryAppender
	delay   time.Duration
	onPhase PhaseChangeFunc

	// gen 周期代号：投放开启新周期时自增，旧周期的延迟重置和在途
	// 分类请求随之失效。
	// gen is the cycle generation: a new drop bumps it, invalidating the
	// previous cycle's delayed reset and in-flight classification.
	gen     int
	cancel  context.CancelFunc
	current *task.Task
}

// NewMachine 创建状态机 / NewMachine creates the state machine
func NewMachine(opts Options) *Machine {
	delay := opts.CompletionDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Machine{
		phase:   idlePhase(),
		cls:     opts.Classifier,
		exec:    opts.Executor,
		history: opts.History,
		delay:   delay,
		onPhase: opts.OnPhaseChange,
	}
}

// Phase 当前阶段（只读观察点） / Phase is the read-only phase observable
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// PendingItem 当前待处理物品（只读观察点）
// PendingItem is the read-only pending-item observable
func (m *Machine) PendingItem() (item.PocketItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return item.PocketItem{}, false
	}
	return *m.pending, true
}

// CurrentTask 本周期的任务（completion 阶段及其后可读）
// CurrentTask returns this cycle's task (readable from completion onwards)
func (m *Machine) CurrentTask() *task.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// OnDragDetected idle → anticipation；其他阶段为 no-op
// OnDragDetected transitions idle to anticipation; a no-op elsewhere
func (m *Machine) OnDragDetected() {
	m.transition(PhaseIdle, anticipationPhase())
}

// OnHoverEnter anticipation → engagement / OnHoverEnter: anticipation to engagement
func (m *Machine) OnHoverEnter() {
	m.transition(PhaseAnticipation, engagementPhase())
}

// OnHoverExit engagement → anticipation（未投放）
// OnHoverExit: engagement back to anticipation (no drop happened)
func (m *Machine) OnHoverExit() {
	m.transition(PhaseEngagement, anticipationPhase())
}

// OnDropConfirmed 投放确认：强制进入 listening（不检查前置阶段，
// 支持直接投放），记录待处理物品，并作废上一周期的在途工作。
// OnDropConfirmed forces listening regardless of the prior phase (direct
// drops bypass the guard), records the pending item, and invalidates the
// previous cycle's in-flight work.
func (m *Machine) OnDropConfirmed(it item.PocketItem) {
	m.mu.Lock()
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.pending = &it
	m.current = nil
	m.setPhaseLocked(listeningPhase())
	m.mu.Unlock()
}

// OnTranscriptReady 转写就绪（空串表示超时/未说话）。仅在 listening
// 阶段生效：分类 → processing → 执行 → completion。返回本周期任务。
// OnTranscriptReady handles the transcript (empty means timeout/silence).
// Effective only while listening: classify, enter processing, execute,
// then complete. Returns this cycle's task.
func (m *Machine) OnTranscriptReady(ctx context.Context, transcript string) *task.Task {
	m.mu.Lock()
	if m.phase.Kind != PhaseListening || m.pending == nil {
		m.mu.Unlock()
		return nil
	}
	pending := *m.pending
	gen := m.gen
	cctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()
	defer cancel()

	resolved := m.cls.Classify(cctx, transcript, pending.Type)
	t := task.New(pending, resolved)

	m.mu.Lock()
	if m.gen != gen || m.phase.Kind != PhaseListening {
		// 周期已被新投放取代 / The cycle was superseded by a new drop
		m.mu.Unlock()
		_ = t.Advance(task.StatusCancelled)
		return t
	}
	m.current = t
	m.setPhaseLocked(processingPhase(resolved.Action.Description()))
	m.mu.Unlock()

	_ = t.Advance(task.StatusProcessing)

	if m.exec == nil {
		// 外部执行：等待协作方回报 OnExecutionResult
		// External execution: the collaborator reports via OnExecutionResult
		return t
	}

	result, err := m.exec.Execute(cctx, t)
	if err != nil {
		m.OnExecutionResult(false, err.Error())
	} else {
		m.OnExecutionResult(true, result.Output)
	}
	return t
}

// OnExecutionResult 执行结果回报：processing → completion(success)。
// 进入 completion 时清空待处理物品、归档任务，并在固定延迟后自动回到 idle。
// OnExecutionResult reports the execution outcome, moving processing to
// completion(success). Entering completion clears the pending item,
// archives the task, and schedules the automatic reset to idle.
func (m *Machine) OnExecutionResult(success bool, payload string) {
	m.mu.Lock()
	if m.phase.Kind != PhaseProcessing {
		m.mu.Unlock()
		return
	}
	t := m.current
	gen := m.gen
	m.pending = nil
	m.setPhaseLocked(completionPhase(success))
	m.mu.Unlock()

	if t != nil {
		if success {
			_ = t.Complete(payload)
		} else {
			_ = t.Fail(payload)
		}
		if m.history != nil {
			_ = m.history.Append(t)
		}
	}

	time.AfterFunc(m.delay, func() {
		m.resetIfCurrent(gen)
	})
}

// transition 带守卫的迁移：阶段不匹配时 no-op
// transition is a guarded move: a no-op when the phase does not match
func (m *Machine) transition(from PhaseKind, to Phase) {
	m.mu.Lock()
	if m.phase.Kind != from {
		m.mu.Unlock()
		return
	}
	m.setPhaseLocked(to)
	m.mu.Unlock()
}

func (m *Machine) resetIfCurrent(gen int) {
	m.mu.Lock()
	if m.gen != gen || m.phase.Kind != PhaseCompletion {
		m.mu.Unlock()
		return
	}
	m.pending = nil
	m.setPhaseLocked(idlePhase())
	m.mu.Unlock()
}

func (m *Machine) setPhaseLocked(p Phase) {
	m.phase = p
	if m.onPhase != nil {
		// 回调在锁内按迁移顺序投递；订阅方不得回调回状态机。
		// Callbacks are delivered in transition order under the lock;
		// subscribers must not call back into the machine.
		m.onPhase(p)
	}
}
