package flow

// PhaseKind 交互阶段枚举 / PhaseKind enumerates the interaction phases
type PhaseKind int

const (
	// PhaseIdle 空闲，等待拖拽 / PhaseIdle waits for a drag
	PhaseIdle PhaseKind = iota
	// PhaseAnticipation 检测到拖拽 / PhaseAnticipation: a drag was detected
	PhaseAnticipation
	// PhaseEngagement 拖拽物悬停在目标上 / PhaseEngagement: item hovers over the target
	PhaseEngagement
	// PhaseListening 已投放，等待语音命令 / PhaseListening: dropped, awaiting the voice command
	PhaseListening
	// PhaseProcessing 正在执行解析出的动作 / PhaseProcessing: executing the resolved action
	PhaseProcessing
	// PhaseCompletion 本周期结束（成功或失败） / PhaseCompletion: the cycle finished
	PhaseCompletion
)

// String 阶段名 / String returns the phase name
func (k PhaseKind) String() string {
	switch k {
	case PhaseIdle:
		return "idle"
	case PhaseAnticipation:
		return "anticipation"
	case PhaseEngagement:
		return "engagement"
	case PhaseListening:
		return "listening"
	case PhaseProcessing:
		return "processing"
	case PhaseCompletion:
		return "completion"
	default:
		return "unknown"
	}
}

// Phase 当前阶段及其负载：processing 携带状态文案，completion 携带成败
// Phase is the current phase with its payload: processing carries a status
// message, completion carries the success flag.
type Phase struct {
	Kind    PhaseKind
	Status  string // set while processing
	Success bool   // set at completion
}

func idlePhase() Phase         { return Phase{Kind: PhaseIdle} }
func anticipationPhase() Phase { return Phase{Kind: PhaseAnticipation} }
func engagementPhase() Phase   { return Phase{Kind: PhaseEngagement} }
func listeningPhase() Phase    { return Phase{Kind: PhaseListening} }

func processingPhase(status string) Phase {
	return Phase{Kind: PhaseProcessing, Status: status}
}

func completionPhase(success bool) Phase {
	return Phase{Kind: PhaseCompletion, Success: success}
}
