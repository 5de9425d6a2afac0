package i18n

// ZhCNMessages 简体中文消息目录 / Simplified Chinese message catalog
var ZhCNMessages = map[string]string{
	// 动作标签
	"action.hold":         "收纳",
	"action.send":         "发送",
	"action.convert":      "转换",
	"action.summarize":    "总结",
	"action.extract_text": "提取文字",
	"action.translate":    "翻译",
	"action.transcribe":   "转写",
	"action.print":        "打印",
	"action.airplay":      "投屏",

	// 阶段标签
	"phase.idle":         "空闲",
	"phase.anticipation": "感知",
	"phase.engagement":   "就位",
	"phase.listening":    "聆听中...",
	"phase.processing":   "处理中",
	"phase.completion":   "完成",

	// 状态栏
	"status.ready":   "就绪",
	"status.success": "✓ 完成",
	"status.failure": "✗ 失败",

	// REPL
	"repl.welcome":      "pocket 已启动。投放一个物品并说出命令。",
	"repl.help":         "命令：drag | hover in|out | drop <类型> <名称> | say <命令> | predict <类型> | history | help | exit",
	"repl.no_item":      "当前没有待处理物品，请先投放",
	"repl.item_pending": "待处理：%s（%s）",
	"repl.history_none": "还没有已完成的任务",
	"repl.goodbye":      "再见",

	// TUI
	"tui.title":             "口袋",
	"tui.predictions":       "预测动作",
	"tui.history":           "历史",
	"tui.pending":           "待处理物品",
	"tui.input_placeholder": "say <命令>，或：drag / hover in / drop document report.pdf",

	// 错误
	"err.classify": "分类已回退：%v",
	"err.execute":  "执行失败：%v",
}
