package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// Action labels (predictions, history, frontends)
	"action.hold":         "Hold",
	"action.send":         "Send",
	"action.convert":      "Convert",
	"action.summarize":    "Summarize",
	"action.extract_text": "Extract text",
	"action.translate":    "Translate",
	"action.transcribe":   "Transcribe",
	"action.print":        "Print",
	"action.airplay":      "AirPlay",

	// Phase labels
	"phase.idle":         "Idle",
	"phase.anticipation": "Anticipation",
	"phase.engagement":   "Engagement",
	"phase.listening":    "Listening...",
	"phase.processing":   "Processing",
	"phase.completion":   "Done",

	// Status bar
	"status.ready":   "Ready",
	"status.success": "✓ done",
	"status.failure": "✗ failed",

	// REPL
	"repl.welcome":      "pocket started. Drop something and speak a command.",
	"repl.help":         "Commands: drag | hover in|out | drop <type> <name> | say <command> | predict <type> | history | help | exit",
	"repl.no_item":      "nothing is pending; drop an item first",
	"repl.item_pending": "pending: %s (%s)",
	"repl.history_none": "no finished tasks yet",
	"repl.goodbye":      "bye",

	// TUI
	"tui.title":             "Pocket",
	"tui.predictions":       "Predictions",
	"tui.history":           "History",
	"tui.pending":           "Pending item",
	"tui.input_placeholder": "say <command>, or: drag / hover in / drop document report.pdf",

	// Errors
	"err.classify": "classification fell back: %v",
	"err.execute":  "execution failed: %v",
}
