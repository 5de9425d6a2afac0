package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pocket/internal/intent"
	"pocket/internal/item"
)

// TextService 提取操作使用的文本补全端点
// TextService is the text-completion endpoint used by extraction operations
type TextService interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Transcriber 音频转写端点 / Transcriber is the audio transcription endpoint
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

// LocalExecutor 默认执行器：hold 落盘，extract 走 LLM，
// send / print / airplay 为模拟协作方（真实传输不在本核心范围内）。
// LocalExecutor is the default executor: hold persists to disk, extract
// operations run through the LLM, and send / print / airplay are simulated
// collaborators (real transport lives outside this core).
type LocalExecutor struct {
	dataDir     string
	text        TextService
	transcriber Transcriber
}

// NewLocalExecutor 创建默认执行器；text/transcriber 可为 nil，
// 相应操作将以错误结束（completion(false) 路径）。
// NewLocalExecutor creates the default executor. text/transcriber may be
// nil; the corresponding operations then fail into completion(false).
func NewLocalExecutor(dataDir string, text TextService, transcriber Transcriber) *LocalExecutor {
	return &LocalExecutor{dataDir: dataDir, text: text, transcriber: transcriber}
}

func (e *LocalExecutor) Execute(ctx context.Context, t *Task) (Result, error) {
	action := t.Intent.Action
	switch action.Kind {
	case intent.KindHold:
		return e.hold(t)
	case intent.KindSend:
		if action.Target == "" {
			return Result{}, fmt.Errorf("send: no target resolved")
		}
		return Result{Output: fmt.Sprintf("queued %q for transfer to %s", t.Item.Name, action.Target)}, nil
	case intent.KindConvert:
		return e.convert(t, action.Format)
	case intent.KindExtract:
		return e.extract(ctx, t, action.Extraction)
	case intent.KindPrint:
		copies := action.Copies
		if copies < 1 {
			copies = 1
		}
		return Result{Output: fmt.Sprintf("queued %q for printing, %d copies", t.Item.Name, copies)}, nil
	case intent.KindAirPlay:
		device := action.Target
		if device == "" {
			device = "nearby display"
		}
		return Result{Output: fmt.Sprintf("casting %q to %s", t.Item.Name, device)}, nil
	}
	return Result{}, fmt.Errorf("unsupported action: %s", action.Kind)
}

// hold 将物品负载写入数据目录 / hold persists the item payload
func (e *LocalExecutor) hold(t *Task) (Result, error) {
	dir := filepath.Join(e.dataDir, "held")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create hold dir: %w", err)
	}
	path := filepath.Join(dir, t.Item.ID+"_"+sanitizeName(t.Item.Name))
	if err := os.WriteFile(path, t.Item.Data, 0o644); err != nil {
		return Result{}, fmt.Errorf("persist item: %w", err)
	}
	return Result{Output: fmt.Sprintf("held %q", t.Item.Name)}, nil
}

// convert 产出替代原条目的派生条目；格式内部转换不在范围内，
// 这里登记转换请求并保留原始负载。
// convert produces a superseding derived item. Format conversion internals
// are out of scope; the request is recorded and the payload carried over.
func (e *LocalExecutor) convert(t *Task, format string) (Result, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return Result{}, fmt.Errorf("convert: no format resolved")
	}
	name := t.Item.Name
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	derived := item.Derive(t.Item, t.Item.Type, name+"."+format, t.Item.Data)
	return Result{
		Output:  fmt.Sprintf("converted %q to %s", t.Item.Name, strings.ToUpper(format)),
		Derived: &derived,
	}, nil
}

func (e *LocalExecutor) extract(ctx context.Context, t *Task, op intent.Extraction) (Result, error) {
	if op.Kind == intent.ExtractTranscribe {
		if e.transcriber == nil {
			return Result{}, fmt.Errorf("transcribe: no transcription endpoint configured")
		}
		if t.Item.Type != item.TypeAudio && t.Item.Type != item.TypeVideo {
			return Result{}, fmt.Errorf("transcribe: item %q is not audio", t.Item.Name)
		}
		text, err := e.transcriber.Transcribe(ctx, t.Item.Data, "")
		if err != nil {
			return Result{}, err
		}
		return Result{Output: text}, nil
	}

	if e.text == nil {
		return Result{}, fmt.Errorf("extract: no completion endpoint configured")
	}

	system, user := extractionPrompt(t.Item, op)
	output, err := e.text.Complete(ctx, system, user)
	if err != nil {
		return Result{}, fmt.Errorf("extraction %s: %w", op.Kind, err)
	}
	return Result{Output: strings.TrimSpace(output)}, nil
}

func extractionPrompt(it item.PocketItem, op intent.Extraction) (system, user string) {
	content := string(it.Data)
	switch op.Kind {
	case intent.ExtractSummarize:
		system = "Summarize the user's content in a few short sentences. Answer in the content's language."
		user = content
	case intent.ExtractText:
		system = "Extract the plain text from the user's content. Output only the text itself."
		user = content
	case intent.ExtractTranslate:
		lang := op.TargetLanguage
		if lang == "" {
			lang = "English"
		}
		system = fmt.Sprintf("Translate the user's content into %s. Output only the translation.", lang)
		user = content
	case intent.ExtractCustom:
		system = "Follow the instruction applied to the user's content. Be concise."
		user = op.Prompt + "\n\n---\n\n" + content
	default:
		system = "Describe the user's content briefly."
		user = content
	}
	return system, user
}

func sanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", " ", "_")
	cleaned := replacer.Replace(strings.TrimSpace(name))
	if cleaned == "" {
		return "item"
	}
	return cleaned
}
