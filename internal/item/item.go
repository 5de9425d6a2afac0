package item

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentType 物品内容类型标签
// ContentType tags the kind of content a pocket item holds
type ContentType string

const (
	TypeImage    ContentType = "image"
	TypeDocument ContentType = "document"
	TypeLink     ContentType = "link"
	TypeText     ContentType = "text"
	TypeVideo    ContentType = "video"
	TypeAudio    ContentType = "audio"
)

// Valid 返回类型是否是已知类型 / Valid reports whether the type is known
func (t ContentType) Valid() bool {
	switch t {
	case TypeImage, TypeDocument, TypeLink, TypeText, TypeVideo, TypeAudio:
		return true
	}
	return false
}

// ParseContentType 宽松解析类型字符串，未知时回退 document
// ParseContentType parses a type string loosely, defaulting to document
func ParseContentType(s string) ContentType {
	t := ContentType(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	switch t {
	case "photo", "picture", "png", "jpg", "jpeg":
		return TypeImage
	case "pdf", "doc", "docx", "file":
		return TypeDocument
	case "url", "webpage":
		return TypeLink
	case "movie", "mp4":
		return TypeVideo
	case "sound", "wav", "mp3", "voice":
		return TypeAudio
	}
	return TypeDocument
}

// PocketItem 一条被捕获的内容记录；创建后不可变，派生内容生成新条目
// PocketItem is an immutable record of captured content. Derived output
// (e.g. a conversion result) supersedes it as a new item; nothing mutates
// an item after creation.
type PocketItem struct {
	ID        string            `json:"id"`
	Type      ContentType       `json:"type"`
	Data      []byte            `json:"-"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// New 从一次投放或网络传输创建条目
// New creates an item from a drop or a network transfer
func New(contentType ContentType, name string, data []byte, metadata map[string]string) PocketItem {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "untitled"
	}
	var meta map[string]string
	if len(metadata) > 0 {
		meta = make(map[string]string, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
	}
	return PocketItem{
		ID:        uuid.NewString(),
		Type:      contentType,
		Data:      append([]byte(nil), data...),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Metadata:  meta,
	}
}

// Derive 从已有条目生成派生条目（如转换产物），原条目保持不变
// Derive produces a superseding item (e.g. conversion output); the source
// item is left untouched.
func Derive(src PocketItem, contentType ContentType, name string, data []byte) PocketItem {
	meta := map[string]string{"derived_from": src.ID}
	for k, v := range src.Metadata {
		if _, ok := meta[k]; !ok {
			meta[k] = v
		}
	}
	return New(contentType, name, data, meta)
}
