// Package domain 定义领域模型和接口
// Package domain defines the domain model and the store contracts
package domain

import (
	"slices"
	"strings"

	"github.com/haierkeys/personal-notes/pkg/timex"

	"github.com/bytedance/sonic"
)

const (
	// LocalIDPrefix marks ids generated by the local store
	// LocalIDPrefix 本地存储生成的 ID 前缀
	LocalIDPrefix = "local-"
	// DraftIDPrefix marks synthetic ids the UI gives unsaved drafts
	// DraftIDPrefix UI 为未保存草稿生成的临时 ID 前缀
	DraftIDPrefix = "draft-"
)

// IDKind the id-space a note id belongs to
// IDKind 笔记 ID 所属的 ID 空间
type IDKind uint8

const (
	IDDraft IDKind = iota
	IDLocal
	IDRemote
)

func (k IDKind) String() string {
	switch k {
	case IDLocal:
		return "local"
	case IDRemote:
		return "remote"
	}
	return "draft"
}

// NoteID is Remote(value) | Local(value) | Draft; the kind decides which store owns the note
// NoteID 为 Remote(value) | Local(value) | Draft；类型决定笔记归属哪个存储
type NoteID struct {
	kind  IDKind
	value string
}

// RemoteID wraps an id assigned by the remote store
// RemoteID 封装远端存储分配的 ID
func RemoteID(v string) NoteID {
	return NoteID{kind: IDRemote, value: v}
}

// LocalID wraps an id generated by the local store; the prefix is added when missing
// LocalID 封装本地存储生成的 ID；缺少前缀时自动补上
func LocalID(v string) NoteID {
	if !strings.HasPrefix(v, LocalIDPrefix) {
		v = LocalIDPrefix + v
	}
	return NoteID{kind: IDLocal, value: v}
}

// DraftID the id of a note that has never been persisted
// DraftID 从未持久化的笔记 ID
func DraftID() NoteID {
	return NoteID{}
}

// ParseNoteID is the only place where id prefixes are interpreted
// ParseNoteID 是唯一解析 ID 前缀的地方
func ParseNoteID(s string) NoteID {
	switch {
	case s == "", strings.HasPrefix(s, DraftIDPrefix):
		return DraftID()
	case strings.HasPrefix(s, LocalIDPrefix):
		return NoteID{kind: IDLocal, value: s}
	}
	return RemoteID(s)
}

func (id NoteID) Kind() IDKind {
	return id.kind
}

func (id NoteID) IsDraft() bool {
	return id.kind == IDDraft
}

func (id NoteID) IsLocal() bool {
	return id.kind == IDLocal
}

func (id NoteID) IsRemote() bool {
	return id.kind == IDRemote
}

// String returns the wire form; drafts have none
// String 返回传输形式；草稿为空字符串
func (id NoteID) String() string {
	if id.kind == IDDraft {
		return ""
	}
	return id.value
}

// MarshalJSON writes a JSON string; invalid UTF-8 becomes U+FFFD
// MarshalJSON 实现 json.Marshaler
func (id NoteID) MarshalJSON() ([]byte, error) {
	return sonic.ConfigStd.Marshal(id.String())
}

// UnmarshalJSON implements json.Unmarshaler, accepting string and numeric ids
// UnmarshalJSON 实现 json.Unmarshaler，兼容字符串与数字 ID
func (id *NoteID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*id = DraftID()
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := sonic.ConfigStd.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	*id = ParseNoteID(s)
	return nil
}

// Note 笔记领域模型
// Note the only entity of the application
type Note struct {
	ID        NoteID     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	UpdatedAt timex.Time `json:"updated_at"`
}

// NoteInput the fields a caller may set on create and update
// NoteInput 创建与更新时调用方可设置的字段
type NoteInput struct {
	Title   string
	Content string
}

// SortByUpdatedDesc orders notes newest first; equal timestamps keep their relative order
// SortByUpdatedDesc 按更新时间倒序排列；时间相同时保持原有顺序
func SortByUpdatedDesc(notes []Note) {
	slices.SortStableFunc(notes, func(a, b Note) int {
		return b.UpdatedAt.Time().Compare(a.UpdatedAt.Time())
	})
}
