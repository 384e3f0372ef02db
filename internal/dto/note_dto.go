// Package dto HTTP 请求与响应结构
// Package dto request and response shapes of the HTTP API
package dto

import (
	"github.com/haierkeys/personal-notes/internal/domain"
)

// NoteSaveRequest 创建或更新笔记的请求参数
// NoteSaveRequest body of POST /api/notes and PUT /api/notes/:id
type NoteSaveRequest struct {
	Title   string `json:"title" form:"title" binding:"required,notblank,max=500"`
	Content string `json:"content" form:"content"`
}

// ToInput 转换为领域输入
func (r *NoteSaveRequest) ToInput() domain.NoteInput {
	return domain.NoteInput{Title: r.Title, Content: r.Content}
}

// NoteDeleteResponse 删除结果
type NoteDeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// NoteListResponse 笔记列表
type NoteListResponse struct {
	List       []domain.Note `json:"list"`
	Configured bool          `json:"configured"`
}
