package api_router

import (
	"github.com/haierkeys/personal-notes/internal/app"
	"github.com/haierkeys/personal-notes/internal/domain"
	"github.com/haierkeys/personal-notes/internal/dto"
	pkgapp "github.com/haierkeys/personal-notes/pkg/app"
	"github.com/haierkeys/personal-notes/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NoteHandler 笔记 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{
		Handler: NewHandler(a),
	}
}

// List 获取笔记列表
// @Summary 获取笔记列表
// @Description 远端可用时返回远端笔记，否则返回本机笔记，按更新时间倒序
// @Tags 笔记
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.NoteListResponse} "成功"
// @Router /api/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	notes, err := h.App.NoteService.ListNotes(ctx)
	if err != nil {
		h.logError(ctx, "NoteHandler.List", err)
		response.ToResponse(errorCode(err))
		return
	}
	if notes == nil {
		notes = []domain.Note{}
	}

	response.ToResponse(code.Success.WithData(dto.NoteListResponse{
		List:       notes,
		Configured: h.App.NoteService.Configured(),
	}))
}

// Create 创建笔记
// @Summary 创建笔记
// @Tags 笔记
// @Accept json
// @Produce json
// @Param params body dto.NoteSaveRequest true "笔记内容"
// @Success 200 {object} pkgapp.Res{data=domain.Note} "成功"
// @Router /api/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteSaveRequest{}

	// 参数绑定和验证
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn("NoteHandler.Create.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.CreateNote(ctx, params.ToInput())
	if err != nil {
		h.logError(ctx, "NoteHandler.Create", err)
		response.ToResponse(errorCode(err))
		return
	}

	response.ToResponse(code.SuccessCreate.WithData(note))
}

// Update 更新笔记，草稿 ID 视为创建
// @Summary 更新笔记
// @Tags 笔记
// @Accept json
// @Produce json
// @Param id path string true "笔记 ID"
// @Param params body dto.NoteSaveRequest true "笔记内容"
// @Success 200 {object} pkgapp.Res{data=domain.Note} "成功"
// @Router /api/notes/{id} [put]
func (h *NoteHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteSaveRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn("NoteHandler.Update.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	id := domain.ParseNoteID(c.Param("id"))
	note, err := h.App.NoteService.UpdateNote(ctx, id, params.ToInput())
	if err != nil {
		h.logError(ctx, "NoteHandler.Update", err)
		response.ToResponse(errorCode(err))
		return
	}

	response.ToResponse(code.SuccessUpdate.WithData(note))
}

// Delete 删除笔记
// @Summary 删除笔记
// @Tags 笔记
// @Produce json
// @Param id path string true "笔记 ID"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDeleteResponse} "成功"
// @Router /api/notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	id := domain.ParseNoteID(c.Param("id"))
	ok, err := h.App.NoteService.DeleteNote(ctx, id)
	if err != nil {
		h.logError(ctx, "NoteHandler.Delete", err)
		response.ToResponse(errorCode(err))
		return
	}

	response.ToResponse(code.SuccessDelete.WithData(dto.NoteDeleteResponse{ID: id.String(), Deleted: ok}))
}
