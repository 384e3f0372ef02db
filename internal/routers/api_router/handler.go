// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"
	"errors"

	"github.com/haierkeys/personal-notes/internal/app"
	"github.com/haierkeys/personal-notes/internal/middleware"
	"github.com/haierkeys/personal-notes/internal/service"
	"github.com/haierkeys/personal-notes/pkg/code"

	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// logError 记录带 Trace ID 的错误日志
func (h *Handler) logError(ctx context.Context, method string, err error) {
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", middleware.GetTraceID(ctx)),
	)
}

// errorCode 将服务层错误转换为响应码
func errorCode(err error) *code.Code {
	var pe *service.PersistenceError
	switch {
	case errors.As(err, &pe):
		return code.ErrorNotePersist.WithDetails(err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return code.ErrorRequestTimeout
	default:
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
}
