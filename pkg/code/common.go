package code

import "net/http"

var (
	Success       = NewSuss(1, lang{en: "Success", zh_cn: "成功"})
	SuccessCreate = NewSuss(2, lang{en: "Created", zh_cn: "创建成功"})
	SuccessUpdate = NewSuss(3, lang{en: "Updated", zh_cn: "更新成功"})
	SuccessDelete = NewSuss(4, lang{en: "Deleted", zh_cn: "删除成功"})

	ErrorNotFound        = NewError(404, lang{en: "Not found", zh_cn: "资源不存在"}).WithHTTPStatus(http.StatusNotFound)
	ErrorServerInternal  = NewError(500, lang{en: "Internal server error", zh_cn: "服务器内部错误"}).WithHTTPStatus(http.StatusInternalServerError)
	ErrorInvalidParams   = NewError(505, lang{en: "Invalid parameters", zh_cn: "参数验证失败"}).WithHTTPStatus(http.StatusBadRequest)
	ErrorTooManyRequests = NewError(507, lang{en: "Too many requests", zh_cn: "请求过多"}).WithHTTPStatus(http.StatusTooManyRequests)
	ErrorRequestTimeout  = NewError(508, lang{en: "Request timed out", zh_cn: "请求超时"}).WithHTTPStatus(http.StatusGatewayTimeout)
	ErrorNotePersist     = NewError(520, lang{en: "Note could not be saved to any store", zh_cn: "笔记无法保存到任何存储"}).WithHTTPStatus(http.StatusServiceUnavailable)
)
