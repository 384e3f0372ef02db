package logger

// 统一的日志字段命名常量
// Shared log field names, keeping queries across the project consistent
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldAction 操作类型字段 (list/create/update/delete)
	FieldAction = "action"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldIDKind 笔记 ID 来源字段 (remote/local/draft)
	FieldIDKind = "idKind"

	// FieldDriver 远端存储驱动字段
	FieldDriver = "driver"

	// FieldStore 存储位置字段 (remote/local)
	FieldStore = "store"

	// FieldKey 本地存储键字段
	FieldKey = "key"

	// FieldCount 数量字段
	FieldCount = "count"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldSize 数据大小字段
	FieldSize = "size"
)
