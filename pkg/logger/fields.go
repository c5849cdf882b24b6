package logger

// 统一的日志字段命名常量
// Shared zap field names, so log queries work across packages.
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldPath 请求路径字段
	FieldPath = "path"

	// FieldFragmentID 碎片 ID 字段
	FieldFragmentID = "fragmentId"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldTag 标签字段
	FieldTag = "tag"

	// FieldBackupID 备份 ID 字段
	FieldBackupID = "backupId"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldCount 数量字段
	FieldCount = "count"

	// FieldKey 存储键字段
	FieldKey = "key"

	// FieldSource 数据来源字段 (cache / network)
	FieldSource = "source"
)
