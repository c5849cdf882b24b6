package code

var (
	Failed  = NewError(0, KindInternal, lang{en: "Failed", zh_cn: "失败"})
	Success = NewSuss(1, lang{en: "Success", zh_cn: "成功"})

	SuccessCreate        = NewSuss(2, lang{en: "Created successfully", zh_cn: "创建成功"})
	SuccessUpdate        = NewSuss(3, lang{en: "Updated successfully", zh_cn: "更新成功"})
	SuccessDelete        = NewSuss(4, lang{en: "Deleted successfully", zh_cn: "删除成功"})
	SuccessCreatePartial = NewSuss(5, lang{en: "Created, but some parts failed to save", zh_cn: "已创建，但部分内容保存失败"})
	SuccessRestore       = NewSuss(6, lang{en: "Restored successfully", zh_cn: "恢复成功"})
	SuccessLogin         = NewSuss(7, lang{en: "Login successful", zh_cn: "登录成功"})
	SuccessRegister      = NewSuss(8, lang{en: "Registration successful", zh_cn: "注册成功"})
)

// Common errors 通用错误
var (
	ErrorServerInternal  = NewError(500, KindInternal, lang{en: "Internal server error", zh_cn: "服务器内部错误"})
	ErrorNotFoundAPI     = NewError(501, KindNotFound, lang{en: "API not found", zh_cn: "找不到API"})
	ErrorInvalidParams   = NewError(502, KindValidation, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorTooManyRequests = NewError(503, KindTooManyRequests, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorDBQuery         = NewError(504, KindInternal, lang{en: "Database query failed", zh_cn: "数据库查询失败"})
	ErrorRequestTimeout  = NewError(505, KindInternal, lang{en: "Request timed out", zh_cn: "请求超时"})
)

// Auth errors 认证错误
var (
	ErrorNotUserAuthToken      = NewError(1001, KindUnauthorized, lang{en: "Authentication token not found", zh_cn: "找不到用户认证令牌"})
	ErrorInvalidUserAuthToken  = NewError(1002, KindUnauthorized, lang{en: "Authentication token is invalid or expired", zh_cn: "用户认证令牌无效或已过期"})
	ErrorUserLoginFailed       = NewError(1003, KindUnauthorized, lang{en: "Incorrect username or password", zh_cn: "用户名或密码错误"})
	ErrorUserIsNotAdmin        = NewError(1004, KindForbidden, lang{en: "Administrator privileges required", zh_cn: "需要管理员权限"})
	ErrorUserRegisterIsDisable = NewError(1005, KindForbidden, lang{en: "User registration is disabled", zh_cn: "用户注册已关闭"})
	ErrorUserAlreadyExists     = NewError(1006, KindConflict, lang{en: "User already exists", zh_cn: "用户已存在"})
	ErrorUserNotFound          = NewError(1007, KindNotFound, lang{en: "User not found", zh_cn: "用户不存在"})
	ErrorPasswordNotValid      = NewError(1008, KindValidation, lang{en: "Passwords do not match", zh_cn: "两次输入的密码不一致"})
	ErrorTokenGenerate         = NewError(1009, KindInternal, lang{en: "Failed to generate token", zh_cn: "生成令牌失败"})
	ErrorUserUsernameNotValid  = NewError(1010, KindValidation, lang{en: "Username must be 3-20 letters, digits or underscores", zh_cn: "用户名须为3-20位字母、数字或下划线"})
)

// Fragment errors 碎片错误
var (
	ErrorFragmentNotFound        = NewError(2001, KindNotFound, lang{en: "Fragment not found", zh_cn: "碎片不存在"})
	ErrorFragmentContentEmpty    = NewError(2002, KindValidation, lang{en: "Fragment content is required", zh_cn: "碎片内容不能为空"})
	ErrorFragmentVersionConflict = NewError(2003, KindConflict, lang{en: "Fragment was modified by another writer", zh_cn: "碎片已被其他客户端修改"})
	ErrorFragmentAlreadyExists   = NewError(2004, KindConflict, lang{en: "Fragment already exists", zh_cn: "碎片已存在"})
	ErrorFragmentTypeInvalid     = NewError(2005, KindValidation, lang{en: "Unknown fragment type", zh_cn: "未知的碎片类型"})
	ErrorFragmentSaveFailed      = NewError(2006, KindInternal, lang{en: "Failed to save fragment", zh_cn: "碎片保存失败"})
)

// Note errors 笔记错误
var (
	ErrorNoteNotFound = NewError(3001, KindNotFound, lang{en: "Note not found", zh_cn: "笔记不存在"})
	ErrorNoteEmpty    = NewError(3002, KindValidation, lang{en: "A note needs a title or a value", zh_cn: "笔记的标题和内容不能同时为空"})
	ErrorNoteOrder    = NewError(3003, KindValidation, lang{en: "Note order must list every note exactly once", zh_cn: "排序必须包含全部笔记且不重复"})
)

// Tag errors 标签错误
var (
	ErrorTagEmpty         = NewError(4001, KindValidation, lang{en: "Tag cannot be empty", zh_cn: "标签不能为空"})
	ErrorTagAlreadyExists = NewError(4002, KindConflict, lang{en: "Tag already exists on this fragment", zh_cn: "该碎片已存在此标签"})
	ErrorTagNotFound      = NewError(4003, KindNotFound, lang{en: "Tag not found on this fragment", zh_cn: "该碎片没有此标签"})
)

// Backup errors 备份错误
var (
	ErrorBackupNotFound = NewError(5001, KindNotFound, lang{en: "Backup not found", zh_cn: "备份不存在"})
	ErrorBackupExpired  = NewError(5002, KindGone, lang{en: "Backup has expired", zh_cn: "备份已过期"})
	ErrorBackupCorrupt  = NewError(5003, KindInternal, lang{en: "Backup snapshot cannot be read", zh_cn: "备份快照无法读取"})
)
