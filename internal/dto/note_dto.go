package dto

// NoteCreateRequest POST /fragments/{id}/notes body
// 添加笔记请求参数
type NoteCreateRequest struct {
	FragmentID string `json:"-" form:"-" binding:"required"` // Fragment ID (path) // 碎片ID
	Title      string `json:"title" form:"title"`            // Title // 标题
	Value      string `json:"value" form:"value"`            // Body // 内容
	Color      string `json:"color" form:"color"`            // Display color // 颜色
	IsPinned   bool   `json:"isPinned" form:"isPinned"`      // Pinned // 是否置顶
}

// NoteUpdateRequest PATCH /fragments/{id}/notes body; nil fields are left unchanged
// 更新笔记请求参数，未提供的字段保持不变
type NoteUpdateRequest struct {
	FragmentID string  `json:"-" form:"-" binding:"required"`           // Fragment ID (path) // 碎片ID
	NoteID     string  `json:"noteId" form:"noteId" binding:"required"` // Note ID // 笔记ID
	Title      *string `json:"title"`                                   // Title // 标题
	Value      *string `json:"value"`                                   // Body // 内容
	Color      *string `json:"color"`                                   // Display color // 颜色
	IsPinned   *bool   `json:"isPinned"`                                // Pinned // 是否置顶
}

// NoteDeleteRequest DELETE /fragments/{id}/notes?noteId=
// 删除笔记请求参数
type NoteDeleteRequest struct {
	FragmentID string `json:"-" form:"-" binding:"required"`           // Fragment ID (path) // 碎片ID
	NoteID     string `json:"noteId" form:"noteId" binding:"required"` // Note ID // 笔记ID
}

// NoteReorderRequest PUT /fragments/{id}/notes/order body
// 笔记排序请求参数
type NoteReorderRequest struct {
	FragmentID string   `json:"-" form:"-" binding:"required"`    // Fragment ID (path) // 碎片ID
	NoteIDs    []string `json:"noteIds" binding:"required,min=1"` // New order // 新的顺序
}

// TagAddRequest POST /fragments/{id}/tags body
// 添加标签请求参数
type TagAddRequest struct {
	FragmentID string `json:"-" form:"-" binding:"required"`              // Fragment ID (path) // 碎片ID
	Tag        string `json:"tag" form:"tag" binding:"required,notblank"` // Tag // 标签
}

// TagRemoveRequest DELETE /fragments/{id}/tags/{tag}
// 删除标签请求参数
type TagRemoveRequest struct {
	FragmentID string `json:"-" form:"-" binding:"required"` // Fragment ID (path) // 碎片ID
	Tag        string `json:"-" form:"-" binding:"required"` // Tag (path) // 标签
}
