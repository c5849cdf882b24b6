package dto

import (
	"time"

	"github.com/haierkeys/murverse-service/pkg/fragment"
)

// FragmentListRequest list / search query parameters
// 碎片列表与搜索请求参数
type FragmentListRequest struct {
	Q            string   `json:"q" form:"q"`                                                                                 // Search query // 搜索语句
	Scopes       []string `json:"scopes" form:"scopes"`                                                                       // fragment,note,tag // 搜索范围
	MatchMode    string   `json:"matchMode" form:"matchMode" binding:"omitempty,oneof=exact prefix substring"`                // Match mode // 匹配模式
	TimeRange    string   `json:"timeRange" form:"timeRange" binding:"omitempty,oneof=all today yesterday week month custom"` // Time range // 时间范围
	Start        string   `json:"start" form:"start"`                                                                         // Custom range start // 自定义开始时间
	End          string   `json:"end" form:"end"`                                                                             // Custom range end // 自定义结束时间
	Tags         []string `json:"tags" form:"tags"`                                                                           // Selected tags // 选中的标签
	ExcludedTags []string `json:"excludedTags" form:"excludedTags"`                                                           // Excluded tags // 排除的标签
	TagLogic     string   `json:"tagLogic" form:"tagLogic" binding:"omitempty,oneof=AND OR and or"`                           // AND / OR // 标签组合逻辑
}

// NoteInput note payload embedded in a create request
// 创建碎片时附带的笔记
type NoteInput struct {
	Title    string `json:"title"`    // Title // 标题
	Value    string `json:"value"`    // Body // 内容
	Color    string `json:"color"`    // Display color // 颜色
	IsPinned bool   `json:"isPinned"` // Pinned // 是否置顶
}

// FragmentCreateRequest POST /fragments body
// 创建碎片请求参数
type FragmentCreateRequest struct {
	Content   string              `json:"content" form:"content" binding:"required,notblank"`                      // Content // 内容
	Type      string              `json:"type" form:"type" binding:"omitempty,fragment_type"`                      // Fragment type // 类型
	Status    string              `json:"status" form:"status" binding:"omitempty,oneof=draft published archived"` // Status // 状态
	Tags      []string            `json:"tags" form:"tags"`                                                        // Tags // 标签
	Notes     []NoteInput         `json:"notes"`                                                                   // Notes // 笔记
	ParentID  string              `json:"parentId"`                                                                // Parent fragment // 父碎片
	Relations []fragment.Relation `json:"relations"`                                                               // Relations // 关系
	Meta      *fragment.Meta      `json:"meta"`                                                                    // Meta flags // 元数据
}

// FragmentUpsertRequest PUT /fragments/{id} body, overwrite keyed by id
// 按 ID 覆盖写入碎片
type FragmentUpsertRequest struct {
	ID          string              `json:"-" form:"-" binding:"required"`                             // Fragment ID (path) // 碎片ID
	Content     string              `json:"content"`                                                   // Content // 内容
	Type        string              `json:"type" binding:"omitempty,fragment_type"`                    // Fragment type // 类型
	Status      string              `json:"status" binding:"omitempty,oneof=draft published archived"` // Status // 状态
	Tags        []string            `json:"tags"`                                                      // Tags // 标签
	Notes       []fragment.Note     `json:"notes"`                                                     // Notes with ids // 笔记
	Relations   []fragment.Relation `json:"relations"`                                                 // Relations // 关系
	Meta        *fragment.Meta      `json:"meta"`                                                      // Meta flags // 元数据
	ParentID    string              `json:"parentId"`                                                  // Parent fragment // 父碎片
	ChildIDs    []string            `json:"childIds"`                                                  // Children // 子碎片
	CreatedAt   time.Time           `json:"createdAt"`                                                 // Kept when creating // 创建时间
	BaseVersion int64               `json:"baseVersion"`                                               // Optimistic check, 0 = last write wins // 基准版本
}

// FragmentIDRequest single fragment addressed by path id
// 通过路径 ID 定位碎片
type FragmentIDRequest struct {
	ID string `json:"-" form:"-" binding:"required"` // Fragment ID // 碎片ID
}

// PartFailure one secondary write that did not persist
// PartFailure 未能保存的附属写入
type PartFailure struct {
	Part  string `json:"part"`  // "tag" or "note" // 类型
	Index int    `json:"index"` // Position in the request // 请求中的位置
	Value string `json:"value"` // Tag text or note title // 标签或笔记标题
	Error string `json:"error"` // Reason // 原因
}

// FragmentWriteResult fragment plus the outcome of its tag and note rows
// FragmentWriteResult 创建结果，包含失败的附属写入
type FragmentWriteResult struct {
	Fragment *fragment.Fragment `json:"fragment"`         // Persisted fragment // 已保存的碎片
	Failed   []PartFailure      `json:"failed,omitempty"` // Failed parts // 失败的部分
}

// Partial reports whether some secondary write failed.
func (r *FragmentWriteResult) Partial() bool {
	return r != nil && len(r.Failed) > 0
}
