package app

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

// PaginationConfig pagination configuration // 分页配置
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultPaginationConfig default pagination configuration // 默认分页配置
var DefaultPaginationConfig = PaginationConfig{
	DefaultPageSize: 10,
	MaxPageSize:     100,
}

const pageSizeKey = "page_size"

func queryInt(c *gin.Context, key string) int {
	if s, exist := c.GetQuery(key); exist {
		return cast.ToInt(s)
	}
	if s := c.PostForm(key); s != "" {
		return cast.ToInt(s)
	}
	return 0
}

func GetPage(c *gin.Context) int {
	page := queryInt(c, "page")
	if page <= 0 {
		return 1
	}
	return page
}

// GetPageSizeWithConfig gets page size (using injected configuration)
// GetPageSizeWithConfig 获取分页大小（使用注入的配置）
// 计算结果记录在 Context 中，NewPager 会复用
func GetPageSizeWithConfig(c *gin.Context, cfg PaginationConfig) int {
	pageSize := queryInt(c, "pageSize")
	switch {
	case pageSize <= 0:
		pageSize = cfg.DefaultPageSize
	case pageSize > cfg.MaxPageSize:
		pageSize = cfg.MaxPageSize
	}
	c.Set(pageSizeKey, pageSize)
	return pageSize
}

// GetPageSize gets page size (using default configuration)
// GetPageSize 获取分页大小（使用默认配置）
func GetPageSize(c *gin.Context) int {
	return GetPageSizeWithConfig(c, DefaultPaginationConfig)
}

func GetPageOffset(page, pageSize int) int {
	result := 0
	if page > 0 {
		result = (page - 1) * pageSize
	}

	return result
}

// NewPager 从请求参数构造分页信息
func NewPager(c *gin.Context, totalRows int) *Pager {
	pageSize := c.GetInt(pageSizeKey)
	if pageSize <= 0 {
		pageSize = GetPageSize(c)
	}
	return &Pager{
		Page:      GetPage(c),
		PageSize:  pageSize,
		TotalRows: totalRows,
	}
}
