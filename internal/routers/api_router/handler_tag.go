package api_router

import (
	"github.com/gin-gonic/gin"

	"github.com/haierkeys/murverse-service/internal/app"
	"github.com/haierkeys/murverse-service/internal/dto"
	pkgapp "github.com/haierkeys/murverse-service/pkg/app"
	"github.com/haierkeys/murverse-service/pkg/code"
	apperrors "github.com/haierkeys/murverse-service/pkg/errors"
)

// TagHandler 碎片标签 API 路由处理器
type TagHandler struct {
	*Handler
}

// NewTagHandler 创建 TagHandler 实例
func NewTagHandler(a *app.App) *TagHandler {
	return &TagHandler{Handler: NewHandler(a)}
}

// Add 为碎片添加标签
// @Summary 添加标签
// @Description 标签比较忽略大小写，已存在时返回 409
// @Tags 标签
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Accept json
// @Produce json
// @Param id path string true "碎片ID"
// @Param params body dto.TagAddRequest true "标签"
// @Success 200 {object} pkgapp.Res{data=[]string} "碎片当前标签"
// @Failure 409 {object} apperrors.AppError "标签已存在"
// @Router /api/fragments/{id}/tags [post]
func (h *TagHandler) Add(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.TagAddRequest{FragmentID: c.Param("id")}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	ctx := c.Request.Context()

	tags, err := h.App.TagService.Add(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "TagHandler.Add", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessCreate.WithData(tags))
}

// Remove 移除碎片标签
// @Summary 移除标签
// @Tags 标签
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Produce json
// @Param id path string true "碎片ID"
// @Param tag path string true "标签"
// @Success 200 {object} pkgapp.Res{data=[]string} "碎片当前标签"
// @Failure 404 {object} apperrors.AppError "标签不存在"
// @Router /api/fragments/{id}/tags/{tag} [delete]
func (h *TagHandler) Remove(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.TagRemoveRequest{FragmentID: c.Param("id"), Tag: c.Param("tag")}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	ctx := c.Request.Context()

	tags, err := h.App.TagService.Remove(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "TagHandler.Remove", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessDelete.WithData(tags))
}
