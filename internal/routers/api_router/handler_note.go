package api_router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haierkeys/murverse-service/internal/app"
	"github.com/haierkeys/murverse-service/internal/dto"
	pkgapp "github.com/haierkeys/murverse-service/pkg/app"
	"github.com/haierkeys/murverse-service/pkg/code"
	apperrors "github.com/haierkeys/murverse-service/pkg/errors"
)

// NoteHandler 笔记 API 路由处理器
// 笔记始终挂在碎片下，每次写操作都会校验碎片归属
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a)}
}

// Create 添加笔记
// @Summary 添加笔记
// @Description 标题和内容不能同时为空
// @Tags 笔记
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Accept json
// @Produce json
// @Param id path string true "碎片ID"
// @Param params body dto.NoteCreateRequest true "笔记内容"
// @Success 200 {object} pkgapp.Res{data=fragment.Note} "成功"
// @Failure 400 {object} apperrors.AppError "笔记为空"
// @Failure 404 {object} apperrors.AppError "碎片不存在"
// @Router /api/fragments/{id}/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteCreateRequest{FragmentID: c.Param("id")}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Create.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	ctx := c.Request.Context()

	note, err := h.App.NoteService.Create(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessCreate.WithData(note))
}

// Update 更新笔记
// @Summary 更新笔记
// @Description 只修改请求中出现的字段；笔记不属于调用者的碎片时返回 404
// @Tags 笔记
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Accept json
// @Produce json
// @Param id path string true "碎片ID"
// @Param params body dto.NoteUpdateRequest true "更新内容"
// @Success 200 {object} pkgapp.Res{data=fragment.Note} "成功"
// @Failure 404 {object} apperrors.AppError "笔记不存在"
// @Router /api/fragments/{id}/notes [patch]
func (h *NoteHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteUpdateRequest{FragmentID: c.Param("id")}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Update.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	ctx := c.Request.Context()

	note, err := h.App.NoteService.Update(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Update", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessUpdate.WithData(note))
}

// Delete 删除笔记
// @Summary 删除笔记
// @Tags 笔记
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Produce json
// @Param id path string true "碎片ID"
// @Param noteId query string true "笔记ID"
// @Success 200 {object} pkgapp.Res "成功"
// @Failure 404 {object} apperrors.AppError "笔记不存在"
// @Router /api/fragments/{id}/notes [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteDeleteRequest{FragmentID: c.Param("id")}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	ctx := c.Request.Context()

	if err := h.App.NoteService.Delete(ctx, uid, params); err != nil {
		h.logError(ctx, "NoteHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessDelete)
}

// Reorder 调整笔记顺序
// @Summary 调整笔记顺序
// @Description noteIds 必须恰好包含碎片的全部笔记
// @Tags 笔记
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Accept json
// @Produce json
// @Param id path string true "碎片ID"
// @Param params body dto.NoteReorderRequest true "新的顺序"
// @Success 200 {object} pkgapp.Res{data=fragment.Fragment} "成功"
// @Router /api/fragments/{id}/notes/order [put]
func (h *NoteHandler) Reorder(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteReorderRequest{FragmentID: c.Param("id")}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	ctx := c.Request.Context()

	f, err := h.App.NoteService.Reorder(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Reorder", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessUpdate.WithData(f))
}
