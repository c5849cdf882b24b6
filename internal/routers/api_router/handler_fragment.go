package api_router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haierkeys/murverse-service/internal/app"
	"github.com/haierkeys/murverse-service/internal/dto"
	"github.com/haierkeys/murverse-service/internal/service"
	pkgapp "github.com/haierkeys/murverse-service/pkg/app"
	"github.com/haierkeys/murverse-service/pkg/code"
	apperrors "github.com/haierkeys/murverse-service/pkg/errors"
)

// FragmentHandler 碎片 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type FragmentHandler struct {
	*Handler
}

// NewFragmentHandler 创建 FragmentHandler 实例
func NewFragmentHandler(a *app.App) *FragmentHandler {
	return &FragmentHandler{Handler: NewHandler(a)}
}

// List 获取碎片列表
// @Summary 获取碎片列表
// @Description 返回当前用户全部碎片（含笔记与标签），按更新时间倒序；提供查询参数时按搜索条件过滤
// @Tags 碎片
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Produce json
// @Param params query dto.FragmentListRequest false "搜索参数"
// @Success 200 {object} pkgapp.Res{data=[]fragment.Fragment} "成功"
// @Failure 400 {object} apperrors.AppError "参数错误"
// @Router /api/fragments [get]
func (h *FragmentHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.FragmentListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("FragmentHandler.List.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	ctx := c.Request.Context()

	query, err := service.BuildQuery(params, time.Now(), time.Local)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	list, err := h.App.FragmentService.List(ctx, uid, query)
	if err != nil {
		h.logError(ctx, "FragmentHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(list))
}

// Get 获取单个碎片
// @Summary 获取碎片详情
// @Tags 碎片
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Produce json
// @Param id path string true "碎片ID"
// @Success 200 {object} pkgapp.Res{data=fragment.Fragment} "成功"
// @Failure 404 {object} apperrors.AppError "碎片不存在"
// @Router /api/fragments/{id} [get]
func (h *FragmentHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.FragmentIDRequest{ID: c.Param("id")}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	ctx := c.Request.Context()

	f, err := h.App.FragmentService.Get(ctx, uid, params.ID)
	if err != nil {
		h.logError(ctx, "FragmentHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(f))
}

// Create 创建碎片
// @Summary 创建碎片
// @Description 创建碎片以及附带的标签和笔记；附属部分写入失败时碎片仍然保留，并在结果中列出失败项
// @Tags 碎片
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Accept json
// @Produce json
// @Param params body dto.FragmentCreateRequest true "碎片内容"
// @Success 200 {object} pkgapp.Res{data=dto.FragmentWriteResult} "成功"
// @Failure 400 {object} apperrors.AppError "参数错误"
// @Router /api/fragments [post]
func (h *FragmentHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.FragmentCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("FragmentHandler.Create.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	ctx := c.Request.Context()

	result, err := h.App.FragmentService.Create(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "FragmentHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	if result.Partial() {
		response.ToResponse(code.SuccessCreatePartial.WithData(result))
		return
	}
	response.ToResponse(code.SuccessCreate.WithData(result))
}

// Upsert 按 ID 覆盖写入碎片
// @Summary 覆盖写入碎片
// @Description 碎片不存在时创建；携带 baseVersion 且与当前版本不一致时返回 409
// @Tags 碎片
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Accept json
// @Produce json
// @Param id path string true "碎片ID"
// @Param params body dto.FragmentUpsertRequest true "碎片内容"
// @Success 200 {object} pkgapp.Res{data=fragment.Fragment} "成功"
// @Failure 409 {object} apperrors.AppError "版本冲突"
// @Router /api/fragments/{id} [put]
func (h *FragmentHandler) Upsert(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.FragmentUpsertRequest{ID: c.Param("id")}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("FragmentHandler.Upsert.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	ctx := c.Request.Context()

	f, err := h.App.FragmentService.Upsert(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "FragmentHandler.Upsert", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessUpdate.WithData(f))
}

// Delete 删除碎片
// @Summary 删除碎片
// @Description 删除前生成备份快照，管理员可在保留期内恢复
// @Tags 碎片
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Produce json
// @Param id path string true "碎片ID"
// @Success 200 {object} pkgapp.Res "成功"
// @Failure 404 {object} apperrors.AppError "碎片不存在"
// @Router /api/fragments/{id} [delete]
func (h *FragmentHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.FragmentIDRequest{ID: c.Param("id")}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	ctx := c.Request.Context()

	if err := h.App.FragmentService.Delete(ctx, uid, params.ID); err != nil {
		h.logError(ctx, "FragmentHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessDelete)
}

// Tags 获取标签索引
// @Summary 获取标签索引
// @Description 返回当前用户全部标签及使用次数
// @Tags 标签
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Produce json
// @Success 200 {object} pkgapp.Res{data=[]search.TagStat} "成功"
// @Router /api/tags [get]
func (h *FragmentHandler) Tags(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	uid := pkgapp.GetUID(c)
	ctx := c.Request.Context()

	stats, err := h.App.FragmentService.Tags(ctx, uid)
	if err != nil {
		h.logError(ctx, "FragmentHandler.Tags", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(stats))
}
