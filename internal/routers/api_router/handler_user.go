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

// UserHandler user API router handler
// UserHandler 用户 API 路由处理器
type UserHandler struct {
	*Handler
}

// NewUserHandler creates UserHandler instance
// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(a *app.App) *UserHandler {
	return &UserHandler{Handler: NewHandler(a)}
}

// Register handles user registration
// @Summary 用户注册
// @Tags 用户
// @Accept json
// @Produce json
// @Param params body dto.UserCreateRequest true "注册参数"
// @Success 200 {object} pkgapp.Res{data=dto.UserLoginDTO} "成功"
// @Failure 403 {object} apperrors.AppError "注册已关闭"
// @Failure 409 {object} apperrors.AppError "用户已存在"
// @Router /api/user/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.UserCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("UserHandler.Register.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	result, err := h.App.UserService.Register(ctx, params, pkgapp.GetRequestIP(c))
	if err != nil {
		h.logError(ctx, "UserHandler.Register", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessRegister.WithData(result))
}

// Login handles user login
// @Summary 用户登录
// @Description 使用用户名或邮箱登录，返回 Bearer Token
// @Tags 用户
// @Accept json
// @Produce json
// @Param params body dto.UserLoginRequest true "登录参数"
// @Success 200 {object} pkgapp.Res{data=dto.UserLoginDTO} "成功"
// @Failure 401 {object} apperrors.AppError "用户名或密码错误"
// @Router /api/user/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.UserLoginRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	result, err := h.App.UserService.Login(ctx, params, pkgapp.GetRequestIP(c))
	if err != nil {
		h.logError(ctx, "UserHandler.Login", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessLogin.WithData(result))
}

// UserInfo returns the caller profile
// @Summary 当前用户信息
// @Tags 用户
// @Security UserAuthToken
// @Param Authorization header string true "Bearer Token"
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.UserDTO} "成功"
// @Router /api/user/info [get]
func (h *UserHandler) UserInfo(c *gin.Context) {
	ctx := c.Request.Context()
	info, err := h.App.UserService.GetInfo(ctx, pkgapp.GetUID(c))
	if err != nil {
		h.logError(ctx, "UserHandler.UserInfo", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(info))
}
