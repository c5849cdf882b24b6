package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/haierkeys/murverse-service/internal/domain"
	"github.com/haierkeys/murverse-service/internal/dto"
	"github.com/haierkeys/murverse-service/pkg/app"
	"github.com/haierkeys/murverse-service/pkg/code"
	"github.com/haierkeys/murverse-service/pkg/logger"
	"github.com/haierkeys/murverse-service/pkg/timex"
	"github.com/haierkeys/murverse-service/pkg/util"
)

// UserService 定义用户业务服务接口
type UserService interface {
	// Register 用户注册
	Register(ctx context.Context, params *dto.UserCreateRequest, clientIP string) (*dto.UserLoginDTO, error)

	// Login 用户登录
	Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserLoginDTO, error)

	// GetInfo 获取用户信息
	GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error)

	// IsAdmin 判断用户是否为管理员
	IsAdmin(uid int64) bool
}

// userService 实现 UserService 接口
type userService struct {
	userRepo     domain.UserRepository
	tokenManager app.TokenManager
	logger       *zap.Logger
	config       *ServiceConfig
}

// NewUserService 创建 UserService 实例
func NewUserService(userRepo domain.UserRepository, tokenManager app.TokenManager, logger *zap.Logger, config *ServiceConfig) UserService {
	return &userService{
		userRepo:     userRepo,
		tokenManager: tokenManager,
		logger:       logger,
		config:       config,
	}
}

// domainToDTO 将领域模型转换为 DTO
func (s *userService) domainToDTO(user *domain.User) *dto.UserDTO {
	if user == nil {
		return nil
	}
	return &dto.UserDTO{
		UID:       user.UID,
		Email:     user.Email,
		Username:  user.Username,
		IsAdmin:   s.config.IsAdmin(user.UID),
		UpdatedAt: timex.Time(user.UpdatedAt),
		CreatedAt: timex.Time(user.CreatedAt),
	}
}

// IsAdmin 判断用户是否为管理员
func (s *userService) IsAdmin(uid int64) bool {
	return s.config.IsAdmin(uid)
}

// Register 用户注册
func (s *userService) Register(ctx context.Context, params *dto.UserCreateRequest, clientIP string) (*dto.UserLoginDTO, error) {
	// 检查注册是否启用
	if s.config == nil || !s.config.User.RegisterIsEnable {
		return nil, code.ErrorUserRegisterIsDisable
	}

	if !util.IsValidUsername(params.Username) {
		return nil, code.ErrorUserUsernameNotValid
	}
	if params.Password != params.ConfirmPassword {
		return nil, code.ErrorPasswordNotValid
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if err := s.ensureFree(ctx, s.userRepo.GetByEmail, email); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.userRepo.GetByUsername, params.Username); err != nil {
		return nil, err
	}

	password, err := util.GeneratePasswordHash(params.Password)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, code.ErrorServerInternal
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Username: params.Username,
		Email:    email,
		Password: password,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, code.ErrorUserAlreadyExists
	}
	if err != nil {
		return nil, repoError(s.logger, "userService.Register", err, nil)
	}

	s.logger.Info("user registered", zap.Int64(logger.FieldUID, user.UID))
	return s.issue(user, clientIP)
}

func (s *userService) ensureFree(ctx context.Context, lookup func(context.Context, string) (*domain.User, error), key string) error {
	u, err := lookup(ctx, key)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return repoError(s.logger, "userService.Register", err, nil)
	}
	if u != nil {
		return code.ErrorUserAlreadyExists
	}
	return nil
}

// Login 用户登录
func (s *userService) Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserLoginDTO, error) {
	var user *domain.User
	var err error

	credentials := strings.TrimSpace(params.Credentials)
	if util.IsValidEmail(credentials) {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(credentials))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, credentials)
	}
	// 不暴露用户是否存在，统一返回用户名或密码错误
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repoError(s.logger, "userService.Login", err, nil)
		}
		return nil, code.ErrorUserLoginFailed
	}
	if !user.CanLogin() || !util.CheckPasswordHash(user.Password, params.Password) {
		return nil, code.ErrorUserLoginFailed
	}
	return s.issue(user, clientIP)
}

// issue 签发 Token
func (s *userService) issue(user *domain.User, clientIP string) (*dto.UserLoginDTO, error) {
	token, err := s.tokenManager.Generate(user.UID, user.Username, clientIP)
	if err != nil {
		s.logger.Error("generate token failed", zap.Int64(logger.FieldUID, user.UID), zap.Error(err))
		return nil, code.ErrorTokenGenerate
	}
	out := &dto.UserLoginDTO{Token: token, User: s.domainToDTO(user)}
	if claims, err := s.tokenManager.Parse(token); err == nil && claims.ExpiresAt != nil {
		out.ExpiresAt = timex.Time(claims.ExpiresAt.Time)
	} else {
		out.ExpiresAt = timex.Time(time.Now().Add(s.tokenManager.Expiry()))
	}
	return out, nil
}

// GetInfo 获取用户信息
func (s *userService) GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, repoError(s.logger, "userService.GetInfo", err, code.ErrorUserNotFound)
	}
	return s.domainToDTO(user), nil
}

// 确保 userService 实现了 UserService 接口
var _ UserService = (*userService)(nil)
