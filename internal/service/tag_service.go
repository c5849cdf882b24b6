package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/haierkeys/murverse-service/internal/domain"
	"github.com/haierkeys/murverse-service/internal/dto"
	"github.com/haierkeys/murverse-service/pkg/code"
)

// TagService 定义标签业务服务接口
type TagService interface {
	// Add 添加标签，折叠后重复返回 ErrorTagAlreadyExists，返回碎片当前标签
	Add(ctx context.Context, uid int64, params *dto.TagAddRequest) ([]string, error)

	// Remove 删除标签，返回碎片当前标签
	Remove(ctx context.Context, uid int64, params *dto.TagRemoveRequest) ([]string, error)
}

// tagService 实现 TagService 接口
type tagService struct {
	owner
	tagRepo domain.TagRepository
}

// NewTagService 创建 TagService 实例
func NewTagService(fragmentRepo domain.FragmentRepository, tagRepo domain.TagRepository, events EventSink, logger *zap.Logger) TagService {
	if events == nil {
		events = nopSink{}
	}
	return &tagService{
		owner:   owner{fragmentRepo: fragmentRepo, events: events, logger: logger, now: time.Now},
		tagRepo: tagRepo,
	}
}

// Add 添加标签
func (s *tagService) Add(ctx context.Context, uid int64, params *dto.TagAddRequest) ([]string, error) {
	tag := strings.TrimSpace(params.Tag)
	if tag == "" {
		return nil, code.ErrorTagEmpty
	}
	if _, err := s.check(ctx, uid, params.FragmentID); err != nil {
		return nil, err
	}

	err := s.tagRepo.Add(ctx, params.FragmentID, uid, tag)
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, code.ErrorTagAlreadyExists.WithDetails(tag)
	}
	if err != nil {
		return nil, repoError(s.logger, "tagService.Add", err, nil)
	}
	s.touch(ctx, uid, params.FragmentID, s.now())
	return s.list(ctx, uid, params.FragmentID)
}

// Remove 删除标签
func (s *tagService) Remove(ctx context.Context, uid int64, params *dto.TagRemoveRequest) ([]string, error) {
	if _, err := s.check(ctx, uid, params.FragmentID); err != nil {
		return nil, err
	}
	removed, err := s.tagRepo.Remove(ctx, params.FragmentID, uid, strings.TrimSpace(params.Tag))
	if err != nil {
		return nil, repoError(s.logger, "tagService.Remove", err, nil)
	}
	if !removed {
		return nil, code.ErrorTagNotFound.WithDetails(params.Tag)
	}
	s.touch(ctx, uid, params.FragmentID, s.now())
	return s.list(ctx, uid, params.FragmentID)
}

func (s *tagService) list(ctx context.Context, uid int64, fragmentID string) ([]string, error) {
	tags, err := s.tagRepo.ListByFragment(ctx, fragmentID, uid)
	if err != nil {
		return nil, repoError(s.logger, "tagService.list", err, nil)
	}
	return tags, nil
}

// 确保 tagService 实现了 TagService 接口
var _ TagService = (*tagService)(nil)
