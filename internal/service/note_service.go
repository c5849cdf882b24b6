package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haierkeys/murverse-service/internal/dao"
	"github.com/haierkeys/murverse-service/internal/domain"
	"github.com/haierkeys/murverse-service/internal/dto"
	"github.com/haierkeys/murverse-service/pkg/code"
	"github.com/haierkeys/murverse-service/pkg/fragment"
	"github.com/haierkeys/murverse-service/pkg/logger"
)

// NoteService 定义笔记业务服务接口
type NoteService interface {
	// Create 在碎片下追加笔记
	Create(ctx context.Context, uid int64, params *dto.NoteCreateRequest) (*fragment.Note, error)

	// Update 局部更新笔记
	Update(ctx context.Context, uid int64, params *dto.NoteUpdateRequest) (*fragment.Note, error)

	// Delete 删除笔记
	Delete(ctx context.Context, uid int64, params *dto.NoteDeleteRequest) error

	// Reorder 调整笔记顺序，返回调整后的碎片
	Reorder(ctx context.Context, uid int64, params *dto.NoteReorderRequest) (*fragment.Fragment, error)
}

// owner verifies fragment ownership and bumps the fragment version after
// note and tag writes. Fragments of other users are reported as missing.
type owner struct {
	fragmentRepo domain.FragmentRepository
	events       EventSink
	logger       *zap.Logger
	now          Clock
}

func (o *owner) check(ctx context.Context, uid int64, fragmentID string) (*domain.Fragment, error) {
	f, err := o.fragmentRepo.GetByID(ctx, fragmentID, uid)
	if err != nil {
		return nil, repoError(o.logger, "owner.check", err, code.ErrorFragmentNotFound)
	}
	return f, nil
}

func (o *owner) touch(ctx context.Context, uid int64, fragmentID string, at time.Time) {
	version, err := o.fragmentRepo.Touch(ctx, fragmentID, uid, strconv.FormatInt(uid, 10), at)
	if err != nil {
		o.logger.Warn("fragment version bump failed",
			zap.Int64(logger.FieldUID, uid),
			zap.String(logger.FieldFragmentID, fragmentID),
			zap.Error(err))
		return
	}
	o.events.Publish(uid, dto.FragmentEventDTO{Type: EventUpdated, FragmentID: fragmentID, Version: version})
}

// noteService 实现 NoteService 接口
type noteService struct {
	owner
	noteRepo domain.NoteRepository
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(fragmentRepo domain.FragmentRepository, noteRepo domain.NoteRepository, events EventSink, logger *zap.Logger) NoteService {
	if events == nil {
		events = nopSink{}
	}
	return &noteService{
		owner:    owner{fragmentRepo: fragmentRepo, events: events, logger: logger, now: time.Now},
		noteRepo: noteRepo,
	}
}

// Create 添加笔记
func (s *noteService) Create(ctx context.Context, uid int64, params *dto.NoteCreateRequest) (*fragment.Note, error) {
	if (fragment.Note{Title: params.Title, Value: params.Value}).IsEmpty() {
		return nil, code.ErrorNoteEmpty
	}
	if _, err := s.check(ctx, uid, params.FragmentID); err != nil {
		return nil, err
	}

	now := s.now()
	n, err := s.noteRepo.Create(ctx, &domain.Note{
		ID:         uuid.NewString(),
		FragmentID: params.FragmentID,
		UID:        uid,
		Title:      params.Title,
		Value:      params.Value,
		Color:      params.Color,
		IsPinned:   params.IsPinned,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, repoError(s.logger, "noteService.Create", err, nil)
	}
	s.touch(ctx, uid, params.FragmentID, now)
	out := n.ToNote()
	return &out, nil
}

// Update 更新笔记，未提供的字段保持不变
func (s *noteService) Update(ctx context.Context, uid int64, params *dto.NoteUpdateRequest) (*fragment.Note, error) {
	if _, err := s.check(ctx, uid, params.FragmentID); err != nil {
		return nil, err
	}
	n, err := s.noteRepo.GetByID(ctx, params.NoteID, params.FragmentID, uid)
	if err != nil {
		return nil, repoError(s.logger, "noteService.Update", err, code.ErrorNoteNotFound)
	}

	if params.Title != nil {
		n.Title = *params.Title
	}
	if params.Value != nil {
		n.Value = *params.Value
	}
	if params.Color != nil {
		n.Color = *params.Color
	}
	if params.IsPinned != nil {
		n.IsPinned = *params.IsPinned
	}
	if n.IsEmpty() {
		return nil, code.ErrorNoteEmpty
	}
	n.UpdatedAt = s.now()

	updated, err := s.noteRepo.Update(ctx, n)
	if err != nil {
		return nil, repoError(s.logger, "noteService.Update", err, code.ErrorNoteNotFound)
	}
	s.touch(ctx, uid, params.FragmentID, n.UpdatedAt)
	out := updated.ToNote()
	return &out, nil
}

// Delete 删除笔记
func (s *noteService) Delete(ctx context.Context, uid int64, params *dto.NoteDeleteRequest) error {
	if _, err := s.check(ctx, uid, params.FragmentID); err != nil {
		return err
	}
	if err := s.noteRepo.Delete(ctx, params.NoteID, params.FragmentID, uid); err != nil {
		return repoError(s.logger, "noteService.Delete", err, code.ErrorNoteNotFound)
	}
	s.touch(ctx, uid, params.FragmentID, s.now())
	return nil
}

// Reorder 调整笔记顺序
func (s *noteService) Reorder(ctx context.Context, uid int64, params *dto.NoteReorderRequest) (*fragment.Fragment, error) {
	if _, err := s.check(ctx, uid, params.FragmentID); err != nil {
		return nil, err
	}
	err := s.noteRepo.Reorder(ctx, params.FragmentID, uid, params.NoteIDs)
	if errors.Is(err, dao.ErrNoteOrderMismatch) {
		return nil, code.ErrorNoteOrder
	}
	if err != nil {
		return nil, repoError(s.logger, "noteService.Reorder", err, nil)
	}
	s.touch(ctx, uid, params.FragmentID, s.now())

	f, err := s.check(ctx, uid, params.FragmentID)
	if err != nil {
		return nil, err
	}
	return f.ToFragment(), nil
}

// 确保 noteService 实现了 NoteService 接口
var _ NoteService = (*noteService)(nil)
