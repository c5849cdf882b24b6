package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/haierkeys/murverse-service/internal/domain"
	"github.com/haierkeys/murverse-service/internal/dto"
	"github.com/haierkeys/murverse-service/pkg/code"
	"github.com/haierkeys/murverse-service/pkg/fragment"
	"github.com/haierkeys/murverse-service/pkg/logger"
	"github.com/haierkeys/murverse-service/pkg/search"
	"github.com/haierkeys/murverse-service/pkg/storage"
)

// FragmentService 定义碎片业务服务接口
type FragmentService interface {
	// List 获取用户全部碎片，query 生效时经过搜索过滤
	List(ctx context.Context, uid int64, query *search.Query) ([]*fragment.Fragment, error)

	// Get 获取单个碎片
	Get(ctx context.Context, uid int64, id string) (*fragment.Fragment, error)

	// Create 创建碎片及其标签、笔记，返回每个附属部分的写入结果
	Create(ctx context.Context, uid int64, params *dto.FragmentCreateRequest) (*dto.FragmentWriteResult, error)

	// Upsert 按 ID 覆盖写入
	Upsert(ctx context.Context, uid int64, params *dto.FragmentUpsertRequest) (*fragment.Fragment, error)

	// Delete 生成备份后删除
	Delete(ctx context.Context, uid int64, id string) error

	// Tags 用户标签索引
	Tags(ctx context.Context, uid int64) ([]search.TagStat, error)
}

// fragmentService 实现 FragmentService 接口
type fragmentService struct {
	fragmentRepo domain.FragmentRepository
	noteRepo     domain.NoteRepository
	tagRepo      domain.TagRepository
	backupRepo   domain.BackupRepository
	archive      storage.Storager
	events       EventSink
	logger       *zap.Logger
	config       *ServiceConfig
	now          Clock
	sf           singleflight.Group
}

// FragmentServiceOption 可选依赖
type FragmentServiceOption func(*fragmentService)

// WithArchive 删除时将备份快照归档到对象存储
func WithArchive(s storage.Storager) FragmentServiceOption {
	return func(f *fragmentService) { f.archive = s }
}

// WithEvents 设置变更事件接收者
func WithEvents(sink EventSink) FragmentServiceOption {
	return func(f *fragmentService) {
		if sink != nil {
			f.events = sink
		}
	}
}

// WithClock 注入时钟
func WithClock(now Clock) FragmentServiceOption {
	return func(f *fragmentService) { f.now = now }
}

// NewFragmentService 创建 FragmentService 实例
func NewFragmentService(fragmentRepo domain.FragmentRepository, noteRepo domain.NoteRepository, tagRepo domain.TagRepository,
	backupRepo domain.BackupRepository, logger *zap.Logger, config *ServiceConfig, opts ...FragmentServiceOption) FragmentService {
	s := &fragmentService{
		fragmentRepo: fragmentRepo,
		noteRepo:     noteRepo,
		tagRepo:      tagRepo,
		backupRepo:   backupRepo,
		events:       nopSink{},
		logger:       logger,
		config:       config,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildQuery converts list parameters into a search query evaluated at now.
// BuildQuery 将列表请求参数转换为搜索条件
func BuildQuery(params *dto.FragmentListRequest, now time.Time, loc *time.Location) (*search.Query, error) {
	if params == nil {
		return nil, nil
	}
	mode := search.ParseMatchMode(params.MatchMode)
	q := &search.Query{
		Text:         params.Q,
		Scopes:       search.ParseScopes(params.Scopes...),
		MatchMode:    mode,
		TimeRange:    search.ParseTimeRange(params.TimeRange),
		SelectedTags: search.SplitList(params.Tags...),
		ExcludedTags: search.SplitList(params.ExcludedTags...),
		TagLogic:     search.ParseTagLogic(params.TagLogic),
		Now:          now,
		Location:     loc,
	}
	var err error
	if q.Start, err = search.ParseTimeBound(params.Start, loc); err != nil {
		return nil, code.ErrorInvalidParams.WithDetails("start: " + err.Error())
	}
	if q.End, err = search.ParseTimeEnd(params.End, loc); err != nil {
		return nil, code.ErrorInvalidParams.WithDetails("end: " + err.Error())
	}
	return q, nil
}

func toWire(list []*domain.Fragment) []*fragment.Fragment {
	out := make([]*fragment.Fragment, 0, len(list))
	for _, f := range list {
		out = append(out, f.ToFragment())
	}
	return out
}

// load 合并同一用户的并发读取
func (s *fragmentService) load(ctx context.Context, uid int64) ([]*fragment.Fragment, error) {
	v, err, _ := s.sf.Do(strconv.FormatInt(uid, 10), func() (interface{}, error) {
		list, err := s.fragmentRepo.ListByUID(ctx, uid)
		if err != nil {
			return nil, err
		}
		return toWire(list), nil
	})
	if err != nil {
		return nil, repoError(s.logger, "fragmentService.List", err, nil)
	}
	shared := v.([]*fragment.Fragment)
	out := make([]*fragment.Fragment, len(shared))
	copy(out, shared)
	return out, nil
}

// List 获取用户碎片
func (s *fragmentService) List(ctx context.Context, uid int64, query *search.Query) ([]*fragment.Fragment, error) {
	list, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if query == nil || !query.IsActive() {
		return list, nil
	}
	return search.Filter(list, *query), nil
}

// Get 获取单个碎片
func (s *fragmentService) Get(ctx context.Context, uid int64, id string) (*fragment.Fragment, error) {
	f, err := s.fragmentRepo.GetByID(ctx, id, uid)
	if err != nil {
		return nil, repoError(s.logger, "fragmentService.Get", err, code.ErrorFragmentNotFound)
	}
	return f.ToFragment(), nil
}

func parseType(t string) (fragment.Type, error) {
	if t == "" {
		return fragment.TypeFragment, nil
	}
	ft := fragment.Type(t)
	if !ft.Valid() {
		return "", code.ErrorFragmentTypeInvalid.WithDetails(t)
	}
	return ft, nil
}

// Create 创建碎片
func (s *fragmentService) Create(ctx context.Context, uid int64, params *dto.FragmentCreateRequest) (*dto.FragmentWriteResult, error) {
	if strings.TrimSpace(params.Content) == "" {
		return nil, code.ErrorFragmentContentEmpty
	}
	typ, err := parseType(params.Type)
	if err != nil {
		return nil, err
	}
	for i, n := range params.Notes {
		if (fragment.Note{Title: n.Title, Value: n.Value}).IsEmpty() {
			return nil, code.ErrorNoteEmpty.WithDetails("notes[" + strconv.Itoa(i) + "]")
		}
	}

	now := s.now()
	editor := strconv.FormatInt(uid, 10)
	created, err := s.fragmentRepo.Create(ctx, &domain.Fragment{
		ID:         uuid.NewString(),
		UID:        uid,
		Content:    params.Content,
		Type:       typ,
		Status:     fragment.Status(params.Status),
		ParentID:   params.ParentID,
		Relations:  params.Relations,
		Meta:       params.Meta,
		Version:    1,
		Creator:    editor,
		LastEditor: editor,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, repoError(s.logger, "fragmentService.Create", err, nil)
	}

	result := &dto.FragmentWriteResult{}
	for i, tag := range fragment.NormalizeTags(params.Tags) {
		if err := s.tagRepo.Add(ctx, created.ID, uid, tag); err != nil {
			result.Failed = append(result.Failed, dto.PartFailure{Part: "tag", Index: i, Value: tag, Error: "tag could not be saved"})
			s.logger.Warn("fragment tag write failed",
				zap.Int64(logger.FieldUID, uid),
				zap.String(logger.FieldFragmentID, created.ID),
				zap.String(logger.FieldTag, tag),
				zap.Error(err))
		}
	}
	for i, n := range params.Notes {
		_, err := s.noteRepo.Create(ctx, &domain.Note{
			ID:         uuid.NewString(),
			FragmentID: created.ID,
			UID:        uid,
			Title:      n.Title,
			Value:      n.Value,
			Color:      n.Color,
			IsPinned:   n.IsPinned,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			result.Failed = append(result.Failed, dto.PartFailure{Part: "note", Index: i, Value: n.Title, Error: "note could not be saved"})
			s.logger.Warn("fragment note write failed",
				zap.Int64(logger.FieldUID, uid),
				zap.String(logger.FieldFragmentID, created.ID),
				zap.Int("index", i),
				zap.Error(err))
		}
	}

	full, err := s.fragmentRepo.GetByID(ctx, created.ID, uid)
	if err != nil {
		return nil, repoError(s.logger, "fragmentService.Create", err, code.ErrorFragmentNotFound)
	}
	result.Fragment = full.ToFragment()
	s.events.Publish(uid, dto.FragmentEventDTO{Type: EventCreated, FragmentID: full.ID, Version: full.Version})
	return result, nil
}

// Upsert 按 ID 覆盖写入，BaseVersion > 0 时做乐观并发检查
func (s *fragmentService) Upsert(ctx context.Context, uid int64, params *dto.FragmentUpsertRequest) (*fragment.Fragment, error) {
	typ, err := parseType(params.Type)
	if err != nil {
		return nil, err
	}
	status := fragment.Status(params.Status)
	if status == fragment.StatusPublished && strings.TrimSpace(params.Content) == "" {
		return nil, code.ErrorFragmentContentEmpty
	}

	existing, err := s.fragmentRepo.GetByID(ctx, params.ID, uid)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repoError(s.logger, "fragmentService.Upsert", err, nil)
	}
	if existing == nil {
		// 不属于当前用户的 ID 视为不存在
		taken, err := s.fragmentRepo.Exists(ctx, params.ID)
		if err != nil {
			return nil, repoError(s.logger, "fragmentService.Upsert", err, nil)
		}
		if taken {
			return nil, code.ErrorFragmentNotFound
		}
	}
	if existing != nil && params.BaseVersion > 0 && params.BaseVersion != existing.Version {
		return nil, code.ErrorFragmentVersionConflict.WithData(existing.ToFragment())
	}

	now := s.now()
	editor := strconv.FormatInt(uid, 10)
	wire := &fragment.Fragment{
		ID:         params.ID,
		Content:    params.Content,
		Type:       typ,
		Tags:       params.Tags,
		Notes:      make([]fragment.Note, 0, len(params.Notes)),
		Relations:  params.Relations,
		Meta:       params.Meta,
		CreatedAt:  params.CreatedAt,
		UpdatedAt:  now,
		ParentID:   params.ParentID,
		ChildIDs:   params.ChildIDs,
		Version:    1,
		Creator:    editor,
		LastEditor: editor,
		Status:     status,
	}
	event := EventCreated
	if existing != nil {
		event = EventUpdated
		wire.Version = existing.Version + 1
		wire.CreatedAt = existing.CreatedAt
		wire.Creator = existing.Creator
	}
	if wire.CreatedAt.IsZero() {
		wire.CreatedAt = now
	}
	for i, n := range params.Notes {
		if n.IsEmpty() {
			return nil, code.ErrorNoteEmpty.WithDetails("notes[" + strconv.Itoa(i) + "]")
		}
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		if n.UpdatedAt.IsZero() {
			n.UpdatedAt = now
		}
		wire.Notes = append(wire.Notes, n)
	}

	saved, err := s.fragmentRepo.Save(ctx, domain.FragmentFromWire(wire, uid))
	if err != nil {
		return nil, repoError(s.logger, "fragmentService.Upsert", err, code.ErrorFragmentNotFound)
	}
	s.events.Publish(uid, dto.FragmentEventDTO{Type: event, FragmentID: saved.ID, Version: saved.Version})
	return saved.ToFragment(), nil
}

// Delete 删除碎片：先写入备份（并尝试归档），再删除
func (s *fragmentService) Delete(ctx context.Context, uid int64, id string) error {
	f, err := s.fragmentRepo.GetByID(ctx, id, uid)
	if err != nil {
		return repoError(s.logger, "fragmentService.Delete", err, code.ErrorFragmentNotFound)
	}

	wire := f.ToFragment()
	snapshot, err := sonic.Marshal(wire)
	if err != nil {
		s.logger.Error("encode backup snapshot failed", zap.String(logger.FieldFragmentID, id), zap.Error(err))
		return code.ErrorServerInternal
	}
	now := s.now()
	backup, err := s.backupRepo.Create(ctx, &domain.Backup{
		UID:        uid,
		FragmentID: id,
		Content:    f.Content,
		Snapshot:   string(snapshot),
		ExpiresAt:  now.Add(s.config.backupRetention()),
		CreatedAt:  now,
	})
	if err != nil {
		return repoError(s.logger, "fragmentService.Delete", err, nil)
	}
	s.archiveBackup(ctx, backup, snapshot, now)

	if err := s.fragmentRepo.Delete(ctx, id, uid); err != nil {
		return repoError(s.logger, "fragmentService.Delete", err, code.ErrorFragmentNotFound)
	}
	s.events.Publish(uid, dto.FragmentEventDTO{Type: EventDeleted, FragmentID: id, Version: f.Version})
	return nil
}

// archiveBackup copies the snapshot to object storage when one is configured.
// 归档失败只记录日志
func (s *fragmentService) archiveBackup(ctx context.Context, b *domain.Backup, snapshot []byte, now time.Time) {
	if s.archive == nil {
		return
	}
	key := archiveKey(s.config.archivePath(), b)
	if _, err := s.archive.SendContent(key, snapshot, now); err != nil {
		s.logger.Warn("backup archive upload failed", zap.Int64(logger.FieldBackupID, b.ID), zap.Error(err))
		return
	}
	if err := s.backupRepo.SetArchiveKey(ctx, b.ID, key); err != nil {
		s.logger.Warn("backup archive key not recorded", zap.Int64(logger.FieldBackupID, b.ID), zap.Error(err))
		return
	}
	b.ArchiveKey = key
}

func archiveKey(prefix string, b *domain.Backup) string {
	return storage.JoinKey(prefix, "u_"+strconv.FormatInt(b.UID, 10)+"/"+strconv.FormatInt(b.ID, 10)+"_"+b.FragmentID+".json")
}

// Tags 用户标签索引
func (s *fragmentService) Tags(ctx context.Context, uid int64) ([]search.TagStat, error) {
	list, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	return search.BuildTagIndex(list).Tags(), nil
}

// 确保 fragmentService 实现了 FragmentService 接口
var _ FragmentService = (*fragmentService)(nil)
