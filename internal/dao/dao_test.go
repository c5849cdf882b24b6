package dao

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/haierkeys/murverse-service/internal/domain"
	"github.com/haierkeys/murverse-service/pkg/fragment"
	"github.com/haierkeys/murverse-service/pkg/writequeue"
)

func newTestDao(t *testing.T) *Dao {
	t.Helper()
	logger := zaptest.NewLogger(t)

	db, err := NewDBEngine(&DatabaseConfig{
		Type:         "sqlite",
		Path:         ":memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	wq := writequeue.New(nil, logger)
	t.Cleanup(func() { _ = wq.Shutdown(context.Background()) })

	return New(db, context.Background(),
		WithConfig(&DatabaseConfig{AutoMigrate: true}),
		WithLogger(logger),
		WithWriteQueueManager(wq),
	)
}

func sampleFragment(id string, uid int64) *domain.Fragment {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &domain.Fragment{
		ID:        id,
		UID:       uid,
		Content:   "buy milk",
		Type:      fragment.TypeFragment,
		Meta:      &fragment.Meta{Pinned: true},
		Relations: []fragment.Relation{{TargetID: "other", Type: fragment.RelationReference}},
		Tags:      []string{"Errand", "home"},
		Notes: []*domain.Note{
			{ID: id + "-n1", Title: "where", Value: "corner shop"},
			{ID: id + "-n2", Value: "2 litres"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestFragmentRepository_SaveAndGet(t *testing.T) {
	d := newTestDao(t)
	repo := NewFragmentRepository(d)
	ctx := context.Background()

	saved, err := repo.Save(ctx, sampleFragment("f1", 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Version)
	assert.Equal(t, []string{"Errand", "home"}, saved.Tags)
	require.Len(t, saved.Notes, 2)
	assert.Equal(t, "f1-n1", saved.Notes[0].ID)
	assert.Equal(t, 1, saved.Notes[1].Position)

	got, err := repo.GetByID(ctx, "f1", 1)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Content)
	require.NotNil(t, got.Meta)
	assert.True(t, got.Meta.Pinned)
	require.Len(t, got.Relations, 1)
	assert.Equal(t, "other", got.Relations[0].TargetID)

	exists, err := repo.Exists(ctx, "f1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFragmentRepository_Ownership(t *testing.T) {
	d := newTestDao(t)
	repo := NewFragmentRepository(d)
	ctx := context.Background()

	_, err := repo.Save(ctx, sampleFragment("f1", 1))
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, "f1", 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.Save(ctx, sampleFragment("f1", 2))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.Touch(ctx, "f1", 2, "mallory", time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "f1", 2), gorm.ErrRecordNotFound)

	list, err := repo.ListByUID(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFragmentRepository_SaveReplacesChildren(t *testing.T) {
	d := newTestDao(t)
	repo := NewFragmentRepository(d)
	ctx := context.Background()

	f := sampleFragment("f1", 1)
	_, err := repo.Save(ctx, f)
	require.NoError(t, err)

	f.Tags = []string{"work", "WORK", " Work "}
	f.Notes = f.Notes[1:]
	f.Version = 2
	saved, err := repo.Save(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []string{"work"}, saved.Tags)
	require.Len(t, saved.Notes, 1)
	assert.Equal(t, "f1-n2", saved.Notes[0].ID)
	assert.Equal(t, 0, saved.Notes[0].Position)
	assert.Equal(t, int64(2), saved.Version)
}

func TestFragmentRepository_InsertRejectsTakenID(t *testing.T) {
	d := newTestDao(t)
	repo := NewFragmentRepository(d)
	ctx := context.Background()

	saved, err := repo.Insert(ctx, sampleFragment("f1", 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"Errand", "home"}, saved.Tags)
	require.Len(t, saved.Notes, 2)

	_, err = repo.Insert(ctx, sampleFragment("f1", 1))
	assert.ErrorIs(t, err, domain.ErrFragmentExists)

	// 其他用户占用的 ID 同样不可用
	_, err = repo.Insert(ctx, sampleFragment("f1", 2))
	assert.ErrorIs(t, err, domain.ErrFragmentExists)

	list, err := repo.ListByUID(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFragmentRepository_ListTouchDelete(t *testing.T) {
	d := newTestDao(t)
	repo := NewFragmentRepository(d)
	ctx := context.Background()

	older := sampleFragment("a", 1)
	newer := sampleFragment("b", 1)
	newer.UpdatedAt = older.UpdatedAt.Add(time.Hour)
	_, err := repo.Save(ctx, older)
	require.NoError(t, err)
	_, err = repo.Save(ctx, newer)
	require.NoError(t, err)

	list, err := repo.ListByUID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, []string{"Errand", "home"}, list[1].Tags)

	version, err := repo.Touch(ctx, "a", 1, "alice", older.UpdatedAt.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	list, err = repo.ListByUID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "alice", list[0].LastEditor)

	require.NoError(t, repo.Delete(ctx, "a", 1))
	_, err = repo.GetByID(ctx, "a", 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	notes, err := NewNoteRepository(d).ListByFragment(ctx, "a", 1)
	require.NoError(t, err)
	assert.Empty(t, notes)
	tags, err := NewTagRepository(d).ListByFragment(ctx, "a", 1)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestTagRepository_FoldedDuplicates(t *testing.T) {
	d := newTestDao(t)
	ctx := context.Background()
	_, err := NewFragmentRepository(d).Save(ctx, sampleFragment("f1", 1))
	require.NoError(t, err)

	tags := NewTagRepository(d)
	assert.ErrorIs(t, tags.Add(ctx, "f1", 1, "ERRAND"), domain.ErrDuplicate)
	require.NoError(t, tags.Add(ctx, "f1", 1, "Urgent"))

	list, err := tags.ListByFragment(ctx, "f1", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Errand", "home", "Urgent"}, list)

	removed, err := tags.Remove(ctx, "f1", 1, "urgent")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = tags.Remove(ctx, "f1", 1, "urgent")
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = tags.Remove(ctx, "f1", 2, "home")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestNoteRepository_Lifecycle(t *testing.T) {
	d := newTestDao(t)
	ctx := context.Background()
	_, err := NewFragmentRepository(d).Save(ctx, sampleFragment("f1", 1))
	require.NoError(t, err)

	notes := NewNoteRepository(d)
	n, err := notes.Create(ctx, &domain.Note{ID: "n3", FragmentID: "f1", UID: 1, Title: "third"})
	require.NoError(t, err)
	assert.Equal(t, 2, n.Position)

	n.Value = "edited"
	n.IsPinned = true
	updated, err := notes.Update(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Value)
	assert.True(t, updated.IsPinned)

	require.NoError(t, notes.Reorder(ctx, "f1", 1, []string{"n3", "f1-n1", "f1-n2"}))
	list, err := notes.ListByFragment(ctx, "f1", 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "n3", list[0].ID)
	assert.Equal(t, "f1-n2", list[2].ID)

	assert.ErrorIs(t, notes.Reorder(ctx, "f1", 1, []string{"n3"}), ErrNoteOrderMismatch)
	assert.ErrorIs(t, notes.Reorder(ctx, "f1", 1, []string{"n3", "n3", "f1-n1"}), ErrNoteOrderMismatch)

	require.NoError(t, notes.Delete(ctx, "n3", "f1", 1))
	assert.ErrorIs(t, notes.Delete(ctx, "n3", "f1", 1), gorm.ErrRecordNotFound)

	_, err = notes.GetByID(ctx, "f1-n1", "f1", 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBackupRepository(t *testing.T) {
	d := newTestDao(t)
	repo := NewBackupRepository(d)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	expired, err := repo.Create(ctx, &domain.Backup{UID: 1, FragmentID: "a", Content: "Old Milk", ExpiresAt: now.Add(-time.Hour), CreatedAt: now})
	require.NoError(t, err)
	fresh, err := repo.Create(ctx, &domain.Backup{UID: 2, FragmentID: "b", Content: "bread", ExpiresAt: now.Add(time.Hour), CreatedAt: now})
	require.NoError(t, err)

	list, total, err := repo.List(ctx, domain.BackupFilter{Keyword: "milk"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, expired.ID, list[0].ID)

	list, total, err = repo.List(ctx, domain.BackupFilter{}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	assert.Equal(t, fresh.ID, list[0].ID)

	_, err = repo.Create(ctx, &domain.Backup{UID: 1, FragmentID: "c", Content: "50% off_sale", ExpiresAt: now.Add(time.Hour), CreatedAt: now})
	require.NoError(t, err)
	for _, kw := range []string{"%", "_", "0%"} {
		list, total, err = repo.List(ctx, domain.BackupFilter{Keyword: kw}, 1, 10)
		require.NoError(t, err, kw)
		assert.Equal(t, int64(1), total, kw)
		require.Len(t, list, 1, kw)
		assert.Equal(t, "c", list[0].FragmentID, kw)
	}
	list, total, err = repo.List(ctx, domain.BackupFilter{Keyword: "!"}, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	restored, err := repo.MarkRestored(ctx, fresh.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, restored.RestoreCount)
	require.NotNil(t, restored.RestoredAt)

	_, err = repo.MarkRestored(ctx, 9999, now)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.SetArchiveKey(ctx, fresh.ID, "backups/2/b.json"))
	got, err := repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "backups/2/b.json", got.ArchiveKey)

	old, err := repo.ListExpired(ctx, now, 0)
	require.NoError(t, err)
	require.Len(t, old, 1)
	assert.Equal(t, expired.ID, old[0].ID)

	n, err := repo.DeleteByIDs(ctx, []int64{expired.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetByID(ctx, expired.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository(t *testing.T) {
	d := newTestDao(t)
	repo := NewUserRepository(d)
	ctx := context.Background()

	u, err := repo.Create(ctx, &domain.User{Email: "a@example.com", Username: "alice", Password: "hash"})
	require.NoError(t, err)
	assert.NotZero(t, u.UID)

	got, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.UID, got.UID)

	got, err = repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash", got.Password)

	_, err = repo.GetByUID(ctx, u.UID+1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.Create(ctx, &domain.User{Email: "a@example.com", Username: "other"})
	assert.Error(t, err)
}
