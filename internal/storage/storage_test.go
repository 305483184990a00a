package storage

import (
	"testing"
	"time"

	"recordmate-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newRecord(created time.Time, final string) *model.Record {
	return &model.Record{
		ID:          uuid.NewString(),
		Observation: "관찰 내용",
		Options:     model.DefaultOptions(),
		Result:      model.Result{Final: final, Model: "gemini-1.5-flash"},
		CreatedAt:   created,
	}
}

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	require.NoError(t, s.Init())
	t.Cleanup(func() { _ = s.Close() })

	base := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	older := newRecord(base, "older")
	newer := newRecord(base.Add(time.Minute), "newer")
	require.NoError(t, s.SaveRecord(older))
	require.NoError(t, s.SaveRecord(newer))

	got, err := s.GetRecord(older.ID)
	require.NoError(t, err)
	require.Equal(t, "older", got.Result.Final)
	require.True(t, got.CreatedAt.Equal(base))

	list, err := s.ListRecords()
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, newer.ID, list[0].ID)

	require.NoError(t, s.DeleteRecord(newer.ID))
	require.ErrorIs(t, s.DeleteRecord(newer.ID), ErrRecordNotFound)
	_, err = s.GetRecord(newer.ID)
	require.ErrorIs(t, err, ErrRecordNotFound)

	require.ErrorIs(t, s.SaveRecord(&model.Record{}), ErrInvalidData)
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestDiskStorage(t *testing.T) {
	exerciseStorage(t, NewDiskStorage(t.TempDir(), 1))
}

func TestDiskStorageReloadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	first := NewDiskStorage(dir, 10)
	require.NoError(t, first.Init())
	rec := newRecord(time.Now().UTC(), "persisted")
	require.NoError(t, first.SaveRecord(rec))
	require.NoError(t, first.Close())

	second := NewDiskStorage(dir, 10)
	require.NoError(t, second.Init())
	got, err := second.GetRecord(rec.ID)
	require.NoError(t, err)
	require.Equal(t, "persisted", got.Result.Final)
}

func TestDiskStorageRejectsPathLikeIDs(t *testing.T) {
	s := NewDiskStorage(t.TempDir(), 10)
	require.NoError(t, s.Init())
	_, err := s.GetRecord("../../etc/passwd")
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func exerciseIsolation(t *testing.T, s Storage) {
	t.Helper()
	require.NoError(t, s.Init())

	rec := newRecord(time.Now().UTC(), "final")
	rec.Options.Keywords = []model.Keyword{model.KeywordAcademic}
	rec.Result.Attempts = []model.Attempt{{Model: "gemini-1.5-flash"}}
	require.NoError(t, s.SaveRecord(rec))

	// 调用方修改保存时传入的记录
	rec.Options.Keywords[0] = model.KeywordCareer
	rec.Result.Attempts[0].Model = "changed"

	got, err := s.GetRecord(rec.ID)
	require.NoError(t, err)
	require.Equal(t, []model.Keyword{model.KeywordAcademic}, got.Options.Keywords)
	require.Equal(t, "gemini-1.5-flash", got.Result.Attempts[0].Model)

	// 调用方修改读取到的记录
	got.Options.Keywords[0] = model.KeywordGrowth
	got.Result.Attempts[0].Model = "changed"

	again, err := s.GetRecord(rec.ID)
	require.NoError(t, err)
	require.Equal(t, []model.Keyword{model.KeywordAcademic}, again.Options.Keywords)
	require.Equal(t, "gemini-1.5-flash", again.Result.Attempts[0].Model)

	list, err := s.ListRecords()
	require.NoError(t, err)
	list[0].Options.Keywords[0] = model.KeywordGrowth

	again, err = s.GetRecord(rec.ID)
	require.NoError(t, err)
	require.Equal(t, []model.Keyword{model.KeywordAcademic}, again.Options.Keywords)
}

func TestMemoryStorageIsolatesRecords(t *testing.T) {
	exerciseIsolation(t, NewMemoryStorage())
}

func TestDiskStorageIsolatesRecords(t *testing.T) {
	exerciseIsolation(t, NewDiskStorage(t.TempDir(), 10))
}
