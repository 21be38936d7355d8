package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

type StudyLogRepo interface {
	Append(ctx context.Context, tx *gorm.DB, row *domain.StudyLog) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]*domain.StudyLog, error)
}

type studyLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudyLogRepo(db *gorm.DB, baseLog *logger.Logger) StudyLogRepo {
	return &studyLogRepo{db: db, log: baseLog.With("repo", "StudyLogRepo")}
}

func (r *studyLogRepo) Append(ctx context.Context, tx *gorm.DB, row *domain.StudyLog) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *studyLogRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]*domain.StudyLog, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 100
	}
	var out []*domain.StudyLog
	if err := t.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
