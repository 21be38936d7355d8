package repos

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

type WordRepo interface {
	// FindByKanji returns the first corpus word whose kanji matches any of
	// the given terms, or nil.
	FindByKanji(ctx context.Context, tx *gorm.DB, terms []string) (*domain.Word, error)
	Create(ctx context.Context, tx *gorm.DB, rows []*domain.Word) error
	UpdateExtension(ctx context.Context, tx *gorm.DB, id string, extension datatypes.JSON) error
}

type wordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWordRepo(db *gorm.DB, baseLog *logger.Logger) WordRepo {
	return &wordRepo{db: db, log: baseLog.With("repo", "WordRepo")}
}

func (r *wordRepo) FindByKanji(ctx context.Context, tx *gorm.DB, terms []string) (*domain.Word, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(terms) == 0 {
		return nil, nil
	}
	var out []*domain.Word
	if err := t.WithContext(ctx).Where("kanji IN ?", terms).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *wordRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.Word) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return t.WithContext(ctx).Create(&rows).Error
}

func (r *wordRepo) UpdateExtension(ctx context.Context, tx *gorm.DB, id string, extension datatypes.JSON) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&domain.Word{}).
		Where("id = ?", id).
		Update("extension", extension).Error
}
