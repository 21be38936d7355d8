package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

type WordReportRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, userID, id string) (*domain.WordReport, error)

	// FindByKanji returns the user's row whose kanji matches any term, or nil.
	FindByKanji(ctx context.Context, tx *gorm.DB, userID string, terms []string) (*domain.WordReport, error)

	// Insert adds the row; a duplicate-key conflict resolves to the existing row.
	Insert(ctx context.Context, tx *gorm.DB, row *domain.WordReport) (*domain.WordReport, error)

	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*domain.WordReport, error)

	AdjustCounter(ctx context.Context, tx *gorm.DB, userID, id string, dim domain.Dimension, delta int, explanation string) error
	UpdateExtension(ctx context.Context, tx *gorm.DB, userID, id string, extension datatypes.JSON) error
}

type wordReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWordReportRepo(db *gorm.DB, baseLog *logger.Logger) WordReportRepo {
	return &wordReportRepo{db: db, log: baseLog.With("repo", "WordReportRepo")}
}

func (r *wordReportRepo) GetByID(ctx context.Context, tx *gorm.DB, userID, id string) (*domain.WordReport, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var row domain.WordReport
	err := t.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *wordReportRepo) FindByKanji(ctx context.Context, tx *gorm.DB, userID string, terms []string) (*domain.WordReport, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(terms) == 0 {
		return nil, nil
	}
	var out []*domain.WordReport
	if err := t.WithContext(ctx).
		Where("user_id = ? AND kanji IN ?", userID, terms).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *wordReportRepo) Insert(ctx context.Context, tx *gorm.DB, row *domain.WordReport) (*domain.WordReport, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	err := t.WithContext(ctx).Create(row).Error
	if err == nil {
		return row, nil
	}
	if !isUniqueViolation(err) {
		return nil, err
	}
	r.log.Debug("Word report insert lost the race, rereading", "user_id", row.UserID, "id", row.ID)
	existing, rereadErr := r.GetByID(ctx, tx, row.UserID, row.ID)
	if rereadErr != nil {
		return nil, rereadErr
	}
	if existing == nil {
		return nil, fmt.Errorf("word report conflict for user %s id %s but row not found: %w", row.UserID, row.ID, err)
	}
	return existing, nil
}

func (r *wordReportRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*domain.WordReport, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.WordReport
	if err := t.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *wordReportRepo) AdjustCounter(ctx context.Context, tx *gorm.DB, userID, id string, dim domain.Dimension, delta int, explanation string) error {
	t := tx
	if t == nil {
		t = r.db
	}
	col := counterColumn(dim)
	return t.WithContext(ctx).
		Model(&domain.WordReport{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]interface{}{
			col:                  gorm.Expr(col+" + ?", delta),
			"updated_at":         gorm.Expr("CURRENT_TIMESTAMP"),
			"update_explanation": explanation,
		}).Error
}

func (r *wordReportRepo) UpdateExtension(ctx context.Context, tx *gorm.DB, userID, id string, extension datatypes.JSON) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&domain.WordReport{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]interface{}{
			"extension":  extension,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}
