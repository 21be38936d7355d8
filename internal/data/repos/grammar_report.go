package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

type GrammarReportRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, userID, id string) (*domain.GrammarReport, error)

	// FindByIDOrEmbedding returns the user's row matching either the canonical
	// id or the exact embedding, or nil. An empty id matches by embedding only.
	FindByIDOrEmbedding(ctx context.Context, tx *gorm.DB, userID, id string, embedding pgvector.Vector) (*domain.GrammarReport, error)

	// Insert adds the row; a duplicate-key conflict is resolved by rereading
	// the winning row, so concurrent resolutions of the same subject converge.
	Insert(ctx context.Context, tx *gorm.DB, row *domain.GrammarReport) (*domain.GrammarReport, error)

	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*domain.GrammarReport, error)

	AdjustCounter(ctx context.Context, tx *gorm.DB, userID, id string, dim domain.Dimension, delta int, explanation string) error
	UpdateExtension(ctx context.Context, tx *gorm.DB, userID, id string, extension datatypes.JSON) error
}

type grammarReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGrammarReportRepo(db *gorm.DB, baseLog *logger.Logger) GrammarReportRepo {
	return &grammarReportRepo{db: db, log: baseLog.With("repo", "GrammarReportRepo")}
}

func (r *grammarReportRepo) GetByID(ctx context.Context, tx *gorm.DB, userID, id string) (*domain.GrammarReport, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var row domain.GrammarReport
	err := t.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *grammarReportRepo) FindByIDOrEmbedding(ctx context.Context, tx *gorm.DB, userID, id string, embedding pgvector.Vector) (*domain.GrammarReport, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx).Where("user_id = ?", userID)
	if id != "" {
		q = q.Where("id = ? OR embedding = ?", id, embedding)
	} else {
		q = q.Where("embedding = ?", embedding)
	}
	var out []*domain.GrammarReport
	if err := q.Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *grammarReportRepo) Insert(ctx context.Context, tx *gorm.DB, row *domain.GrammarReport) (*domain.GrammarReport, error) {
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
	r.log.Debug("Grammar report insert lost the race, rereading", "user_id", row.UserID, "id", row.ID)
	existing, rereadErr := r.FindByIDOrEmbedding(ctx, tx, row.UserID, row.ID, row.Embedding)
	if rereadErr != nil {
		return nil, rereadErr
	}
	if existing == nil {
		return nil, fmt.Errorf("grammar report conflict for user %s id %s but row not found: %w", row.UserID, row.ID, err)
	}
	return existing, nil
}

func (r *grammarReportRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*domain.GrammarReport, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.GrammarReport
	if err := t.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *grammarReportRepo) AdjustCounter(ctx context.Context, tx *gorm.DB, userID, id string, dim domain.Dimension, delta int, explanation string) error {
	t := tx
	if t == nil {
		t = r.db
	}
	col := counterColumn(dim)
	return t.WithContext(ctx).
		Model(&domain.GrammarReport{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]interface{}{
			col:                  gorm.Expr(col+" + ?", delta),
			"updated_at":         gorm.Expr("CURRENT_TIMESTAMP"),
			"update_explanation": explanation,
		}).Error
}

func (r *grammarReportRepo) UpdateExtension(ctx context.Context, tx *gorm.DB, userID, id string, extension datatypes.JSON) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&domain.GrammarReport{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]interface{}{
			"extension":  extension,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}
