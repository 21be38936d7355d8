package repos

import (
	"context"
	"errors"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

// GrammarCandidate is a corpus row with its cosine distance to a query vector.
type GrammarCandidate struct {
	domain.GrammarPoint `gorm:"embedded"`
	Distance            float64 `gorm:"column:distance"`
}

type GrammarRepo interface {
	// Nearest returns up to limit corpus rows ordered by cosine distance to
	// the query embedding. Rows without an embedding are skipped.
	Nearest(ctx context.Context, tx *gorm.DB, embedding []float32, limit int) ([]GrammarCandidate, error)

	GetByID(ctx context.Context, tx *gorm.DB, id string) (*domain.GrammarPoint, error)
	Create(ctx context.Context, tx *gorm.DB, rows []*domain.GrammarPoint) error

	// ListMissingEmbeddings pages through rows whose embedding is NULL.
	ListMissingEmbeddings(ctx context.Context, tx *gorm.DB, limit int) ([]*domain.GrammarPoint, error)
	UpdateEmbedding(ctx context.Context, tx *gorm.DB, id string, embedding pgvector.Vector) error

	UpdateExtension(ctx context.Context, tx *gorm.DB, id string, extension datatypes.JSON) error
}

type grammarRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGrammarRepo(db *gorm.DB, baseLog *logger.Logger) GrammarRepo {
	return &grammarRepo{db: db, log: baseLog.With("repo", "GrammarRepo")}
}

func (r *grammarRepo) Nearest(ctx context.Context, tx *gorm.DB, embedding []float32, limit int) ([]GrammarCandidate, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 10
	}
	vec := pgvector.NewVector(embedding)
	var out []GrammarCandidate
	if err := t.WithContext(ctx).Raw(`
		SELECT *, embedding <=> ? AS distance
		FROM grammar
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> ?
		LIMIT ?`, vec, vec, limit).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *grammarRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*domain.GrammarPoint, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == "" {
		return nil, nil
	}
	var row domain.GrammarPoint
	if err := t.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *grammarRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.GrammarPoint) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return t.WithContext(ctx).Create(&rows).Error
}

func (r *grammarRepo) ListMissingEmbeddings(ctx context.Context, tx *gorm.DB, limit int) ([]*domain.GrammarPoint, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 100
	}
	var out []*domain.GrammarPoint
	if err := t.WithContext(ctx).
		Where("embedding IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *grammarRepo) UpdateEmbedding(ctx context.Context, tx *gorm.DB, id string, embedding pgvector.Vector) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&domain.GrammarPoint{}).
		Where("id = ?", id).
		Update("embedding", embedding).Error
}

func (r *grammarRepo) UpdateExtension(ctx context.Context, tx *gorm.DB, id string, extension datatypes.JSON) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&domain.GrammarPoint{}).
		Where("id = ?", id).
		Update("extension", extension).Error
}
