package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

type NoteRepo interface {
	Insert(ctx context.Context, tx *gorm.DB, row *domain.Note) (*domain.Note, error)

	// Update rewrites the note's editable fields. Returns nil when the note
	// does not exist or belongs to another user.
	Update(ctx context.Context, tx *gorm.DB, row *domain.Note) (*domain.Note, error)

	// Delete removes the user's note and reports whether a row was deleted.
	Delete(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (bool, error)

	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*domain.Note, error)
}

type noteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	return &noteRepo{db: db, log: baseLog.With("repo", "NoteRepo")}
}

func (r *noteRepo) Insert(ctx context.Context, tx *gorm.DB, row *domain.Note) (*domain.Note, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *noteRepo) Update(ctx context.Context, tx *gorm.DB, row *domain.Note) (*domain.Note, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(ctx).
		Model(&domain.Note{}).
		Where("id = ? AND user_id = ?", row.ID, row.UserID).
		Updates(map[string]interface{}{
			"title":            row.Title,
			"directory":        row.Directory,
			"parent_directory": row.ParentDirectory,
			"summary":          row.Summary,
			"content":          row.Content,
			"tags":             row.Tags,
			"comments":         row.Comments,
			"update_log":       row.UpdateLog,
			"is_public":        row.IsPublic,
			"updated_at":       gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	var out domain.Note
	err := t.WithContext(ctx).Where("id = ? AND user_id = ?", row.ID, row.UserID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *noteRepo) Delete(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Note{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *noteRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*domain.Note, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Note
	if err := t.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
