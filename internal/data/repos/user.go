package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

type UserRepo interface {
	// UpsertIgnore inserts the user and leaves an existing row untouched.
	UpsertIgnore(ctx context.Context, tx *gorm.DB, row *domain.User) error
	GetByID(ctx context.Context, tx *gorm.DB, userID string) (*domain.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) UpsertIgnore(ctx context.Context, tx *gorm.DB, row *domain.User) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(row).Error
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID string) (*domain.User, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var row domain.User
	err := t.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
