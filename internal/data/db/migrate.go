package db

import (
	"gorm.io/gorm"

	"github.com/owenshen0907/NihonGO/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity
		&domain.User{},

		// Global corpora
		&domain.Word{},
		&domain.GrammarPoint{},

		// Per-user ledgers
		&domain.WordReport{},
		&domain.GrammarReport{},
		&domain.StudyLog{},

		// Freeform notes
		&domain.Note{},
	)
}
