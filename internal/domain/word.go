package domain

import (
	"gorm.io/datatypes"
)

// Word is a row of the global word corpus.
type Word struct {
	ID          string         `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Kana        string         `gorm:"column:kana;not null" json:"kana"`
	Kanji       string         `gorm:"column:kanji;index" json:"kanji"`
	Romaji      string         `gorm:"column:romaji" json:"romaji"`
	POS         string         `gorm:"column:pos" json:"pos"`
	Level       int            `gorm:"column:level" json:"level"`
	Translation string         `gorm:"column:translation" json:"translation"`
	Extension   datatypes.JSON `gorm:"column:extension;type:jsonb;default:'{}'" json:"extension"`
}

func (Word) TableName() string { return "words" }
