package domain

import (
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// MintedIDPrefix marks report rows that have no global corpus counterpart.
const MintedIDPrefix = "EXP"

// IsMintedID reports whether id was minted for a user report rather than
// adopted from the global corpus.
func IsMintedID(id string) bool { return strings.HasPrefix(id, MintedIDPrefix) }

// WordReport is one user's record of a studied word. The composite primary
// key makes repeated resolution of the same word a no-op.
type WordReport struct {
	UserID            string         `gorm:"column:user_id;type:varchar(50);primaryKey" json:"user_id"`
	ID                string         `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Kana              string         `gorm:"column:kana;not null" json:"kana"`
	Kanji             string         `gorm:"column:kanji;index" json:"kanji"`
	Romaji            string         `gorm:"column:romaji" json:"romaji"`
	POS               string         `gorm:"column:pos" json:"pos"`
	Level             int            `gorm:"column:level" json:"level"`
	Translation       string         `gorm:"column:translation" json:"translation"`
	Listening         int            `gorm:"column:listening;not null;default:0" json:"listening"`
	Speaking          int            `gorm:"column:speaking;not null;default:0" json:"speaking"`
	Writing           int            `gorm:"column:writing;not null;default:0" json:"writing"`
	Reading           int            `gorm:"column:reading;not null;default:0" json:"reading"`
	CreatedAt         time.Time      `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
	UpdateExplanation string         `gorm:"column:update_explanation" json:"update_explanation"`
	Extension         datatypes.JSON `gorm:"column:extension;type:jsonb;default:'{}'" json:"extension"`
}

func (WordReport) TableName() string { return "word_report" }

// GrammarReport is one user's record of a studied grammar point. Rows keep
// the embedding they were resolved with so equal inputs dedupe even for
// minted ids.
type GrammarReport struct {
	UserID            string          `gorm:"column:user_id;type:varchar(50);primaryKey" json:"user_id"`
	ID                string          `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Formula           string          `gorm:"column:grammar_formula;not null" json:"grammar_formula"`
	Category1         string          `gorm:"column:grammar_category_01" json:"grammar_category_01"`
	Category2         string          `gorm:"column:grammar_category_02" json:"grammar_category_02"`
	Explanation       string          `gorm:"column:explanation" json:"explanation"`
	Lesson            int             `gorm:"column:lesson;not null;default:1" json:"lesson"`
	Level             int             `gorm:"column:level" json:"level"`
	Embedding         pgvector.Vector `gorm:"column:embedding;type:vector(1536)" json:"-"`
	Listening         int             `gorm:"column:listening;not null;default:0" json:"listening"`
	Speaking          int             `gorm:"column:speaking;not null;default:0" json:"speaking"`
	Writing           int             `gorm:"column:writing;not null;default:0" json:"writing"`
	Reading           int             `gorm:"column:reading;not null;default:0" json:"reading"`
	CreatedAt         time.Time       `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
	UpdateExplanation string          `gorm:"column:update_explanation" json:"update_explanation"`
	Extension         datatypes.JSON  `gorm:"column:extension;type:jsonb;default:'{}'" json:"extension"`
}

func (GrammarReport) TableName() string { return "grammar_report" }
