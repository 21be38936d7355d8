package domain

import (
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// GrammarPoint is a row of the global grammar corpus. The embedding is
// computed from formula, explanation and both categories joined by spaces.
type GrammarPoint struct {
	ID              string          `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Formula         string          `gorm:"column:grammar_formula;not null" json:"grammar_formula"`
	Category1       string          `gorm:"column:grammar_category_01" json:"grammar_category_01"`
	Category2       string          `gorm:"column:grammar_category_02" json:"grammar_category_02"`
	Explanation     string          `gorm:"column:explanation" json:"explanation"`
	ExampleSentence string          `gorm:"column:example_sentence" json:"example_sentence,omitempty"`
	Lesson          int             `gorm:"column:lesson;not null;default:1" json:"lesson"`
	Level           int             `gorm:"column:level" json:"level"`
	Embedding       pgvector.Vector `gorm:"column:embedding;type:vector(1536)" json:"-"`
	Extension       datatypes.JSON  `gorm:"column:extension;type:jsonb;default:'{}'" json:"extension"`
}

func (GrammarPoint) TableName() string { return "grammar" }

// EmbeddingInput is the text a grammar row is embedded from.
func (g GrammarPoint) EmbeddingInput() string {
	return EmbeddingInput(g.Formula, g.Explanation, g.Category1, g.Category2)
}
