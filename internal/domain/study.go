package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NoteType distinguishes the two report ledgers.
type NoteType string

const (
	NoteTypeWord    NoteType = "word"
	NoteTypeGrammar NoteType = "grammar"
)

func ParseNoteType(s string) (NoteType, error) {
	switch NoteType(s) {
	case NoteTypeWord, NoteTypeGrammar:
		return NoteType(s), nil
	}
	return "", fmt.Errorf("invalid note type %q", s)
}

// Dimension is one of the four proficiency axes.
type Dimension string

const (
	DimensionListening Dimension = "listening"
	DimensionSpeaking  Dimension = "speaking"
	DimensionWriting   Dimension = "writing"
	DimensionReading   Dimension = "reading"
)

// ParseDimension accepts the canonical names and their CJK short forms.
func ParseDimension(s string) (Dimension, error) {
	switch s {
	case "listening", "听":
		return DimensionListening, nil
	case "speaking", "说":
		return DimensionSpeaking, nil
	case "writing", "写":
		return DimensionWriting, nil
	case "reading", "阅":
		return DimensionReading, nil
	}
	return "", fmt.Errorf("invalid dimension %q", s)
}

// StudyLog is the append-only audit trail of proficiency changes. It is
// written first-class on every counter update and never read by the
// resolution or update paths.
type StudyLog struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(50);not null;index" json:"user_id"`
	ItemID    string    `gorm:"column:item_id;type:varchar(50);not null" json:"item_id"`
	NoteType  NoteType  `gorm:"column:note_type;type:varchar(10);not null" json:"note_type"`
	Dimension Dimension `gorm:"column:dimension;type:varchar(10);not null" json:"dimension"`
	Delta     int       `gorm:"column:delta;not null" json:"delta"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

func (StudyLog) TableName() string { return "study_log" }
