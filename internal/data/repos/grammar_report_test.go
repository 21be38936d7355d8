package repos

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/owenshen0907/NihonGO/internal/data/repos/testutil"
	"github.com/owenshen0907/NihonGO/internal/domain"
)

func testVector(seed float32) pgvector.Vector {
	v := make([]float32, 1536)
	v[0] = 1
	v[1] = seed
	return pgvector.NewVector(v)
}

func TestGrammarReportRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewGrammarReportRepo(db, testutil.Logger(t))

	userID := "u_" + uuid.NewString()[:8]
	row := &domain.GrammarReport{
		UserID:      userID,
		ID:          "G001",
		Formula:     "〜ないでください",
		Explanation: "表示请求对方不要做某事",
		Lesson:      1,
		Level:       1,
		Embedding:   testVector(0.1),
	}

	inserted, err := repo.Insert(ctx, tx, row)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if inserted.Listening != 0 || inserted.Reading != 0 {
		t.Fatalf("counters must start at zero, got %+v", inserted)
	}

	got, err := repo.GetByID(ctx, tx, userID, "G001")
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}

	byEmb, err := repo.FindByIDOrEmbedding(ctx, tx, userID, "", testVector(0.1))
	if err != nil || byEmb == nil || byEmb.ID != "G001" {
		t.Fatalf("FindByIDOrEmbedding(embedding): got=%v err=%v", byEmb, err)
	}
	byID, err := repo.FindByIDOrEmbedding(ctx, tx, userID, "G001", testVector(0.9))
	if err != nil || byID == nil {
		t.Fatalf("FindByIDOrEmbedding(id): got=%v err=%v", byID, err)
	}
	miss, err := repo.FindByIDOrEmbedding(ctx, tx, userID, "G999", testVector(0.9))
	if err != nil || miss != nil {
		t.Fatalf("FindByIDOrEmbedding(miss): got=%v err=%v", miss, err)
	}

	if err := repo.AdjustCounter(ctx, tx, userID, "G001", domain.DimensionListening, 1, "listening-1"); err != nil {
		t.Fatalf("AdjustCounter: %v", err)
	}
	if err := repo.AdjustCounter(ctx, tx, userID, "G001", domain.DimensionListening, -1, "listening--1"); err != nil {
		t.Fatalf("AdjustCounter(-1): %v", err)
	}
	got, err = repo.GetByID(ctx, tx, userID, "G001")
	if err != nil || got == nil {
		t.Fatalf("GetByID after adjust: %v", err)
	}
	if got.Listening != 0 {
		t.Fatalf("listening = %d, want 0 after +1/-1", got.Listening)
	}
	if got.UpdateExplanation != "listening--1" {
		t.Fatalf("update_explanation = %q", got.UpdateExplanation)
	}

	rows, err := repo.ListByUser(ctx, tx, userID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(rows))
	}

	if err := repo.UpdateExtension(ctx, tx, userID, "G001", []byte(`{"meta":{}}`)); err != nil {
		t.Fatalf("UpdateExtension: %v", err)
	}
}

// Duplicate inserts run outside a wrapping transaction: inside one, the
// unique violation would poison the transaction before the reread.
func TestGrammarReportRepoInsertConflictReturnsExisting(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewGrammarReportRepo(db, testutil.Logger(t))

	userID := "u_" + uuid.NewString()[:8]
	t.Cleanup(func() {
		db.Where("user_id = ?", userID).Delete(&domain.GrammarReport{})
	})

	first := &domain.GrammarReport{
		UserID:    userID,
		ID:        "G100",
		Formula:   "〜てもいいです",
		Lesson:    1,
		Level:     1,
		Embedding: testVector(0.2),
	}
	if _, err := repo.Insert(ctx, nil, first); err != nil {
		t.Fatalf("first Insert: %v", err)
	}

	dup := &domain.GrammarReport{
		UserID:    userID,
		ID:        "G100",
		Formula:   "different text, same key",
		Lesson:    2,
		Level:     2,
		Embedding: testVector(0.3),
	}
	got, err := repo.Insert(ctx, nil, dup)
	if err != nil {
		t.Fatalf("duplicate Insert: %v", err)
	}
	if got.Formula != "〜てもいいです" {
		t.Fatalf("duplicate insert must return the existing row, got %+v", got)
	}
}

func TestGrammarReportRepoSameUserDifferentIDs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewGrammarReportRepo(db, testutil.Logger(t))

	userID := "u_" + uuid.NewString()[:8]
	for i := 0; i < 3; i++ {
		row := &domain.GrammarReport{
			UserID:    userID,
			ID:        fmt.Sprintf("G%03d", i),
			Formula:   fmt.Sprintf("formula %d", i),
			Lesson:    1,
			Level:     1,
			Embedding: testVector(float32(i) / 10),
		}
		if _, err := repo.Insert(ctx, tx, row); err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
	}
	rows, err := repo.ListByUser(ctx, tx, userID)
	if err != nil || len(rows) != 3 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(rows))
	}
}
