package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/owenshen0907/NihonGO/internal/data/repos/testutil"
	"github.com/owenshen0907/NihonGO/internal/domain"
)

func TestWordReportRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewWordReportRepo(db, testutil.Logger(t))

	userID := "u_" + uuid.NewString()[:8]
	row := &domain.WordReport{
		UserID:      userID,
		ID:          "W001",
		Kana:        "たべる",
		Kanji:       "食べる",
		Romaji:      "taberu",
		Level:       1,
		Translation: "吃",
	}
	if _, err := repo.Insert(ctx, tx, row); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := repo.FindByKanji(ctx, tx, userID, []string{"食べる"})
	if err != nil || got == nil || got.ID != "W001" {
		t.Fatalf("FindByKanji: got=%v err=%v", got, err)
	}
	// Multi-term lookup matches any part.
	got, err = repo.FindByKanji(ctx, tx, userID, []string{"飲む", "食べる"})
	if err != nil || got == nil {
		t.Fatalf("FindByKanji multi: got=%v err=%v", got, err)
	}
	miss, err := repo.FindByKanji(ctx, tx, userID, []string{"飲む"})
	if err != nil || miss != nil {
		t.Fatalf("FindByKanji miss: got=%v err=%v", miss, err)
	}
	// Another user's report is invisible.
	other, err := repo.FindByKanji(ctx, tx, "someone_else", []string{"食べる"})
	if err != nil || other != nil {
		t.Fatalf("FindByKanji cross-user: got=%v err=%v", other, err)
	}

	if err := repo.AdjustCounter(ctx, tx, userID, "W001", domain.DimensionWriting, 1, "writing-1"); err != nil {
		t.Fatalf("AdjustCounter: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, userID, "W001")
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Writing != 1 || got.Listening != 0 {
		t.Fatalf("counters: %+v", got)
	}

	rows, err := repo.ListByUser(ctx, tx, userID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(rows))
	}
}

func TestWordReportRepoInsertConflictReturnsExisting(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewWordReportRepo(db, testutil.Logger(t))

	userID := "u_" + uuid.NewString()[:8]
	t.Cleanup(func() {
		db.Where("user_id = ?", userID).Delete(&domain.WordReport{})
	})

	first := &domain.WordReport{UserID: userID, ID: "W100", Kana: "のむ", Kanji: "飲む", Level: 1}
	if _, err := repo.Insert(ctx, nil, first); err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	dup := &domain.WordReport{UserID: userID, ID: "W100", Kana: "changed", Kanji: "changed", Level: 2}
	got, err := repo.Insert(ctx, nil, dup)
	if err != nil {
		t.Fatalf("duplicate Insert: %v", err)
	}
	if got.Kana != "のむ" {
		t.Fatalf("duplicate insert must return the existing row, got %+v", got)
	}
}
