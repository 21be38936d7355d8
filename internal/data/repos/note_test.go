package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/owenshen0907/NihonGO/internal/data/repos/testutil"
	"github.com/owenshen0907/NihonGO/internal/domain"
)

func TestNoteRepoCRUD(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewNoteRepo(db, testutil.Logger(t))

	userID := "u_" + uuid.NewString()[:8]
	note := &domain.Note{
		Title:           "动词变形",
		ParentDirectory: "语法",
		Content:         "# て形\n...",
		Comments:        []byte(`[]`),
		UserID:          userID,
	}
	inserted, err := repo.Insert(ctx, tx, note)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if inserted.ID == uuid.Nil {
		t.Fatalf("inserted note has no id")
	}

	inserted.Title = "动词变形 v2"
	inserted.UpdateLog = "rename"
	updated, err := repo.Update(ctx, tx, inserted)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated == nil || updated.Title != "动词变形 v2" {
		t.Fatalf("Update result: %+v", updated)
	}

	// Updating as another user touches nothing.
	foreign := *inserted
	foreign.UserID = "someone_else"
	res, err := repo.Update(ctx, tx, &foreign)
	if err != nil {
		t.Fatalf("Update foreign: %v", err)
	}
	if res != nil {
		t.Fatalf("foreign update must not match a row")
	}

	rows, err := repo.ListByUser(ctx, tx, userID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(rows))
	}

	deleted, err := repo.Delete(ctx, tx, "someone_else", inserted.ID)
	if err != nil || deleted {
		t.Fatalf("foreign delete must be a no-op: deleted=%v err=%v", deleted, err)
	}
	deleted, err = repo.Delete(ctx, tx, userID, inserted.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete: deleted=%v err=%v", deleted, err)
	}
}
