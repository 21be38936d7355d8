package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/owenshen0907/NihonGO/internal/data/repos/testutil"
	"github.com/owenshen0907/NihonGO/internal/domain"
)

func unitVector(angle float32) pgvector.Vector {
	// Vectors in the plane of the first two axes; cosine distance grows
	// with the second component's weight.
	v := make([]float32, 1536)
	v[0] = 1 - angle
	v[1] = angle
	return pgvector.NewVector(v)
}

func TestGrammarRepoNearestOrdering(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewGrammarRepo(db, testutil.Logger(t))

	suffix := uuid.NewString()[:8]
	near := &domain.GrammarPoint{ID: "N_" + suffix, Formula: "near", Lesson: 1, Level: 1, Embedding: unitVector(0.05)}
	far := &domain.GrammarPoint{ID: "F_" + suffix, Formula: "far", Lesson: 1, Level: 1, Embedding: unitVector(0.9)}
	if err := repo.Create(ctx, tx, []*domain.GrammarPoint{far, near}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// A row with no embedding must never be a candidate.
	none := &domain.GrammarPoint{ID: "X_" + suffix, Formula: "no embedding", Lesson: 1, Level: 1}
	if err := tx.Exec(`INSERT INTO grammar (id, grammar_formula, lesson, level) VALUES (?, ?, 1, 1)`, none.ID, none.Formula).Error; err != nil {
		t.Fatalf("seed null embedding: %v", err)
	}

	got, err := repo.Nearest(ctx, tx, unitVector(0).Slice(), 10)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(got) < 2 {
		t.Fatalf("Nearest returned %d rows, want >= 2", len(got))
	}
	var nearIdx, farIdx = -1, -1
	for i, c := range got {
		switch c.ID {
		case near.ID:
			nearIdx = i
		case far.ID:
			farIdx = i
		case none.ID:
			t.Fatalf("row without embedding surfaced as candidate")
		}
	}
	if nearIdx == -1 || farIdx == -1 {
		t.Fatalf("seeded rows missing from candidates: %+v", got)
	}
	if nearIdx > farIdx {
		t.Fatalf("nearer row ranked below farther row: near=%d far=%d", nearIdx, farIdx)
	}
	if got[nearIdx].Distance >= got[farIdx].Distance {
		t.Fatalf("distances not increasing: %v >= %v", got[nearIdx].Distance, got[farIdx].Distance)
	}
}

func TestGrammarRepoMissingEmbeddings(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewGrammarRepo(db, testutil.Logger(t))

	id := "M_" + uuid.NewString()[:8]
	if err := tx.Exec(`INSERT INTO grammar (id, grammar_formula, lesson, level) VALUES (?, 'backfill me', 1, 1)`, id).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	rows, err := repo.ListMissingEmbeddings(ctx, tx, 1000)
	if err != nil {
		t.Fatalf("ListMissingEmbeddings: %v", err)
	}
	found := false
	for _, r := range rows {
		if r.ID == id {
			found = true
		}
	}
	if !found {
		t.Fatalf("seeded row not listed as missing embedding")
	}

	if err := repo.UpdateEmbedding(ctx, tx, id, unitVector(0.5)); err != nil {
		t.Fatalf("UpdateEmbedding: %v", err)
	}
	rows, err = repo.ListMissingEmbeddings(ctx, tx, 1000)
	if err != nil {
		t.Fatalf("ListMissingEmbeddings after update: %v", err)
	}
	for _, r := range rows {
		if r.ID == id {
			t.Fatalf("row still listed after embedding update")
		}
	}
}
