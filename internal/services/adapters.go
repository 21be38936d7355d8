package services

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/owenshen0907/NihonGO/internal/data/repos"
	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/resolve"
)

// grammarCorpus adapts GrammarRepo to the resolver's Corpus interface.
type grammarCorpus struct {
	repo repos.GrammarRepo
}

func NewGrammarCorpus(repo repos.GrammarRepo) resolve.Corpus {
	return &grammarCorpus{repo: repo}
}

func (c *grammarCorpus) Nearest(ctx context.Context, embedding []float32, limit int) ([]resolve.Candidate, error) {
	rows, err := c.repo.Nearest(ctx, nil, embedding, limit)
	if err != nil {
		return nil, err
	}
	out := make([]resolve.Candidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, resolve.Candidate{
			ID:          row.ID,
			Formula:     row.Formula,
			Category1:   row.Category1,
			Category2:   row.Category2,
			Explanation: row.Explanation,
			Lesson:      row.Lesson,
			Level:       row.Level,
			Distance:    row.Distance,
		})
	}
	return out, nil
}

// grammarLedger adapts GrammarReportRepo to the resolver's Ledger interface.
type grammarLedger struct {
	repo repos.GrammarReportRepo
}

func NewGrammarLedger(repo repos.GrammarReportRepo) resolve.Ledger {
	return &grammarLedger{repo: repo}
}

func (l *grammarLedger) FindByIDOrEmbedding(ctx context.Context, userID, id string, embedding pgvector.Vector) (*domain.GrammarReport, error) {
	return l.repo.FindByIDOrEmbedding(ctx, nil, userID, id, embedding)
}

func (l *grammarLedger) Insert(ctx context.Context, row *domain.GrammarReport) (*domain.GrammarReport, error) {
	return l.repo.Insert(ctx, nil, row)
}
