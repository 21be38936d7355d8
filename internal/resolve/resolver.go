// Package resolve maps an incoming grammar note to a canonical corpus entry,
// or mints a new one, and records the result in the user's report ledger.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

// ErrEmbeddingUnavailable marks a resolution that failed before any storage
// write because the embedding provider did not answer. Safe to retry.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// Subject is the grammar note being resolved.
type Subject struct {
	Formula     string
	Category1   string
	Category2   string
	Explanation string
}

// EmbeddingInput is the text the subject is embedded from. Identical
// subjects produce identical inputs, which is what makes minted rows dedupe.
func (s Subject) EmbeddingInput() string {
	return domain.EmbeddingInput(s.Formula, s.Explanation, s.Category1, s.Category2)
}

// Candidate is a corpus entry with its cosine distance to the subject.
type Candidate struct {
	ID          string
	Formula     string
	Category1   string
	Category2   string
	Explanation string
	Lesson      int
	Level       int
	Distance    float64
}

type Embedder interface {
	Embed(ctx context.Context, input string) ([]float32, error)
}

type Corpus interface {
	Nearest(ctx context.Context, embedding []float32, limit int) ([]Candidate, error)
}

// Ledger is the per-user grammar report store. Insert must resolve
// duplicate-key conflicts to the existing row.
type Ledger interface {
	FindByIDOrEmbedding(ctx context.Context, userID, id string, embedding pgvector.Vector) (*domain.GrammarReport, error)
	Insert(ctx context.Context, row *domain.GrammarReport) (*domain.GrammarReport, error)
}

type Config struct {
	// Candidates at or beyond this cosine distance are rejected.
	Threshold float64
	// Nearest neighbors fetched per resolution.
	TopK int
	// Upper bound on one embedding call.
	EmbedTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = 0.35
	}
	if c.TopK <= 0 {
		c.TopK = 10
	}
	if c.EmbedTimeout <= 0 {
		c.EmbedTimeout = 30 * time.Second
	}
	return c
}

type Resolver struct {
	embedder Embedder
	corpus   Corpus
	ledger   Ledger
	cfg      Config
	log      *logger.Logger
}

func NewResolver(embedder Embedder, corpus Corpus, ledger Ledger, cfg Config, baseLog *logger.Logger) *Resolver {
	return &Resolver{
		embedder: embedder,
		corpus:   corpus,
		ledger:   ledger,
		cfg:      cfg.withDefaults(),
		log:      baseLog.With("component", "resolver"),
	}
}

// Resolve runs the full pipeline for one subject: embed, search, filter,
// tie-break, then insert-or-return the user's ledger row. Resolving the same
// subject again returns the stored row unchanged.
func (r *Resolver) Resolve(ctx context.Context, userID string, sub Subject) (*domain.GrammarReport, error) {
	input := sub.EmbeddingInput()
	if input == "" {
		return nil, fmt.Errorf("empty resolution subject")
	}

	ectx, cancel := context.WithTimeout(ctx, r.cfg.EmbedTimeout)
	raw, err := r.embedder.Embed(ectx, input)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	vec := pgvector.NewVector(raw)

	candidates, err := r.corpus.Nearest(ctx, raw, r.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("nearest-neighbor search: %w", err)
	}

	survivors := candidates[:0:0]
	for _, c := range candidates {
		if c.Distance < r.cfg.Threshold {
			survivors = append(survivors, c)
		}
	}
	chosen := pick(survivors, sub.Formula)

	if chosen == nil {
		return r.mint(ctx, userID, sub, vec)
	}
	return r.adopt(ctx, userID, *chosen, vec)
}

// pick selects among candidates that passed the distance filter: highest
// overlap score against the subject's formula, ties going to the smaller
// distance. A single candidate is taken as-is.
func pick(survivors []Candidate, formula string) *Candidate {
	switch len(survivors) {
	case 0:
		return nil
	case 1:
		return &survivors[0]
	}
	chosen := &survivors[0]
	bestScore := OverlapScore(formula, chosen.Formula)
	for i := 1; i < len(survivors); i++ {
		c := &survivors[i]
		score := OverlapScore(formula, c.Formula)
		if score > bestScore || (score == bestScore && c.Distance < chosen.Distance) {
			bestScore = score
			chosen = c
		}
	}
	return chosen
}

func (r *Resolver) adopt(ctx context.Context, userID string, c Candidate, vec pgvector.Vector) (*domain.GrammarReport, error) {
	existing, err := r.ledger.FindByIDOrEmbedding(ctx, userID, c.ID, vec)
	if err != nil {
		return nil, fmt.Errorf("ledger lookup: %w", err)
	}
	if existing != nil {
		return existing, nil
	}
	row := &domain.GrammarReport{
		UserID:      userID,
		ID:          c.ID,
		Formula:     c.Formula,
		Category1:   c.Category1,
		Category2:   c.Category2,
		Explanation: c.Explanation,
		Lesson:      c.Lesson,
		Level:       c.Level,
		// The subject's own embedding, not the candidate's: a later run of
		// the same subject must match this row by vector equality.
		Embedding: vec,
	}
	r.log.Debug("Adopting corpus candidate", "user_id", userID, "id", c.ID, "distance", c.Distance)
	return r.ledger.Insert(ctx, row)
}

func (r *Resolver) mint(ctx context.Context, userID string, sub Subject, vec pgvector.Vector) (*domain.GrammarReport, error) {
	existing, err := r.ledger.FindByIDOrEmbedding(ctx, userID, "", vec)
	if err != nil {
		return nil, fmt.Errorf("ledger lookup: %w", err)
	}
	if existing != nil {
		return existing, nil
	}
	row := &domain.GrammarReport{
		UserID:      userID,
		ID:          MintID(),
		Formula:     sub.Formula,
		Category1:   sub.Category1,
		Category2:   sub.Category2,
		Explanation: sub.Explanation,
		Lesson:      1,
		Level:       1,
		Embedding:   vec,
	}
	r.log.Debug("Minting grammar report entry", "user_id", userID, "id", row.ID)
	return r.ledger.Insert(ctx, row)
}

// MintID returns a fresh provisional id. Minted entries never enter the
// global corpus.
func MintID() string {
	return domain.MintedIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Outcome is the per-subject result of a batch resolution.
type Outcome struct {
	Subject Subject
	Report  *domain.GrammarReport
	Err     error
}

// ResolveAll processes subjects in order. A failure aborts only its own
// subject; the rest of the batch still runs. Context cancellation stops the
// remainder with ctx.Err recorded per unprocessed subject.
func (r *Resolver) ResolveAll(ctx context.Context, userID string, subjects []Subject) []Outcome {
	out := make([]Outcome, 0, len(subjects))
	for _, sub := range subjects {
		if ctx.Err() != nil {
			out = append(out, Outcome{Subject: sub, Err: ctx.Err()})
			continue
		}
		report, err := r.Resolve(ctx, userID, sub)
		if err != nil {
			r.log.Warn("Grammar note resolution failed",
				"user_id", userID,
				"formula", sub.Formula,
				"error", err.Error(),
			)
		}
		out = append(out, Outcome{Subject: sub, Report: report, Err: err})
	}
	return out
}
