package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/datatypes"

	"github.com/owenshen0907/NihonGO/internal/config"
	"github.com/owenshen0907/NihonGO/internal/data/repos"
	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/platform/apierr"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
	"github.com/owenshen0907/NihonGO/internal/platform/openai"
	"github.com/owenshen0907/NihonGO/internal/resolve"
)

// WordNote and GrammarNote mirror the JSON contract of the note generation
// prompt.
type WordNote struct {
	Word         string `json:"word"`
	Meaning      string `json:"meaning"`
	Alternatives string `json:"alternatives,omitempty"`
}

type GrammarNote struct {
	Grammar          string `json:"grammar"`
	GrammarCategory1 string `json:"grammarCategory1"`
	GrammarCategory2 string `json:"grammarCategory2"`
	Explanation      string `json:"explanation"`
}

// ResolvedWordNote is a word note enriched with its report row. Err is set
// when this single note failed; siblings are unaffected.
type ResolvedWordNote struct {
	WordNote
	ID        string `json:"id,omitempty"`
	Listening int    `json:"listening"`
	Speaking  int    `json:"speaking"`
	Writing   int    `json:"writing"`
	Reading   int    `json:"reading"`
	Err       string `json:"error,omitempty"`
}

type ResolvedGrammarNote struct {
	GrammarNote
	ID        string `json:"id,omitempty"`
	Listening int    `json:"listening"`
	Speaking  int    `json:"speaking"`
	Writing   int    `json:"writing"`
	Reading   int    `json:"reading"`
	Err       string `json:"error,omitempty"`
}

type GeneratedNotes struct {
	WordNotes    []ResolvedWordNote    `json:"wordNotes"`
	GrammarNotes []ResolvedGrammarNote `json:"grammarNotes"`
}

type NotesService interface {
	// Generate extracts word and grammar notes from free text via the note
	// generation profile and resolves each against the corpora and the
	// user's reports.
	Generate(ctx context.Context, userID, content string) (*GeneratedNotes, error)

	// ListReports returns the user's full word and grammar ledgers.
	ListReports(ctx context.Context, userID string) ([]*domain.WordReport, []*domain.GrammarReport, error)
}

type notesService struct {
	log            *logger.Logger
	client         openai.Client
	profile        config.Profile
	resolver       *resolve.Resolver
	wordRepo       repos.WordRepo
	wordReportRepo repos.WordReportRepo
	grammarReports repos.GrammarReportRepo
}

func NewNotesService(
	log *logger.Logger,
	client openai.Client,
	profile config.Profile,
	resolver *resolve.Resolver,
	wordRepo repos.WordRepo,
	wordReportRepo repos.WordReportRepo,
	grammarReportRepo repos.GrammarReportRepo,
) NotesService {
	return &notesService{
		log:            log.With("service", "NotesService"),
		client:         client,
		profile:        profile,
		resolver:       resolver,
		wordRepo:       wordRepo,
		wordReportRepo: wordReportRepo,
		grammarReports: grammarReportRepo,
	}
}

func (s *notesService) Generate(ctx context.Context, userID, content string) (*GeneratedNotes, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_content", errMissingField("content"))
	}

	raw, err := s.client.CompleteJSON(ctx, s.profile, content)
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, "note_generation_failed", err)
	}

	var parsed struct {
		WordNotes    []WordNote    `json:"wordNotes"`
		GrammarNotes []GrammarNote `json:"grammarNotes"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, apierr.New(http.StatusBadGateway, "note_generation_malformed", fmt.Errorf("decode generated notes: %w", err))
	}

	out := &GeneratedNotes{
		WordNotes:    make([]ResolvedWordNote, 0, len(parsed.WordNotes)),
		GrammarNotes: make([]ResolvedGrammarNote, 0, len(parsed.GrammarNotes)),
	}

	for _, note := range parsed.WordNotes {
		resolved := ResolvedWordNote{WordNote: note}
		report, err := s.resolveWord(ctx, userID, note)
		if err != nil {
			s.log.Warn("Word note resolution failed", "user_id", userID, "word", note.Word, "error", err.Error())
			resolved.Err = err.Error()
		} else {
			resolved.ID = report.ID
			resolved.Listening = report.Listening
			resolved.Speaking = report.Speaking
			resolved.Writing = report.Writing
			resolved.Reading = report.Reading
		}
		out.WordNotes = append(out.WordNotes, resolved)
	}

	subjects := make([]resolve.Subject, 0, len(parsed.GrammarNotes))
	for _, note := range parsed.GrammarNotes {
		subjects = append(subjects, resolve.Subject{
			Formula:     note.Grammar,
			Category1:   note.GrammarCategory1,
			Category2:   note.GrammarCategory2,
			Explanation: note.Explanation,
		})
	}
	for i, outcome := range s.resolver.ResolveAll(ctx, userID, subjects) {
		resolved := ResolvedGrammarNote{GrammarNote: parsed.GrammarNotes[i]}
		if outcome.Err != nil {
			resolved.Err = outcome.Err.Error()
		} else {
			resolved.ID = outcome.Report.ID
			resolved.Listening = outcome.Report.Listening
			resolved.Speaking = outcome.Report.Speaking
			resolved.Writing = outcome.Report.Writing
			resolved.Reading = outcome.Report.Reading
		}
		out.GrammarNotes = append(out.GrammarNotes, resolved)
	}

	return out, nil
}

// splitWordTerms breaks a dictionary headword like 「出る・出す」 into its
// alternative spellings.
func splitWordTerms(word string) []string {
	if !strings.Contains(word, "・") {
		return []string{word}
	}
	parts := strings.Split(word, "・")
	terms := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			terms = append(terms, p)
		}
	}
	return terms
}

// resolveWord is the exact-match counterpart of grammar resolution: user
// report first, then the global corpus, then a minted entry.
func (s *notesService) resolveWord(ctx context.Context, userID string, note WordNote) (*domain.WordReport, error) {
	if strings.TrimSpace(note.Word) == "" {
		return nil, errMissingField("word")
	}
	terms := splitWordTerms(note.Word)

	existing, err := s.wordReportRepo.FindByKanji(ctx, nil, userID, terms)
	if err != nil {
		return nil, fmt.Errorf("report lookup: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	word, err := s.wordRepo.FindByKanji(ctx, nil, terms)
	if err != nil {
		return nil, fmt.Errorf("corpus lookup: %w", err)
	}
	if word != nil {
		row := &domain.WordReport{
			UserID:      userID,
			ID:          word.ID,
			Kana:        word.Kana,
			Kanji:       word.Kanji,
			Romaji:      word.Romaji,
			POS:         word.POS,
			Level:       word.Level,
			Translation: word.Translation,
			Extension:   word.Extension,
		}
		if len(row.Extension) == 0 {
			row.Extension = datatypes.JSON([]byte(`{}`))
		}
		return s.wordReportRepo.Insert(ctx, nil, row)
	}

	row := &domain.WordReport{
		UserID:      userID,
		ID:          resolve.MintID(),
		Kana:        note.Word,
		Kanji:       note.Word,
		Level:       1,
		Translation: note.Meaning,
		Extension:   datatypes.JSON([]byte(`{}`)),
	}
	s.log.Debug("Minting word report entry", "user_id", userID, "id", row.ID, "word", note.Word)
	return s.wordReportRepo.Insert(ctx, nil, row)
}

func (s *notesService) ListReports(ctx context.Context, userID string) ([]*domain.WordReport, []*domain.GrammarReport, error) {
	words, err := s.wordReportRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list word reports: %w", err)
	}
	grammar, err := s.grammarReports.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list grammar reports: %w", err)
	}
	return words, grammar, nil
}
