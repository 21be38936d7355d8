package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gorm.io/datatypes"

	"github.com/owenshen0907/NihonGO/internal/config"
	"github.com/owenshen0907/NihonGO/internal/data/repos"
	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/platform/apierr"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
	"github.com/owenshen0907/NihonGO/internal/platform/openai"
)

type ExtensionService interface {
	// Generate builds the rich extension blob for a note, stores it on the
	// user's report row and, for corpus-backed ids, on the global row too.
	Generate(ctx context.Context, userID string, noteType domain.NoteType, id, content string) (datatypes.JSON, error)
}

type extensionService struct {
	log            *logger.Logger
	client         openai.Client
	wordProfile    config.Profile
	grammarProfile config.Profile
	wordRepo       repos.WordRepo
	grammarRepo    repos.GrammarRepo
	wordReports    repos.WordReportRepo
	grammarReports repos.GrammarReportRepo
}

func NewExtensionService(
	log *logger.Logger,
	client openai.Client,
	wordProfile, grammarProfile config.Profile,
	wordRepo repos.WordRepo,
	grammarRepo repos.GrammarRepo,
	wordReports repos.WordReportRepo,
	grammarReports repos.GrammarReportRepo,
) ExtensionService {
	return &extensionService{
		log:            log.With("service", "ExtensionService"),
		client:         client,
		wordProfile:    wordProfile,
		grammarProfile: grammarProfile,
		wordRepo:       wordRepo,
		grammarRepo:    grammarRepo,
		wordReports:    wordReports,
		grammarReports: grammarReports,
	}
}

func (s *extensionService) Generate(ctx context.Context, userID string, noteType domain.NoteType, id, content string) (datatypes.JSON, error) {
	if id == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_id", errMissingField("id"))
	}
	if content == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_content", errMissingField("content"))
	}

	profile := s.grammarProfile
	if noteType == domain.NoteTypeWord {
		profile = s.wordProfile
	}

	raw, err := s.client.CompleteJSON(ctx, profile, content)
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, "extension_generation_failed", err)
	}

	// The blob must be a JSON object; arrays and scalars are rejected here
	// and stay opaque below this point.
	var ext map[string]any
	if err := json.Unmarshal(raw, &ext); err != nil {
		return nil, apierr.New(http.StatusBadGateway, "extension_malformed", fmt.Errorf("extension is not a JSON object: %w", err))
	}
	stampMeta(ext, time.Now().UTC())

	blob, err := json.Marshal(ext)
	if err != nil {
		return nil, fmt.Errorf("re-encode extension: %w", err)
	}
	extension := datatypes.JSON(blob)

	// Minted ids exist only in the user's ledger; the global corpus is
	// untouched for them.
	if !domain.IsMintedID(id) {
		switch noteType {
		case domain.NoteTypeWord:
			err = s.wordRepo.UpdateExtension(ctx, nil, id, extension)
		case domain.NoteTypeGrammar:
			err = s.grammarRepo.UpdateExtension(ctx, nil, id, extension)
		}
		if err != nil {
			return nil, fmt.Errorf("update global extension for %s: %w", id, err)
		}
	}

	switch noteType {
	case domain.NoteTypeWord:
		err = s.wordReports.UpdateExtension(ctx, nil, userID, id, extension)
	case domain.NoteTypeGrammar:
		err = s.grammarReports.UpdateExtension(ctx, nil, userID, id, extension)
	default:
		err = fmt.Errorf("invalid note type %q", noteType)
	}
	if err != nil {
		return nil, fmt.Errorf("update report extension for %s: %w", id, err)
	}

	return extension, nil
}

// stampMeta fills meta.created_at and meta.updated_at when the model left
// them empty.
func stampMeta(ext map[string]any, now time.Time) {
	meta, ok := ext["meta"].(map[string]any)
	if !ok {
		meta = map[string]any{}
		ext["meta"] = meta
	}
	stamp := now.Format(time.RFC3339)
	if v, ok := meta["created_at"].(string); !ok || v == "" {
		meta["created_at"] = stamp
	}
	if v, ok := meta["updated_at"].(string); !ok || v == "" {
		meta["updated_at"] = stamp
	}
}
