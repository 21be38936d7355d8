package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/owenshen0907/NihonGO/internal/data/repos"
	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/platform/apierr"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

type StudyService interface {
	// Record appends an audit row and bumps the named proficiency counter
	// for every given report id. Delta must be +1 or -1.
	Record(ctx context.Context, userID string, noteType domain.NoteType, ids []string, dim domain.Dimension, delta int) error
}

type studyService struct {
	log            *logger.Logger
	studyLogRepo   repos.StudyLogRepo
	wordReports    repos.WordReportRepo
	grammarReports repos.GrammarReportRepo
}

func NewStudyService(log *logger.Logger, studyLogRepo repos.StudyLogRepo, wordReports repos.WordReportRepo, grammarReports repos.GrammarReportRepo) StudyService {
	return &studyService{
		log:            log.With("service", "StudyService"),
		studyLogRepo:   studyLogRepo,
		wordReports:    wordReports,
		grammarReports: grammarReports,
	}
}

func (s *studyService) Record(ctx context.Context, userID string, noteType domain.NoteType, ids []string, dim domain.Dimension, delta int) error {
	if delta != 1 && delta != -1 {
		return apierr.New(http.StatusBadRequest, "invalid_delta", fmt.Errorf("delta must be +1 or -1, got %d", delta))
	}
	if len(ids) == 0 {
		return apierr.New(http.StatusBadRequest, "missing_note_ids", errMissingField("note"))
	}

	explanation := fmt.Sprintf("%s-%d", dim, delta)
	for _, id := range ids {
		entry := &domain.StudyLog{
			UserID:    userID,
			ItemID:    id,
			NoteType:  noteType,
			Dimension: dim,
			Delta:     delta,
		}
		// The audit row is first-class: it is written before the counter and
		// a failure aborts the item.
		if err := s.studyLogRepo.Append(ctx, nil, entry); err != nil {
			return fmt.Errorf("append study log for %s: %w", id, err)
		}
		var err error
		switch noteType {
		case domain.NoteTypeWord:
			err = s.wordReports.AdjustCounter(ctx, nil, userID, id, dim, delta, explanation)
		case domain.NoteTypeGrammar:
			err = s.grammarReports.AdjustCounter(ctx, nil, userID, id, dim, delta, explanation)
		default:
			err = fmt.Errorf("invalid note type %q", noteType)
		}
		if err != nil {
			return fmt.Errorf("adjust %s counter for %s: %w", dim, id, err)
		}
	}
	return nil
}
