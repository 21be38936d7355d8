package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/owenshen0907/NihonGO/internal/data/repos"
	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/platform/apierr"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

// NoteInput is the writable surface of a freeform note.
type NoteInput struct {
	ID              string          `json:"id,omitempty"`
	Title           string          `json:"title"`
	Directory       string          `json:"directory,omitempty"`
	ParentDirectory string          `json:"parent_directory,omitempty"`
	Summary         string          `json:"summary,omitempty"`
	Content         string          `json:"content"`
	Tags            string          `json:"tags,omitempty"`
	Comments        json.RawMessage `json:"comments,omitempty"`
	UpdateLog       string          `json:"update_log,omitempty"`
	IsPublic        bool            `json:"is_public,omitempty"`
}

type CommonNotesService interface {
	Insert(ctx context.Context, userID string, in NoteInput) (*domain.Note, error)
	Update(ctx context.Context, userID string, in NoteInput) (*domain.Note, error)
	Delete(ctx context.Context, userID, noteID string) (bool, error)
	List(ctx context.Context, userID string) ([]*domain.Note, error)
}

type commonNotesService struct {
	log      *logger.Logger
	noteRepo repos.NoteRepo
}

func NewCommonNotesService(log *logger.Logger, noteRepo repos.NoteRepo) CommonNotesService {
	return &commonNotesService{log: log.With("service", "CommonNotesService"), noteRepo: noteRepo}
}

func (s *commonNotesService) Insert(ctx context.Context, userID string, in NoteInput) (*domain.Note, error) {
	if in.Title == "" || in.Content == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_note_fields", fmt.Errorf("insert requires title and content"))
	}
	row := &domain.Note{
		Title:           in.Title,
		Directory:       in.Directory,
		ParentDirectory: in.ParentDirectory,
		Summary:         in.Summary,
		Content:         in.Content,
		Tags:            in.Tags,
		Comments:        commentsOrEmpty(in.Comments),
		UpdateLog:       in.UpdateLog,
		UserID:          userID,
		IsPublic:        in.IsPublic,
	}
	return s.noteRepo.Insert(ctx, nil, row)
}

func (s *commonNotesService) Update(ctx context.Context, userID string, in NoteInput) (*domain.Note, error) {
	if in.ID == "" || in.Title == "" || in.Content == "" || in.UpdateLog == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_note_fields", fmt.Errorf("update requires id, title, content and update_log"))
	}
	id, err := uuid.Parse(in.ID)
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_note_id", err)
	}
	row := &domain.Note{
		ID:              id,
		Title:           in.Title,
		Directory:       in.Directory,
		ParentDirectory: in.ParentDirectory,
		Summary:         in.Summary,
		Content:         in.Content,
		Tags:            in.Tags,
		Comments:        commentsOrEmpty(in.Comments),
		UpdateLog:       in.UpdateLog,
		UserID:          userID,
		IsPublic:        in.IsPublic,
	}
	updated, err := s.noteRepo.Update(ctx, nil, row)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apierr.New(http.StatusNotFound, "note_not_found", fmt.Errorf("note %s not found for user", in.ID))
	}
	return updated, nil
}

func (s *commonNotesService) Delete(ctx context.Context, userID, noteID string) (bool, error) {
	if noteID == "" {
		return false, apierr.New(http.StatusBadRequest, "missing_note_id", errMissingField("noteId"))
	}
	id, err := uuid.Parse(noteID)
	if err != nil {
		return false, apierr.New(http.StatusBadRequest, "invalid_note_id", err)
	}
	return s.noteRepo.Delete(ctx, nil, userID, id)
}

func (s *commonNotesService) List(ctx context.Context, userID string) ([]*domain.Note, error) {
	return s.noteRepo.ListByUser(ctx, nil, userID)
}

func commentsOrEmpty(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return datatypes.JSON([]byte(`[]`))
	}
	return datatypes.JSON(raw)
}
