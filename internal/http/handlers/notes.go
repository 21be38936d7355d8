package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/http/middleware"
	"github.com/owenshen0907/NihonGO/internal/http/response"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
	"github.com/owenshen0907/NihonGO/internal/services"
)

type NotesHandler struct {
	log              *logger.Logger
	notesService     services.NotesService
	studyService     services.StudyService
	extensionService services.ExtensionService
	commonNotes      services.CommonNotesService
}

func NewNotesHandler(
	log *logger.Logger,
	notesService services.NotesService,
	studyService services.StudyService,
	extensionService services.ExtensionService,
	commonNotes services.CommonNotesService,
) *NotesHandler {
	return &NotesHandler{
		log:              log.With("handler", "NotesHandler"),
		notesService:     notesService,
		studyService:     studyService,
		extensionService: extensionService,
		commonNotes:      commonNotes,
	}
}

type generateRequest struct {
	Content string `json:"content"`
}

// Generate extracts and resolves notes from free text.
func (h *NotesHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	notes, err := h.notesService.Generate(c.Request.Context(), middleware.UserID(c), req.Content)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, notes)
}

// Query returns the user's word and grammar reports.
func (h *NotesHandler) Query(c *gin.Context) {
	words, grammar, err := h.notesService.ListReports(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"wordNotes": words, "grammarNotes": grammar})
}

type addNoteRequest struct {
	Type        string   `json:"type"`
	Note        []string `json:"note"`
	Dimension   string   `json:"dimension"`
	StudyStatus int      `json:"study_status"`
}

// Add records a study event for a batch of note ids.
func (h *NotesHandler) Add(c *gin.Context) {
	var req addNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	noteType, err := domain.ParseNoteType(req.Type)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_note_type", err)
		return
	}
	dim, err := domain.ParseDimension(req.Dimension)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dimension", err)
		return
	}
	if err := h.studyService.Record(c.Request.Context(), middleware.UserID(c), noteType, req.Note, dim, req.StudyStatus); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "ok"})
}

type extensionRequest struct {
	NoteType string `json:"noteType"`
	ID       string `json:"id"`
	Content  string `json:"content"`
}

// Extension generates and stores the rich extension blob for one note.
func (h *NotesHandler) Extension(c *gin.Context) {
	var req extensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	noteType, err := domain.ParseNoteType(req.NoteType)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_note_type", err)
		return
	}
	ext, err := h.extensionService.Generate(c.Request.Context(), middleware.UserID(c), noteType, req.ID, req.Content)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", ext)
}

type commonNotesRequest struct {
	Operation string              `json:"operation"`
	Note      *services.NoteInput `json:"note,omitempty"`
	NoteID    string              `json:"noteId,omitempty"`
}

// Common multiplexes insert/update/delete of freeform notes, mirroring the
// single-endpoint shape the frontend calls.
func (h *NotesHandler) Common(c *gin.Context) {
	var req commonNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID := middleware.UserID(c)

	switch req.Operation {
	case "insert":
		if req.Note == nil {
			response.RespondError(c, http.StatusBadRequest, "missing_note", nil)
			return
		}
		note, err := h.commonNotes.Insert(c.Request.Context(), userID, *req.Note)
		if err != nil {
			response.RespondServiceError(c, err)
			return
		}
		response.RespondOK(c, gin.H{"note": note})
	case "update":
		if req.Note == nil {
			response.RespondError(c, http.StatusBadRequest, "missing_note", nil)
			return
		}
		note, err := h.commonNotes.Update(c.Request.Context(), userID, *req.Note)
		if err != nil {
			response.RespondServiceError(c, err)
			return
		}
		response.RespondOK(c, gin.H{"note": note})
	case "delete":
		deleted, err := h.commonNotes.Delete(c.Request.Context(), userID, req.NoteID)
		if err != nil {
			response.RespondServiceError(c, err)
			return
		}
		response.RespondOK(c, gin.H{"deleted": deleted})
	default:
		response.RespondError(c, http.StatusBadRequest, "invalid_operation", nil)
	}
}

// CommonList returns the user's freeform notes.
func (h *NotesHandler) CommonList(c *gin.Context) {
	notes, err := h.commonNotes.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notes": notes})
}
