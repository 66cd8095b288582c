package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eswarnandha-a/sece-space/internal/middleware"
	"github.com/eswarnandha-a/sece-space/internal/model"
	"github.com/eswarnandha-a/sece-space/internal/response"
	"github.com/eswarnandha-a/sece-space/internal/service"
	"github.com/eswarnandha-a/sece-space/internal/validator"
)

// ClassroomHandler handles the classroom directory endpoints.
type ClassroomHandler struct {
	classroomService *service.ClassroomService
}

// NewClassroomHandler creates a new ClassroomHandler.
func NewClassroomHandler(classroomService *service.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{classroomService: classroomService}
}

// CreateClassroomRequest is the payload for creating a classroom.
type CreateClassroomRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=120"`
	Branch     string `json:"branch" binding:"required,min=1,max=60"`
	Subject    string `json:"subject" binding:"required,min=1,max=120"`
	CoverImage string `json:"cover_image" binding:"omitempty,url"`
}

// CreateClassroom godoc
// POST /api/v1/classrooms
// Creates a classroom owned by the authenticated faculty member. The
// join code is generated server-side and returned in the response.
func (h *ClassroomHandler) CreateClassroom(c *gin.Context) {
	var req CreateClassroomRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	classroom, err := h.classroomService.Create(c.Request.Context(), claims.Principal(), service.CreateClassroomInput{
		Name:       req.Name,
		Branch:     req.Branch,
		Subject:    req.Subject,
		CoverImage: req.CoverImage,
	})
	if err != nil {
		if errors.Is(err, service.ErrCodeConflict) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		failClassroomError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"classroom": classroom})
}

// GetClassroom godoc
// GET /api/v1/classrooms/:id
// Retrieves one classroom with members, files and events resolved.
func (h *ClassroomHandler) GetClassroom(c *gin.Context) {
	classroom, err := h.classroomService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failClassroomError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classroom": classroom})
}

// ListFacultyClassrooms godoc
// GET /api/v1/classrooms/faculty
// Lists the classrooms owned by the authenticated faculty member.
func (h *ClassroomHandler) ListFacultyClassrooms(c *gin.Context) {
	claims := middleware.GetClaims(c)
	classrooms, err := h.classroomService.ListForFaculty(c.Request.Context(), claims.Subject)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classrooms": classrooms})
}

// ListStudentClassrooms godoc
// GET /api/v1/classrooms/student
// Lists the classrooms the authenticated student has joined.
func (h *ClassroomHandler) ListStudentClassrooms(c *gin.Context) {
	claims := middleware.GetClaims(c)
	classrooms, err := h.classroomService.ListForStudent(c.Request.Context(), claims.Subject)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classrooms": classrooms})
}

// JoinClassroomRequest is the payload for joining by code.
type JoinClassroomRequest struct {
	Code string `json:"code" binding:"required,joincode"`
}

// JoinClassroom godoc
// POST /api/v1/classrooms/join
// Adds the authenticated student to the classroom matching the code.
func (h *ClassroomHandler) JoinClassroom(c *gin.Context) {
	var req JoinClassroomRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	classroom, err := h.classroomService.Join(c.Request.Context(), claims.Principal(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyMember):
			response.Fail(c, http.StatusBadRequest, response.ErrAlreadyMember)
		case errors.Is(err, service.ErrArchived):
			response.Fail(c, http.StatusBadRequest, response.ErrClassroomArchived)
		default:
			failClassroomError(c, err)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classroom": classroom})
}

// FileEntryRequest is one file reference in an AddFiles payload.
type FileEntryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	URL         string `json:"url" binding:"required,url"`
	Kind        string `json:"kind" binding:"required,oneof=document image embed video"`
	Unit        string `json:"unit" binding:"omitempty,max=60"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

// AddFilesRequest is the payload for appending file references.
type AddFilesRequest struct {
	Files []FileEntryRequest `json:"files" binding:"required,min=1,dive"`
}

// AddFiles godoc
// POST /api/v1/classrooms/:id/files
// Appends file references to a classroom and returns the full list.
func (h *ClassroomHandler) AddFiles(c *gin.Context) {
	var req AddFilesRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	entries := make([]service.FileEntryInput, 0, len(req.Files))
	for _, f := range req.Files {
		entries = append(entries, service.FileEntryInput{
			Name:        f.Name,
			URL:         f.URL,
			Kind:        model.FileKind(f.Kind),
			Unit:        f.Unit,
			Description: f.Description,
		})
	}

	claims := middleware.GetClaims(c)
	files, err := h.classroomService.AddFiles(c.Request.Context(), claims.Principal(), c.Param("id"), entries)
	if err != nil {
		failClassroomError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"files": files})
}

// RemoveFile godoc
// DELETE /api/v1/classrooms/:id/files/:fileId
// Removes one file reference; a missing id is not an error.
func (h *ClassroomHandler) RemoveFile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	err := h.classroomService.RemoveFile(c.Request.Context(), claims.Principal(), c.Param("id"), c.Param("fileId"))
	if err != nil {
		failClassroomError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "file removed"})
}

// AddEventRequest is the payload for appending a calendar event.
type AddEventRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
}

// AddEvent godoc
// POST /api/v1/classrooms/:id/events
// Appends one calendar event and returns the inserted entry.
func (h *ClassroomHandler) AddEvent(c *gin.Context) {
	var req AddEventRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	claims := middleware.GetClaims(c)
	event, err := h.classroomService.AddEvent(c.Request.Context(), claims.Principal(), c.Param("id"), req.Title, req.Description, date)
	if err != nil {
		failClassroomError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"event": event})
}

// ArchiveClassroom godoc
// PATCH /api/v1/classrooms/:id/archive
// Marks the classroom archived; membership and files stay intact.
func (h *ClassroomHandler) ArchiveClassroom(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if err := h.classroomService.Archive(c.Request.Context(), claims.Principal(), c.Param("id")); err != nil {
		failClassroomError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "classroom archived"})
}

// DeleteClassroom godoc
// DELETE /api/v1/classrooms/:id
// Deletes the classroom together with its files and events.
func (h *ClassroomHandler) DeleteClassroom(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if err := h.classroomService.Delete(c.Request.Context(), claims.Principal(), c.Param("id")); err != nil {
		failClassroomError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "classroom deleted"})
}

// failClassroomError maps the common classroom service errors onto the
// response envelope.
func failClassroomError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
