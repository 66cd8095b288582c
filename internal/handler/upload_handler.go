package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eswarnandha-a/sece-space/internal/middleware"
	"github.com/eswarnandha-a/sece-space/internal/response"
	"github.com/eswarnandha-a/sece-space/internal/service"
	"github.com/eswarnandha-a/sece-space/internal/validator"
)

// UploadHandler handles file upload and resource management endpoints.
type UploadHandler struct {
	uploadService *service.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadProfileImage godoc
// POST /api/v1/upload/profile-image
// Uploads a profile picture and returns its delivery URL.
func (h *UploadHandler) UploadProfileImage(c *gin.Context) {
	data, header, ok := readUpload(c)
	if !ok {
		return
	}

	result, err := h.uploadService.UploadProfileImage(c.Request.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		failUploadError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": result.SecureURL, "public_id": result.PublicID})
}

// UploadCoverImage godoc
// POST /api/v1/upload/cover-image
// Uploads a classroom cover image and returns its delivery URL.
func (h *UploadHandler) UploadCoverImage(c *gin.Context) {
	data, header, ok := readUpload(c)
	if !ok {
		return
	}

	result, err := h.uploadService.UploadCoverImage(c.Request.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		failUploadError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": result.SecureURL, "public_id": result.PublicID})
}

// UploadFile godoc
// POST /api/v1/upload/document
// Uploads a standalone document and returns its delivery URL without
// attaching it to a classroom.
func (h *UploadHandler) UploadFile(c *gin.Context) {
	data, header, ok := readUpload(c)
	if !ok {
		return
	}

	result, err := h.uploadService.UploadFile(c.Request.Context(), data, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		failUploadError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": result.SecureURL, "public_id": result.PublicID})
}

// UploadDocument godoc
// POST /api/v1/upload/classroom/:classroomId
// Uploads a course material into a classroom and returns the stored
// file record.
func (h *UploadHandler) UploadDocument(c *gin.Context) {
	data, header, ok := readUpload(c)
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	file, err := h.uploadService.UploadDocument(
		c.Request.Context(),
		claims.Principal(),
		c.Param("classroomId"),
		data,
		header.Header.Get("Content-Type"),
		header.Filename,
	)
	if err != nil {
		failUploadError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"file": file})
}

// AddExternalLinkRequest is the payload for recording a hosted video link.
type AddExternalLinkRequest struct {
	ClassroomID string `json:"classroom_id" binding:"required"`
	URL         string `json:"url" binding:"required,url"`
	Title       string `json:"title" binding:"omitempty,max=255"`
}

// AddExternalLink godoc
// POST /api/v1/upload/youtube
// Records an externally hosted video reference without an upload.
func (h *UploadHandler) AddExternalLink(c *gin.Context) {
	var req AddExternalLinkRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	file, err := h.uploadService.AddExternalLink(c.Request.Context(), claims.Principal(), req.ClassroomID, req.URL, req.Title)
	if err != nil {
		failUploadError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"file": file})
}

// ListClassroomResources godoc
// GET /api/v1/upload/classroom/:classroomId
// Lists a classroom's resources newest first.
func (h *UploadHandler) ListClassroomResources(c *gin.Context) {
	files, err := h.uploadService.ListClassroomResources(c.Request.Context(), c.Param("classroomId"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"files": files})
}

// DeleteResource godoc
// DELETE /api/v1/upload/resource/:id
// Removes a file record and best-effort deletes the stored object.
func (h *UploadHandler) DeleteResource(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if err := h.uploadService.DeleteResource(c.Request.Context(), claims.Principal(), c.Param("id")); err != nil {
		failUploadError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "resource deleted"})
}

// readUpload extracts the uploaded file bytes from the multipart form.
// On failure the error response is already written.
func readUpload(c *gin.Context) ([]byte, *multipart.FileHeader, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return nil, nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return nil, nil, false
	}
	return data, header, true
}

func failUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
	case errors.Is(err, service.ErrUploadFailed):
		response.Fail(c, http.StatusInternalServerError, response.ErrUploadFailed)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
