package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eswarnandha-a/sece-space/internal/response"
	"github.com/eswarnandha-a/sece-space/internal/service"
)

// FileHandler serves classroom file bytes through the access gateway.
type FileHandler struct {
	fileAccessService *service.FileAccessService
	log               zerolog.Logger
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileAccessService *service.FileAccessService, log zerolog.Logger) *FileHandler {
	return &FileHandler{fileAccessService: fileAccessService, log: log}
}

// ProxyFile godoc
// GET /api/v1/files/classrooms/:classroomId/files/:fileId/proxy
// Delivers a classroom file: a redirect for videos and signed URLs, a
// transparent byte stream otherwise. ?download=true switches the
// disposition from inline to attachment.
func (h *FileHandler) ProxyFile(c *gin.Context) {
	delivery, file, err := h.fileAccessService.Resolve(c.Request.Context(), c.Param("classroomId"), c.Param("fileId"))
	if err != nil {
		h.failDelivery(c, err)
		return
	}

	if delivery.RedirectURL != "" {
		c.Redirect(http.StatusFound, delivery.RedirectURL)
		return
	}
	defer delivery.Body.Close()

	c.Header("Content-Type", delivery.ContentType)
	if delivery.ContentLength != "" {
		c.Header("Content-Length", delivery.ContentLength)
	}
	c.Header("Access-Control-Allow-Origin", h.fileAccessService.AllowOrigin(c.GetHeader("Origin")))

	disposition := "inline"
	if c.Query("download") == "true" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, file.Name))

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, delivery.Body); err != nil {
		// Headers are gone; just note the broken stream.
		h.log.Debug().Err(err).Str("file_id", file.ID).Msg("File stream interrupted")
	}
}

// FileInfo godoc
// GET /api/v1/files/classrooms/:classroomId/files/:fileId/info
// Returns the computed view and download links for a file.
func (h *FileHandler) FileInfo(c *gin.Context) {
	info, err := h.fileAccessService.Info(c.Request.Context(), c.Param("classroomId"), c.Param("fileId"))
	if err != nil {
		h.failDelivery(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"file": info})
}

func (h *FileHandler) failDelivery(c *gin.Context, err error) {
	var denied *service.UpstreamDeniedError
	var fetch *service.UpstreamFetchError
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.As(err, &denied):
		// Mirror the upstream 401/403 so clients can tell them apart.
		response.FailWithFields(c, denied.Status, response.ErrUpstreamDenied, map[string]string{
			"upstream_status": fmt.Sprintf("%d", denied.Status),
			"hint":            "The stored file is no longer accessible. Re-uploading it will fix the link.",
		})
	case errors.As(err, &fetch):
		response.Fail(c, http.StatusBadGateway, response.ErrUpstreamFetch)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
