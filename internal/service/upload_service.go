package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eswarnandha-a/sece-space/internal/config"
	"github.com/eswarnandha-a/sece-space/internal/model"
	"github.com/eswarnandha-a/sece-space/internal/repository"
	"github.com/eswarnandha-a/sece-space/internal/storage"
)

// Sentinel errors for uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	// ErrUploadFailed hides gateway detail from callers; the original
	// error is logged, never surfaced.
	ErrUploadFailed = errors.New("upload failed")
)

// MIME allow-lists per upload path.
var imageMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

var documentMIMETypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// Provider-side normalizations applied on ingest.
const (
	profileTransformation = "w_200,h_200,c_fill,g_face/q_auto,f_auto"
	coverTransformation   = "w_800,h_400,c_fill/q_auto,f_auto"
)

// UploadService validates incoming files, forwards bytes to the object
// storage gateway, and persists the resulting reference.
type UploadService struct {
	files      FileStore
	classrooms ClassroomStore
	gateway    storage.Gateway
	cfg        *config.Config
	log        zerolog.Logger
}

// NewUploadService creates a new UploadService.
func NewUploadService(files FileStore, classrooms ClassroomStore, gateway storage.Gateway, cfg *config.Config, log zerolog.Logger) *UploadService {
	return &UploadService{files: files, classrooms: classrooms, gateway: gateway, cfg: cfg, log: log}
}

// UploadProfileImage stores a profile picture normalized to a square
// crop centered on a detected face region when available.
func (s *UploadService) UploadProfileImage(ctx context.Context, data []byte, mimeType string) (*storage.UploadResult, error) {
	if err := s.validate(data, mimeType, imageMIMETypes, s.cfg.MaxProfileImageBytes); err != nil {
		return nil, err
	}
	return s.upload(ctx, data, mimeType, storage.UploadParams{
		ResourceType:   storage.ClassImage,
		Folder:         s.cfg.UploadFolder + "/profile-images",
		Transformation: profileTransformation,
	})
}

// UploadCoverImage stores a classroom cover normalized to a fixed wide
// aspect ratio.
func (s *UploadService) UploadCoverImage(ctx context.Context, data []byte, mimeType string) (*storage.UploadResult, error) {
	if err := s.validate(data, mimeType, imageMIMETypes, s.cfg.MaxCoverImageBytes); err != nil {
		return nil, err
	}
	return s.upload(ctx, data, mimeType, storage.UploadParams{
		ResourceType:   storage.ClassImage,
		Folder:         s.cfg.UploadFolder + "/cover-images",
		Transformation: coverTransformation,
	})
}

// UploadFile stores a document without attaching it to any classroom.
// The caller keeps the returned reference and decides where it goes.
func (s *UploadService) UploadFile(ctx context.Context, data []byte, mimeType, originalName string) (*storage.UploadResult, error) {
	if err := s.validate(data, mimeType, documentMIMETypes, s.cfg.MaxDocumentBytes); err != nil {
		return nil, err
	}
	return s.upload(ctx, data, mimeType, storage.UploadParams{
		ResourceType: storage.ClassAuto,
		Folder:       s.cfg.UploadFolder + "/documents",
		PublicID:     fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeBaseName(originalName)),
	})
}

// UploadDocument stores a course material and persists its reference on
// the classroom. The object key is a time-based prefix plus the
// sanitized base name so repeat uploads of the same file never collide;
// the gateway detects the storage class from content.
func (s *UploadService) UploadDocument(ctx context.Context, p Principal, classroomID string, data []byte, mimeType, originalName string) (*model.ClassroomFile, error) {
	if p.Role != model.RoleFaculty {
		return nil, ErrForbidden
	}
	if err := s.validate(data, mimeType, documentMIMETypes, s.cfg.MaxDocumentBytes); err != nil {
		return nil, err
	}
	if _, err := s.classrooms.GetByID(ctx, classroomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	result, err := s.upload(ctx, data, mimeType, storage.UploadParams{
		ResourceType: storage.ClassAuto,
		Folder:       s.cfg.UploadFolder + "/documents",
		PublicID:     fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeBaseName(originalName)),
	})
	if err != nil {
		return nil, err
	}

	kind := model.FileKindDocument
	if strings.HasPrefix(mimeType, "image/") {
		kind = model.FileKindImage
	}

	f := &model.ClassroomFile{
		ID:          uuid.New().String(),
		ClassroomID: classroomID,
		Name:        originalName,
		URL:         result.SecureURL,
		Kind:        kind,
		ObjectID:    result.PublicID,
		UploadedBy:  p.ID,
	}
	if err := s.files.AddFiles(ctx, []model.ClassroomFile{*f}); err != nil {
		return nil, fmt.Errorf("persist file reference: %w", err)
	}
	// AddFiles fills the timestamp on its copy; reload it for the caller.
	return s.files.GetByID(ctx, classroomID, f.ID)
}

// AddExternalLink records an externally hosted video reference without
// any upload.
func (s *UploadService) AddExternalLink(ctx context.Context, p Principal, classroomID, linkURL, title string) (*model.ClassroomFile, error) {
	if p.Role != model.RoleFaculty {
		return nil, ErrForbidden
	}
	if _, err := s.classrooms.GetByID(ctx, classroomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if title == "" {
		title = "Untitled"
	}

	f := &model.ClassroomFile{
		ID:          uuid.New().String(),
		ClassroomID: classroomID,
		Name:        title,
		URL:         linkURL,
		Kind:        model.FileKindVideo,
		UploadedBy:  p.ID,
	}
	if err := s.files.AddFiles(ctx, []model.ClassroomFile{*f}); err != nil {
		return nil, fmt.Errorf("persist link reference: %w", err)
	}
	return s.files.GetByID(ctx, classroomID, f.ID)
}

// ListClassroomResources returns a classroom's files newest first.
func (s *UploadService) ListClassroomResources(ctx context.Context, classroomID string) ([]model.ClassroomFile, error) {
	return s.files.ListByClassroomNewestFirst(ctx, classroomID)
}

// DeleteResource removes a file reference. When the record carries a
// storage object id, the underlying object is deleted best-effort: a
// gateway failure is logged and the record is removed regardless.
func (s *UploadService) DeleteResource(ctx context.Context, p Principal, fileID string) error {
	if p.Role != model.RoleFaculty {
		return ErrForbidden
	}

	f, err := s.files.Delete(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if f.ObjectID != "" {
		resourceType := storage.ClassRaw
		if f.Kind == model.FileKindImage {
			resourceType = storage.ClassImage
		}
		if err := s.gateway.Delete(ctx, f.ObjectID, resourceType); err != nil {
			s.log.Warn().Err(err).
				Str("file_id", f.ID).
				Str("object_id", f.ObjectID).
				Msg("Best-effort object deletion failed")
		}
	}
	return nil
}

func (s *UploadService) validate(data []byte, mimeType string, allowed map[string]bool, maxBytes int64) error {
	if !allowed[mimeType] {
		return fmt.Errorf("%w: %s", ErrUnsupportedFileType, mimeType)
	}
	if int64(len(data)) > maxBytes {
		return fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, len(data), maxBytes)
	}
	return nil
}

func (s *UploadService) upload(ctx context.Context, data []byte, mimeType string, p storage.UploadParams) (*storage.UploadResult, error) {
	result, err := s.gateway.Upload(ctx, data, mimeType, p)
	if err != nil {
		s.log.Error().Err(err).Str("folder", p.Folder).Msg("Gateway upload failed")
		return nil, ErrUploadFailed
	}
	return result, nil
}

// sanitizeBaseName strips the extension and any path components, then
// reduces the base name to a safe object-key fragment.
func sanitizeBaseName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
