package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eswarnandha-a/sece-space/internal/config"
	"github.com/eswarnandha-a/sece-space/internal/model"
	"github.com/eswarnandha-a/sece-space/internal/repository"
	"github.com/eswarnandha-a/sece-space/internal/storage"
)

// UpstreamDeniedError reports that the storage provider refused access
// even after the corrective rewrite retry.
type UpstreamDeniedError struct {
	Status     int
	StatusText string
}

func (e *UpstreamDeniedError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.StatusText)
}

// UpstreamFetchError reports any other upstream retrieval failure.
type UpstreamFetchError struct {
	Detail string
}

func (e *UpstreamFetchError) Error() string {
	return "fetch upstream file: " + e.Detail
}

// FileDelivery is the terminal decision for one proxy request: either a
// redirect or a byte stream to pipe through verbatim.
type FileDelivery struct {
	// RedirectURL is set for external videos and fresh signed URLs.
	RedirectURL string

	// Body streams the object bytes when no redirect applies. The
	// caller owns closing it.
	Body          io.ReadCloser
	ContentType   string
	ContentLength string
}

// FileInfo is the computed link set for one classroom file.
type FileInfo struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	URL         string `json:"url"`
	ViewURL     string `json:"view_url"`
	DownloadURL string `json:"download_url"`
	DirectURL   string `json:"direct_url"`
}

// FileAccessService decides how to deliver a classroom file's bytes:
// redirect, transparent passthrough, or a corrective URL rewrite when
// the stored reference does not match the provider's delivery path.
type FileAccessService struct {
	files   FileStore
	gateway storage.Gateway
	// rdb caches verified signed URLs; nil disables caching.
	rdb    *redis.Client
	client *http.Client
	cfg    *config.Config
	log    zerolog.Logger
}

// NewFileAccessService creates a new FileAccessService.
func NewFileAccessService(files FileStore, gateway storage.Gateway, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *FileAccessService {
	return &FileAccessService{
		files:   files,
		gateway: gateway,
		rdb:     rdb,
		client:  &http.Client{Timeout: 60 * time.Second},
		cfg:     cfg,
		log:     log,
	}
}

// Resolve runs the per-request delivery decision for one file.
func (s *FileAccessService) Resolve(ctx context.Context, classroomID, fileID string) (*FileDelivery, *model.ClassroomFile, error) {
	f, err := s.files.GetByID(ctx, classroomID, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	// Externally hosted videos are never streamed, only redirected.
	if f.Kind == model.FileKindVideo {
		return &FileDelivery{RedirectURL: f.URL}, f, nil
	}

	// Stored references into the gateway get a fresh signed URL when
	// the provider can confirm the object's storage class.
	if s.gateway.Owns(f.URL) {
		if signed := s.signedRedirect(ctx, f.URL); signed != "" {
			return &FileDelivery{RedirectURL: signed}, f, nil
		}
	}

	// Fallback: stream the stored URL directly, with one corrective
	// rewrite retry on access denial.
	delivery, err := s.stream(ctx, f)
	if err != nil {
		return nil, f, err
	}
	return delivery, f, nil
}

// Info returns the computed view/download URLs for a file.
func (s *FileAccessService) Info(ctx context.Context, classroomID, fileID string) (*FileInfo, error) {
	f, err := s.files.GetByID(ctx, classroomID, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	proxy := fmt.Sprintf("%s/api/v1/files/classrooms/%s/files/%s/proxy",
		s.cfg.PublicBaseURL, classroomID, fileID)
	return &FileInfo{
		Name:        f.Name,
		Kind:        string(f.Kind),
		URL:         f.URL,
		ViewURL:     proxy,
		DownloadURL: proxy + "?download=true",
		DirectURL:   f.URL,
	}, nil
}

// AllowOrigin resolves the Access-Control-Allow-Origin value for a
// streamed response. Only a validated origin is ever reflected: an
// exact allow-list entry or a member of the preview-domain family.
// Everything else gets the wildcard.
func (s *FileAccessService) AllowOrigin(origin string) string {
	if origin == "" {
		return "*"
	}
	for _, o := range s.cfg.AllowedOrigins {
		if o == origin {
			return origin
		}
	}
	if s.cfg.PreviewOriginSuffix != "" && s.cfg.PreviewOriginMarker != "" &&
		strings.HasSuffix(origin, s.cfg.PreviewOriginSuffix) &&
		strings.Contains(origin, s.cfg.PreviewOriginMarker) {
		return origin
	}
	return "*"
}

// signedRedirect tries to obtain a verified signed URL for a stored
// gateway reference. Empty result means fall through to streaming.
func (s *FileAccessService) signedRedirect(ctx context.Context, rawURL string) string {
	publicID, ok := storage.PublicIDFromURL(rawURL)
	if !ok {
		return ""
	}

	// Class resolution comes first so the cache key carries the real
	// storage class; resolveClass itself caches the probe result.
	resourceType := s.resolveClass(ctx, publicID)
	if resourceType == "" {
		return ""
	}

	cacheKey := config.CacheKey.SignedURLKey(resourceType, publicID)
	if cached := s.cacheGet(ctx, cacheKey); cached != "" {
		return cached
	}

	signed, err := s.gateway.SignedURL(publicID, resourceType, time.Now().Add(s.cfg.SignedURLTTL))
	if err != nil {
		s.log.Debug().Err(err).Str("public_id", publicID).Msg("Signed URL generation failed")
		return ""
	}

	// Verify before redirecting the client anywhere.
	resp, err := s.fetch(ctx, signed)
	if err != nil {
		return ""
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		s.log.Debug().Int("status", resp.StatusCode).Str("public_id", publicID).
			Msg("Signed URL verification failed")
		return ""
	}

	// Cache well below the validity window so a cached URL never
	// outlives its signature.
	s.cacheSet(ctx, cacheKey, signed, s.cfg.SignedURLTTL/2)
	return signed
}

// resolveClass discovers the object's storage class, image first then
// raw, caching the answer because the metadata API is rate limited.
func (s *FileAccessService) resolveClass(ctx context.Context, publicID string) string {
	if cached := s.cacheGet(ctx, config.CacheKey.ResourceClassKey(publicID)); cached != "" {
		return cached
	}

	for _, class := range []string{storage.ClassImage, storage.ClassRaw} {
		info, err := s.gateway.Resource(ctx, publicID, class)
		if err != nil {
			continue
		}
		resourceType := info.ResourceType
		if resourceType == "" {
			resourceType = class
		}
		s.cacheSet(ctx, config.CacheKey.ResourceClassKey(publicID), resourceType, s.cfg.SignedURLTTL)
		return resourceType
	}
	return ""
}

// stream fetches the stored URL and prepares a passthrough delivery.
// On 401/403 the corrective rewrite is applied and the fetch retried
// exactly once. No other path retries.
func (s *FileAccessService) stream(ctx context.Context, f *model.ClassroomFile) (*FileDelivery, error) {
	resp, err := s.fetch(ctx, f.URL)
	if err != nil {
		return nil, &UpstreamFetchError{Detail: err.Error()}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		denied := &UpstreamDeniedError{Status: resp.StatusCode, StatusText: resp.Status}
		resp.Body.Close()

		fixed := FixURL(f.URL, f.Name)
		if fixed == f.URL {
			return nil, denied
		}
		s.log.Info().Str("file_id", f.ID).Str("fixed_url", fixed).
			Msg("Access denied, retrying with corrected URL")

		retry, err := s.fetch(ctx, fixed)
		if err != nil {
			return nil, denied
		}
		if retry.StatusCode != http.StatusOK {
			retry.Body.Close()
			return nil, denied
		}
		resp = retry
	} else if resp.StatusCode != http.StatusOK {
		detail := resp.Status
		resp.Body.Close()
		return nil, &UpstreamFetchError{Detail: detail}
	}

	return &FileDelivery{
		Body:          resp.Body,
		ContentType:   headerOr(resp, "Content-Type", "application/octet-stream"),
		ContentLength: resp.Header.Get("Content-Length"),
	}, nil
}

func (s *FileAccessService) fetch(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "SECE-Space-Backend/1.0")
	req.Header.Set("Accept", "*/*")
	return s.client.Do(req)
}

func (s *FileAccessService) cacheGet(ctx context.Context, key string) string {
	if s.rdb == nil {
		return ""
	}
	v, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Debug().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return ""
	}
	return v
}

func (s *FileAccessService) cacheSet(ctx context.Context, key, value string, ttl time.Duration) {
	if s.rdb == nil {
		return
	}
	if ttl < time.Minute {
		ttl = time.Minute
	}
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func headerOr(resp *http.Response, key, fallback string) string {
	if v := resp.Header.Get(key); v != "" {
		return v
	}
	return fallback
}
