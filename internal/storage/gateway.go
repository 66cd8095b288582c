// Package storage abstracts the external blob-store-with-CDN provider
// holding actual file bytes. The provider categorizes every object
// under a storage class ("image" vs "raw") that determines its
// retrieval URL shape; implementations must expose that class so
// callers can deliver bytes through the matching path.
package storage

import (
	"context"
	"strings"
	"time"
)

// Storage classes understood by the provider.
const (
	ClassImage = "image"
	ClassRaw   = "raw"
	ClassAuto  = "auto"
)

// UploadParams describe how an object should be stored.
type UploadParams struct {
	// ResourceType is the storage class: ClassImage, ClassRaw, or
	// ClassAuto to let the provider detect it from content.
	ResourceType string
	// Folder is the destination folder under the provider account.
	Folder string
	// PublicID optionally pins the object key instead of a generated one.
	PublicID string
	// Transformation is a provider-side normalization applied on ingest
	// (crops, quality), encoded in the provider's own syntax.
	Transformation string
}

// UploadResult is the stable reference returned for a stored object.
type UploadResult struct {
	PublicID     string `json:"public_id"`
	SecureURL    string `json:"secure_url"`
	ResourceType string `json:"resource_type"`
	Format       string `json:"format"`
	Bytes        int64  `json:"bytes"`
}

// ResourceInfo is the provider's metadata for a stored object.
type ResourceInfo struct {
	PublicID     string `json:"public_id"`
	SecureURL    string `json:"secure_url"`
	ResourceType string `json:"resource_type"`
	Format       string `json:"format"`
	Bytes        int64  `json:"bytes"`
}

// Gateway is the object storage collaborator contract. Implementations
// must be safe for concurrent use.
type Gateway interface {
	// Upload stores raw bytes under the given params and returns the
	// stable URL plus the provider's opaque identifier.
	Upload(ctx context.Context, data []byte, mimeType string, p UploadParams) (*UploadResult, error)

	// Resource looks up object metadata by identifier and storage
	// class. A lookup under the wrong class fails.
	Resource(ctx context.Context, publicID, resourceType string) (*ResourceInfo, error)

	// SignedURL builds an authenticated retrieval URL valid until
	// expiresAt for the given identifier and storage class.
	SignedURL(publicID, resourceType string, expiresAt time.Time) (string, error)

	// Delete removes the object by identifier and storage class.
	Delete(ctx context.Context, publicID, resourceType string) error

	// Owns reports whether the given delivery URL references an object
	// held by this provider.
	Owns(url string) bool
}

// PublicIDFromURL derives an object's storage key from its delivery
// URL: everything after the fixed "upload" path segment, with the file
// extension stripped. Returns false when the URL has no such segment.
func PublicIDFromURL(rawURL string) (string, bool) {
	parts := strings.Split(rawURL, "/")
	uploadIdx := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIdx = i
			break
		}
	}
	if uploadIdx <= 0 || uploadIdx == len(parts)-1 {
		return "", false
	}

	publicID := strings.Join(parts[uploadIdx+1:], "/")
	if dot := strings.LastIndex(publicID, "."); dot > 0 {
		publicID = publicID[:dot]
	}
	if publicID == "" {
		return "", false
	}
	return publicID, true
}
