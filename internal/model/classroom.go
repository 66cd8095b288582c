package model

import "time"

// Classroom is a faculty-owned group that students join via a short code.
type Classroom struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Branch     string    `json:"branch,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	CoverImage string    `json:"cover_image,omitempty"`
	FacultyID  string    `json:"faculty_id"`
	Archived   bool      `json:"archived"`
	CreatedAt  time.Time `json:"created_at"`

	// Resolved projections, populated on reads.
	Faculty  *UserRef  `json:"faculty,omitempty"`
	Students []UserRef `json:"students"`

	Files  []ClassroomFile  `json:"files"`
	Events []ClassroomEvent `json:"events"`
}

// FileKind categorizes how a classroom file is delivered.
type FileKind string

const (
	FileKindDocument FileKind = "document"
	FileKindImage    FileKind = "image"
	FileKindEmbed    FileKind = "embed"
	// FileKindVideo marks externally hosted videos. These are never
	// streamed through the proxy, only redirected.
	FileKindVideo FileKind = "video"
)

// ClassroomFile references externally stored content attached to a classroom.
type ClassroomFile struct {
	ID          string    `json:"id"`
	ClassroomID string    `json:"classroom_id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Kind        FileKind  `json:"kind"`
	Unit        string    `json:"unit,omitempty"`
	Description string    `json:"description,omitempty"`
	// ObjectID is the storage provider's opaque identifier, kept so
	// deletion can reach the underlying object. Empty for plain links.
	ObjectID    string    `json:"object_id,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
}

// ClassroomEvent is a calendar entry attached to a classroom.
// Events are append-only from the API surface.
type ClassroomEvent struct {
	ID          string    `json:"id"`
	ClassroomID string    `json:"classroom_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	// Date is a calendar date with no time component.
	Date        time.Time `json:"date"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}
