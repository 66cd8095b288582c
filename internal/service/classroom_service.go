package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eswarnandha-a/sece-space/internal/model"
	"github.com/eswarnandha-a/sece-space/internal/repository"
)

// Common classroom errors.
var (
	ErrNotFound      = errors.New("classroom not found")
	ErrForbidden     = errors.New("operation not permitted for this principal")
	ErrAlreadyMember = errors.New("student already joined this classroom")
	ErrArchived      = errors.New("classroom is archived")
	ErrCodeConflict  = errors.New("join code collision")
)

// Join codes are short uppercase base-36 tokens students type by hand.
const (
	joinCodeLength   = 6
	joinCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// CreateClassroomInput carries the faculty-supplied classroom fields.
type CreateClassroomInput struct {
	Name       string
	Branch     string
	Subject    string
	CoverImage string
}

// FileEntryInput is one file reference to append to a classroom.
type FileEntryInput struct {
	Name        string
	URL         string
	Kind        model.FileKind
	Unit        string
	Description string
}

// ClassroomService handles classroom business logic. Every mutating
// operation takes the authenticated principal and enforces the role
// requirement here, not at the presentation layer.
type ClassroomService struct {
	classrooms ClassroomStore
	files      FileStore
	events     EventStore
}

// NewClassroomService creates a new ClassroomService.
func NewClassroomService(classrooms ClassroomStore, files FileStore, events EventStore) *ClassroomService {
	return &ClassroomService{classrooms: classrooms, files: files, events: events}
}

// Create builds a classroom owned by the calling faculty member. The
// join code is assigned at creation and immutable afterwards; a
// generation collision surfaces as ErrCodeConflict from the store's
// unique constraint rather than a retry loop.
func (s *ClassroomService) Create(ctx context.Context, p Principal, in CreateClassroomInput) (*model.Classroom, error) {
	if p.Role != model.RoleFaculty {
		return nil, ErrForbidden
	}

	c := &model.Classroom{
		ID:         uuid.New().String(),
		Code:       NewJoinCode(),
		Name:       in.Name,
		Branch:     in.Branch,
		Subject:    in.Subject,
		CoverImage: in.CoverImage,
		FacultyID:  p.ID,
		Archived:   false,
		Students:   []model.UserRef{},
		Files:      []model.ClassroomFile{},
		Events:     []model.ClassroomEvent{},
	}

	if err := s.classrooms.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCodeConflict
		}
		return nil, fmt.Errorf("create classroom: %w", err)
	}
	return c, nil
}

// GetByID retrieves a classroom with members, files and events resolved.
func (s *ClassroomService) GetByID(ctx context.Context, id string) (*model.Classroom, error) {
	c, err := s.classrooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.attachLists(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Join adds the calling student to the classroom with the given code.
// Archived classrooms are read-only to students and reject joins. A
// repeat join returns ErrAlreadyMember with membership unchanged.
func (s *ClassroomService) Join(ctx context.Context, p Principal, code string) (*model.Classroom, error) {
	if p.Role != model.RoleStudent {
		return nil, ErrForbidden
	}

	// Codes are stored uppercase; accept any casing from the client.
	code = strings.ToUpper(strings.TrimSpace(code))

	c, err := s.classrooms.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if c.Archived {
		return nil, ErrArchived
	}

	if err := s.classrooms.AddStudent(ctx, c.ID, p.ID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("join classroom: %w", err)
	}

	return s.GetByID(ctx, c.ID)
}

// ListForFaculty returns the classrooms a faculty member owns.
func (s *ClassroomService) ListForFaculty(ctx context.Context, facultyID string) ([]model.Classroom, error) {
	return s.classrooms.ListByFaculty(ctx, facultyID)
}

// ListForStudent returns the classrooms a student has joined.
func (s *ClassroomService) ListForStudent(ctx context.Context, studentID string) ([]model.Classroom, error) {
	return s.classrooms.ListByStudent(ctx, studentID)
}

// AddFiles appends the given entries to the classroom and returns the
// full post-append list. Faculty-only, and only on an owned classroom.
func (s *ClassroomService) AddFiles(ctx context.Context, p Principal, classroomID string, entries []FileEntryInput) ([]model.ClassroomFile, error) {
	if _, err := s.ownedClassroom(ctx, p, classroomID); err != nil {
		return nil, err
	}

	files := make([]model.ClassroomFile, 0, len(entries))
	for _, e := range entries {
		files = append(files, model.ClassroomFile{
			ID:          uuid.New().String(),
			ClassroomID: classroomID,
			Name:        e.Name,
			URL:         e.URL,
			Kind:        e.Kind,
			Unit:        e.Unit,
			Description: e.Description,
			UploadedBy:  p.ID,
		})
	}

	if err := s.files.AddFiles(ctx, files); err != nil {
		return nil, fmt.Errorf("add files: %w", err)
	}
	return s.files.ListByClassroom(ctx, classroomID)
}

// RemoveFile removes one file from the classroom. Removing an id that
// is not present leaves the list unchanged and is not an error.
func (s *ClassroomService) RemoveFile(ctx context.Context, p Principal, classroomID, fileID string) error {
	if _, err := s.ownedClassroom(ctx, p, classroomID); err != nil {
		return err
	}
	return s.files.DeleteFromClassroom(ctx, classroomID, fileID)
}

// AddEvent appends one calendar event and returns the inserted entry.
func (s *ClassroomService) AddEvent(ctx context.Context, p Principal, classroomID, title, description string, date time.Time) (*model.ClassroomEvent, error) {
	if _, err := s.ownedClassroom(ctx, p, classroomID); err != nil {
		return nil, err
	}

	e := &model.ClassroomEvent{
		ID:          uuid.New().String(),
		ClassroomID: classroomID,
		Title:       title,
		Description: description,
		Date:        date,
		CreatedBy:   p.ID,
	}
	if err := s.events.Add(ctx, e); err != nil {
		return nil, fmt.Errorf("add event: %w", err)
	}
	return e, nil
}

// Archive marks the classroom archived. Membership and files are left
// untouched; there is no unarchive operation.
func (s *ClassroomService) Archive(ctx context.Context, p Principal, classroomID string) error {
	if _, err := s.ownedClassroom(ctx, p, classroomID); err != nil {
		return err
	}
	if err := s.classrooms.Archive(ctx, classroomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes the classroom; its files and events go with it.
// Objects held by the storage provider are not deleted here.
func (s *ClassroomService) Delete(ctx context.Context, p Principal, classroomID string) error {
	if _, err := s.ownedClassroom(ctx, p, classroomID); err != nil {
		return err
	}
	if err := s.classrooms.Delete(ctx, classroomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// BackfillMissingCodes assigns join codes to classrooms lacking one.
// One-shot maintenance sweep for legacy records, not steady-state.
func (s *ClassroomService) BackfillMissingCodes(ctx context.Context) (int, error) {
	ids, err := s.classrooms.ListWithoutCode(ctx)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := s.classrooms.SetCode(ctx, id, NewJoinCode()); err != nil {
			return 0, fmt.Errorf("backfill code for %s: %w", id, err)
		}
	}
	return len(ids), nil
}

// NewJoinCode draws a fixed-length uppercase base-36 token. Uniqueness
// is the store's job; this is only a random draw.
func NewJoinCode() string {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back
		// to a UUID-derived code rather than returning an empty token.
		u := uuid.New().String()
		for i := range buf {
			buf[i] = u[i]
		}
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf)
}

// ownedClassroom loads the classroom and verifies the principal is its
// owning faculty member.
func (s *ClassroomService) ownedClassroom(ctx context.Context, p Principal, classroomID string) (*model.Classroom, error) {
	if p.Role != model.RoleFaculty {
		return nil, ErrForbidden
	}
	c, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if c.FacultyID != p.ID {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *ClassroomService) attachLists(ctx context.Context, c *model.Classroom) error {
	files, err := s.files.ListByClassroom(ctx, c.ID)
	if err != nil {
		return err
	}
	c.Files = files

	events, err := s.events.ListByClassroom(ctx, c.ID)
	if err != nil {
		return err
	}
	c.Events = events
	return nil
}
