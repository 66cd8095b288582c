package service

import (
	"context"

	"github.com/eswarnandha-a/sece-space/internal/model"
)

// Store interfaces consumed by the services. The pgx repositories
// satisfy them; tests substitute in-memory fakes.

// ClassroomStore persists classrooms and membership.
type ClassroomStore interface {
	Create(ctx context.Context, c *model.Classroom) error
	GetByID(ctx context.Context, id string) (*model.Classroom, error)
	GetByCode(ctx context.Context, code string) (*model.Classroom, error)
	ListByFaculty(ctx context.Context, facultyID string) ([]model.Classroom, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Classroom, error)
	AddStudent(ctx context.Context, classroomID, studentID string) error
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ListWithoutCode(ctx context.Context) ([]string, error)
	SetCode(ctx context.Context, id, code string) error
}

// FileStore persists classroom file references.
type FileStore interface {
	AddFiles(ctx context.Context, files []model.ClassroomFile) error
	ListByClassroom(ctx context.Context, classroomID string) ([]model.ClassroomFile, error)
	ListByClassroomNewestFirst(ctx context.Context, classroomID string) ([]model.ClassroomFile, error)
	GetByID(ctx context.Context, classroomID, fileID string) (*model.ClassroomFile, error)
	Delete(ctx context.Context, fileID string) (*model.ClassroomFile, error)
	DeleteFromClassroom(ctx context.Context, classroomID, fileID string) error
}

// EventStore persists classroom calendar events.
type EventStore interface {
	Add(ctx context.Context, e *model.ClassroomEvent) error
	ListByClassroom(ctx context.Context, classroomID string) ([]model.ClassroomEvent, error)
}
