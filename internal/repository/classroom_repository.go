package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eswarnandha-a/sece-space/internal/model"
)

// ClassroomRepository handles classroom data access. Membership, files
// and events live in their own tables with independent inserts, so
// concurrent appends to one classroom never race through a
// read-modify-write of a single document.
type ClassroomRepository struct {
	pool *pgxpool.Pool
}

// NewClassroomRepository creates a new ClassroomRepository.
func NewClassroomRepository(pool *pgxpool.Pool) *ClassroomRepository {
	return &ClassroomRepository{pool: pool}
}

// Create inserts a new classroom. A join-code collision surfaces as
// ErrDuplicate from the unique index; there is no retry loop here.
func (r *ClassroomRepository) Create(ctx context.Context, c *model.Classroom) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO classrooms (id, code, name, branch, subject, cover_image, faculty_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		c.ID, c.Code, c.Name, c.Branch, c.Subject, c.CoverImage, c.FacultyID,
	).Scan(&c.CreatedAt)
	return translate(err)
}

// GetByID retrieves a classroom with members, files and events resolved.
func (r *ClassroomRepository) GetByID(ctx context.Context, id string) (*model.Classroom, error) {
	c, err := r.getOne(ctx, `WHERE c.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetByCode retrieves a classroom by its exact join code.
func (r *ClassroomRepository) GetByCode(ctx context.Context, code string) (*model.Classroom, error) {
	c, err := r.getOne(ctx, `WHERE c.code = $1`, code)
	if err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListByFaculty retrieves all classrooms owned by a faculty member,
// with faculty and student identities resolved for display.
func (r *ClassroomRepository) ListByFaculty(ctx context.Context, facultyID string) ([]model.Classroom, error) {
	return r.list(ctx,
		`SELECT c.id, COALESCE(c.code, ''), c.name, c.branch, c.subject, c.cover_image,
		        c.faculty_id, c.archived, c.created_at,
		        u.name, u.email, u.role, u.avatar_url
		 FROM classrooms c
		 JOIN users u ON u.id = c.faculty_id
		 WHERE c.faculty_id = $1
		 ORDER BY c.created_at DESC`, facultyID)
}

// ListByStudent retrieves all classrooms a student has joined.
func (r *ClassroomRepository) ListByStudent(ctx context.Context, studentID string) ([]model.Classroom, error) {
	return r.list(ctx,
		`SELECT c.id, COALESCE(c.code, ''), c.name, c.branch, c.subject, c.cover_image,
		        c.faculty_id, c.archived, c.created_at,
		        u.name, u.email, u.role, u.avatar_url
		 FROM classrooms c
		 JOIN users u ON u.id = c.faculty_id
		 JOIN classroom_students cs ON cs.classroom_id = c.id
		 WHERE cs.student_id = $1
		 ORDER BY c.created_at DESC`, studentID)
}

// AddStudent appends a student to a classroom's membership. A repeat
// join surfaces as ErrDuplicate from the composite primary key, which
// makes double-joins deterministic even under concurrent requests.
func (r *ClassroomRepository) AddStudent(ctx context.Context, classroomID, studentID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO classroom_students (classroom_id, student_id) VALUES ($1, $2)`,
		classroomID, studentID)
	return translate(err)
}

// Archive marks a classroom as archived.
func (r *ClassroomRepository) Archive(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE classrooms SET archived = TRUE WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a classroom. Membership, files and events cascade at
// the schema level; objects held by the storage provider do not.
func (r *ClassroomRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM classrooms WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListWithoutCode returns ids of classrooms lacking a non-empty code.
// Used by the one-shot backfill sweep, not steady-state operation.
func (r *ClassroomRepository) ListWithoutCode(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM classrooms WHERE code IS NULL OR code = ''`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetCode assigns a join code to a classroom.
func (r *ClassroomRepository) SetCode(ctx context.Context, id, code string) error {
	_, err := r.pool.Exec(ctx, `UPDATE classrooms SET code = $1 WHERE id = $2`, code, id)
	return translate(err)
}

// ────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ────────────────────────────────────────────────────────────────────────────

func (r *ClassroomRepository) getOne(ctx context.Context, where string, arg any) (*model.Classroom, error) {
	c := &model.Classroom{Faculty: &model.UserRef{}}
	query := fmt.Sprintf(
		`SELECT c.id, COALESCE(c.code, ''), c.name, c.branch, c.subject, c.cover_image,
		        c.faculty_id, c.archived, c.created_at,
		        u.name, u.email, u.role, u.avatar_url
		 FROM classrooms c
		 JOIN users u ON u.id = c.faculty_id
		 %s`, where)
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.Code, &c.Name, &c.Branch, &c.Subject, &c.CoverImage,
		&c.FacultyID, &c.Archived, &c.CreatedAt,
		&c.Faculty.Name, &c.Faculty.Email, &c.Faculty.Role, &c.Faculty.AvatarURL,
	)
	if err != nil {
		return nil, translate(err)
	}
	c.Faculty.ID = c.FacultyID
	return c, nil
}

func (r *ClassroomRepository) list(ctx context.Context, query string, arg any) ([]model.Classroom, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	classrooms := []model.Classroom{}
	for rows.Next() {
		c := model.Classroom{Faculty: &model.UserRef{}}
		if err := rows.Scan(
			&c.ID, &c.Code, &c.Name, &c.Branch, &c.Subject, &c.CoverImage,
			&c.FacultyID, &c.Archived, &c.CreatedAt,
			&c.Faculty.Name, &c.Faculty.Email, &c.Faculty.Role, &c.Faculty.AvatarURL,
		); err != nil {
			return nil, err
		}
		c.Faculty.ID = c.FacultyID
		c.Students = []model.UserRef{}
		c.Files = []model.ClassroomFile{}
		c.Events = []model.ClassroomEvent{}
		classrooms = append(classrooms, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range classrooms {
		students, err := r.listStudents(ctx, classrooms[i].ID)
		if err != nil {
			return nil, err
		}
		classrooms[i].Students = students
	}
	return classrooms, nil
}

// hydrate resolves student identities. Files and events are separate
// repositories; the service layer composes them onto the classroom.
func (r *ClassroomRepository) hydrate(ctx context.Context, c *model.Classroom) error {
	students, err := r.listStudents(ctx, c.ID)
	if err != nil {
		return err
	}
	c.Students = students
	c.Files = []model.ClassroomFile{}
	c.Events = []model.ClassroomEvent{}
	return nil
}

func (r *ClassroomRepository) listStudents(ctx context.Context, classroomID string) ([]model.UserRef, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, u.email, u.role, u.avatar_url
		 FROM classroom_students cs
		 JOIN users u ON u.id = cs.student_id
		 WHERE cs.classroom_id = $1
		 ORDER BY cs.joined_at`, classroomID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	students := []model.UserRef{}
	for rows.Next() {
		var s model.UserRef
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Role, &s.AvatarURL); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}
