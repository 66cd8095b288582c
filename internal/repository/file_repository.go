package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eswarnandha-a/sece-space/internal/model"
)

// FileRepository handles classroom file references. The rows reference
// externally stored content; the bytes live with the storage provider.
type FileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository creates a new FileRepository.
func NewFileRepository(pool *pgxpool.Pool) *FileRepository {
	return &FileRepository{pool: pool}
}

// AddFiles appends all given entries inside a single transaction so the
// batch is atomic from the caller's perspective. Timestamps are filled
// from the database on return.
func (r *FileRepository) AddFiles(ctx context.Context, files []model.ClassroomFile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return translate(err)
	}
	defer tx.Rollback(ctx)

	for i := range files {
		f := &files[i]
		err := tx.QueryRow(ctx,
			`INSERT INTO classroom_files (id, classroom_id, name, url, kind, unit, description, object_id, uploaded_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING uploaded_at`,
			f.ID, f.ClassroomID, f.Name, f.URL, f.Kind, f.Unit, f.Description, f.ObjectID, f.UploadedBy,
		).Scan(&f.UploadedAt)
		if err != nil {
			return translate(err)
		}
	}
	return tx.Commit(ctx)
}

// ListByClassroom retrieves a classroom's files in append order.
func (r *FileRepository) ListByClassroom(ctx context.Context, classroomID string) ([]model.ClassroomFile, error) {
	return r.listFiles(ctx, classroomID, `ORDER BY uploaded_at, id`)
}

// ListByClassroomNewestFirst retrieves a classroom's files newest first,
// the order the resource listing endpoint serves.
func (r *FileRepository) ListByClassroomNewestFirst(ctx context.Context, classroomID string) ([]model.ClassroomFile, error) {
	return r.listFiles(ctx, classroomID, `ORDER BY uploaded_at DESC, id`)
}

// GetByID retrieves one file scoped to its classroom.
func (r *FileRepository) GetByID(ctx context.Context, classroomID, fileID string) (*model.ClassroomFile, error) {
	f := &model.ClassroomFile{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, classroom_id, name, url, kind, unit, description, object_id, uploaded_by, uploaded_at
		 FROM classroom_files WHERE classroom_id = $1 AND id = $2`,
		classroomID, fileID,
	).Scan(&f.ID, &f.ClassroomID, &f.Name, &f.URL, &f.Kind, &f.Unit,
		&f.Description, &f.ObjectID, &f.UploadedBy, &f.UploadedAt)
	if err != nil {
		return nil, translate(err)
	}
	return f, nil
}

// Delete removes one file row and returns the removed record, or
// ErrNotFound if no row matched. Callers decide whether a miss matters:
// the classroom endpoint treats it as a silent no-op.
func (r *FileRepository) Delete(ctx context.Context, fileID string) (*model.ClassroomFile, error) {
	f := &model.ClassroomFile{}
	err := r.pool.QueryRow(ctx,
		`DELETE FROM classroom_files WHERE id = $1
		 RETURNING id, classroom_id, name, url, kind, unit, description, object_id, uploaded_by, uploaded_at`,
		fileID,
	).Scan(&f.ID, &f.ClassroomID, &f.Name, &f.URL, &f.Kind, &f.Unit,
		&f.Description, &f.ObjectID, &f.UploadedBy, &f.UploadedAt)
	if err != nil {
		return nil, translate(err)
	}
	return f, nil
}

// DeleteFromClassroom removes one file scoped to a classroom. A missing
// id is not an error; removal of an absent entry leaves the list as-is.
func (r *FileRepository) DeleteFromClassroom(ctx context.Context, classroomID, fileID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM classroom_files WHERE classroom_id = $1 AND id = $2`,
		classroomID, fileID)
	return translate(err)
}

func (r *FileRepository) listFiles(ctx context.Context, classroomID, order string) ([]model.ClassroomFile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, classroom_id, name, url, kind, unit, description, object_id, uploaded_by, uploaded_at
		 FROM classroom_files WHERE classroom_id = $1 `+order, classroomID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	return scanFiles(rows)
}

func scanFiles(rows pgx.Rows) ([]model.ClassroomFile, error) {
	files := []model.ClassroomFile{}
	for rows.Next() {
		var f model.ClassroomFile
		if err := rows.Scan(&f.ID, &f.ClassroomID, &f.Name, &f.URL, &f.Kind, &f.Unit,
			&f.Description, &f.ObjectID, &f.UploadedBy, &f.UploadedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
