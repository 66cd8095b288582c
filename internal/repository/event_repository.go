package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eswarnandha-a/sece-space/internal/model"
)

// EventRepository handles classroom calendar events. Events are
// append-only from the API surface.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Add inserts one event and fills its server-assigned timestamp. The
// inserted row itself is returned via e, never "the last list element",
// so a concurrent append cannot hand back someone else's event.
func (r *EventRepository) Add(ctx context.Context, e *model.ClassroomEvent) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO classroom_events (id, classroom_id, title, description, event_date, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		e.ID, e.ClassroomID, e.Title, e.Description, e.Date, e.CreatedBy,
	).Scan(&e.CreatedAt)
	return translate(err)
}

// ListByClassroom retrieves a classroom's events in calendar order.
func (r *EventRepository) ListByClassroom(ctx context.Context, classroomID string) ([]model.ClassroomEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, classroom_id, title, description, event_date, created_by, created_at
		 FROM classroom_events WHERE classroom_id = $1
		 ORDER BY event_date, created_at`, classroomID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	events := []model.ClassroomEvent{}
	for rows.Next() {
		var e model.ClassroomEvent
		if err := rows.Scan(&e.ID, &e.ClassroomID, &e.Title, &e.Description,
			&e.Date, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
