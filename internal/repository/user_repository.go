package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eswarnandha-a/sece-space/internal/model"
)

// UserRepository maintains the principal mirror used for identity
// resolution on classroom projections. The external auth service owns
// the credentials; this table holds the display projection.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetRef retrieves a single identity projection.
func (r *UserRepository) GetRef(ctx context.Context, id string) (*model.UserRef, error) {
	u := &model.UserRef{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, role, avatar_url FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.AvatarURL)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// Upsert mirrors an externally authenticated principal. Name, email and
// role follow whatever the token carries; the avatar stays local.
func (r *UserRepository) Upsert(ctx context.Context, u *model.UserRef) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, role)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET name = $2, email = $3, role = $4`,
		u.ID, u.Name, u.Email, u.Role)
	return translate(err)
}

// SetAvatar stores the user's profile image URL.
func (r *UserRepository) SetAvatar(ctx context.Context, id, avatarURL string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET avatar_url = $1 WHERE id = $2`, avatarURL, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
