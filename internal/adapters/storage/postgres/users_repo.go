package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"petsoft/internal/domain/users"

	"github.com/jackc/pgx/v5/pgconn"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, hashed_password, has_access,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		u.ID,
		u.Email,
		u.HashedPassword,
		u.HasAccess,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// unique_violation sobre users.email
			return users.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	return r.getBy(ctx, "id", strings.TrimSpace(id))
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return r.getBy(ctx, "email", strings.TrimSpace(email))
}

func (r *UsersRepo) getBy(ctx context.Context, column, value string) (users.User, error) {
	if value == "" {
		return users.User{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, hashed_password, has_access, created_at, updated_at
		FROM users
		WHERE `+column+` = $1
	`, value)

	var u users.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.HashedPassword,
		&u.HasAccess,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, ErrNotFound
		}
		return users.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			email = $2,
			hashed_password = $3,
			has_access = $4,
			updated_at = $5
		WHERE id = $1
	`,
		u.ID,
		u.Email,
		u.HashedPassword,
		u.HasAccess,
		u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ users.Repository = (*UsersRepo)(nil)
