package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/hbnb/internal/domain/base"
	"github.com/geocoder89/hbnb/internal/domain/user"
	"github.com/geocoder89/hbnb/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, password_hash, first_name, last_name, is_admin, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	u.Ensure()

	err := r.prom.ObserveDB("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (`+userColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsAdmin, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if constraint, ok := constraintViolation(err, codeUniqueViolation); ok {
			if constraint == "users_email_key" {
				return user.User{}, user.ErrEmailTaken
			}
			return user.User{}, user.ErrDuplicateID
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UsersRepo) getOne(ctx context.Context, op, query string, arg string) (u user.User, err error) {
	err = r.prom.ObserveDB(op, func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx, query, arg))
		if errors.Is(e, pgx.ErrNoRows) {
			// a miss is not a database error
			return nil
		}
		return e
	})

	if err != nil {
		return user.User{}, err
	}

	if u.ID == "" {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.prom.ObserveDB("users.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]user.User, 0)
		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}

		return rows.Err()
	})

	return out, err
}

// Update applies the patch in a single statement so concurrent updates to the
// same row are serialized by postgres row locking.
func (r *UsersRepo) Update(ctx context.Context, id string, patch user.Patch) (user.User, error) {
	var u user.User
	notFound := false

	err := r.prom.ObserveDB("users.update", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
			SET email = COALESCE($2, email),
				password_hash = COALESCE($3, password_hash),
				first_name = COALESCE($4, first_name),
				last_name = COALESCE($5, last_name),
				is_admin = COALESCE($6, is_admin),
				updated_at = GREATEST($7, updated_at + INTERVAL '1 microsecond')
			WHERE id = $1
			RETURNING `+userColumns,
			id,
			patch.Email,
			patch.PasswordHash,
			patch.FirstName,
			patch.LastName,
			patch.IsAdmin,
			base.Now(),
		))
		if errors.Is(e, pgx.ErrNoRows) {
			notFound = true
			return nil
		}
		return e
	})

	if notFound {
		return user.User{}, user.ErrNotFound
	}

	if err != nil {
		if _, ok := constraintViolation(err, codeUniqueViolation); ok {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
