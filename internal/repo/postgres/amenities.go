package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/hbnb/internal/domain/amenity"
	"github.com/geocoder89/hbnb/internal/domain/base"
	"github.com/geocoder89/hbnb/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AmenitiesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAmenitiesRepo(pool *pgxpool.Pool, prom *observability.Prom) *AmenitiesRepo {
	return &AmenitiesRepo{pool: pool, prom: prom}
}

func scanAmenity(row pgx.Row) (amenity.Amenity, error) {
	var a amenity.Amenity
	err := row.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *AmenitiesRepo) Create(ctx context.Context, a amenity.Amenity) (amenity.Amenity, error) {
	a.Ensure()

	err := r.prom.ObserveDB("amenities.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO amenities (id, name, created_at, updated_at) VALUES ($1,$2,$3,$4)`,
			a.ID, a.Name, a.CreatedAt, a.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if _, ok := constraintViolation(err, codeUniqueViolation); ok {
			return amenity.Amenity{}, amenity.ErrDuplicateID
		}
		return amenity.Amenity{}, err
	}

	return a, nil
}

func (r *AmenitiesRepo) GetByID(ctx context.Context, id string) (amenity.Amenity, error) {
	var a amenity.Amenity

	err := r.prom.ObserveDB("amenities.get_by_id", func() error {
		var e error
		a, e = scanAmenity(r.pool.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM amenities WHERE id = $1`, id))
		if errors.Is(e, pgx.ErrNoRows) {
			return nil
		}
		return e
	})

	if err != nil {
		return amenity.Amenity{}, err
	}

	if a.ID == "" {
		return amenity.Amenity{}, amenity.ErrNotFound
	}

	return a, nil
}

func (r *AmenitiesRepo) List(ctx context.Context) ([]amenity.Amenity, error) {
	var out []amenity.Amenity

	err := r.prom.ObserveDB("amenities.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM amenities ORDER BY created_at ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]amenity.Amenity, 0)
		for rows.Next() {
			a, err := scanAmenity(rows)
			if err != nil {
				return err
			}
			out = append(out, a)
		}

		return rows.Err()
	})

	return out, err
}

func (r *AmenitiesRepo) Update(ctx context.Context, id string, patch amenity.Patch) (amenity.Amenity, error) {
	var a amenity.Amenity
	notFound := false

	err := r.prom.ObserveDB("amenities.update", func() error {
		var e error
		a, e = scanAmenity(r.pool.QueryRow(ctx,
			`UPDATE amenities
			SET name = COALESCE($2, name),
				updated_at = GREATEST($3, updated_at + INTERVAL '1 microsecond')
			WHERE id = $1
			RETURNING id, name, created_at, updated_at`,
			id, patch.Name, base.Now(),
		))
		if errors.Is(e, pgx.ErrNoRows) {
			notFound = true
			return nil
		}
		return e
	})

	if notFound {
		return amenity.Amenity{}, amenity.ErrNotFound
	}

	if err != nil {
		return amenity.Amenity{}, err
	}

	return a, nil
}
