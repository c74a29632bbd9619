package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/hbnb/internal/domain/amenity"
	"github.com/geocoder89/hbnb/internal/domain/base"
	"github.com/geocoder89/hbnb/internal/domain/place"
	"github.com/geocoder89/hbnb/internal/domain/user"
	"github.com/geocoder89/hbnb/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// amenity ids are aggregated in link order so both stores list them the same way
const placeSelect = `
	SELECT p.id, p.owner_id, p.name, p.description, p.price, p.created_at, p.updated_at,
		COALESCE(
			ARRAY_AGG(pa.amenity_id ORDER BY pa.created_at, pa.amenity_id) FILTER (WHERE pa.amenity_id IS NOT NULL),
			'{}'
		) AS amenity_ids
	FROM places p
	LEFT JOIN place_amenities pa ON pa.place_id = p.id`

type PlacesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPlacesRepo(pool *pgxpool.Pool, prom *observability.Prom) *PlacesRepo {
	return &PlacesRepo{pool: pool, prom: prom}
}

func scanPlace(row pgx.Row) (place.Place, error) {
	var p place.Place

	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt, &p.AmenityIDs)

	return p, err
}

func (r *PlacesRepo) Create(ctx context.Context, p place.Place) (place.Place, error) {
	p.Ensure()

	err := r.prom.ObserveDB("places.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO places (id, owner_id, name, description, price, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			p.ID, p.OwnerID, p.Name, p.Description, p.Price, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if _, ok := constraintViolation(err, codeUniqueViolation); ok {
			return place.Place{}, place.ErrDuplicateID
		}
		if _, ok := constraintViolation(err, codeForeignKeyViolation); ok {
			return place.Place{}, user.ErrNotFound
		}
		return place.Place{}, err
	}

	p.AmenityIDs = []string{}
	p.ReviewIDs = nil
	return p, nil
}

func (r *PlacesRepo) GetByID(ctx context.Context, id string) (place.Place, error) {
	var p place.Place

	err := r.prom.ObserveDB("places.get_by_id", func() error {
		var e error
		p, e = scanPlace(r.pool.QueryRow(ctx, placeSelect+` WHERE p.id = $1 GROUP BY p.id`, id))
		if errors.Is(e, pgx.ErrNoRows) {
			return nil
		}
		return e
	})

	if err != nil {
		return place.Place{}, err
	}

	if p.ID == "" {
		return place.Place{}, place.ErrNotFound
	}

	return p, nil
}

func (r *PlacesRepo) List(ctx context.Context) ([]place.Place, error) {
	var out []place.Place

	err := r.prom.ObserveDB("places.list", func() error {
		rows, err := r.pool.Query(ctx, placeSelect+` GROUP BY p.id ORDER BY p.created_at ASC, p.id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]place.Place, 0)
		for rows.Next() {
			p, err := scanPlace(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}

		return rows.Err()
	})

	return out, err
}

func (r *PlacesRepo) Update(ctx context.Context, id string, patch place.Patch) (place.Place, error) {
	var tag int64

	err := r.prom.ObserveDB("places.update", func() error {
		ct, err := r.pool.Exec(ctx,
			`UPDATE places
			SET name = COALESCE($2, name),
				description = COALESCE($3, description),
				price = COALESCE($4, price),
				updated_at = GREATEST($5, updated_at + INTERVAL '1 microsecond')
			WHERE id = $1`,
			id, patch.Name, patch.Description, patch.Price, base.Now(),
		)
		tag = ct.RowsAffected()
		return err
	})

	if err != nil {
		return place.Place{}, err
	}

	if tag == 0 {
		return place.Place{}, place.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// AddAmenity links an amenity once; a repeated link changes nothing.
func (r *PlacesRepo) AddAmenity(ctx context.Context, placeID, amenityID string) (place.Place, error) {
	err := r.prom.ObserveDB("places.add_amenity", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		ct, err := tx.Exec(ctx,
			`INSERT INTO place_amenities (place_id, amenity_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (place_id, amenity_id) DO NOTHING`,
			placeID, amenityID, base.Now(),
		)
		if err != nil {
			return err
		}

		if ct.RowsAffected() == 1 {
			_, err = tx.Exec(ctx,
				`UPDATE places SET updated_at = GREATEST($2, updated_at + INTERVAL '1 microsecond') WHERE id = $1`,
				placeID, base.Now(),
			)
			if err != nil {
				return err
			}
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		if constraint, ok := constraintViolation(err, codeForeignKeyViolation); ok {
			if constraint == "place_amenities_amenity_id_fkey" {
				return place.Place{}, amenity.ErrNotFound
			}
			return place.Place{}, place.ErrNotFound
		}
		return place.Place{}, err
	}

	return r.GetByID(ctx, placeID)
}
