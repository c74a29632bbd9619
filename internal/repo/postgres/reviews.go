package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/hbnb/internal/domain/base"
	"github.com/geocoder89/hbnb/internal/domain/review"
	"github.com/geocoder89/hbnb/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewColumns = `id, user_id, place_id, text, rating, created_at, updated_at`

type ReviewsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewReviewsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ReviewsRepo {
	return &ReviewsRepo{pool: pool, prom: prom}
}

func scanReview(row pgx.Row) (review.Review, error) {
	var rv review.Review

	err := row.Scan(&rv.ID, &rv.UserID, &rv.PlaceID, &rv.Text, &rv.Rating, &rv.CreatedAt, &rv.UpdatedAt)

	return rv, err
}

func (r *ReviewsRepo) Create(ctx context.Context, rv review.Review) (review.Review, error) {
	rv.Ensure()

	err := r.prom.ObserveDB("reviews.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO reviews (`+reviewColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			rv.ID, rv.UserID, rv.PlaceID, rv.Text, rv.Rating, rv.CreatedAt, rv.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if _, ok := constraintViolation(err, codeUniqueViolation); ok {
			return review.Review{}, review.ErrDuplicateID
		}
		return review.Review{}, err
	}

	return rv, nil
}

func (r *ReviewsRepo) GetByID(ctx context.Context, id string) (review.Review, error) {
	var rv review.Review

	err := r.prom.ObserveDB("reviews.get_by_id", func() error {
		var e error
		rv, e = scanReview(r.pool.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
		if errors.Is(e, pgx.ErrNoRows) {
			return nil
		}
		return e
	})

	if err != nil {
		return review.Review{}, err
	}

	if rv.ID == "" {
		return review.Review{}, review.ErrNotFound
	}

	return rv, nil
}

func (r *ReviewsRepo) List(ctx context.Context) ([]review.Review, error) {
	return r.list(ctx, "reviews.list", `SELECT `+reviewColumns+` FROM reviews ORDER BY created_at ASC, id ASC`)
}

func (r *ReviewsRepo) ListByPlace(ctx context.Context, placeID string) ([]review.Review, error) {
	return r.list(ctx, "reviews.list_by_place",
		`SELECT `+reviewColumns+` FROM reviews WHERE place_id = $1 ORDER BY created_at ASC, id ASC`, placeID)
}

func (r *ReviewsRepo) ListByUser(ctx context.Context, userID string) ([]review.Review, error) {
	return r.list(ctx, "reviews.list_by_user",
		`SELECT `+reviewColumns+` FROM reviews WHERE user_id = $1 ORDER BY created_at ASC, id ASC`, userID)
}

func (r *ReviewsRepo) list(ctx context.Context, op, query string, args ...any) ([]review.Review, error) {
	var out []review.Review

	err := r.prom.ObserveDB(op, func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]review.Review, 0)
		for rows.Next() {
			rv, err := scanReview(rows)
			if err != nil {
				return err
			}
			out = append(out, rv)
		}

		return rows.Err()
	})

	return out, err
}

func (r *ReviewsRepo) Update(ctx context.Context, id string, patch review.Patch) (review.Review, error) {
	var rv review.Review
	notFound := false

	err := r.prom.ObserveDB("reviews.update", func() error {
		var e error
		rv, e = scanReview(r.pool.QueryRow(ctx,
			`UPDATE reviews
			SET text = COALESCE($2, text),
				rating = COALESCE($3, rating),
				updated_at = GREATEST($4, updated_at + INTERVAL '1 microsecond')
			WHERE id = $1
			RETURNING `+reviewColumns,
			id, patch.Text, patch.Rating, base.Now(),
		))
		if errors.Is(e, pgx.ErrNoRows) {
			notFound = true
			return nil
		}
		return e
	})

	if notFound {
		return review.Review{}, review.ErrNotFound
	}

	if err != nil {
		return review.Review{}, err
	}

	return rv, nil
}
