package observability

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ObserveDB times one repository operation such as "places.add_amenity".
// A nil *Prom just runs fn.
func (p *Prom) ObserveDB(op string, fn func() error) error {
	if p == nil {
		return fn()
	}

	start := time.Now()
	err := fn()

	status := "ok"
	if err != nil {
		status = "error"
		p.DbErrorsTotal.WithLabelValues(op, classifyDBErr(err)).Inc()
	}

	p.DbQueryDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

// classifyDBErr keeps the label set bounded: integrity errors are named after
// the constraint that fired, e.g. "unique:users_email_key" for a taken email
// or "foreign_key:reviews_place_id_fkey" for a review of a missing place.
func classifyDBErr(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		if pgconn.Timeout(err) {
			return "timeout"
		}
		return "connection"
	}

	switch pgErr.Code {
	case "23505":
		return "unique:" + pgErr.ConstraintName
	case "23503":
		return "foreign_key:" + pgErr.ConstraintName
	case "23514":
		return "check:" + pgErr.ConstraintName
	case "40001", "40P01":
		return "retryable"
	case "57014":
		return "canceled"
	default:
		return "pg_" + pgErr.Code
	}
}
