package base

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Entity carries the identity and timestamps shared by every record.
// ID never changes once assigned and UpdatedAt never goes below CreatedAt.
type Entity struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Timestamps are kept at microsecond precision so values survive a round trip
// through postgres timestamptz unchanged.
const precision = time.Microsecond

func Now() time.Time {
	return time.Now().UTC().Truncate(precision)
}

func NewID() string {
	return uuid.NewString()
}

// New returns an entity with a fresh id and both timestamps set to now.
func New() Entity {
	now := Now()

	return Entity{
		ID:        NewID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Ensure fills in whatever identity fields are missing, keeping a caller supplied id.
func (e *Entity) Ensure() {
	if e.ID == "" {
		e.ID = NewID()
	}

	now := Now()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}

	if e.UpdatedAt.IsZero() || e.UpdatedAt.Before(e.CreatedAt) {
		e.UpdatedAt = e.CreatedAt
	}
}

// Touch refreshes UpdatedAt. The new value is always strictly later than the old one.
func (e *Entity) Touch() {
	e.UpdatedAt = NextUpdatedAt(e.UpdatedAt)
}

func NextUpdatedAt(prev time.Time) time.Time {
	now := Now()

	floor := prev.Add(precision)
	if now.Before(floor) {
		return floor
	}

	return now
}

// Response is the serialized form of the shared fields.
type Response struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Version identifies this state of the entity. UpdatedAt strictly increases on
// every write, so two different states never share a version.
func (r Response) Version() string {
	return r.ID + "." + strconv.FormatInt(r.UpdatedAt.UnixMicro(), 36)
}

func (e Entity) Response() Response {
	return Response{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
