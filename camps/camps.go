package camps

import (
	"context"

	"github.com/Rhymond/go-money"
)

// Camp is one bookable offering. The reference data is maintained by the
// office staff and is read-only to the submission workflow; new camps show
// up here before anyone has registered for them.
type Camp struct {
	Name string

	// BasePrice is nil when the stored price string could not be parsed.
	// The pricing resolver quotes zero in that case.
	BasePrice *money.Money

	// Capacity is nil for camps without a participant limit.
	Capacity *int

	// ImageRef is an admin-entered image URL, Google Drive share link or
	// bare file name.
	ImageRef *string
}

// Full reports whether the camp cannot take another registration.
// Camps without a configured capacity are never full.
func (c Camp) Full(registered int) bool {
	if c.Capacity == nil {
		return false
	}
	return registered >= *c.Capacity
}

// Remaining returns the number of open spots, or nil for unlimited camps.
// It never goes below zero even if a camp ended up overbooked.
func (c Camp) Remaining(registered int) *int {
	if c.Capacity == nil {
		return nil
	}
	remaining := max(*c.Capacity-registered, 0)
	return &remaining
}

type GetCampsResponse struct {
	Data        []Camp
	Cursor      *string
	HasNextPage bool
}

type Repository interface {
	GetCamp(ctx context.Context, name string) (Camp, error)
	GetCamps(ctx context.Context, limit int32, cursor *string) (GetCampsResponse, error)
	CreateCamp(ctx context.Context, camp Camp) error
}
