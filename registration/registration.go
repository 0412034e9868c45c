package registration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Sentinel values written for the optional free-text fields when the form
// leaves them blank, matching what the office expects to see in the sheet.
const (
	DefaultAllergies = "Keine"
	DefaultRemark    = "-"
)

// Registration is one participant's validated submission. It is written to
// the camp's sheet as a single immutable row and never updated or deleted
// afterwards.
type Registration struct {
	ID             uuid.UUID
	CampName       string
	FirstName      string
	LastName       string
	Age            int
	EmergencyPhone string
	Email          string
	EarlyCare      EarlyCareOption
	Allergies      string
	Remark         string
	SubmittedAt    time.Time
}

type GetAllRegistrationsResponse struct {
	Data        []Registration
	Cursor      *string
	HasNextPage bool
}

type Repository interface {
	// AppendRegistration adds one row to the camp's sheet, creating the
	// sheet and its header lazily on first write.
	AppendRegistration(ctx context.Context, reg Registration) error

	// CountRegistrations returns the number of rows in the camp's sheet,
	// not counting the header. A camp with no sheet yet counts as zero.
	CountRegistrations(ctx context.Context, campName string) (int, error)

	GetAllRegistrationsForCamp(ctx context.Context, campName string, limit int32, cursor *string) (GetAllRegistrationsResponse, error)
}
