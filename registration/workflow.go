package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/bremer-sv/camp-registration/camps"
	"github.com/bremer-sv/camp-registration/pricing"
)

// Status is the caller-visible outcome of one submission.
type Status string

const (
	STATUS_COMPLETED Status = "COMPLETED"
	STATUS_REJECTED  Status = "REJECTED"
	STATUS_FAILED    Status = "FAILED"
)

// Result is what the presentation layer gets back from Submit. Persisted
// distinguishes "saved, but a confirmation mail failed" from a submission
// that never reached the store; the office follows up on the former by
// hand.
type Result struct {
	Status     Status
	Reason     string
	Persisted  bool
	TotalPrice *money.Money
}

// Workflow runs one submission end to end: validation, the capacity gate,
// pricing, the durable append, then the two confirmation mails in fixed
// order. Steps are strictly sequential and nothing is rolled back once the
// row is written.
type Workflow struct {
	camps    camps.Repository
	regs     Repository
	pricer   *pricing.Resolver
	notifier *Notifier
	logger   *slog.Logger
}

func NewWorkflow(campRepo camps.Repository, regRepo Repository, pricer *pricing.Resolver, notifier *Notifier, logger *slog.Logger) *Workflow {
	return &Workflow{
		camps:    campRepo,
		regs:     regRepo,
		pricer:   pricer,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit is the only entry point the core exposes to a presentation layer.
// The returned error, when non-nil, carries the underlying *Error for
// logging and status mapping; Result is always populated.
func (w *Workflow) Submit(ctx context.Context, form FormInput) (Result, error) {
	reg, err := NewRegistrationFromForm(form, time.Now())
	if err != nil {
		return Result{Status: STATUS_REJECTED, Reason: userReason(err)}, err
	}

	full, err := w.campIsFull(ctx, reg.CampName)
	if err != nil {
		return Result{Status: STATUS_FAILED, Reason: "Verfügbarkeit konnte nicht geprüft werden"}, err
	}
	if full {
		fullErr := NewCampFullError(reg.CampName)
		return Result{Status: STATUS_REJECTED, Reason: fullErr.Message}, fullErr
	}

	quote, err := w.pricer.Quote(ctx, reg.CampName, reg.EarlyCare.HasSurcharge())
	if err != nil {
		return Result{Status: STATUS_FAILED, Reason: "Preisermittlung fehlgeschlagen"},
			NewFailedToPriceError(fmt.Sprintf("Failed to price registration for camp %q", reg.CampName), err)
	}

	if err := w.regs.AppendRegistration(ctx, reg); err != nil {
		return Result{Status: STATUS_FAILED, Reason: "Anmeldung konnte nicht gespeichert werden"}, err
	}

	if err := w.notifier.SendParticipantConfirmation(ctx, reg, quote); err != nil {
		w.logger.ErrorContext(ctx, "participant confirmation failed after persist",
			slog.String("camp", reg.CampName), slog.String("email", reg.Email), slog.String("error", err.Error()))
		return Result{
			Status:     STATUS_FAILED,
			Reason:     "Anmeldung gespeichert, Bestätigungsmail konnte nicht gesendet werden",
			Persisted:  true,
			TotalPrice: quote.Total,
		}, err
	}

	if err := w.notifier.SendStaffAlert(ctx, reg, quote); err != nil {
		w.logger.ErrorContext(ctx, "staff alert failed after persist",
			slog.String("camp", reg.CampName), slog.String("error", err.Error()))
		return Result{
			Status:     STATUS_FAILED,
			Reason:     "Anmeldung gespeichert, interne Benachrichtigung konnte nicht gesendet werden",
			Persisted:  true,
			TotalPrice: quote.Total,
		}, err
	}

	return Result{Status: STATUS_COMPLETED, Persisted: true, TotalPrice: quote.Total}, nil
}

// campIsFull re-reads capacity and count on every submission, nothing is
// cached. Two submissions racing for the last spot can both pass the gate;
// that matches the sheet-backed behaviour this replaces and is accepted.
func (w *Workflow) campIsFull(ctx context.Context, campName string) (bool, error) {
	camp, err := w.camps.GetCamp(ctx, campName)
	if err != nil {
		var campErr *camps.Error
		if errors.As(err, &campErr) && campErr.Reason == camps.REASON_CAMP_DOES_NOT_EXIST {
			// No reference row yet means no capacity limit either.
			return false, nil
		}
		return false, NewFailedToFetchError(fmt.Sprintf("Failed to fetch camp %q for the capacity check", campName), err)
	}

	if camp.Capacity == nil {
		return false, nil
	}

	count, err := w.regs.CountRegistrations(ctx, campName)
	if err != nil {
		return false, NewFailedToFetchError(fmt.Sprintf("Failed to count registrations for camp %q", campName), err)
	}

	return camp.Full(count), nil
}

// userReason extracts the user-facing message from a validation error.
func userReason(err error) string {
	var regErr *Error
	if errors.As(err, &regErr) {
		return regErr.Message
	}
	return "Ungültige Eingabe"
}
