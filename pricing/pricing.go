package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Rhymond/go-money"
	"github.com/bremer-sv/camp-registration/camps"
)

// EarlyCareSurcharge is the flat fee added when early care from 08:00 is
// booked, independent of the camp.
var EarlyCareSurcharge = money.New(1500, money.EUR)

// Quote is the price breakdown for one registration. Total is always Base
// plus Surcharge, and Surcharge is non-zero exactly when early care was
// selected.
type Quote struct {
	Base      *money.Money
	Surcharge *money.Money
	Total     *money.Money
}

func (q Quote) HasSurcharge() bool {
	return q.Surcharge != nil && !q.Surcharge.IsZero()
}

type Resolver struct {
	camps  camps.Repository
	logger *slog.Logger
}

func NewResolver(campRepo camps.Repository, logger *slog.Logger) *Resolver {
	return &Resolver{
		camps:  campRepo,
		logger: logger,
	}
}

// Quote computes the fee for one registration to the named camp. A camp
// missing from the reference data, or one whose price row is unreadable,
// quotes a base fee of zero rather than failing; the sign-up sheet has
// always behaved that way and the office settles those manually.
func (r *Resolver) Quote(ctx context.Context, campName string, earlyCare bool) (Quote, error) {
	base := money.New(0, money.EUR)

	camp, err := r.camps.GetCamp(ctx, campName)
	if err != nil {
		var campErr *camps.Error
		if !errors.As(err, &campErr) || campErr.Reason != camps.REASON_CAMP_DOES_NOT_EXIST {
			return Quote{}, fmt.Errorf("failed to look up camp %q for pricing: %w", campName, err)
		}

		r.logger.WarnContext(ctx, "no price configured for camp, quoting zero", slog.String("camp", campName))
	} else if camp.BasePrice != nil {
		base = camp.BasePrice
	}

	surcharge := money.New(0, money.EUR)
	if earlyCare {
		surcharge = EarlyCareSurcharge
	}

	total, err := base.Add(surcharge)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to add early care surcharge for camp %q: %w", campName, err)
	}

	return Quote{
		Base:      base,
		Surcharge: surcharge,
		Total:     total,
	}, nil
}
