package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/devcamper/internal/core/domain"
)

// Locator is the part of the bootcamp service the activities drive.
type Locator interface {
	Locate(ctx context.Context, address string) (*domain.GeoResult, error)
	ApplyLocation(ctx context.Context, id, address string, res domain.GeoResult) (*domain.Location, error)
}

// GeocodeActivities holds the activity implementations for the geocode workflow.
type GeocodeActivities struct {
	Bootcamps Locator
}

// LookupAddress returns the best geocoder candidate for address.
func (a *GeocodeActivities) LookupAddress(ctx context.Context, address string) (domain.GeoResult, error) {
	res, err := a.Bootcamps.Locate(ctx, address)
	if err != nil {
		return domain.GeoResult{}, fmt.Errorf("lookup %q: %w", address, err)
	}
	if res == nil {
		return domain.GeoResult{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("no candidates for %q", address), ErrTypeNoCandidates, nil)
	}
	return *res, nil
}

// StoreLocation writes res onto the bootcamp. A deleted bootcamp ends the
// workflow without retries.
func (a *GeocodeActivities) StoreLocation(ctx context.Context, bootcampID, address string, res domain.GeoResult) (*domain.Location, error) {
	loc, err := a.Bootcamps.ApplyLocation(ctx, bootcampID, address, res)
	if errors.Is(err, domain.ErrNotFound) {
		activity.GetLogger(ctx).Warn("bootcamp gone before location stored", "bootcampID", bootcampID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store location of %s: %w", bootcampID, err)
	}
	return loc, nil
}
