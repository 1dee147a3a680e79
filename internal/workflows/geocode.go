package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/devcamper/internal/core/domain"
)

// TaskQueue is the default queue the geocode worker listens on.
const TaskQueue = "geocode-queue"

// Activity names registered by the worker.
const (
	ActivityLookupAddress = "LookupAddress"
	ActivityStoreLocation = "StoreLocation"
)

// ErrTypeNoCandidates marks an address the provider cannot resolve. It is not retried.
const ErrTypeNoCandidates = "NoCandidates"

// GeocodeInput is the input for the geocode workflow.
type GeocodeInput struct {
	BootcampID string
	Address    string
}

// GeocodeResult reports what the workflow stored.
type GeocodeResult struct {
	Stored   bool
	Location *domain.Location
}

// GeocodeBootcampWorkflow resolves a bootcamp's new address and stores the
// location. The lookup is retried with backoff against provider outages; the
// store step skips bootcamps whose address changed again in the meantime.
func GeocodeBootcampWorkflow(ctx workflow.Context, input GeocodeInput) (GeocodeResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting geocode workflow", "bootcampID", input.BootcampID)

	lookupCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        2 * time.Second,
			BackoffCoefficient:     2,
			MaximumInterval:        time.Minute,
			MaximumAttempts:        6,
			NonRetryableErrorTypes: []string{ErrTypeNoCandidates},
		},
	})

	var res domain.GeoResult
	if err := workflow.ExecuteActivity(lookupCtx, ActivityLookupAddress, input.Address).Get(ctx, &res); err != nil {
		return GeocodeResult{}, err
	}

	storeCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})

	var loc *domain.Location
	if err := workflow.ExecuteActivity(storeCtx, ActivityStoreLocation, input.BootcampID, input.Address, res).Get(ctx, &loc); err != nil {
		return GeocodeResult{}, err
	}

	logger.Info("Geocode workflow finished", "bootcampID", input.BootcampID, "stored", loc != nil)
	return GeocodeResult{Stored: loc != nil, Location: loc}, nil
}
