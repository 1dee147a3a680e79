package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/devcamper/internal/core/domain"
)

type fakeLocator struct {
	result  *domain.GeoResult
	current string // address currently stored on the bootcamp
	missing bool
	stored  *domain.Location
}

func (f *fakeLocator) Locate(_ context.Context, _ string) (*domain.GeoResult, error) {
	return f.result, nil
}

func (f *fakeLocator) ApplyLocation(_ context.Context, _ string, address string, res domain.GeoResult) (*domain.Location, error) {
	if f.missing {
		return nil, domain.NotFound("gone")
	}
	if address != f.current {
		return nil, nil
	}
	f.stored = domain.NewLocation(res)
	return f.stored, nil
}

func run(t *testing.T, loc *fakeLocator, in GeocodeInput) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterActivity(&GeocodeActivities{Bootcamps: loc})
	env.ExecuteWorkflow(GeocodeBootcampWorkflow, in)
	require.True(t, env.IsWorkflowCompleted())
	return env
}

func TestGeocodeWorkflow_StoresLocation(t *testing.T) {
	loc := &fakeLocator{
		result:  &domain.GeoResult{Latitude: 42.35, Longitude: -71.1, City: "Boston"},
		current: "Boston MA",
	}
	env := run(t, loc, GeocodeInput{BootcampID: "b1", Address: "Boston MA"})
	require.NoError(t, env.GetWorkflowError())

	var out GeocodeResult
	require.NoError(t, env.GetWorkflowResult(&out))
	assert.True(t, out.Stored)
	require.NotNil(t, out.Location)
	assert.Equal(t, []float64{-71.1, 42.35}, out.Location.Coordinates)
	assert.NotNil(t, loc.stored)
}

func TestGeocodeWorkflow_StaleAddressIsSkipped(t *testing.T) {
	loc := &fakeLocator{result: &domain.GeoResult{Latitude: 1, Longitude: 2}, current: "Somewhere else"}
	env := run(t, loc, GeocodeInput{BootcampID: "b1", Address: "Boston MA"})
	require.NoError(t, env.GetWorkflowError())

	var out GeocodeResult
	require.NoError(t, env.GetWorkflowResult(&out))
	assert.False(t, out.Stored)
	assert.Nil(t, loc.stored)
}

func TestGeocodeWorkflow_DeletedBootcamp(t *testing.T) {
	loc := &fakeLocator{result: &domain.GeoResult{Latitude: 1, Longitude: 2}, missing: true}
	env := run(t, loc, GeocodeInput{BootcampID: "b1", Address: "Boston MA"})
	require.NoError(t, env.GetWorkflowError())
}

func TestGeocodeWorkflow_NoCandidatesFailsWithoutRetry(t *testing.T) {
	env := run(t, &fakeLocator{}, GeocodeInput{BootcampID: "b1", Address: "nowhere"})

	err := env.GetWorkflowError()
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeNoCandidates, appErr.Type())
}
