package temporal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/devcamper/internal/workflows"
)

type fakeStarter struct {
	opts client.StartWorkflowOptions
	args []interface{}
	err  error
}

func (f *fakeStarter) ExecuteWorkflow(_ context.Context, opts client.StartWorkflowOptions, _ interface{}, args ...interface{}) (client.WorkflowRun, error) {
	f.opts = opts
	f.args = args
	return nil, f.err
}

func TestScheduleGeocode(t *testing.T) {
	f := &fakeStarter{}
	s := &Scheduler{client: f, taskQueue: workflows.TaskQueue}

	require.NoError(t, s.ScheduleGeocode(context.Background(), "b1", "Boston MA"))
	assert.Equal(t, workflows.TaskQueue, f.opts.TaskQueue)
	assert.Equal(t, WorkflowID("b1", "Boston MA"), f.opts.ID)
	require.Len(t, f.args, 1)
	assert.Equal(t, workflows.GeocodeInput{BootcampID: "b1", Address: "Boston MA"}, f.args[0])

	f.err = errors.New("unavailable")
	assert.Error(t, s.ScheduleGeocode(context.Background(), "b1", "Boston MA"))
}

func TestWorkflowID(t *testing.T) {
	assert.Equal(t, WorkflowID("b1", "Boston MA"), WorkflowID("b1", "  boston ma "))
	assert.NotEqual(t, WorkflowID("b1", "Boston MA"), WorkflowID("b1", "Lowell MA"))
	assert.NotEqual(t, WorkflowID("b1", "Boston MA"), WorkflowID("b2", "Boston MA"))
}
