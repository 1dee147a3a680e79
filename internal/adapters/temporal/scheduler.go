// Package temporal starts durable workflows on a Temporal cluster.
package temporal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/devcamper/internal/workflows"
)

// workflowStarter is the part of client.Client the scheduler uses.
type workflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// Scheduler implements ports.GeocodeScheduler with a Temporal workflow per address change.
type Scheduler struct {
	client    workflowStarter
	taskQueue string
}

// NewScheduler creates a Scheduler on taskQueue.
func NewScheduler(c client.Client, taskQueue string) *Scheduler {
	if taskQueue == "" {
		taskQueue = workflows.TaskQueue
	}
	return &Scheduler{client: c, taskQueue: taskQueue}
}

// WorkflowID is stable for a bootcamp and address, so a retried update joins
// the running workflow instead of starting a second one.
func WorkflowID(bootcampID, address string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(address))))
	return "geocode-" + bootcampID + "-" + hex.EncodeToString(sum[:6])
}

// ScheduleGeocode starts GeocodeBootcampWorkflow for the new address.
func (s *Scheduler) ScheduleGeocode(ctx context.Context, bootcampID, address string) error {
	opts := client.StartWorkflowOptions{
		ID:        WorkflowID(bootcampID, address),
		TaskQueue: s.taskQueue,
	}
	_, err := s.client.ExecuteWorkflow(ctx, opts, workflows.GeocodeBootcampWorkflow, workflows.GeocodeInput{
		BootcampID: bootcampID,
		Address:    address,
	})
	if err != nil {
		return fmt.Errorf("start geocode workflow: %w", err)
	}
	return nil
}
