package warmer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethpandaops/aerosense/pkg/observability"
	"github.com/ethpandaops/aerosense/pkg/queries"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// ErrInstallationRequired is returned for a node task without an installation
var ErrInstallationRequired = errors.New("installation is required")

// Warmer refetches option lists into the cache
type Warmer interface {
	WarmInstallations(ctx context.Context) ([]queries.Installation, error)
	WarmNodes(ctx context.Context, installation string) ([]string, error)
}

// TaskHandler handles warmer tasks
type TaskHandler struct {
	warmer Warmer
	queue  Enqueuer
	log    logrus.FieldLogger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(log logrus.FieldLogger, warmer Warmer, queue Enqueuer) *TaskHandler {
	return &TaskHandler{
		warmer: warmer,
		queue:  queue,
		log:    log.WithField("component", "warmer-handler"),
	}
}

// Routes returns the handler of each task type
func (h *TaskHandler) Routes() map[string]asynq.HandlerFunc {
	return map[string]asynq.HandlerFunc{
		TypeWarmInstallations: h.HandleInstallations,
		TypeWarmNodes:         h.HandleNodes,
	}
}

// HandleInstallations refreshes installations and enqueues a node refresh for each
func (h *TaskHandler) HandleInstallations(ctx context.Context, _ *asynq.Task) error {
	installations, err := h.warmer.WarmInstallations(ctx)
	if err != nil {
		observability.RecordWarmerTask(TypeWarmInstallations, "error")
		return fmt.Errorf("failed to warm installations: %w", err)
	}

	var errs []error

	for _, installation := range installations {
		if err := h.queue.EnqueueNodes(installation.Reference); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		observability.RecordWarmerTask(TypeWarmInstallations, "error")
		return err
	}

	observability.RecordWarmerTask(TypeWarmInstallations, "success")

	h.log.WithField("installations", len(installations)).Debug("Warmed installations")

	return nil
}

// HandleNodes refreshes the nodes of one installation
func (h *TaskHandler) HandleNodes(ctx context.Context, t *asynq.Task) error {
	payload, err := decodeNodesPayload(t.Payload())
	if err != nil {
		observability.RecordWarmerTask(TypeWarmNodes, "invalid")
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	nodes, err := h.warmer.WarmNodes(ctx, payload.Installation)
	if err != nil {
		observability.RecordWarmerTask(TypeWarmNodes, "error")
		return fmt.Errorf("failed to warm nodes of %s: %w", payload.Installation, err)
	}

	observability.RecordWarmerTask(TypeWarmNodes, "success")

	h.log.WithFields(logrus.Fields{
		"installation": payload.Installation,
		"nodes":        len(nodes),
	}).Debug("Warmed nodes")

	return nil
}
