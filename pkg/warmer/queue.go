package warmer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

const archivePageSize = 100

// Enqueuer schedules warmer tasks
type Enqueuer interface {
	EnqueueInstallations() error
	EnqueueNodes(installation string) error
}

// QueueManager enqueues warmer tasks on a single queue. Task ids are fixed per
// task, so a finished or archived task is removed before its id is reused.
type QueueManager struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
	timeout   time.Duration
}

// NewQueueManager creates a new queue manager
func NewQueueManager(redisOpt *asynq.RedisClientOpt, queue string, timeout time.Duration) *QueueManager {
	return &QueueManager{
		client:    asynq.NewClient(*redisOpt),
		inspector: asynq.NewInspector(*redisOpt),
		queue:     queue,
		timeout:   timeout,
	}
}

// EnqueueInstallations enqueues an installation refresh unless one is pending
func (q *QueueManager) EnqueueInstallations() error {
	return q.enqueue(asynq.NewTask(TypeWarmInstallations, nil), TypeWarmInstallations)
}

// EnqueueNodes enqueues a node refresh for one installation unless one is pending
func (q *QueueManager) EnqueueNodes(installation string) error {
	payload := NodesPayload{Installation: installation}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return q.enqueue(asynq.NewTask(TypeWarmNodes, data), payload.UniqueID())
}

// IsTaskQueued reports whether the task with id is waiting or being processed
func (q *QueueManager) IsTaskQueued(id string) (bool, error) {
	info, err := q.taskInfo(id)
	if err != nil || info == nil {
		return false, err
	}

	return isQueued(info.State), nil
}

// PruneArchived deletes the tasks that ran out of retries and returns how many were removed
func (q *QueueManager) PruneArchived() (int, error) {
	archived, err := q.inspector.ListArchivedTasks(q.queue, asynq.PageSize(archivePageSize))
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}

		return 0, fmt.Errorf("failed to list archived tasks: %w", err)
	}

	var (
		deleted int
		errs    []error
	)

	for _, info := range archived {
		if err := q.inspector.DeleteTask(q.queue, info.ID); err != nil && !isNotFound(err) {
			errs = append(errs, fmt.Errorf("failed to delete archived task %s: %w", info.ID, err))
			continue
		}

		deleted++
	}

	return deleted, errors.Join(errs...)
}

func (q *QueueManager) enqueue(task *asynq.Task, id string) error {
	info, err := q.taskInfo(id)
	if err != nil {
		return err
	}

	if info != nil {
		if isQueued(info.State) {
			return nil
		}

		// Completed and archived tasks keep their id until deleted
		if err := q.inspector.DeleteTask(q.queue, id); err != nil && !isNotFound(err) {
			return fmt.Errorf("failed to release task id %s: %w", id, err)
		}
	}

	_, err = q.client.Enqueue(task,
		asynq.TaskID(id),
		asynq.Queue(q.queue),
		asynq.MaxRetry(3),
		asynq.Timeout(q.timeout),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}

	return nil
}

// taskInfo returns nil when the task or its queue does not exist
func (q *QueueManager) taskInfo(id string) (*asynq.TaskInfo, error) {
	info, err := q.inspector.GetTaskInfo(q.queue, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to inspect task %s: %w", id, err)
	}

	return info, nil
}

// Close closes the underlying client and inspector
func (q *QueueManager) Close() error {
	return errors.Join(q.client.Close(), q.inspector.Close())
}

func isQueued(state asynq.TaskState) bool {
	switch state {
	case asynq.TaskStatePending, asynq.TaskStateActive, asynq.TaskStateRetry, asynq.TaskStateScheduled, asynq.TaskStateAggregating:
		return true
	default:
		return false
	}
}

func isNotFound(err error) bool {
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
