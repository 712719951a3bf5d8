package warmer

import (
	"testing"
	"time"

	"github.com/ethpandaops/aerosense/internal/testutil"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQueue = "aerosense:warmer"

func newTestQueueManager(t *testing.T) *QueueManager {
	t.Helper()

	_, cfg := testutil.NewMiniredisConfig(t, "aerosense")

	opt, err := cfg.AsynqOptions()
	require.NoError(t, err)

	q := NewQueueManager(opt, testQueue, time.Minute)
	t.Cleanup(func() {
		_ = q.Close()
	})

	return q
}

func pendingIDs(t *testing.T, q *QueueManager) []string {
	t.Helper()

	tasks, err := q.inspector.ListPendingTasks(testQueue)
	require.NoError(t, err)

	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}

	return ids
}

func archivedCount(t *testing.T, q *QueueManager) int {
	t.Helper()

	tasks, err := q.inspector.ListArchivedTasks(testQueue)
	require.NoError(t, err)

	return len(tasks)
}

func TestQueueManager_DeduplicatesPendingTasks(t *testing.T) {
	q := newTestQueueManager(t)

	queued, err := q.IsTaskQueued(TypeWarmInstallations)
	require.NoError(t, err)
	assert.False(t, queued, "unknown queue is not an error")

	require.NoError(t, q.EnqueueInstallations())
	require.NoError(t, q.EnqueueInstallations())
	require.NoError(t, q.EnqueueNodes("ost-wt-tests"))
	require.NoError(t, q.EnqueueNodes("ost-wt-tests"))

	assert.ElementsMatch(t, []string{TypeWarmInstallations, "warm:nodes:ost-wt-tests"}, pendingIDs(t, q))

	queued, err = q.IsTaskQueued(TypeWarmInstallations)
	require.NoError(t, err)
	assert.True(t, queued)
}

func TestQueueManager_RequeuesArchivedTask(t *testing.T) {
	q := newTestQueueManager(t)

	require.NoError(t, q.EnqueueInstallations())
	require.NoError(t, q.inspector.ArchiveTask(testQueue, TypeWarmInstallations))

	info, err := q.inspector.GetTaskInfo(testQueue, TypeWarmInstallations)
	require.NoError(t, err)
	require.Equal(t, asynq.TaskStateArchived, info.State)

	require.NoError(t, q.EnqueueInstallations())

	assert.Equal(t, []string{TypeWarmInstallations}, pendingIDs(t, q))
	assert.Zero(t, archivedCount(t, q))
}

func TestQueueManager_PruneArchived(t *testing.T) {
	q := newTestQueueManager(t)

	pruned, err := q.PruneArchived()
	require.NoError(t, err)
	assert.Zero(t, pruned, "unknown queue has nothing to prune")

	for _, installation := range []string{"a", "b"} {
		require.NoError(t, q.EnqueueNodes(installation))
		require.NoError(t, q.inspector.ArchiveTask(testQueue, NodesPayload{Installation: installation}.UniqueID()))
	}
	require.NoError(t, q.EnqueueInstallations())

	pruned, err = q.PruneArchived()
	require.NoError(t, err)
	assert.Equal(t, 2, pruned)

	assert.Zero(t, archivedCount(t, q))
	assert.Equal(t, []string{TypeWarmInstallations}, pendingIDs(t, q), "pending tasks are kept")
}
