package gantt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNodeIDsRoundTrip(t *testing.T) {
	assert.Equal(t, int64(-1000003), IterationNode(3))
	assert.Equal(t, int64(-2000007), TaskNode(7))

	kind, id := ParseNode(TaskNode(7))
	assert.Equal(t, NodeTask, kind)
	assert.Equal(t, uint64(7), id)

	kind, id = ParseNode(IterationNode(3))
	assert.Equal(t, NodeIteration, kind)
	assert.Equal(t, uint64(3), id)

	kind, id = ParseNode(ProjectNode(2))
	assert.Equal(t, NodeProject, kind)
	assert.Equal(t, uint64(2), id)

	kind, _ = ParseNode(-5)
	assert.Equal(t, NodeUnknown, kind)
}

func TestTaskID(t *testing.T) {
	id, ok := TaskID(42)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)

	id, ok = TaskID(TaskNode(9))
	assert.True(t, ok)
	assert.Equal(t, uint64(9), id)

	_, ok = TaskID(IterationNode(9))
	assert.False(t, ok)
	_, ok = TaskID(-2000000)
	assert.False(t, ok)
	_, ok = TaskID(0)
	assert.False(t, ok)
}

func TestDays(t *testing.T) {
	start := time.Date(2024, 2, 27, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	assert.Equal(t, int64(4), Days(start, end), "leap year, both ends included")
	assert.Equal(t, int64(1), Days(start, start))
	assert.Zero(t, Days(time.Time{}, end))
}
