package gantt

import (
	"math/rand"
	"testing"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	taskA uint64 = 1
	taskB uint64 = 2
	taskC uint64 = 3
)

func mustGraph(t *testing.T, activities []Activity, links []Link) *Graph {
	t.Helper()
	g, err := NewGraph(activities, links)
	require.NoError(t, err)
	return g
}

func TestCriticalPathSingleChain(t *testing.T) {
	g := mustGraph(t,
		[]Activity{
			{ID: taskA, Start: 0, Duration: 3},
			{ID: taskB, Start: 0, Duration: 2},
			{ID: taskC, Start: 0, Duration: 1},
		},
		[]Link{
			{ID: 10, Source: taskA, Target: taskB, Type: enums.LinkEndToStart, Lag: 0},
			{ID: 11, Source: taskB, Target: taskC, Type: enums.LinkEndToStart, Lag: 1},
		},
	)

	res, err := g.CriticalPath()
	require.NoError(t, err)

	a, b, c := res.Tasks[taskA], res.Tasks[taskB], res.Tasks[taskC]
	assert.Equal(t, int64(3), a.EarliestFinish)
	assert.Equal(t, int64(3), b.EarliestStart)
	assert.Equal(t, int64(5), b.EarliestFinish)
	assert.Equal(t, int64(6), c.EarliestStart)
	assert.Equal(t, int64(7), c.EarliestFinish)
	assert.Equal(t, int64(7), res.Duration)
	for _, s := range []*Schedule{a, b, c} {
		assert.Zero(t, s.Slack, "task %d", s.ID)
		assert.True(t, s.Critical)
	}
	assert.Equal(t, []uint64{taskA, taskB, taskC}, res.CriticalPath)
}

func TestCriticalPathTakesBindingPredecessor(t *testing.T) {
	g := mustGraph(t,
		[]Activity{
			{ID: taskA, Start: 0, Duration: 3},
			{ID: taskB, Start: 0, Duration: 1},
			{ID: taskC, Start: 0, Duration: 2},
		},
		[]Link{
			{Source: taskA, Target: taskC, Type: enums.LinkEndToStart},
			{Source: taskB, Target: taskC, Type: enums.LinkEndToStart},
		},
	)

	res, err := g.CriticalPath()
	require.NoError(t, err)

	assert.Equal(t, int64(3), res.Tasks[taskC].EarliestStart)
	assert.Equal(t, int64(5), res.ProjectEnd)
	assert.Equal(t, int64(2), res.Tasks[taskB].Slack)
	assert.False(t, res.Tasks[taskB].Critical)
	assert.Equal(t, []uint64{taskA, taskC}, res.CriticalPath)
}

func TestCriticalPathNoPredecessorUsesPlanStart(t *testing.T) {
	g := mustGraph(t, []Activity{
		{ID: taskA, Start: 5, Duration: 2},
		{ID: taskB, Start: 1, Duration: 10},
	}, nil)

	res, err := g.CriticalPath()
	require.NoError(t, err)

	assert.Equal(t, int64(5), res.Tasks[taskA].EarliestStart)
	assert.Equal(t, int64(1), res.ProjectStart)
	assert.Equal(t, int64(11), res.ProjectEnd)
	assert.Equal(t, int64(10), res.Duration)
	assert.Equal(t, int64(4), res.Tasks[taskA].Slack)
	assert.Zero(t, res.Tasks[taskB].Slack)
}

func TestCriticalPathLinkTypes(t *testing.T) {
	tests := []struct {
		name      string
		link      enums.LinkType
		lag       int64
		wantES    int64
		wantSlack int64
	}{
		{"start_to_start", enums.LinkStartToStart, 1, 1, 1},
		{"end_to_end", enums.LinkEndToEnd, 0, 2, 0},
		{"start_to_end", enums.LinkStartToEnd, 3, 1, 1},
		{"end_to_start", enums.LinkEndToStart, 0, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGraph(t,
				[]Activity{{ID: taskA, Start: 0, Duration: 4}, {ID: taskB, Start: 0, Duration: 2}},
				[]Link{{Source: taskA, Target: taskB, Type: tt.link, Lag: tt.lag}},
			)
			res, err := g.CriticalPath()
			require.NoError(t, err)
			assert.Equal(t, tt.wantES, res.Tasks[taskB].EarliestStart)
			assert.Equal(t, tt.wantSlack, res.Tasks[taskB].Slack)
			assert.Zero(t, res.Tasks[taskA].Slack)
		})
	}
}

func TestCriticalPathCycleFailsFast(t *testing.T) {
	g := mustGraph(t,
		[]Activity{{ID: taskA, Duration: 1}, {ID: taskB, Duration: 1}, {ID: taskC, Duration: 1}},
		[]Link{
			{Source: taskA, Target: taskB},
			{Source: taskB, Target: taskC},
			{Source: taskC, Target: taskA},
		},
	)

	res, err := g.CriticalPath()
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDependencyCycle))

	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, []uint64{taskA, taskB, taskC, taskA}, cycle.Path)
}

func TestNewGraphRejectsInvalidLinks(t *testing.T) {
	acts := []Activity{{ID: taskA, Duration: 1}, {ID: taskB, Duration: 1}}

	_, err := NewGraph(acts, []Link{{Source: taskA, Target: taskA}})
	assert.True(t, errors.Is(err, ErrSelfLink))

	_, err = NewGraph(acts, []Link{{Source: taskA, Target: 99}})
	assert.True(t, errors.Is(err, ErrUnknownTask))

	_, err = NewGraph(acts, []Link{{Source: taskA, Target: taskB, Type: enums.LinkType(9)}})
	var unknown *enums.UnknownCodeError
	assert.True(t, errors.As(err, &unknown))

	_, err = NewGraph([]Activity{{ID: taskA, Duration: -1}}, nil)
	assert.True(t, errors.Is(err, ErrNegativeLength))
}

func TestWouldCycle(t *testing.T) {
	g := mustGraph(t,
		[]Activity{{ID: taskA, Duration: 1}, {ID: taskB, Duration: 1}, {ID: taskC, Duration: 1}},
		[]Link{{Source: taskA, Target: taskB}, {Source: taskB, Target: taskC}},
	)
	assert.True(t, g.WouldCycle(taskC, taskA))
	assert.True(t, g.WouldCycle(taskB, taskB))
	assert.False(t, g.WouldCycle(taskA, taskC))
}

func TestCriticalPathSlackNeverNegative(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		n := 2 + r.Intn(12)
		acts := make([]Activity, n)
		for i := range acts {
			acts[i] = Activity{ID: uint64(i + 1), Start: int64(r.Intn(5)), Duration: int64(r.Intn(6))}
		}
		var links []Link
		for i := 1; i <= n; i++ {
			for j := i + 1; j <= n; j++ {
				if r.Intn(3) == 0 {
					links = append(links, Link{
						Source: uint64(i),
						Target: uint64(j),
						Type:   enums.LinkType(r.Intn(4)),
						Lag:    int64(r.Intn(4)),
					})
				}
			}
		}

		g := mustGraph(t, acts, links)
		res, err := g.CriticalPath()
		require.NoError(t, err)

		zero := 0
		for _, s := range res.Tasks {
			assert.GreaterOrEqual(t, s.Slack, int64(0), "round %d task %d", round, s.ID)
			if s.Slack == 0 {
				zero++
			}
		}
		assert.Positive(t, zero, "round %d", round)
	}
}
