// Package gantt 维护任务依赖图并计算关键路径（CPM）。
// 时间单位由调用方决定（毫秒、天均可），同一张图内必须一致。
package gantt

import (
	"fmt"
	"slices"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/pkg/errors"
)

var (
	ErrDependencyCycle = errors.New("task dependency graph contains a cycle")
	ErrSelfLink        = errors.New("task link source and target must differ")
	ErrUnknownTask     = errors.New("task link references unknown task")
	ErrNegativeLength  = errors.New("task duration must not be negative")
)

// CycleError 依赖成环，Path 为环上的任务（首尾相同）
type CycleError struct {
	Path []uint64
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %v", ErrDependencyCycle.Error(), e.Path)
}

func (e *CycleError) Unwrap() error { return ErrDependencyCycle }

// Activity 参与排程的任务
type Activity struct {
	ID       uint64
	Start    int64 // 无前置依赖时的计划开始
	Duration int64
}

// Link 依赖边 Source -> Target
type Link struct {
	ID     uint64
	Source uint64
	Target uint64
	Type   enums.LinkType
	Lag    int64
}

type edge struct {
	to   uint64
	link Link
}

// Graph 有向依赖图
type Graph struct {
	activities map[uint64]Activity
	ids        []uint64
	succ       map[uint64][]edge
	pred       map[uint64][]edge
}

// NewGraph 校验并构建依赖图，不做环检测
func NewGraph(activities []Activity, links []Link) (*Graph, error) {
	g := &Graph{
		activities: make(map[uint64]Activity, len(activities)),
		succ:       make(map[uint64][]edge),
		pred:       make(map[uint64][]edge),
	}
	for _, a := range activities {
		if a.Duration < 0 {
			return nil, errors.Wrapf(ErrNegativeLength, "task %d", a.ID)
		}
		if _, ok := g.activities[a.ID]; !ok {
			g.ids = append(g.ids, a.ID)
		}
		g.activities[a.ID] = a
	}
	slices.Sort(g.ids)

	for _, l := range links {
		if err := g.addLink(l); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Graph) addLink(l Link) error {
	if l.Source == l.Target {
		return errors.Wrapf(ErrSelfLink, "task %d", l.Source)
	}
	if _, ok := g.activities[l.Source]; !ok {
		return errors.Wrapf(ErrUnknownTask, "source %d", l.Source)
	}
	if _, ok := g.activities[l.Target]; !ok {
		return errors.Wrapf(ErrUnknownTask, "target %d", l.Target)
	}
	if !l.Type.Valid() {
		return &enums.UnknownCodeError{Enum: "task link type", Code: int(l.Type)}
	}
	g.succ[l.Source] = append(g.succ[l.Source], edge{to: l.Target, link: l})
	g.pred[l.Target] = append(g.pred[l.Target], edge{to: l.Source, link: l})
	return nil
}

const (
	white = iota
	gray
	black
)

// DetectCycle DFS 三色标记，发现回边即返回 *CycleError
func (g *Graph) DetectCycle() error {
	color := make(map[uint64]int, len(g.ids))
	var stack []uint64

	var visit func(id uint64) error
	visit = func(id uint64) error {
		color[id] = gray
		stack = append(stack, id)
		for _, e := range g.sortedSucc(id) {
			switch color[e.to] {
			case gray:
				idx := slices.Index(stack, e.to)
				path := append(slices.Clone(stack[idx:]), e.to)
				return &CycleError{Path: path}
			case white:
				if err := visit(e.to); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return nil
	}

	for _, id := range g.ids {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// WouldCycle 判断新增 source -> target 是否会成环，即 target 已能到达 source
func (g *Graph) WouldCycle(source, target uint64) bool {
	if source == target {
		return true
	}
	visited := map[uint64]bool{}
	queue := []uint64{target}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == source {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, e := range g.succ[cur] {
			queue = append(queue, e.to)
		}
	}
	return false
}

func (g *Graph) sortedSucc(id uint64) []edge {
	edges := slices.Clone(g.succ[id])
	slices.SortFunc(edges, func(a, b edge) int {
		switch {
		case a.to < b.to:
			return -1
		case a.to > b.to:
			return 1
		}
		return 0
	})
	return edges
}

// topoOrder Kahn 算法，同层按 id 升序保证结果稳定
func (g *Graph) topoOrder() ([]uint64, error) {
	indegree := make(map[uint64]int, len(g.ids))
	for _, id := range g.ids {
		indegree[id] = len(g.pred[id])
	}
	var ready []uint64
	for _, id := range g.ids {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	order := make([]uint64, 0, len(g.ids))
	for len(ready) > 0 {
		slices.Sort(ready)
		cur := ready[0]
		ready = ready[1:]
		order = append(order, cur)
		for _, e := range g.succ[cur] {
			indegree[e.to]--
			if indegree[e.to] == 0 {
				ready = append(ready, e.to)
			}
		}
	}
	if len(order) != len(g.ids) {
		return nil, ErrDependencyCycle
	}
	return order, nil
}
