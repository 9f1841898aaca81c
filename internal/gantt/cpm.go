package gantt

import (
	"math"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
)

// Schedule 单个任务的排程结果
type Schedule struct {
	ID             uint64 `json:"id"`
	EarliestStart  int64  `json:"earliest_start"`
	EarliestFinish int64  `json:"earliest_finish"`
	LatestStart    int64  `json:"latest_start"`
	LatestFinish   int64  `json:"latest_finish"`
	Slack          int64  `json:"slack"`
	Critical       bool   `json:"critical"`
}

// Result 关键路径计算结果
type Result struct {
	Tasks        map[uint64]*Schedule
	Order        []uint64 // 拓扑序
	ProjectStart int64
	ProjectEnd   int64
	Duration     int64
	CriticalPath []uint64 // 拓扑序下的关键任务
}

// CriticalPath 正向、反向两遍计算 ES/EF/LS/LF 与总时差。
// 图中有环时返回 *CycleError。
func (g *Graph) CriticalPath() (*Result, error) {
	if err := g.DetectCycle(); err != nil {
		return nil, err
	}
	order, err := g.topoOrder()
	if err != nil {
		return nil, err
	}

	res := &Result{Tasks: make(map[uint64]*Schedule, len(order)), Order: order}
	if len(order) == 0 {
		return res, nil
	}

	// 正向：ES 取所有前置约束的最大值，无前置时取计划开始
	res.ProjectStart = math.MaxInt64
	res.ProjectEnd = math.MinInt64
	for _, id := range order {
		a := g.activities[id]
		s := &Schedule{ID: id}
		if preds := g.pred[id]; len(preds) == 0 {
			s.EarliestStart = a.Start
		} else {
			s.EarliestStart = math.MinInt64
			for _, e := range preds {
				p := res.Tasks[e.to]
				if c := forwardConstraint(e.link, p, a.Duration); c > s.EarliestStart {
					s.EarliestStart = c
				}
			}
		}
		s.EarliestFinish = s.EarliestStart + a.Duration
		res.Tasks[id] = s
		res.ProjectStart = min(res.ProjectStart, s.EarliestStart)
		res.ProjectEnd = max(res.ProjectEnd, s.EarliestFinish)
	}
	res.Duration = res.ProjectEnd - res.ProjectStart

	// 反向：LF 取项目结束与所有后继约束的最小值
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		a := g.activities[id]
		s := res.Tasks[id]
		s.LatestFinish = res.ProjectEnd
		for _, e := range g.succ[id] {
			if c := backwardConstraint(e.link, res.Tasks[e.to], a.Duration); c < s.LatestFinish {
				s.LatestFinish = c
			}
		}
		s.LatestStart = s.LatestFinish - a.Duration
		s.Slack = s.LatestStart - s.EarliestStart
		s.Critical = s.Slack == 0
	}

	for _, id := range order {
		if res.Tasks[id].Critical {
			res.CriticalPath = append(res.CriticalPath, id)
		}
	}
	return res, nil
}

// forwardConstraint 前置任务 pred 对后继 ES 的下限
func forwardConstraint(l Link, pred *Schedule, duration int64) int64 {
	switch l.Type {
	case enums.LinkStartToStart:
		return pred.EarliestStart + l.Lag
	case enums.LinkEndToEnd:
		return pred.EarliestFinish + l.Lag - duration
	case enums.LinkStartToEnd:
		return pred.EarliestStart + l.Lag - duration
	default:
		return pred.EarliestFinish + l.Lag
	}
}

// backwardConstraint 后继任务 succ 对前置 LF 的上限
func backwardConstraint(l Link, succ *Schedule, duration int64) int64 {
	switch l.Type {
	case enums.LinkStartToStart:
		return succ.LatestStart - l.Lag + duration
	case enums.LinkEndToEnd:
		return succ.LatestFinish - l.Lag
	case enums.LinkStartToEnd:
		return succ.LatestFinish - l.Lag + duration
	default:
		return succ.LatestStart - l.Lag
	}
}
