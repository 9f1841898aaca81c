package gantt

import "time"

// 甘特图节点 id：项目用原 id，迭代与任务映射到互不重叠的负数区间
const (
	iterationBase int64 = -1000000
	taskBase      int64 = -2000000
)

// NodeKind 节点类型
type NodeKind int

const (
	NodeUnknown NodeKind = iota
	NodeProject
	NodeIteration
	NodeTask
)

func ProjectNode(id uint64) int64   { return int64(id) }
func IterationNode(id uint64) int64 { return iterationBase - int64(id) }
func TaskNode(id uint64) int64      { return taskBase - int64(id) }

// ParseNode 还原节点类型与数据库 id
func ParseNode(node int64) (NodeKind, uint64) {
	switch {
	case node > 0:
		return NodeProject, uint64(node)
	case node <= taskBase:
		return NodeTask, uint64(taskBase - node)
	case node <= iterationBase:
		return NodeIteration, uint64(iterationBase - node)
	}
	return NodeUnknown, 0
}

// TaskID 接口参数中的任务标识：正数为任务 id，负数按任务节点解析
func TaskID(ref int64) (uint64, bool) {
	if ref > 0 {
		return uint64(ref), true
	}
	kind, id := ParseNode(ref)
	if kind != NodeTask || id == 0 {
		return 0, false
	}
	return id, true
}

// DayNumber 自 1970-01-01 起的天数，只看日历日
func DayNumber(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// Days 含首尾两天的工期，任一端为空时为 0
func Days(start, end time.Time) int64 {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	return DayNumber(end) - DayNumber(start) + 1
}
