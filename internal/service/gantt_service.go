package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/domain/types"
	"github.com/ayxworxfr/gsms/internal/domain/vo"
	"github.com/ayxworxfr/gsms/internal/gantt"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type TaskLister interface {
	Get(ctx context.Context, id uint64) (*models.Task, error)
	ListByProject(ctx context.Context, projectID uint64) ([]models.Task, error)
}

type IterationLister interface {
	ListByProject(ctx context.Context, projectID uint64) ([]models.Iteration, error)
}

type TaskLinkStore interface {
	Get(ctx context.Context, id uint64) (*models.TaskLink, error)
	Create(ctx context.Context, m *models.TaskLink) error
	Delete(ctx context.Context, id uint64) error
	ListByProject(ctx context.Context, projectID uint64) ([]models.TaskLink, error)
	Exists(ctx context.Context, source, target uint64) (bool, error)
}

const (
	ganttProject   = "project"
	ganttIteration = "iteration"
	ganttTask      = "task"
)

// GanttService 甘特图数据与依赖维护，日期、父级调整复用 TaskService
type GanttService struct {
	projects   ProjectReader
	iterations IterationLister
	tasks      TaskLister
	links      TaskLinkStore
	auth       Authorizer
	audit      Auditor
	names      NameLookup
}

func NewGanttService(projects ProjectReader, iterations IterationLister, tasks TaskLister, links TaskLinkStore,
	auth Authorizer, audit Auditor, names NameLookup) *GanttService {
	return &GanttService{
		projects:   projects,
		iterations: iterations,
		tasks:      tasks,
		links:      links,
		auth:       auth,
		audit:      audit,
		names:      names,
	}
}

// requireTaskScope 项目必须在任务可见范围内
func (s *GanttService) requireTaskScope(ctx context.Context, projectID uint64) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}
	scope, err := s.auth.TaskScope(ctx, user.UserID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "resolve task scope")
	}
	if !scope.Contains(projectID) {
		return errcode.ProjectAccessDenied
	}
	return nil
}

// Project 项目 -> 迭代 -> 顶层任务 -> 子任务，附带依赖与关键路径
func (s *GanttService) Project(ctx context.Context, req *params.GanttRequest) (*vo.Gantt, error) {
	if err := s.requireTaskScope(ctx, req.ProjectID); err != nil {
		return nil, err
	}
	from, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	to, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.Get(ctx, req.ProjectID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get project")
	}
	if project == nil {
		return nil, errcode.ProjectNotFound
	}
	iterations, err := s.iterations.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list iterations")
	}
	tasks, err := s.tasks.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list project tasks")
	}
	tasks = lo.Filter(tasks, func(t models.Task, _ int) bool { return overlaps(t.StartDate, t.DueDate, from, to) })
	links, err := s.links.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list task links")
	}

	out := &vo.Gantt{Data: make([]*vo.GanttItem, 0, 1+len(iterations)+len(tasks))}
	out.Data = append(out.Data, &vo.GanttItem{
		ID:        gantt.ProjectNode(project.ID),
		Text:      project.Name,
		Type:      ganttProject,
		StartDate: types.FromTime(project.StartDate),
		EndDate:   types.FromTime(project.EndDate),
		Duration:  gantt.Days(project.StartDate, project.EndDate),
		Open:      true,
	})
	for _, it := range iterations {
		out.Data = append(out.Data, &vo.GanttItem{
			ID:        gantt.IterationNode(it.ID),
			Text:      it.Name,
			Type:      ganttIteration,
			StartDate: types.FromTime(it.StartDate),
			EndDate:   types.FromTime(it.EndDate),
			Duration:  gantt.Days(it.StartDate, it.EndDate),
			Parent:    gantt.ProjectNode(project.ID),
			Open:      true,
		})
	}

	present := lo.SliceToMap(tasks, func(t models.Task) (uint64, bool) { return t.ID, true })
	hasIteration := lo.SliceToMap(iterations, func(it models.Iteration) (uint64, bool) { return it.ID, true })
	items := make(map[uint64]*vo.GanttItem, len(tasks))
	activities := make([]gantt.Activity, 0, len(tasks))
	scheduled := make(map[uint64]bool, len(tasks))
	for _, t := range tasks {
		item := &vo.GanttItem{
			ID:        gantt.TaskNode(t.ID),
			Text:      t.Title,
			Type:      ganttTask,
			StartDate: types.FromTime(t.StartDate),
			EndDate:   types.FromTime(t.DueDate),
			Duration:  gantt.Days(t.StartDate, t.DueDate),
			Progress:  float64(t.Progress) / 100,
			Parent:    taskParentNode(t, project.ID, present, hasIteration),
			Open:      true,
			Assignee:  s.names.UserName(ctx, t.AssigneeID),
		}
		items[t.ID] = item
		out.Data = append(out.Data, item)
		// 未排期的任务只展示，不参与关键路径
		if item.Duration > 0 {
			scheduled[t.ID] = true
			activities = append(activities, gantt.Activity{ID: t.ID, Start: gantt.DayNumber(t.StartDate), Duration: item.Duration})
		}
	}

	// 窗口过滤后两端任务不全的依赖不参与计算
	graphLinks := make([]gantt.Link, 0, len(links))
	out.Links = make([]*vo.GanttLink, 0, len(links))
	for _, l := range links {
		if !present[l.SourceID] || !present[l.TargetID] {
			continue
		}
		if scheduled[l.SourceID] && scheduled[l.TargetID] {
			graphLinks = append(graphLinks, gantt.Link{ID: l.ID, Source: l.SourceID, Target: l.TargetID, Type: l.LinkType, Lag: l.Lag})
		}
		out.Links = append(out.Links, &vo.GanttLink{
			ID:     l.ID,
			Source: gantt.TaskNode(l.SourceID),
			Target: gantt.TaskNode(l.TargetID),
			Type:   l.LinkType,
			Lag:    l.Lag,
		})
	}

	s.schedule(ctx, out, items, activities, graphLinks)
	return out, nil
}

// schedule 计算关键路径；依赖成环时只返回错误描述，不影响甘特图展示
func (s *GanttService) schedule(ctx context.Context, out *vo.Gantt, items map[uint64]*vo.GanttItem,
	activities []gantt.Activity, links []gantt.Link) {
	out.CriticalPath = []int64{}
	g, err := gantt.NewGraph(activities, links)
	if err != nil {
		logger.Warn(ctx, "build gantt graph", zap.Error(err))
		out.CycleError = err.Error()
		return
	}
	res, err := g.CriticalPath()
	var cycle *gantt.CycleError
	if errors.As(err, &cycle) {
		path := lo.Map(cycle.Path, func(id uint64, _ int) int64 { return gantt.TaskNode(id) })
		out.CycleError = fmt.Sprintf("%s: %v", gantt.ErrDependencyCycle.Error(), path)
		return
	}
	if err != nil {
		logger.Warn(ctx, "compute critical path", zap.Error(err))
		out.CycleError = err.Error()
		return
	}
	for id, sch := range res.Tasks {
		item, ok := items[id]
		if !ok {
			continue
		}
		slack := sch.Slack
		item.Slack = &slack
		item.Critical = sch.Critical
	}
	out.CriticalPath = lo.Map(res.CriticalPath, func(id uint64, _ int) int64 { return gantt.TaskNode(id) })
	out.Duration = res.Duration
}

// taskParentNode 子任务挂在父任务下；顶层任务挂在迭代下，无迭代则挂在项目下
func taskParentNode(t models.Task, projectID uint64, present, hasIteration map[uint64]bool) int64 {
	if t.ParentID != 0 && present[t.ParentID] {
		return gantt.TaskNode(t.ParentID)
	}
	if t.IterationID != 0 && hasIteration[t.IterationID] {
		return gantt.IterationNode(t.IterationID)
	}
	return gantt.ProjectNode(projectID)
}

// overlaps 无日期的任务总是保留
func overlaps(start, due, from, to time.Time) bool {
	if start.IsZero() || due.IsZero() {
		return true
	}
	if !from.IsZero() && due.Before(from) {
		return false
	}
	if !to.IsZero() && start.After(to) {
		return false
	}
	return true
}

func (s *GanttService) CreateLink(ctx context.Context, req *params.CreateTaskLinkRequest) (*vo.TaskLink, error) {
	sourceID, ok := gantt.TaskID(req.Source)
	if !ok {
		return nil, errcode.TaskLinkInvalid.WithMessage("source must be a task")
	}
	targetID, ok := gantt.TaskID(req.Target)
	if !ok {
		return nil, errcode.TaskLinkInvalid.WithMessage("target must be a task")
	}
	if sourceID == targetID {
		return nil, errcode.TaskLinkInvalid.WithMessage("source and target must differ")
	}
	linkType, err := enums.ParseLinkType(req.Type)
	if err != nil {
		return nil, errcode.TaskLinkInvalid.WithMessage(err.Error())
	}

	source, err := s.tasks.Get(ctx, sourceID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get link source")
	}
	target, err := s.tasks.Get(ctx, targetID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get link target")
	}
	if source == nil || target == nil {
		return nil, errcode.TaskNotFound
	}
	if source.ProjectID != target.ProjectID {
		return nil, errcode.TaskLinkInvalid.WithMessage("tasks belong to different projects")
	}
	if err := s.requireTaskScope(ctx, source.ProjectID); err != nil {
		return nil, err
	}
	exists, err := s.links.Exists(ctx, sourceID, targetID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "check task link")
	}
	if exists {
		return nil, errcode.TaskLinkInvalid.WithMessage("link already exists")
	}
	if err := s.checkAcyclic(ctx, source.ProjectID, sourceID, targetID); err != nil {
		return nil, err
	}

	m := &models.TaskLink{ProjectID: source.ProjectID, SourceID: sourceID, TargetID: targetID, LinkType: linkType, Lag: req.Lag}
	err = s.links.Create(ctx, m)
	s.audit.Record(ctx, enums.ModuleTask, enums.OperationCreate,
		fmt.Sprintf("新增任务依赖 %d -> %d", sourceID, targetID), err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.TaskCreateFailed, "create task link")
	}
	out := &vo.TaskLink{}
	if err := vo.Copy(out, m); err != nil {
		return nil, err
	}
	return out, nil
}

// checkAcyclic 只看依赖边，不看任务日期
func (s *GanttService) checkAcyclic(ctx context.Context, projectID, source, target uint64) error {
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "list project tasks")
	}
	links, err := s.links.ListByProject(ctx, projectID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "list task links")
	}
	activities := lo.Map(tasks, func(t models.Task, _ int) gantt.Activity { return gantt.Activity{ID: t.ID} })
	edges := lo.Map(links, func(l models.TaskLink, _ int) gantt.Link {
		return gantt.Link{ID: l.ID, Source: l.SourceID, Target: l.TargetID, Type: l.LinkType}
	})
	g, err := gantt.NewGraph(activities, edges)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "build task graph", zap.Uint64("project_id", projectID))
	}
	if g.WouldCycle(source, target) {
		return errcode.TaskLinkCycle
	}
	return nil
}

func (s *GanttService) DeleteLink(ctx context.Context, id uint64) error {
	m, err := s.links.Get(ctx, id)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "get task link")
	}
	if m == nil {
		return errcode.TaskLinkNotFound
	}
	if err := s.requireTaskScope(ctx, m.ProjectID); err != nil {
		return err
	}
	err = s.links.Delete(ctx, id)
	s.audit.Record(ctx, enums.ModuleTask, enums.OperationDelete,
		fmt.Sprintf("删除任务依赖 %d -> %d", m.SourceID, m.TargetID), err)
	return wrapFailure(ctx, err, errcode.TaskDeleteFailed, "delete task link", zap.Uint64("id", id))
}
