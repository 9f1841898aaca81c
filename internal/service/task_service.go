package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/domain/types"
	"github.com/ayxworxfr/gsms/internal/domain/vo"
	"github.com/ayxworxfr/gsms/internal/gantt"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/ayxworxfr/gsms/pkg/tree"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type TaskStore interface {
	Get(ctx context.Context, id uint64) (*models.Task, error)
	Create(ctx context.Context, m *models.Task) error
	Update(ctx context.Context, m *models.Task, cols ...string) error
	Delete(ctx context.Context, id uint64) error
	Page(ctx context.Context, q *params.TaskQuery, scope authz.ProjectScope) ([]models.Task, int64, error)
	ListByProject(ctx context.Context, projectID uint64) ([]models.Task, error)
	ListChildren(ctx context.Context, parentID uint64) ([]models.Task, error)
	CountChildren(ctx context.Context, parentID uint64) (int64, error)
}

type TaskLinkCleaner interface {
	DeleteByTask(ctx context.Context, taskID uint64) error
}

type IterationReader interface {
	Get(ctx context.Context, id uint64) (*models.Iteration, error)
}

// 可编辑字段
var taskUpdateCols = []string{
	"iteration_id", "title", "description", "type", "priority", "assignee_id",
	"estimate_hours", "progress", "sort", "start_date", "due_date",
}

type TaskService struct {
	tx         Transactor
	store      TaskStore
	links      TaskLinkCleaner
	projects   ProjectReader
	iterations IterationReader
	members    MemberReader
	auth       Authorizer
	audit      Auditor
	names      NameLookup
	now        func() time.Time
}

func NewTaskService(tx Transactor, store TaskStore, links TaskLinkCleaner, projects ProjectReader, iterations IterationReader,
	members MemberReader, auth Authorizer, audit Auditor, names NameLookup) *TaskService {
	return &TaskService{
		tx:         tx,
		store:      store,
		links:      links,
		projects:   projects,
		iterations: iterations,
		members:    members,
		auth:       auth,
		audit:      audit,
		names:      names,
		now:        time.Now,
	}
}

func (s *TaskService) Get(ctx context.Context, id uint64) (*vo.Task, error) {
	m, err := s.visible(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toVO(ctx, m)
}

// visible 任务所在项目必须在用户的任务可见范围内
func (s *TaskService) visible(ctx context.Context, id uint64) (*models.Task, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get task", zap.Uint64("id", id))
	}
	if m == nil {
		return nil, errcode.TaskNotFound
	}
	scope, err := s.auth.TaskScope(ctx, user.UserID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "resolve task scope")
	}
	if !scope.Contains(m.ProjectID) {
		return nil, errcode.ProjectAccessDenied
	}
	return m, nil
}

// Page 任意过滤条件（包括按负责人）都限定在可见项目内
func (s *TaskService) Page(ctx context.Context, q *params.TaskQuery) ([]*vo.Task, int64, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, 0, err
	}
	scope, err := s.auth.TaskScope(ctx, user.UserID)
	if err != nil {
		return nil, 0, wrapFailure(ctx, err, errcode.DatabaseError, "resolve task scope")
	}
	rows, total, err := s.store.Page(ctx, q, scope.Narrow(q.ProjectID))
	if err != nil {
		return nil, 0, wrapFailure(ctx, err, errcode.DatabaseError, "page tasks")
	}
	out, err := s.toVOs(ctx, rows)
	return out, total, err
}

func (s *TaskService) Subtasks(ctx context.Context, id uint64) ([]*vo.Task, error) {
	if _, err := s.visible(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.store.ListChildren(ctx, id)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list subtasks", zap.Uint64("id", id))
	}
	return s.toVOs(ctx, rows)
}

// Tree 项目内任务按父子关系组装
func (s *TaskService) Tree(ctx context.Context, projectID uint64) ([]*vo.Task, error) {
	if err := s.requireScope(ctx, projectID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListByProject(ctx, projectID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list project tasks")
	}
	var convErr error
	forest := tree.Map(tree.Build(rows, taskAccessor), func(t models.Task, children []*vo.Task) *vo.Task {
		v, err := s.toVO(ctx, &t)
		if err != nil {
			convErr = err
			return &vo.Task{ID: t.ID}
		}
		v.Children = children
		return v
	})
	return forest, convErr
}

var taskAccessor = tree.Accessor[uint64, models.Task]{
	ID:       func(t models.Task) uint64 { return t.ID },
	ParentID: func(t models.Task) uint64 { return t.ParentID },
	Sort:     func(t models.Task) int { return t.Sort },
}

func (s *TaskService) Create(ctx context.Context, req *params.CreateTaskRequest) (*vo.Task, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errcode.TaskTitleEmpty
	}
	project, err := s.projects.Get(ctx, req.ProjectID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get project")
	}
	if project == nil {
		return nil, errcode.TaskProjectInvalid.WithMessage("project does not exist")
	}
	if err := s.requireScope(ctx, project.ID); err != nil {
		return nil, err
	}
	status, err := parseTaskStatus(req.Status)
	if err != nil {
		return nil, err
	}

	m := &models.Task{ProjectID: project.ID, ParentID: req.ParentID, Status: status, CreatorID: user.UserID}
	if err := s.apply(ctx, m, &req.TaskFields); err != nil {
		return nil, err
	}
	if m.ParentID != 0 {
		parent, err := s.store.Get(ctx, m.ParentID)
		if err != nil {
			return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get parent task")
		}
		if parent == nil || parent.ProjectID != m.ProjectID {
			return nil, errcode.TaskParentInvalid
		}
		if err := checkWithinParent(parent, m.StartDate, m.DueDate); err != nil {
			return nil, err
		}
	}
	applyStatus(m, status, s.now())

	err = s.store.Create(ctx, m)
	s.audit.Record(ctx, enums.ModuleTask, enums.OperationCreate, fmt.Sprintf("创建任务 %s", m.Title), err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.TaskCreateFailed, "create task")
	}
	logger.Info(ctx, "task created", zap.Uint64("id", m.ID), zap.Uint64("project_id", m.ProjectID))
	return s.toVO(ctx, m)
}

func (s *TaskService) Update(ctx context.Context, req *params.UpdateTaskRequest) (*vo.Task, error) {
	m, err := s.visible(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, errcode.TaskTitleEmpty
	}
	if err := s.apply(ctx, m, &req.TaskFields); err != nil {
		return nil, err
	}
	if m.ParentID != 0 {
		parent, err := s.store.Get(ctx, m.ParentID)
		if err != nil {
			return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get parent task")
		}
		if parent != nil {
			if err := checkWithinParent(parent, m.StartDate, m.DueDate); err != nil {
				return nil, err
			}
		}
	}

	err = s.store.Update(ctx, m, taskUpdateCols...)
	s.audit.Record(ctx, enums.ModuleTask, enums.OperationUpdate, fmt.Sprintf("修改任务 %s", m.Title), err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.TaskUpdateFailed, "update task", zap.Uint64("id", m.ID))
	}
	return s.toVO(ctx, m)
}

// UpdateStatus 状态变化时维护实际开始/结束时间
func (s *TaskService) UpdateStatus(ctx context.Context, req *params.UpdateTaskStatusRequest) (*vo.Task, error) {
	next, err := parseTaskStatus(req.Status)
	if err != nil {
		return nil, err
	}
	m, err := s.visible(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	prev := m.Status
	applyStatus(m, next, s.now())

	err = s.store.Update(ctx, m, "status", "actual_start_date", "actual_end_date")
	s.audit.Record(ctx, enums.ModuleTask, enums.OperationUpdate,
		fmt.Sprintf("任务 %d 状态 %s -> %s", m.ID, prev, next), err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.TaskUpdateFailed, "update task status", zap.Uint64("id", m.ID))
	}
	return s.toVO(ctx, m)
}

// applyStatus 进行中补实际开始；完成补实际结束；离开完成清实际结束；回到待办全部清空
func applyStatus(m *models.Task, next enums.TaskStatus, now time.Time) {
	switch next {
	case enums.TaskStatusTodo:
		m.ActualStart, m.ActualEnd = time.Time{}, time.Time{}
	case enums.TaskStatusInProgress:
		if m.ActualStart.IsZero() {
			m.ActualStart = now
		}
		m.ActualEnd = time.Time{}
	case enums.TaskStatusDone:
		if m.ActualStart.IsZero() {
			m.ActualStart = now
		}
		m.ActualEnd = now
	}
	m.Status = next
}

// UpdateDates 甘特图拖动：结束不早于开始，且落在父任务范围内
func (s *TaskService) UpdateDates(ctx context.Context, req *params.UpdateTaskDatesRequest) (*vo.Task, error) {
	id, ok := gantt.TaskID(req.ID)
	if !ok {
		return nil, errcode.TaskNotFound
	}
	m, err := s.visible(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkDates(req.StartDate, req.DueDate); err != nil {
		return nil, err
	}
	if m.ParentID != 0 {
		parent, err := s.store.Get(ctx, m.ParentID)
		if err != nil {
			return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get parent task")
		}
		if parent != nil {
			if err := checkWithinParent(parent, req.StartDate.ToTime(), req.DueDate.ToTime()); err != nil {
				return nil, err
			}
		}
	}

	m.StartDate, m.DueDate = req.StartDate.ToTime(), req.DueDate.ToTime()
	err = s.store.Update(ctx, m, "start_date", "due_date")
	s.audit.Record(ctx, enums.ModuleTask, enums.OperationUpdate,
		fmt.Sprintf("调整任务 %d 计划 %s ~ %s", m.ID, req.StartDate, req.DueDate), err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.TaskUpdateFailed, "update task dates", zap.Uint64("id", m.ID))
	}
	return s.toVO(ctx, m)
}

// ChangeParent 新父任务必须同项目、不是自身或后代；parentID 为 0 提升为顶层
func (s *TaskService) ChangeParent(ctx context.Context, req *params.UpdateTaskParentRequest) (*vo.Task, error) {
	id, ok := gantt.TaskID(req.ID)
	if !ok {
		return nil, errcode.TaskNotFound
	}
	parentID, err := parentTaskID(req.ParentID)
	if err != nil {
		return nil, err
	}
	m, err := s.visible(ctx, id)
	if err != nil {
		return nil, err
	}
	if parentID == m.ID {
		return nil, errcode.TaskParentInvalid.WithMessage("task cannot be its own parent")
	}
	if parentID != 0 {
		parent, err := s.store.Get(ctx, parentID)
		if err != nil {
			return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get parent task")
		}
		if parent == nil {
			return nil, errcode.TaskParentInvalid.WithMessage("parent task does not exist")
		}
		if parent.ProjectID != m.ProjectID {
			return nil, errcode.TaskParentInvalid.WithMessage("parent task belongs to another project")
		}
		siblings, err := s.store.ListByProject(ctx, m.ProjectID)
		if err != nil {
			return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list project tasks")
		}
		parents := lo.SliceToMap(siblings, func(t models.Task) (uint64, uint64) { return t.ID, t.ParentID })
		parentOf := func(id uint64) (uint64, bool) {
			p, ok := parents[id]
			return p, ok
		}
		if tree.WouldCreateCycle(parentOf, m.ID, parent.ID) {
			return nil, errcode.TaskParentCycle
		}
		if err := checkWithinParent(parent, m.StartDate, m.DueDate); err != nil {
			return nil, err
		}
	}

	m.ParentID = parentID
	err = s.store.Update(ctx, m, "parent_id")
	s.audit.Record(ctx, enums.ModuleTask, enums.OperationUpdate,
		fmt.Sprintf("任务 %d 移动到 %d 下", m.ID, parentID), err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.TaskUpdateFailed, "change task parent", zap.Uint64("id", m.ID))
	}
	return s.toVO(ctx, m)
}

// parentTaskID 0、项目节点、迭代节点都表示顶层
func parentTaskID(ref int64) (uint64, error) {
	if ref >= 0 {
		return uint64(ref), nil
	}
	switch kind, id := gantt.ParseNode(ref); kind {
	case gantt.NodeTask:
		return id, nil
	case gantt.NodeIteration:
		return 0, nil
	}
	return 0, errcode.TaskParentInvalid
}

// Delete 有子任务时拒绝，同时删除关联的依赖连线
func (s *TaskService) Delete(ctx context.Context, id uint64) error {
	m, err := s.visible(ctx, id)
	if err != nil {
		return err
	}
	children, err := s.store.CountChildren(ctx, id)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "count subtasks")
	}
	if children > 0 {
		return errcode.TaskHasChildren
	}
	_, err = s.tx.Transaction(ctx, func(ctx context.Context) (any, error) {
		if err := s.links.DeleteByTask(ctx, id); err != nil {
			return nil, err
		}
		return nil, s.store.Delete(ctx, id)
	})
	s.audit.Record(ctx, enums.ModuleTask, enums.OperationDelete, fmt.Sprintf("删除任务 %s", m.Title), err)
	return wrapFailure(ctx, err, errcode.TaskDeleteFailed, "delete task", zap.Uint64("id", id))
}

// apply 校验并写入可编辑字段
func (s *TaskService) apply(ctx context.Context, m *models.Task, f *params.TaskFields) error {
	taskType, err := parseTaskType(f.TaskType)
	if err != nil {
		return err
	}
	priority, err := parseTaskPriority(f.Priority)
	if err != nil {
		return err
	}
	if err := checkDates(f.StartDate, f.DueDate); err != nil {
		return err
	}
	if f.IterationID != 0 {
		it, err := s.iterations.Get(ctx, f.IterationID)
		if err != nil {
			return wrapFailure(ctx, err, errcode.DatabaseError, "get iteration")
		}
		if it == nil || it.ProjectID != m.ProjectID {
			return errcode.TaskIterationInvalid
		}
	}
	if f.AssigneeID != 0 {
		ok, err := s.members.IsMember(ctx, m.ProjectID, f.AssigneeID)
		if err != nil {
			return wrapFailure(ctx, err, errcode.DatabaseError, "check project member")
		}
		if !ok {
			return errcode.TaskAssigneeInvalid
		}
	}

	m.IterationID = f.IterationID
	m.Title = strings.TrimSpace(f.Title)
	m.Description = f.Description
	m.TaskType = taskType
	m.Priority = priority
	m.AssigneeID = f.AssigneeID
	m.EstimateHours = f.EstimateHours
	m.Progress = f.Progress
	m.Sort = f.Sort
	m.StartDate = f.StartDate.ToTime()
	m.DueDate = f.DueDate.ToTime()
	return nil
}

func (s *TaskService) requireScope(ctx context.Context, projectID uint64) error {
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

func parseTaskType(code int) (enums.TaskType, error) {
	if code == 0 {
		return enums.TaskTypeTask, nil
	}
	t, err := enums.ParseTaskType(code)
	if err != nil {
		return 0, errcode.ParamInvalid.WithMessage(err.Error())
	}
	return t, nil
}

func parseTaskPriority(code int) (enums.TaskPriority, error) {
	if code == 0 {
		return enums.TaskPriorityMedium, nil
	}
	p, err := enums.ParseTaskPriority(code)
	if err != nil {
		return 0, errcode.TaskPriorityInvalid.WithMessage(err.Error())
	}
	return p, nil
}

func parseTaskStatus(code int) (enums.TaskStatus, error) {
	if code == 0 {
		return enums.TaskStatusTodo, nil
	}
	st, err := enums.ParseTaskStatus(code)
	if err != nil {
		return 0, errcode.TaskStatusInvalid.WithMessage(err.Error())
	}
	return st, nil
}

func checkDates(start, due types.Date) error {
	if !start.IsZero() && !due.IsZero() && due.Before(start) {
		return errcode.TaskDateInvalid
	}
	return nil
}

// checkWithinParent 父任务未设置的端点不做约束
func checkWithinParent(parent *models.Task, start, due time.Time) error {
	if !parent.StartDate.IsZero() && !start.IsZero() && start.Before(parent.StartDate) {
		return errcode.TaskDateOutOfParent
	}
	if !parent.DueDate.IsZero() && !due.IsZero() && due.After(parent.DueDate) {
		return errcode.TaskDateOutOfParent
	}
	return nil
}

func (s *TaskService) toVO(ctx context.Context, m *models.Task) (*vo.Task, error) {
	return taskVO(ctx, s.names, m)
}

func taskVO(ctx context.Context, names NameLookup, m *models.Task) (*vo.Task, error) {
	out := new(vo.Task)
	if err := vo.Copy(out, m); err != nil {
		return nil, err
	}
	out.ActualStart = vo.TimePtr(m.ActualStart)
	out.ActualEnd = vo.TimePtr(m.ActualEnd)
	out.TypeDesc = m.TaskType.String()
	out.StatusDesc = m.Status.String()
	out.PriorityDesc = m.Priority.String()
	out.AssigneeName = names.UserName(ctx, m.AssigneeID)
	return out, nil
}

func (s *TaskService) toVOs(ctx context.Context, rows []models.Task) ([]*vo.Task, error) {
	out := make([]*vo.Task, 0, len(rows))
	for i := range rows {
		v, err := s.toVO(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
