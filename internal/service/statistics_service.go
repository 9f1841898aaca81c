package service

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/dao"
	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/domain/vo"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultTrendDays = 7
	maxTrendDays     = 366
	dashboardListCap = 5
)

// WorkHourStats 统计用的工时查询
type WorkHourStats interface {
	ListByProject(ctx context.Context, projectID uint64, r dao.DateRange) ([]models.WorkHour, error)
	ListByUsers(ctx context.Context, userIDs []uint64, r dao.DateRange, scope authz.ProjectScope) ([]models.WorkHour, error)
	ListByTask(ctx context.Context, taskID uint64) ([]models.WorkHour, error)
	List(ctx context.Context, r dao.DateRange, scope authz.ProjectScope) ([]models.WorkHour, error)
}

type ProjectStats interface {
	ProjectReader
	List(ctx context.Context, scope authz.ProjectScope) ([]models.Project, error)
}

type TaskStats interface {
	TaskReader
	ListByProject(ctx context.Context, projectID uint64) ([]models.Task, error)
	Count(ctx context.Context, scope authz.ProjectScope) (int64, error)
	CountOpenOfAssignee(ctx context.Context, assigneeID uint64, scope authz.ProjectScope) (int64, error)
	ListOpenOfAssignee(ctx context.Context, assigneeID uint64, scope authz.ProjectScope, limit int) ([]models.Task, error)
}

type DepartmentMembers interface {
	ListByDepartment(ctx context.Context, departmentID uint64) ([]models.User, error)
}

// StatisticsService 只读统计，全部受可见范围约束
type StatisticsService struct {
	workHours   WorkHourStats
	projects    ProjectStats
	tasks       TaskStats
	users       UserReader
	members     DepartmentMembers
	departments DepartmentReader
	auth        Authorizer
	names       NameLookup
	now         func() time.Time
}

func NewStatisticsService(workHours WorkHourStats, projects ProjectStats, tasks TaskStats, users UserReader,
	members DepartmentMembers, departments DepartmentReader, auth Authorizer, names NameLookup) *StatisticsService {
	return &StatisticsService{
		workHours:   workHours,
		projects:    projects,
		tasks:       tasks,
		users:       users,
		members:     members,
		departments: departments,
		auth:        auth,
		names:       names,
		now:         time.Now,
	}
}

func (s *StatisticsService) workHourScope(ctx context.Context) (uint64, authz.ProjectScope, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return 0, authz.ProjectScope{}, err
	}
	scope, err := s.auth.WorkHourScope(ctx, user.UserID)
	if err != nil {
		return 0, authz.ProjectScope{}, wrapFailure(ctx, err, errcode.DatabaseError, "resolve work hour scope")
	}
	return user.UserID, scope, nil
}

// ProjectWorkHours 项目工时及人员分布
func (s *StatisticsService) ProjectWorkHours(ctx context.Context, req *params.DateRangeRequest) (*vo.WorkHourSummary, error) {
	r, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.project(ctx, req.ID, s.auth.WorkHourScope); err != nil {
		return nil, err
	}
	rows, err := s.workHours.ListByProject(ctx, req.ID, r)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list project work hours", zap.Uint64("project_id", req.ID))
	}
	out := summarize(rows, r)
	out.Users = s.byUser(ctx, rows)
	return out, nil
}

// UserWorkHours 用户工时及项目分布，只统计调用方可见项目内的记录
func (s *StatisticsService) UserWorkHours(ctx context.Context, req *params.DateRangeRequest) (*vo.WorkHourSummary, error) {
	r, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	self, scope, err := s.workHourScope(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Get(ctx, req.ID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get user", zap.Uint64("id", req.ID))
	}
	if user == nil {
		return nil, errcode.UserNotFound
	}
	if req.ID == self {
		scope = authz.Unrestricted()
	}
	rows, err := s.workHours.ListByUsers(ctx, []uint64{req.ID}, r, scope)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list user work hours", zap.Uint64("user_id", req.ID))
	}
	out := summarize(rows, r)
	out.Projects = s.byProject(ctx, rows)
	return out, nil
}

func (s *StatisticsService) DepartmentWorkHours(ctx context.Context, req *params.DateRangeRequest) (*vo.WorkHourSummary, error) {
	r, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	_, scope, err := s.workHourScope(ctx)
	if err != nil {
		return nil, err
	}
	dept, err := s.departments.Get(ctx, req.ID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get department", zap.Uint64("id", req.ID))
	}
	if dept == nil {
		return nil, errcode.DepartmentNotFound
	}
	users, err := s.members.ListByDepartment(ctx, req.ID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list department users")
	}
	var rows []models.WorkHour
	if len(users) > 0 {
		ids := lo.Map(users, func(u models.User, _ int) uint64 { return u.ID })
		if rows, err = s.workHours.ListByUsers(ctx, ids, r, scope); err != nil {
			return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list department work hours", zap.Uint64("department_id", req.ID))
		}
	}
	out := summarize(rows, r)
	out.Users = s.byUser(ctx, rows)
	return out, nil
}

// TaskWorkHours 实际工时与预估工时的差值
func (s *StatisticsService) TaskWorkHours(ctx context.Context, taskID uint64) (*vo.TaskHours, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get task", zap.Uint64("id", taskID))
	}
	if task == nil {
		return nil, errcode.TaskNotFound
	}
	_, scope, err := s.workHourScope(ctx)
	if err != nil {
		return nil, err
	}
	if !scope.Contains(task.ProjectID) {
		return nil, errcode.ProjectAccessDenied
	}
	rows, err := s.workHours.ListByTask(ctx, taskID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list task work hours", zap.Uint64("task_id", taskID))
	}
	total := sumHours(rows)
	return &vo.TaskHours{
		TaskID:        taskID,
		TotalHours:    total,
		EstimateHours: task.EstimateHours,
		Variance:      total.Sub(task.EstimateHours),
		Records:       int64(len(rows)),
		Users:         s.byUser(ctx, rows),
	}, nil
}

// ProjectCompletion 完成率为百分数，保留两位小数
func (s *StatisticsService) ProjectCompletion(ctx context.Context, projectID uint64) (*vo.ProjectCompletion, error) {
	if _, err := s.project(ctx, projectID, s.auth.TaskScope); err != nil {
		return nil, err
	}
	rows, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list project tasks", zap.Uint64("project_id", projectID))
	}
	counts := lo.CountValuesBy(rows, func(t models.Task) enums.TaskStatus { return t.Status })
	out := &vo.ProjectCompletion{
		ProjectID:  projectID,
		Total:      int64(len(rows)),
		Todo:       int64(counts[enums.TaskStatusTodo]),
		InProgress: int64(counts[enums.TaskStatusInProgress]),
		Done:       int64(counts[enums.TaskStatusDone]),
	}
	if out.Total > 0 {
		out.CompletionRate = decimal.NewFromInt(out.Done).
			Mul(decimal.NewFromInt(100)).
			DivRound(decimal.NewFromInt(out.Total), 2).
			InexactFloat64()
	}
	return out, nil
}

// Trend 每日工时，缺失的日期补 0
func (s *StatisticsService) Trend(ctx context.Context, req *params.TrendRequest) (*vo.Trend, error) {
	r, err := s.trendRange(req)
	if err != nil {
		return nil, err
	}
	_, scope, err := s.workHourScope(ctx)
	if err != nil {
		return nil, err
	}
	scope = scope.Narrow(req.ProjectID)

	var rows []models.WorkHour
	if req.UserID != 0 {
		rows, err = s.workHours.ListByUsers(ctx, []uint64{req.UserID}, r, scope)
	} else {
		rows, err = s.workHours.List(ctx, r, scope)
	}
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list work hour trend")
	}

	daily := map[string]decimal.Decimal{}
	for _, m := range rows {
		key := m.WorkDate.Format(time.DateOnly)
		daily[key] = daily[key].Add(m.Hours)
	}
	out := &vo.Trend{
		StartDate:  r.Start.Format(time.DateOnly),
		EndDate:    r.End.Format(time.DateOnly),
		TotalHours: sumHours(rows),
		Points:     []*vo.TrendPoint{},
	}
	for day := r.Start; !day.After(r.End); day = day.AddDate(0, 0, 1) {
		key := day.Format(time.DateOnly)
		out.Points = append(out.Points, &vo.TrendPoint{Date: key, Hours: daily[key]})
	}
	return out, nil
}

// trendRange 起止日期优先，否则取截至今天的最近 Days 天
func (s *StatisticsService) trendRange(req *params.TrendRequest) (dao.DateRange, error) {
	r, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return r, err
	}
	if r.Start.IsZero() || r.End.IsZero() {
		days := req.Days
		if days <= 0 {
			days = defaultTrendDays
		}
		if days > maxTrendDays {
			return r, errcode.ParamInvalid.WithMessagef("days must not exceed %d", maxTrendDays)
		}
		today := startOfDay(s.now())
		r = dao.DateRange{Start: today.AddDate(0, 0, 1-days), End: today}
	}
	if r.End.Sub(r.Start) >= maxTrendDays*24*time.Hour {
		return r, errcode.ParamInvalid.WithMessagef("trend range must not exceed %d days", maxTrendDays)
	}
	return r, nil
}

// Dashboard 当前用户首页概览
func (s *StatisticsService) Dashboard(ctx context.Context) (*vo.Dashboard, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	projectScope, err := s.auth.AccessibleProjects(ctx, user.UserID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "resolve accessible projects")
	}
	taskScope, err := s.auth.TaskScope(ctx, user.UserID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "resolve task scope")
	}

	out := &vo.Dashboard{}
	projects, err := s.projects.List(ctx, projectScope)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list projects")
	}
	out.ProjectCount = int64(len(projects))
	for i := range projects[:min(len(projects), dashboardListCap)] {
		v := &vo.Project{}
		if err := vo.Copy(v, &projects[i]); err != nil {
			return nil, err
		}
		v.ProjectTypeDesc = projects[i].ProjectType.String()
		v.StatusDesc = projects[i].Status.String()
		out.Projects = append(out.Projects, v)
	}
	if out.TaskCount, err = s.tasks.Count(ctx, taskScope); err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "count tasks")
	}
	if out.MyOpenTasks, err = s.tasks.CountOpenOfAssignee(ctx, user.UserID, taskScope); err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "count open tasks")
	}
	pending, err := s.tasks.ListOpenOfAssignee(ctx, user.UserID, taskScope, dashboardListCap)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list open tasks")
	}
	if out.Projects == nil {
		out.Projects = []*vo.Project{}
	}
	out.PendingTasks = make([]*vo.Task, 0, len(pending))
	for i := range pending {
		v, err := taskVO(ctx, s.names, &pending[i])
		if err != nil {
			return nil, err
		}
		out.PendingTasks = append(out.PendingTasks, v)
	}

	today := startOfDay(s.now())
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	from := monthStart
	if weekStart.Before(from) {
		from = weekStart
	}
	mine, err := s.workHours.ListByUsers(ctx, []uint64{user.UserID}, dao.DateRange{Start: from, End: today}, authz.Unrestricted())
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list my work hours")
	}
	for _, m := range mine {
		day := startOfDay(m.WorkDate)
		if day.Equal(today) {
			out.MyTodayHours = out.MyTodayHours.Add(m.Hours)
		}
		if !day.Before(weekStart) {
			out.MyWeeklyHours = out.MyWeeklyHours.Add(m.Hours)
		}
		if !day.Before(monthStart) {
			out.MyMonthlyHours = out.MyMonthlyHours.Add(m.Hours)
		}
	}
	return out, nil
}

type scopeResolver func(ctx context.Context, userID uint64) (authz.ProjectScope, error)

// project 按统计对象对应的可见范围校验项目
func (s *StatisticsService) project(ctx context.Context, id uint64, scopeOf scopeResolver) (*models.Project, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get project", zap.Uint64("id", id))
	}
	if p == nil {
		return nil, errcode.ProjectNotFound
	}
	scope, err := scopeOf(ctx, user.UserID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "resolve statistics scope")
	}
	if !scope.Contains(id) {
		return nil, errcode.ProjectAccessDenied
	}
	return p, nil
}

func summarize(rows []models.WorkHour, r dao.DateRange) *vo.WorkHourSummary {
	out := &vo.WorkHourSummary{TotalHours: sumHours(rows), Records: int64(len(rows))}
	if !r.Start.IsZero() {
		out.StartDate = r.Start.Format(time.DateOnly)
	}
	if !r.End.IsZero() {
		out.EndDate = r.End.Format(time.DateOnly)
	}
	return out
}

func (s *StatisticsService) byUser(ctx context.Context, rows []models.WorkHour) []*vo.UserHours {
	sums := groupHours(rows, func(m models.WorkHour) uint64 { return m.UserID })
	out := make([]*vo.UserHours, 0, len(sums))
	for _, g := range sums {
		out = append(out, &vo.UserHours{UserID: g.key, Username: s.names.UserName(ctx, g.key), Hours: g.hours})
	}
	return out
}

func (s *StatisticsService) byProject(ctx context.Context, rows []models.WorkHour) []*vo.ProjectHours {
	sums := groupHours(rows, func(m models.WorkHour) uint64 { return m.ProjectID })
	out := make([]*vo.ProjectHours, 0, len(sums))
	for _, g := range sums {
		name := ""
		if p, err := s.projects.Get(ctx, g.key); err == nil && p != nil {
			name = p.Name
		}
		out = append(out, &vo.ProjectHours{ProjectID: g.key, ProjectName: name, Hours: g.hours})
	}
	return out
}

type hourGroup struct {
	key   uint64
	hours decimal.Decimal
}

// groupHours 按 key 汇总，工时倒序、key 升序
func groupHours(rows []models.WorkHour, key func(models.WorkHour) uint64) []hourGroup {
	sums := map[uint64]decimal.Decimal{}
	for _, m := range rows {
		k := key(m)
		sums[k] = sums[k].Add(m.Hours)
	}
	out := make([]hourGroup, 0, len(sums))
	for k, h := range sums {
		out = append(out, hourGroup{key: k, hours: h})
	}
	slices.SortFunc(out, func(a, b hourGroup) int {
		if c := b.hours.Cmp(a.hours); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})
	return out
}

func sumHours(rows []models.WorkHour) decimal.Decimal {
	return lo.Reduce(rows, func(acc decimal.Decimal, m models.WorkHour, _ int) decimal.Decimal {
		return acc.Add(m.Hours)
	}, decimal.Zero)
}

func parseRange(start, end string) (dao.DateRange, error) {
	var r dao.DateRange
	var err error
	if r.Start, err = parseDate("start", start); err != nil {
		return r, err
	}
	if r.End, err = parseDate("end", end); err != nil {
		return r, err
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return r, errcode.ParamInvalid.WithMessage("end must not be before start")
	}
	return r, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
