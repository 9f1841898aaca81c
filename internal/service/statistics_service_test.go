package service

import (
	"context"
	"testing"
	"time"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/dao"
	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsWorkHours []models.WorkHour

func inRange(m models.WorkHour, r dao.DateRange) bool {
	return (r.Start.IsZero() || !m.WorkDate.Before(r.Start)) && (r.End.IsZero() || !m.WorkDate.After(r.End))
}

func (f fakeStatsWorkHours) filter(keep func(models.WorkHour) bool) []models.WorkHour {
	var out []models.WorkHour
	for _, m := range f {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func (f fakeStatsWorkHours) ListByProject(_ context.Context, projectID uint64, r dao.DateRange) ([]models.WorkHour, error) {
	return f.filter(func(m models.WorkHour) bool { return m.ProjectID == projectID && inRange(m, r) }), nil
}

func (f fakeStatsWorkHours) ListByUsers(_ context.Context, ids []uint64, r dao.DateRange, scope authz.ProjectScope) ([]models.WorkHour, error) {
	return f.filter(func(m models.WorkHour) bool {
		for _, id := range ids {
			if m.UserID == id {
				return inRange(m, r) && scope.Contains(m.ProjectID)
			}
		}
		return false
	}), nil
}

func (f fakeStatsWorkHours) ListByTask(_ context.Context, taskID uint64) ([]models.WorkHour, error) {
	return f.filter(func(m models.WorkHour) bool { return m.TaskID == taskID }), nil
}

func (f fakeStatsWorkHours) List(_ context.Context, r dao.DateRange, scope authz.ProjectScope) ([]models.WorkHour, error) {
	return f.filter(func(m models.WorkHour) bool { return inRange(m, r) && scope.Contains(m.ProjectID) }), nil
}

type fakeStatsProjects struct{ fakeProjects }

func (f fakeStatsProjects) List(_ context.Context, scope authz.ProjectScope) ([]models.Project, error) {
	var out []models.Project
	for _, id := range []uint64{projectA, projectB} {
		if p, ok := f.fakeProjects[id]; ok && scope.Contains(id) {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeStatsTasks struct{ rows []models.Task }

func (f fakeStatsTasks) Get(_ context.Context, id uint64) (*models.Task, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (f fakeStatsTasks) ListByProject(_ context.Context, projectID uint64) ([]models.Task, error) {
	var out []models.Task
	for _, t := range f.rows {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f fakeStatsTasks) Count(_ context.Context, scope authz.ProjectScope) (int64, error) {
	var n int64
	for _, t := range f.rows {
		if scope.Contains(t.ProjectID) {
			n++
		}
	}
	return n, nil
}

func (f fakeStatsTasks) open(assigneeID uint64, scope authz.ProjectScope) []models.Task {
	var out []models.Task
	for _, t := range f.rows {
		if t.AssigneeID == assigneeID && t.Status != enums.TaskStatusDone && scope.Contains(t.ProjectID) {
			out = append(out, t)
		}
	}
	return out
}

func (f fakeStatsTasks) CountOpenOfAssignee(_ context.Context, assigneeID uint64, scope authz.ProjectScope) (int64, error) {
	return int64(len(f.open(assigneeID, scope))), nil
}

func (f fakeStatsTasks) ListOpenOfAssignee(_ context.Context, assigneeID uint64, scope authz.ProjectScope, limit int) ([]models.Task, error) {
	rows := f.open(assigneeID, scope)
	return rows[:min(len(rows), limit)], nil
}

type fakeDepartmentMembers map[uint64][]models.User

func (f fakeDepartmentMembers) ListByDepartment(_ context.Context, departmentID uint64) ([]models.User, error) {
	return f[departmentID], nil
}

type fakeDepartments map[uint64]*models.Department

func (f fakeDepartments) Get(_ context.Context, id uint64) (*models.Department, error) {
	return f[id], nil
}

func hours(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func wh(userID, projectID, taskID uint64, day int, h string) models.WorkHour {
	return models.WorkHour{
		UserID:    userID,
		ProjectID: projectID,
		TaskID:    taskID,
		WorkDate:  may(day),
		Hours:     hours(h),
	}
}

// 2024-05-08 为周三
func newStatisticsFixture() *StatisticsService {
	workHours := fakeStatsWorkHours{
		wh(worker, projectA, 7, 6, "8"),
		wh(worker, projectA, 7, 8, "2.5"),
		wh(manager, projectA, 0, 7, "4"),
		wh(worker, projectB, 8, 8, "1"),
		wh(worker, projectA, 7, 2, "3"),
		wh(outside, projectB, 8, 8, "6"),
	}
	projects := fakeStatsProjects{fakeProjects{
		projectA: {ID: projectA, Name: "alpha"},
		projectB: {ID: projectB, Name: "beta"},
	}}
	tasks := fakeStatsTasks{rows: []models.Task{
		{ID: 7, ProjectID: projectA, AssigneeID: worker, Status: enums.TaskStatusInProgress, EstimateHours: hours("10")},
		{ID: 9, ProjectID: projectA, AssigneeID: worker, Status: enums.TaskStatusDone},
		{ID: 10, ProjectID: projectA, AssigneeID: manager, Status: enums.TaskStatusTodo},
		{ID: 8, ProjectID: projectB, AssigneeID: worker, Status: enums.TaskStatusTodo},
	}}
	users := fakeUsers{
		worker:  {ID: worker, DepartmentID: 3},
		manager: {ID: manager, DepartmentID: 3},
		outside: {ID: outside},
	}
	members := fakeDepartmentMembers{3: {{ID: worker}, {ID: manager}}, 4: nil}
	departments := fakeDepartments{3: {ID: 3}, 4: {ID: 4}}
	auth := &fakeAuth{
		system: map[uint64]bool{adminID: true},
		projects: map[uint64][]uint64{
			worker:  {projectA},
			manager: {projectA},
			outside: {projectB},
		},
	}
	svc := NewStatisticsService(workHours, projects, tasks, users, members, departments, auth, fakeNames{})
	svc.now = func() time.Time { return time.Date(2024, time.May, 8, 15, 0, 0, 0, time.Local) }
	return svc
}

func TestStatisticsProjectWorkHours(t *testing.T) {
	svc := newStatisticsFixture()

	_, err := svc.ProjectWorkHours(asUser(outside), &params.DateRangeRequest{ID: projectA})
	assert.True(t, errcode.Is(err, errcode.ProjectAccessDenied))

	_, err = svc.ProjectWorkHours(asUser(worker), &params.DateRangeRequest{ID: projectA, StartDate: "2024-05-09", EndDate: "2024-05-01"})
	assert.True(t, errcode.Is(err, errcode.ParamInvalid))

	got, err := svc.ProjectWorkHours(asUser(worker), &params.DateRangeRequest{ID: projectA, StartDate: "2024-05-06"})
	require.NoError(t, err)
	assert.True(t, hours("14.5").Equal(got.TotalHours), got.TotalHours.String())
	assert.EqualValues(t, 3, got.Records)
	assert.Equal(t, "2024-05-06", got.StartDate)
	require.Len(t, got.Users, 2)
	assert.Equal(t, worker, got.Users[0].UserID)
	assert.True(t, hours("10.5").Equal(got.Users[0].Hours))
}

func TestStatisticsUserWorkHoursScope(t *testing.T) {
	svc := newStatisticsFixture()

	own, err := svc.UserWorkHours(asUser(worker), &params.DateRangeRequest{ID: worker})
	require.NoError(t, err)
	assert.True(t, hours("14.5").Equal(own.TotalHours))
	require.Len(t, own.Projects, 2)
	assert.Equal(t, "alpha", own.Projects[0].ProjectName)

	// manager 只能看到 worker 在 A 项目中的工时
	seen, err := svc.UserWorkHours(asUser(manager), &params.DateRangeRequest{ID: worker})
	require.NoError(t, err)
	assert.True(t, hours("13.5").Equal(seen.TotalHours))

	_, err = svc.UserWorkHours(asUser(manager), &params.DateRangeRequest{ID: 404})
	assert.True(t, errcode.Is(err, errcode.UserNotFound))
}

func TestStatisticsDepartmentWorkHours(t *testing.T) {
	svc := newStatisticsFixture()

	got, err := svc.DepartmentWorkHours(asUser(adminID), &params.DateRangeRequest{ID: 3})
	require.NoError(t, err)
	assert.True(t, hours("18.5").Equal(got.TotalHours))
	assert.Len(t, got.Users, 2)

	empty, err := svc.DepartmentWorkHours(asUser(adminID), &params.DateRangeRequest{ID: 4})
	require.NoError(t, err)
	assert.True(t, empty.TotalHours.IsZero())
	assert.Empty(t, empty.Users)

	_, err = svc.DepartmentWorkHours(asUser(adminID), &params.DateRangeRequest{ID: 5})
	assert.True(t, errcode.Is(err, errcode.DepartmentNotFound))
}

func TestStatisticsTaskWorkHours(t *testing.T) {
	svc := newStatisticsFixture()

	got, err := svc.TaskWorkHours(asUser(worker), 7)
	require.NoError(t, err)
	assert.True(t, hours("13.5").Equal(got.TotalHours))
	assert.True(t, hours("3.5").Equal(got.Variance))
	assert.EqualValues(t, 3, got.Records)

	_, err = svc.TaskWorkHours(asUser(worker), 8)
	assert.True(t, errcode.Is(err, errcode.ProjectAccessDenied))

	_, err = svc.TaskWorkHours(asUser(worker), 404)
	assert.True(t, errcode.Is(err, errcode.TaskNotFound))
}

func TestStatisticsProjectCompletion(t *testing.T) {
	svc := newStatisticsFixture()

	got, err := svc.ProjectCompletion(asUser(worker), projectA)
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.Total)
	assert.EqualValues(t, 1, got.Todo)
	assert.EqualValues(t, 1, got.InProgress)
	assert.EqualValues(t, 1, got.Done)
	assert.InDelta(t, 33.33, got.CompletionRate, 1e-9)

	_, err = svc.ProjectCompletion(asUser(worker), 404)
	assert.True(t, errcode.Is(err, errcode.ProjectNotFound))
}

// 项目范围不受限不代表可以看工时或任务统计
func TestStatisticsUsesWorkHourAndTaskScopes(t *testing.T) {
	const viewer uint64 = 13
	svc := newStatisticsFixture()
	auth := svc.auth.(*fakeAuth)
	auth.system[viewer] = true
	auth.workHourProjects = map[uint64][]uint64{viewer: nil}
	auth.taskProjects = map[uint64][]uint64{viewer: {projectB}}

	_, err := svc.ProjectWorkHours(asUser(viewer), &params.DateRangeRequest{ID: projectA})
	assert.True(t, errcode.Is(err, errcode.ProjectAccessDenied))

	_, err = svc.TaskWorkHours(asUser(viewer), 7)
	assert.True(t, errcode.Is(err, errcode.ProjectAccessDenied))

	_, err = svc.ProjectCompletion(asUser(viewer), projectA)
	assert.True(t, errcode.Is(err, errcode.ProjectAccessDenied))

	got, err := svc.ProjectCompletion(asUser(viewer), projectB)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Total)
}

func TestStatisticsTrendFillsGaps(t *testing.T) {
	svc := newStatisticsFixture()

	got, err := svc.Trend(asUser(worker), &params.TrendRequest{Days: 4})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-05", got.StartDate)
	assert.Equal(t, "2024-05-08", got.EndDate)
	require.Len(t, got.Points, 4)
	want := []string{"0", "8", "4", "2.5"}
	for i, p := range got.Points {
		assert.True(t, hours(want[i]).Equal(p.Hours), "%s: %s", p.Date, p.Hours)
	}

	byUser, err := svc.Trend(asUser(adminID), &params.TrendRequest{UserID: outside, StartDate: "2024-05-01", EndDate: "2024-05-31"})
	require.NoError(t, err)
	assert.Len(t, byUser.Points, 31)
	assert.True(t, hours("6").Equal(byUser.TotalHours))

	_, err = svc.Trend(asUser(worker), &params.TrendRequest{Days: 400})
	assert.True(t, errcode.Is(err, errcode.ParamInvalid))
}

func TestStatisticsDashboard(t *testing.T) {
	svc := newStatisticsFixture()

	got, err := svc.Dashboard(asUser(worker))
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ProjectCount)
	assert.EqualValues(t, 3, got.TaskCount)
	assert.EqualValues(t, 1, got.MyOpenTasks)
	require.Len(t, got.PendingTasks, 1)
	assert.Equal(t, uint64(7), got.PendingTasks[0].ID)
	assert.True(t, hours("3.5").Equal(got.MyTodayHours), got.MyTodayHours.String())
	assert.True(t, hours("11.5").Equal(got.MyWeeklyHours), got.MyWeeklyHours.String())
	assert.True(t, hours("14.5").Equal(got.MyMonthlyHours), got.MyMonthlyHours.String())
}
