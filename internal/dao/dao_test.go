//go:build cgo

package dao

import (
	"context"
	"testing"
	"time"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"xorm.io/xorm"
)

func newTestDAO(t *testing.T) *DAO {
	t.Helper()
	engine, err := xorm.NewEngine("sqlite3", ":memory:")
	require.NoError(t, err)
	// 内存库每个连接独立，限制为单连接
	engine.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = engine.Close() })

	require.NoError(t, SyncDB(context.Background(), engine, false))
	return New(engine)
}

func seedProjects(t *testing.T, d *DAO, codes ...string) []uint64 {
	t.Helper()
	ctx := context.Background()
	ids := make([]uint64, 0, len(codes))
	for _, code := range codes {
		p := &models.Project{Name: "project " + code, Code: code, ProjectType: enums.ProjectTypeSchedule, Status: enums.ProjectStatusInProgress}
		require.NoError(t, d.Projects.Create(ctx, p))
		ids = append(ids, p.ID)
	}
	return ids
}

func TestGetMissReturnsNil(t *testing.T) {
	d := newTestDAO(t)
	ctx := context.Background()

	u, err := d.Users.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = d.Users.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestAuthzStoreAgainstDatabase(t *testing.T) {
	d := newTestDAO(t)
	ctx := context.Background()

	admin := &models.Role{Name: "管理员", Code: "ADMIN", RoleType: enums.RoleTypeSystem, RoleLevel: enums.RoleLevelSystem}
	member := &models.Role{Name: "成员", Code: "USER", RoleType: enums.RoleTypeCustom, RoleLevel: enums.RoleLevelProject}
	require.NoError(t, d.Roles.Create(ctx, admin))
	require.NoError(t, d.Roles.Create(ctx, member))

	create := &models.Permission{Name: "新建任务", Code: "TASK_CREATE", PermissionType: enums.PermissionTypeFunctional}
	view := &models.Permission{Name: "查看工时", Code: "WORKHOUR_VIEW", PermissionType: enums.PermissionTypeFunctional}
	require.NoError(t, d.Permissions.Create(ctx, create))
	require.NoError(t, d.Permissions.Create(ctx, view))
	require.NoError(t, d.Roles.ReplacePermissions(ctx, member.ID, []uint64{create.ID, view.ID, create.ID}))

	u := &models.User{Username: "alice", Password: "x", Status: enums.UserStatusNormal}
	require.NoError(t, d.Users.Create(ctx, u))
	require.NoError(t, d.Users.ReplaceRoles(ctx, u.ID, []uint64{member.ID}))

	projects := seedProjects(t, d, "P1", "P2", "P3")
	require.NoError(t, d.Members.Add(ctx, []*models.ProjectMember{
		{ProjectID: projects[0], UserID: u.ID, Role: enums.ProjectMemberMember},
		{ProjectID: projects[2], UserID: u.ID, Role: enums.ProjectMemberMember},
	}))

	store := d.AuthzStore()
	codes, err := store.PermissionCodesOfRole(ctx, member.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"TASK_CREATE", "WORKHOUR_VIEW"}, codes)

	resolver := authz.NewResolver(store, authz.NewMemoryPermissionCache(time.Minute))
	scope, err := resolver.AccessibleProjects(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{projects[0], projects[2]}, scope.IDs())
	assert.True(t, resolver.HasPermission(ctx, u.ID, "TASK_CREATE"))

	rows, total, err := d.Projects.Page(ctx, &params.ProjectQuery{}, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 2)

	// 换成系统角色后不再受项目限制
	require.NoError(t, d.Users.ReplaceRoles(ctx, u.ID, []uint64{admin.ID}))
	scope, err = resolver.AccessibleProjects(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, scope.IsUnrestricted())
	_, total, err = d.Projects.Page(ctx, &params.ProjectQuery{}, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	n, err := d.Users.CountUsersOfRole(ctx, member.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEmptyScopeMatchesNothing(t *testing.T) {
	d := newTestDAO(t)
	ctx := context.Background()
	seedProjects(t, d, "A", "B")

	rows, total, err := d.Projects.Page(ctx, &params.ProjectQuery{}, authz.Restricted())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
}

func TestTaskPageAssigneeFilterStaysInScope(t *testing.T) {
	d := newTestDAO(t)
	ctx := context.Background()
	projects := seedProjects(t, d, "A", "B")

	for _, pid := range projects {
		task := &models.Task{ProjectID: pid, Title: "t", AssigneeID: 7, TaskType: enums.TaskTypeTask,
			Status: enums.TaskStatusTodo, Priority: enums.TaskPriorityMedium, EstimateHours: decimal.NewFromInt(4)}
		require.NoError(t, d.Tasks.Create(ctx, task))
	}

	rows, total, err := d.Tasks.Page(ctx, &params.TaskQuery{AssigneeID: 7}, authz.Restricted(projects[0]))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, projects[0], rows[0].ProjectID)

	_, total, err = d.Tasks.Page(ctx, &params.TaskQuery{AssigneeID: 7}, authz.Unrestricted())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	open, err := d.Tasks.CountOpenOfAssignee(ctx, 7, authz.Unrestricted())
	require.NoError(t, err)
	assert.Equal(t, int64(2), open)
}

func TestTaskSoftDelete(t *testing.T) {
	d := newTestDAO(t)
	ctx := context.Background()
	projects := seedProjects(t, d, "A")

	task := &models.Task{ProjectID: projects[0], Title: "gone", TaskType: enums.TaskTypeTask, Status: enums.TaskStatusTodo, Priority: enums.TaskPriorityLow}
	require.NoError(t, d.Tasks.Create(ctx, task))
	require.NoError(t, d.Tasks.Delete(ctx, task.ID))

	got, err := d.Tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := d.Tasks.CountByProject(ctx, projects[0])
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDepartmentChecks(t *testing.T) {
	d := newTestDAO(t)
	ctx := context.Background()

	root := &models.Department{Name: "总部", Level: 1}
	require.NoError(t, d.Departments.Create(ctx, root))
	child := &models.Department{Name: "研发", ParentID: root.ID, Level: 2}
	require.NoError(t, d.Departments.Create(ctx, child))
	require.NoError(t, d.Users.Create(ctx, &models.User{Username: "bob", Password: "x", DepartmentID: child.ID, Status: enums.UserStatusNormal}))

	n, err := d.Departments.CountChildren(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	users, err := d.Users.CountByDepartment(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), users)

	exists, err := d.Departments.ExistsName(ctx, root.ID, "研发", 0)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = d.Departments.ExistsName(ctx, root.ID, "研发", child.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTransactionRollsBack(t *testing.T) {
	d := newTestDAO(t)
	ctx := context.Background()

	_, err := d.Tx.Transaction(ctx, func(txCtx context.Context) (any, error) {
		if err := d.Departments.Create(txCtx, &models.Department{Name: "临时"}); err != nil {
			return nil, err
		}
		return nil, assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	all, err := d.Departments.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUserReferences(t *testing.T) {
	d := newTestDAO(t)
	ctx := context.Background()
	refs := d.UserRefs()
	users := make([]uint64, 0, 5)
	for _, name := range []string{"free", "member", "manager", "assignee", "logger"} {
		u := &models.User{Username: name, Password: "x", Status: enums.UserStatusNormal}
		require.NoError(t, d.Users.Create(ctx, u))
		users = append(users, u.ID)
	}
	pid := seedProjects(t, d, "R1")[0]

	require.NoError(t, d.Members.Add(ctx, []*models.ProjectMember{{ProjectID: pid, UserID: users[1], Role: enums.ProjectMemberMember}}))
	p, err := d.Projects.Get(ctx, pid)
	require.NoError(t, err)
	p.ManagerID = users[2]
	require.NoError(t, d.Projects.Update(ctx, p, "manager_id"))
	require.NoError(t, d.Tasks.Create(ctx, &models.Task{ProjectID: pid, Title: "t", AssigneeID: users[3], TaskType: enums.TaskTypeTask,
		Status: enums.TaskStatusDone, Priority: enums.TaskPriorityLow}))
	require.NoError(t, d.WorkHours.Create(ctx, &models.WorkHour{UserID: users[4], ProjectID: pid, WorkDate: time.Now(), Hours: decimal.NewFromInt(2)}))

	for i, want := range []string{"", "project member", "project manager", "task assignee", "work hour"} {
		got, err := refs.UserReferences(ctx, users[i])
		require.NoError(t, err)
		assert.Equal(t, want, got, "user %d", users[i])
	}
}
