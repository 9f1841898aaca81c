// Package dao 按实体封装 xorm 仓储，单条查询未命中时返回 (nil, nil)。
package dao

import (
	"context"

	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/pkg/repository"
	"xorm.io/xorm"
)

// DAO 全部数据访问对象，由组合根创建一次
type DAO struct {
	Tx            repository.TransactionExecutor
	Users         *UserDAO
	Roles         *RoleDAO
	Permissions   *PermissionDAO
	Departments   *DepartmentDAO
	Menus         *MenuDAO
	OperationLogs *OperationLogDAO
	Projects      *ProjectDAO
	Members       *MemberDAO
	Iterations    *IterationDAO
	Tasks         *TaskDAO
	TaskLinks     *TaskLinkDAO
	WorkHours     *WorkHourDAO
}

func New(engine *xorm.Engine) *DAO {
	return NewWithProcessor(repository.NewXormProcessor(engine))
}

func NewWithProcessor(p repository.ORMProcessor) *DAO {
	return &DAO{
		Tx:            p,
		Users:         NewUserDAO(p),
		Roles:         NewRoleDAO(p),
		Permissions:   NewPermissionDAO(p),
		Departments:   NewDepartmentDAO(p),
		Menus:         NewMenuDAO(p),
		OperationLogs: NewOperationLogDAO(p),
		Projects:      NewProjectDAO(p),
		Members:       NewMemberDAO(p),
		Iterations:    NewIterationDAO(p),
		Tasks:         NewTaskDAO(p),
		TaskLinks:     NewTaskLinkDAO(p),
		WorkHours:     NewWorkHourDAO(p),
	}
}

// AuthzStore 权限解析所需的数据访问
type AuthzStore struct {
	users   *UserDAO
	roles   *RoleDAO
	perms   *PermissionDAO
	members *MemberDAO
}

func (d *DAO) AuthzStore() *AuthzStore {
	return &AuthzStore{users: d.Users, roles: d.Roles, perms: d.Permissions, members: d.Members}
}

func (s *AuthzStore) RoleIDsOfUser(ctx context.Context, userID uint64) ([]uint64, error) {
	return s.users.RoleIDsOfUser(ctx, userID)
}

func (s *AuthzStore) RolesByIDs(ctx context.Context, roleIDs []uint64) ([]models.Role, error) {
	return s.roles.ListByIDs(ctx, roleIDs)
}

func (s *AuthzStore) PermissionCodesOfRole(ctx context.Context, roleID uint64) ([]string, error) {
	ids, err := s.roles.PermissionIDsOfRole(ctx, roleID)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	perms, err := s.perms.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(perms))
	for _, p := range perms {
		codes = append(codes, p.Code)
	}
	return codes, nil
}

func (s *AuthzStore) ProjectIDsOfMember(ctx context.Context, userID uint64) ([]uint64, error) {
	return s.members.ProjectIDsOfMember(ctx, userID)
}

// UserRefs 用户被业务数据引用的情况
type UserRefs struct {
	members   *MemberDAO
	projects  *ProjectDAO
	tasks     *TaskDAO
	workHours *WorkHourDAO
}

func (d *DAO) UserRefs() *UserRefs {
	return &UserRefs{members: d.Members, projects: d.Projects, tasks: d.Tasks, workHours: d.WorkHours}
}

// UserReferences 返回第一类仍引用该用户的数据名称，未被引用时为空串
func (s *UserRefs) UserReferences(ctx context.Context, userID uint64) (string, error) {
	checks := []struct {
		name  string
		count func(context.Context, uint64) (int64, error)
	}{
		{"project member", s.members.CountOfUser},
		{"project manager", s.projects.CountManagedBy},
		{"task assignee", s.tasks.CountOfAssignee},
		{"work hour", s.workHours.CountByUser},
	}
	for _, c := range checks {
		n, err := c.count(ctx, userID)
		if err != nil {
			return "", err
		}
		if n > 0 {
			return c.name, nil
		}
	}
	return "", nil
}
