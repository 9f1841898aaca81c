package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/domain/vo"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type ProjectStore interface {
	ProjectReader
	GetByCode(ctx context.Context, code string) (*models.Project, error)
	GetByName(ctx context.Context, name string) (*models.Project, error)
	Create(ctx context.Context, m *models.Project) error
	Update(ctx context.Context, m *models.Project, cols ...string) error
	Delete(ctx context.Context, id uint64) error
	Page(ctx context.Context, q *params.ProjectQuery, scope authz.ProjectScope) ([]models.Project, int64, error)
}

type MemberStore interface {
	MemberReader
	ListByProject(ctx context.Context, projectID uint64) ([]models.ProjectMember, error)
	Add(ctx context.Context, members []*models.ProjectMember) error
	UpdateRole(ctx context.Context, m *models.ProjectMember) error
	Remove(ctx context.Context, projectID, userID uint64) (int64, error)
	RemoveProject(ctx context.Context, projectID uint64) error
}

type UserReader interface {
	Get(ctx context.Context, id uint64) (*models.User, error)
	ListByIDs(ctx context.Context, ids []uint64) ([]models.User, error)
}

// ProjectCounter 项目下的关联数据数量
type ProjectCounter interface {
	CountByProject(ctx context.Context, projectID uint64) (int64, error)
}

var projectUpdateCols = []string{
	"name", "description", "manager_id", "project_type", "status", "start_date", "end_date",
}

type ProjectService struct {
	tx         Transactor
	store      ProjectStore
	members    MemberStore
	users      UserReader
	iterations ProjectCounter
	tasks      ProjectCounter
	workHours  ProjectCounter
	auth       Authorizer
	audit      Auditor
	names      NameLookup
}

func NewProjectService(tx Transactor, store ProjectStore, members MemberStore, users UserReader,
	iterations, tasks, workHours ProjectCounter, auth Authorizer, audit Auditor, names NameLookup) *ProjectService {
	return &ProjectService{
		tx:         tx,
		store:      store,
		members:    members,
		users:      users,
		iterations: iterations,
		tasks:      tasks,
		workHours:  workHours,
		auth:       auth,
		audit:      audit,
		names:      names,
	}
}

// Page 只返回可见项目
func (s *ProjectService) Page(ctx context.Context, q *params.ProjectQuery) ([]*vo.Project, int64, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, 0, err
	}
	scope, err := s.auth.AccessibleProjects(ctx, user.UserID)
	if err != nil {
		return nil, 0, wrapFailure(ctx, err, errcode.DatabaseError, "resolve accessible projects")
	}
	rows, total, err := s.store.Page(ctx, q, scope)
	if err != nil {
		return nil, 0, wrapFailure(ctx, err, errcode.DatabaseError, "page projects")
	}
	out := make([]*vo.Project, 0, len(rows))
	for i := range rows {
		v, err := s.toVO(ctx, &rows[i])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, nil
}

func (s *ProjectService) Get(ctx context.Context, req *params.GetProjectRequest) (*vo.Project, error) {
	flags := params.NewResponseFlags(req.Flags)
	if err := flags.Validate(params.AllProjectFlags); err != nil {
		return nil, errcode.ParamInvalid.WithMessage(err.Error())
	}
	m, err := s.visible(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	out, err := s.toVO(ctx, m)
	if err != nil {
		return nil, err
	}
	if flags.Has(params.IncludeMembers) {
		if out.Members, err = s.memberVOs(ctx, m.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// visible 项目存在且在可见范围内
func (s *ProjectService) visible(ctx context.Context, id uint64) (*models.Project, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get project", zap.Uint64("id", id))
	}
	if m == nil {
		return nil, errcode.ProjectNotFound
	}
	if err := requireProject(ctx, s.auth, id); err != nil {
		return nil, err
	}
	return m, nil
}

// requireManager 系统级用户或项目经理
func (s *ProjectService) requireManager(ctx context.Context, projectID uint64) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}
	system, err := s.auth.IsSystemLevel(ctx, user.UserID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "resolve role level")
	}
	if system {
		return nil
	}
	member, err := s.members.Get(ctx, projectID, user.UserID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "get project member")
	}
	if member == nil || member.Role != enums.ProjectMemberManager {
		return errcode.Forbidden
	}
	return nil
}

// requireRoster 系统级用户或项目成员可维护成员名单
func (s *ProjectService) requireRoster(ctx context.Context, projectID uint64) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}
	system, err := s.auth.IsSystemLevel(ctx, user.UserID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "resolve role level")
	}
	if system {
		return nil
	}
	ok, err := s.members.IsMember(ctx, projectID, user.UserID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "check project member")
	}
	if !ok {
		return errcode.ProjectAccessDenied
	}
	return nil
}

// Create 创建人与项目经理自动成为项目经理成员
func (s *ProjectService) Create(ctx context.Context, req *params.CreateProjectRequest) (*vo.Project, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(req.Code)
	existing, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get project by code")
	}
	if existing != nil {
		return nil, errcode.ProjectCodeExists
	}
	m := &models.Project{
		Code:        code,
		ProjectType: enums.ProjectTypeSchedule,
		Status:      enums.ProjectStatusNotStarted,
		CreatorID:   user.UserID,
	}
	if err := s.apply(ctx, m, &req.ProjectFields); err != nil {
		return nil, err
	}
	if m.ManagerID == 0 {
		m.ManagerID = user.UserID
	}

	_, err = s.tx.Transaction(ctx, func(txCtx context.Context) (any, error) {
		if err := s.store.Create(txCtx, m); err != nil {
			return nil, err
		}
		managers := lo.Uniq([]uint64{user.UserID, m.ManagerID})
		return nil, s.members.Add(txCtx, lo.Map(managers, func(id uint64, _ int) *models.ProjectMember {
			return &models.ProjectMember{ProjectID: m.ID, UserID: id, Role: enums.ProjectMemberManager}
		}))
	})
	s.audit.Record(ctx, enums.ModuleProject, enums.OperationCreate, "创建项目 "+m.Name, err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.ProjectCreateFailed, "create project", zap.String("code", code))
	}
	logger.Info(ctx, "project created", zap.Uint64("id", m.ID), zap.String("code", m.Code))
	return s.toVO(ctx, m)
}

func (s *ProjectService) Update(ctx context.Context, req *params.UpdateProjectRequest) (*vo.Project, error) {
	m, err := s.visible(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManager(ctx, m.ID); err != nil {
		return nil, err
	}
	oldManager := m.ManagerID
	if err := s.apply(ctx, m, &req.ProjectFields); err != nil {
		return nil, err
	}

	_, err = s.tx.Transaction(ctx, func(txCtx context.Context) (any, error) {
		if err := s.store.Update(txCtx, m, projectUpdateCols...); err != nil {
			return nil, err
		}
		if m.ManagerID == oldManager {
			return nil, nil
		}
		return nil, s.promote(txCtx, m.ID, m.ManagerID)
	})
	s.audit.Record(ctx, enums.ModuleProject, enums.OperationUpdate, "修改项目 "+m.Name, err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.ProjectUpdateFailed, "update project", zap.Uint64("id", m.ID))
	}
	return s.toVO(ctx, m)
}

// promote 新项目经理加入或升级为经理成员
func (s *ProjectService) promote(ctx context.Context, projectID, userID uint64) error {
	member, err := s.members.Get(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return s.members.Add(ctx, []*models.ProjectMember{{ProjectID: projectID, UserID: userID, Role: enums.ProjectMemberManager}})
	}
	if member.Role == enums.ProjectMemberManager {
		return nil
	}
	member.Role = enums.ProjectMemberManager
	return s.members.UpdateRole(ctx, member)
}

func (s *ProjectService) apply(ctx context.Context, m *models.Project, f *params.ProjectFields) error {
	if strings.TrimSpace(f.Name) == "" {
		return errcode.ParamInvalid.WithMessage("project name must not be empty")
	}
	name := strings.TrimSpace(f.Name)
	byName, err := s.store.GetByName(ctx, name)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "get project by name")
	}
	if byName != nil && byName.ID != m.ID {
		return errcode.ProjectNameExists
	}
	if f.ProjectType != 0 {
		typ, err := enums.ParseProjectType(f.ProjectType)
		if err != nil {
			return err
		}
		m.ProjectType = typ
	}
	if f.Status != 0 {
		status, err := enums.ParseProjectStatus(f.Status)
		if err != nil {
			return errcode.ProjectStatusInvalid
		}
		m.Status = status
	}
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() && f.EndDate.Before(f.StartDate) {
		return errcode.ProjectDateInvalid
	}
	if f.ManagerID != 0 && f.ManagerID != m.ManagerID {
		manager, err := s.users.Get(ctx, f.ManagerID)
		if err != nil {
			return wrapFailure(ctx, err, errcode.DatabaseError, "get project manager")
		}
		if manager == nil || !manager.Enabled() {
			return errcode.ProjectManagerInvalid
		}
		m.ManagerID = f.ManagerID
	}
	m.Name = name
	m.Description = f.Description
	m.StartDate = f.StartDate.ToTime()
	m.EndDate = f.EndDate.ToTime()
	return nil
}

// Delete 项目下仍有迭代、任务或工时时拒绝
func (s *ProjectService) Delete(ctx context.Context, id uint64) error {
	m, err := s.visible(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireManager(ctx, id); err != nil {
		return err
	}
	for _, c := range []struct {
		counter ProjectCounter
		blocked *errcode.Error
	}{
		{s.iterations, errcode.ProjectHasIterations},
		{s.tasks, errcode.ProjectHasTasks},
		{s.workHours, errcode.ProjectHasWorkHours},
	} {
		n, err := c.counter.CountByProject(ctx, id)
		if err != nil {
			return wrapFailure(ctx, err, errcode.DatabaseError, "count project data", zap.Uint64("id", id))
		}
		if n > 0 {
			return c.blocked
		}
	}

	_, err = s.tx.Transaction(ctx, func(txCtx context.Context) (any, error) {
		if err := s.members.RemoveProject(txCtx, id); err != nil {
			return nil, err
		}
		return nil, s.store.Delete(txCtx, id)
	})
	s.audit.Record(ctx, enums.ModuleProject, enums.OperationDelete, "删除项目 "+m.Name, err)
	return wrapFailure(ctx, err, errcode.ProjectDeleteFailed, "delete project", zap.Uint64("id", id))
}

func (s *ProjectService) Members(ctx context.Context, projectID uint64) ([]*vo.ProjectMember, error) {
	if _, err := s.visible(ctx, projectID); err != nil {
		return nil, err
	}
	return s.memberVOs(ctx, projectID)
}

// AddMembers 已是成员的用户跳过
func (s *ProjectService) AddMembers(ctx context.Context, req *params.AddMembersRequest) ([]*vo.ProjectMember, error) {
	m, err := s.store.Get(ctx, req.ProjectID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get project")
	}
	if m == nil {
		return nil, errcode.ProjectNotFound
	}
	if err := s.requireRoster(ctx, m.ID); err != nil {
		return nil, err
	}
	role, err := parseMemberRole(req.Role)
	if err != nil {
		return nil, err
	}
	ids := lo.Uniq(lo.Without(req.UserIDs, 0))
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list users")
	}
	if len(users) != len(ids) {
		found := lo.Map(users, func(u models.User, _ int) uint64 { return u.ID })
		missing, _ := lo.Difference(ids, found)
		return nil, errcode.UserNotFound.WithMessagef("users %v do not exist", missing)
	}
	existing, err := s.members.ListByProject(ctx, m.ID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list project members")
	}
	joined := lo.SliceToMap(existing, func(pm models.ProjectMember) (uint64, bool) { return pm.UserID, true })
	added := lo.FilterMap(ids, func(id uint64, _ int) (*models.ProjectMember, bool) {
		return &models.ProjectMember{ProjectID: m.ID, UserID: id, Role: role}, !joined[id]
	})

	if len(added) > 0 {
		err = s.members.Add(ctx, added)
		s.audit.Record(ctx, enums.ModuleProject, enums.OperationAssign,
			fmt.Sprintf("项目 %s 添加成员 %d 人", m.Name, len(added)), err)
		if err != nil {
			return nil, wrapFailure(ctx, err, errcode.ProjectUpdateFailed, "add project members", zap.Uint64("id", m.ID))
		}
	}
	return s.memberVOs(ctx, m.ID)
}

func (s *ProjectService) UpdateMember(ctx context.Context, req *params.UpdateMemberRequest) (*vo.ProjectMember, error) {
	if err := s.requireRoster(ctx, req.ProjectID); err != nil {
		return nil, err
	}
	if req.Role == 0 {
		return nil, errcode.ProjectMemberRoleError
	}
	role, err := parseMemberRole(req.Role)
	if err != nil {
		return nil, err
	}
	member, err := s.members.Get(ctx, req.ProjectID, req.UserID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get project member")
	}
	if member == nil {
		return nil, errcode.ProjectMemberNotFound
	}
	member.Role = role
	err = s.members.UpdateRole(ctx, member)
	s.audit.Record(ctx, enums.ModuleProject, enums.OperationUpdate,
		fmt.Sprintf("项目 %d 成员 %d 角色改为 %s", req.ProjectID, req.UserID, role), err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.ProjectUpdateFailed, "update project member")
	}
	out, err := s.memberVOsOf(ctx, []models.ProjectMember{*member})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (s *ProjectService) RemoveMember(ctx context.Context, req *params.MemberPathRequest) error {
	if err := s.requireRoster(ctx, req.ProjectID); err != nil {
		return err
	}
	n, err := s.members.Remove(ctx, req.ProjectID, req.UserID)
	s.audit.Record(ctx, enums.ModuleProject, enums.OperationRemove,
		fmt.Sprintf("项目 %d 移除成员 %d", req.ProjectID, req.UserID), err)
	if err != nil {
		return wrapFailure(ctx, err, errcode.ProjectUpdateFailed, "remove project member")
	}
	if n == 0 {
		return errcode.ProjectMemberNotFound
	}
	return nil
}

// parseMemberRole 0 表示普通成员
func parseMemberRole(code int) (enums.ProjectMemberRole, error) {
	if code == 0 {
		return enums.ProjectMemberMember, nil
	}
	role, err := enums.ParseProjectMemberRole(code)
	if err != nil {
		return 0, errcode.ProjectMemberRoleError
	}
	return role, nil
}

func (s *ProjectService) memberVOs(ctx context.Context, projectID uint64) ([]*vo.ProjectMember, error) {
	rows, err := s.members.ListByProject(ctx, projectID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list project members")
	}
	return s.memberVOsOf(ctx, rows)
}

func (s *ProjectService) memberVOsOf(ctx context.Context, rows []models.ProjectMember) ([]*vo.ProjectMember, error) {
	if len(rows) == 0 {
		return []*vo.ProjectMember{}, nil
	}
	ids := lo.Map(rows, func(m models.ProjectMember, _ int) uint64 { return m.UserID })
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list member users")
	}
	byID := lo.KeyBy(users, func(u models.User) uint64 { return u.ID })
	out := make([]*vo.ProjectMember, 0, len(rows))
	for _, m := range rows {
		u := byID[m.UserID]
		out = append(out, &vo.ProjectMember{
			ProjectID: m.ProjectID,
			UserID:    m.UserID,
			Username:  u.Username,
			Nickname:  u.Nickname,
			Role:      m.Role,
			RoleDesc:  m.Role.String(),
			JoinTime:  m.JoinTime,
		})
	}
	return out, nil
}

func (s *ProjectService) toVO(ctx context.Context, m *models.Project) (*vo.Project, error) {
	out := &vo.Project{}
	if err := vo.Copy(out, m); err != nil {
		return nil, err
	}
	out.ManagerName = s.names.UserName(ctx, m.ManagerID)
	out.ProjectTypeDesc = m.ProjectType.String()
	out.StatusDesc = m.Status.String()
	return out, nil
}
