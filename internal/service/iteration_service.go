package service

import (
	"context"
	"strings"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/domain/vo"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type IterationStore interface {
	Get(ctx context.Context, id uint64) (*models.Iteration, error)
	Create(ctx context.Context, m *models.Iteration) error
	Update(ctx context.Context, m *models.Iteration, cols ...string) error
	Delete(ctx context.Context, id uint64) error
	Page(ctx context.Context, q *params.IterationQuery, scope authz.ProjectScope) ([]models.Iteration, int64, error)
	ListByProject(ctx context.Context, projectID uint64) ([]models.Iteration, error)
}

// IterationTasks 迭代下的任务数量
type IterationTasks interface {
	CountByIteration(ctx context.Context, iterationID uint64) (int64, error)
}

var iterationUpdateCols = []string{"name", "description", "status", "start_date", "end_date"}

type IterationService struct {
	store    IterationStore
	projects ProjectReader
	tasks    IterationTasks
	auth     Authorizer
	audit    Auditor
}

func NewIterationService(store IterationStore, projects ProjectReader, tasks IterationTasks, auth Authorizer, audit Auditor) *IterationService {
	return &IterationService{store: store, projects: projects, tasks: tasks, auth: auth, audit: audit}
}

// Page project_id 过滤与可见范围取交集
func (s *IterationService) Page(ctx context.Context, q *params.IterationQuery) ([]*vo.Iteration, int64, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, 0, err
	}
	scope, err := s.auth.AccessibleProjects(ctx, user.UserID)
	if err != nil {
		return nil, 0, wrapFailure(ctx, err, errcode.DatabaseError, "resolve accessible projects")
	}
	if q.ProjectID != 0 {
		scope = scope.Narrow(q.ProjectID)
	}
	rows, total, err := s.store.Page(ctx, q, scope)
	if err != nil {
		return nil, 0, wrapFailure(ctx, err, errcode.DatabaseError, "page iterations")
	}
	names := map[uint64]string{}
	out := make([]*vo.Iteration, 0, len(rows))
	for i := range rows {
		v, err := iterationVO(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		name, ok := names[v.ProjectID]
		if !ok {
			name = s.projectName(ctx, v.ProjectID)
			names[v.ProjectID] = name
		}
		v.ProjectName = name
		out = append(out, v)
	}
	return out, total, nil
}

func (s *IterationService) projectName(ctx context.Context, projectID uint64) string {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil || p == nil {
		return ""
	}
	return p.Name
}

func (s *IterationService) Get(ctx context.Context, id uint64) (*vo.Iteration, error) {
	m, err := s.visible(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := iterationVO(m)
	if err != nil {
		return nil, err
	}
	out.ProjectName = s.projectName(ctx, m.ProjectID)
	return out, nil
}

func (s *IterationService) visible(ctx context.Context, id uint64) (*models.Iteration, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get iteration", zap.Uint64("id", id))
	}
	if m == nil {
		return nil, errcode.IterationNotFound
	}
	if err := requireProject(ctx, s.auth, m.ProjectID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *IterationService) Create(ctx context.Context, req *params.CreateIterationRequest) (*vo.Iteration, error) {
	project, err := s.projects.Get(ctx, req.ProjectID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get project")
	}
	if project == nil {
		return nil, errcode.ProjectNotFound
	}
	if err := requireProject(ctx, s.auth, project.ID); err != nil {
		return nil, err
	}
	m := &models.Iteration{ProjectID: project.ID, Status: enums.IterationStatusNotStarted}
	if err := s.apply(ctx, m, &req.IterationFields); err != nil {
		return nil, err
	}
	err = s.store.Create(ctx, m)
	s.audit.Record(ctx, enums.ModuleIteration, enums.OperationCreate, "创建迭代 "+m.Name, err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.IterationCreateFailed, "create iteration", zap.Uint64("project_id", project.ID))
	}
	out, err := iterationVO(m)
	if err != nil {
		return nil, err
	}
	out.ProjectName = project.Name
	return out, nil
}

func (s *IterationService) Update(ctx context.Context, req *params.UpdateIterationRequest) (*vo.Iteration, error) {
	m, err := s.visible(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, m, &req.IterationFields); err != nil {
		return nil, err
	}
	err = s.store.Update(ctx, m, iterationUpdateCols...)
	s.audit.Record(ctx, enums.ModuleIteration, enums.OperationUpdate, "修改迭代 "+m.Name, err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.IterationUpdateFailed, "update iteration", zap.Uint64("id", m.ID))
	}
	return s.Get(ctx, m.ID)
}

// apply 名称在项目内唯一
func (s *IterationService) apply(ctx context.Context, m *models.Iteration, f *params.IterationFields) error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return errcode.ParamInvalid.WithMessage("iteration name must not be empty")
	}
	if f.Status != 0 {
		status, err := enums.ParseIterationStatus(f.Status)
		if err != nil {
			return errcode.IterationStatusInvalid
		}
		m.Status = status
	}
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() && f.EndDate.Before(f.StartDate) {
		return errcode.IterationDateInvalid
	}
	siblings, err := s.store.ListByProject(ctx, m.ProjectID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "list iterations", zap.Uint64("project_id", m.ProjectID))
	}
	if lo.ContainsBy(siblings, func(it models.Iteration) bool { return it.ID != m.ID && it.Name == name }) {
		return errcode.IterationNameExists
	}
	m.Name = name
	m.Description = f.Description
	m.StartDate = f.StartDate.ToTime()
	m.EndDate = f.EndDate.ToTime()
	return nil
}

// Delete 迭代下仍有任务时拒绝
func (s *IterationService) Delete(ctx context.Context, id uint64) error {
	m, err := s.visible(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.tasks.CountByIteration(ctx, id)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "count iteration tasks", zap.Uint64("id", id))
	}
	if n > 0 {
		return errcode.IterationHasTasks
	}
	err = s.store.Delete(ctx, id)
	s.audit.Record(ctx, enums.ModuleIteration, enums.OperationDelete, "删除迭代 "+m.Name, err)
	return wrapFailure(ctx, err, errcode.IterationDeleteFailed, "delete iteration", zap.Uint64("id", id))
}

func iterationVO(m *models.Iteration) (*vo.Iteration, error) {
	out := &vo.Iteration{}
	if err := vo.Copy(out, m); err != nil {
		return nil, err
	}
	out.StatusDesc = m.Status.String()
	return out, nil
}
