package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/dao"
	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/domain/vo"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 单条与单日工时上限
var maxDailyHours = decimal.NewFromInt(24)

type WorkHourStore interface {
	Get(ctx context.Context, id uint64) (*models.WorkHour, error)
	Create(ctx context.Context, m *models.WorkHour) error
	Update(ctx context.Context, m *models.WorkHour, cols ...string) error
	Delete(ctx context.Context, id uint64) error
	Page(ctx context.Context, q *params.WorkHourQuery, r dao.DateRange, scope authz.ProjectScope) ([]models.WorkHour, int64, error)
	ListOfUserOn(ctx context.Context, userID uint64, day time.Time) ([]models.WorkHour, error)
}

type ProjectReader interface {
	Get(ctx context.Context, id uint64) (*models.Project, error)
}

type TaskReader interface {
	Get(ctx context.Context, id uint64) (*models.Task, error)
}

// MemberReader 项目成员查询
type MemberReader interface {
	Get(ctx context.Context, projectID, userID uint64) (*models.ProjectMember, error)
	IsMember(ctx context.Context, projectID, userID uint64) (bool, error)
}

type WorkHourService struct {
	tx       Transactor
	store    WorkHourStore
	projects ProjectReader
	tasks    TaskReader
	members  MemberReader
	auth     Authorizer
	audit    Auditor
	names    NameLookup
}

func NewWorkHourService(tx Transactor, store WorkHourStore, projects ProjectReader, tasks TaskReader,
	members MemberReader, auth Authorizer, audit Auditor, names NameLookup) *WorkHourService {
	return &WorkHourService{
		tx:       tx,
		store:    store,
		projects: projects,
		tasks:    tasks,
		members:  members,
		auth:     auth,
		audit:    audit,
		names:    names,
	}
}

func checkHours(h decimal.Decimal) error {
	if !h.IsPositive() || h.GreaterThan(maxDailyHours) {
		return errcode.WorkHourHoursExceed
	}
	return nil
}

func (s *WorkHourService) Get(ctx context.Context, id uint64) (*vo.WorkHour, error) {
	m, err := s.visible(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toVO(ctx, m)
}

// visible 读取并校验可见范围，本人记录始终可见
func (s *WorkHourService) visible(ctx context.Context, id uint64) (*models.WorkHour, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get work hour", zap.Uint64("id", id))
	}
	if m == nil {
		return nil, errcode.WorkHourNotFound
	}
	if m.UserID == user.UserID {
		return m, nil
	}
	scope, err := s.auth.WorkHourScope(ctx, user.UserID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "resolve work hour scope")
	}
	if !scope.Contains(m.ProjectID) {
		return nil, errcode.ProjectAccessDenied
	}
	return m, nil
}

func (s *WorkHourService) Page(ctx context.Context, q *params.WorkHourQuery) ([]*vo.WorkHour, int64, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, 0, err
	}
	var r dao.DateRange
	if r.Start, err = parseDate("start_date", q.StartDate); err != nil {
		return nil, 0, err
	}
	if r.End, err = parseDate("end_date", q.EndDate); err != nil {
		return nil, 0, err
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return nil, 0, errcode.WorkHourDateInvalid
	}
	scope, err := s.auth.WorkHourScope(ctx, user.UserID)
	if err != nil {
		return nil, 0, wrapFailure(ctx, err, errcode.DatabaseError, "resolve work hour scope")
	}
	scope = scope.Narrow(q.ProjectID)

	rows, total, err := s.store.Page(ctx, q, r, scope)
	if err != nil {
		return nil, 0, wrapFailure(ctx, err, errcode.DatabaseError, "page work hours")
	}
	out := make([]*vo.WorkHour, 0, len(rows))
	for i := range rows {
		v, err := s.toVO(ctx, &rows[i])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, nil
}

// Create 登记本人工时，只能登记到自己所在的项目
func (s *WorkHourService) Create(ctx context.Context, req *params.CreateWorkHourRequest) (*vo.WorkHour, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkHours(req.Hours); err != nil {
		return nil, err
	}
	if req.WorkDate.IsZero() {
		return nil, errcode.WorkHourDateInvalid
	}
	if err := s.checkProject(ctx, req.ProjectID, user.UserID); err != nil {
		return nil, err
	}
	if err := s.checkTask(ctx, req.ProjectID, req.TaskID); err != nil {
		return nil, err
	}

	m := &models.WorkHour{
		UserID:    user.UserID,
		ProjectID: req.ProjectID,
		TaskID:    req.TaskID,
		WorkDate:  req.WorkDate.ToTime(),
		Hours:     req.Hours,
		Content:   req.Content,
		Status:    enums.WorkHourSaved,
	}
	_, err = s.tx.Transaction(ctx, func(ctx context.Context) (any, error) {
		if err := s.checkDaily(ctx, m, 0); err != nil {
			return nil, err
		}
		return nil, s.store.Create(ctx, m)
	})
	s.audit.Record(ctx, enums.ModuleWorkHour, enums.OperationCreate,
		fmt.Sprintf("登记工时 %s %sh", req.WorkDate, req.Hours), err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.WorkHourCreateFailed, "create work hour")
	}
	logger.Info(ctx, "work hour created", zap.Uint64("id", m.ID), zap.Uint64("project_id", m.ProjectID))
	return s.toVO(ctx, m)
}

func (s *WorkHourService) Update(ctx context.Context, req *params.UpdateWorkHourRequest) (*vo.WorkHour, error) {
	m, err := s.owned(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := checkHours(req.Hours); err != nil {
		return nil, err
	}
	if req.WorkDate.IsZero() {
		return nil, errcode.WorkHourDateInvalid
	}
	if err := s.checkTask(ctx, m.ProjectID, req.TaskID); err != nil {
		return nil, err
	}

	m.TaskID = req.TaskID
	m.WorkDate = req.WorkDate.ToTime()
	m.Hours = req.Hours
	m.Content = req.Content
	_, err = s.tx.Transaction(ctx, func(ctx context.Context) (any, error) {
		if err := s.checkDaily(ctx, m, m.ID); err != nil {
			return nil, err
		}
		return nil, s.store.Update(ctx, m, "task_id", "work_date", "hours", "content")
	})
	s.audit.Record(ctx, enums.ModuleWorkHour, enums.OperationUpdate, fmt.Sprintf("修改工时 %d", m.ID), err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.WorkHourUpdateFailed, "update work hour", zap.Uint64("id", m.ID))
	}
	return s.toVO(ctx, m)
}

// UpdateStatus 状态只能向后流转；确认需要项目经理或系统级角色
func (s *WorkHourService) UpdateStatus(ctx context.Context, req *params.UpdateWorkHourStatusRequest) (*vo.WorkHour, error) {
	next, err := enums.ParseWorkHourStatus(req.Status)
	if err != nil {
		return nil, err
	}
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.visible(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !m.Status.CanTransitionTo(next) {
		return nil, errcode.WorkHourStatusInvalid.WithMessagef("cannot move work hour from %s to %s", m.Status, next)
	}

	cols := []string{"status"}
	if next == enums.WorkHourConfirmed {
		if err := s.requireManager(ctx, m.ProjectID, user.UserID); err != nil {
			return nil, err
		}
		m.ConfirmerID = user.UserID
		m.ConfirmTime = time.Now()
		cols = append(cols, "confirmer_id", "confirm_time")
	} else if m.UserID != user.UserID {
		return nil, errcode.Forbidden
	}
	m.Status = next

	err = s.store.Update(ctx, m, cols...)
	s.audit.Record(ctx, enums.ModuleWorkHour, enums.OperationUpdate,
		fmt.Sprintf("工时 %d 状态变更为 %s", m.ID, next), err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.WorkHourUpdateFailed, "update work hour status", zap.Uint64("id", m.ID))
	}
	return s.toVO(ctx, m)
}

func (s *WorkHourService) Delete(ctx context.Context, id uint64) error {
	m, err := s.owned(ctx, id)
	if err != nil {
		return err
	}
	err = s.store.Delete(ctx, m.ID)
	s.audit.Record(ctx, enums.ModuleWorkHour, enums.OperationDelete, fmt.Sprintf("删除工时 %d", m.ID), err)
	return wrapFailure(ctx, err, errcode.WorkHourDeleteFailed, "delete work hour", zap.Uint64("id", id))
}

// owned 只有本人（或系统级用户）可修改，已确认的记录锁定
func (s *WorkHourService) owned(ctx context.Context, id uint64) (*models.WorkHour, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.visible(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.UserID != user.UserID {
		system, err := s.auth.IsSystemLevel(ctx, user.UserID)
		if err != nil {
			return nil, wrapFailure(ctx, err, errcode.DatabaseError, "resolve role level")
		}
		if !system {
			return nil, errcode.Forbidden
		}
	}
	if m.Status == enums.WorkHourConfirmed {
		return nil, errcode.WorkHourLocked
	}
	return m, nil
}

func (s *WorkHourService) checkProject(ctx context.Context, projectID, userID uint64) error {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "get project", zap.Uint64("project_id", projectID))
	}
	if p == nil {
		return errcode.ProjectNotFound
	}
	ok, err := s.members.IsMember(ctx, projectID, userID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "check project member")
	}
	if !ok {
		return errcode.WorkHourProjectInvalid
	}
	return nil
}

func (s *WorkHourService) checkTask(ctx context.Context, projectID, taskID uint64) error {
	if taskID == 0 {
		return nil
	}
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "get task", zap.Uint64("task_id", taskID))
	}
	if t == nil || t.ProjectID != projectID {
		return errcode.WorkHourTaskInvalid
	}
	return nil
}

// checkDaily 同一用户同一天合计不超过 24 小时，同项目同任务不允许重复登记
func (s *WorkHourService) checkDaily(ctx context.Context, m *models.WorkHour, excludeID uint64) error {
	rows, err := s.store.ListOfUserOn(ctx, m.UserID, m.WorkDate)
	if err != nil {
		return err
	}
	total := m.Hours
	for _, r := range rows {
		if r.ID == excludeID {
			continue
		}
		if r.ProjectID == m.ProjectID && r.TaskID == m.TaskID {
			return errcode.WorkHourDuplicate
		}
		total = total.Add(r.Hours)
	}
	if total.GreaterThan(maxDailyHours) {
		return errcode.WorkHourDailyExceed.WithMessagef("daily total %s exceeds 24 hours", total)
	}
	return nil
}

func (s *WorkHourService) requireManager(ctx context.Context, projectID, userID uint64) error {
	system, err := s.auth.IsSystemLevel(ctx, userID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "resolve role level")
	}
	if system {
		return nil
	}
	member, err := s.members.Get(ctx, projectID, userID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "get project member")
	}
	if member == nil || member.Role != enums.ProjectMemberManager {
		return errcode.Forbidden.WithMessage("only project managers can confirm work hours")
	}
	return nil
}

func (s *WorkHourService) toVO(ctx context.Context, m *models.WorkHour) (*vo.WorkHour, error) {
	out := new(vo.WorkHour)
	if err := vo.Copy(out, m); err != nil {
		return nil, err
	}
	out.ConfirmTime = vo.TimePtr(m.ConfirmTime)
	out.StatusDesc = m.Status.String()
	out.Username = s.names.UserName(ctx, m.UserID)
	return out, nil
}
