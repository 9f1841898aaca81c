package service

import (
	"context"
	"fmt"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/domain/vo"
	"github.com/ayxworxfr/gsms/pkg/tree"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type DepartmentStore interface {
	Get(ctx context.Context, id uint64) (*models.Department, error)
	Create(ctx context.Context, m *models.Department) error
	Update(ctx context.Context, m *models.Department, cols ...string) error
	Delete(ctx context.Context, id uint64) error
	Page(ctx context.Context, q *params.DepartmentQuery) ([]models.Department, int64, error)
	ListAll(ctx context.Context) ([]models.Department, error)
	CountChildren(ctx context.Context, id uint64) (int64, error)
	ExistsName(ctx context.Context, parentID uint64, name string, excludeID uint64) (bool, error)
}

// DepartmentUsers 部门下的用户
type DepartmentUsers interface {
	ListAll(ctx context.Context) ([]models.User, error)
	CountByDepartment(ctx context.Context, departmentID uint64) (int64, error)
}

var departmentAccessor = tree.Accessor[uint64, models.Department]{
	ID:       func(d models.Department) uint64 { return d.ID },
	ParentID: func(d models.Department) uint64 { return d.ParentID },
	Sort:     func(d models.Department) int { return d.Sort },
}

type DepartmentService struct {
	tx    Transactor
	store DepartmentStore
	users DepartmentUsers
	auth  Authorizer
	audit Auditor
	cache CacheInvalidator
}

func NewDepartmentService(tx Transactor, store DepartmentStore, users DepartmentUsers, auth Authorizer, audit Auditor, cache CacheInvalidator) *DepartmentService {
	return &DepartmentService{tx: tx, store: store, users: users, auth: auth, audit: audit, cache: cache}
}

// Tree 全部部门组装为森林，附带直属用户数
func (s *DepartmentService) Tree(ctx context.Context) ([]*vo.Department, error) {
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list departments")
	}
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list users")
	}
	counts := lo.CountValuesBy(users, func(u models.User) uint64 { return u.DepartmentID })

	var convErr error
	forest := tree.Map(tree.Build(rows, departmentAccessor), func(d models.Department, children []*vo.Department) *vo.Department {
		out := new(vo.Department)
		if err := vo.Copy(out, &d); err != nil && convErr == nil {
			convErr = err
		}
		out.UserCount = int64(counts[d.ID])
		out.Children = children
		return out
	})
	if convErr != nil {
		return nil, convErr
	}
	return forest, nil
}

func (s *DepartmentService) Page(ctx context.Context, q *params.DepartmentQuery) ([]*vo.Department, int64, error) {
	rows, total, err := s.store.Page(ctx, q)
	if err != nil {
		return nil, 0, wrapFailure(ctx, err, errcode.DatabaseError, "page departments")
	}
	out, err := vo.CopySlice[models.Department, vo.Department](rows)
	return out, total, err
}

func (s *DepartmentService) Get(ctx context.Context, id uint64) (*vo.Department, error) {
	m, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := new(vo.Department)
	if err := vo.Copy(out, m); err != nil {
		return nil, err
	}
	if out.UserCount, err = s.users.CountByDepartment(ctx, id); err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "count department users")
	}
	return out, nil
}

func (s *DepartmentService) get(ctx context.Context, id uint64) (*models.Department, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get department", zap.Uint64("id", id))
	}
	if m == nil {
		return nil, errcode.DepartmentNotFound
	}
	return m, nil
}

func (s *DepartmentService) Create(ctx context.Context, req *params.CreateDepartmentRequest) (*vo.Department, error) {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return nil, err
	}
	user, _ := currentUser(ctx)
	level, err := s.levelUnder(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, req.ParentID, req.Name, 0); err != nil {
		return nil, err
	}

	m := &models.Department{
		Name:         req.Name,
		ParentID:     req.ParentID,
		Level:        level,
		Sort:         req.Sort,
		Remark:       req.Remark,
		CreateUserID: user.UserID,
	}
	err = s.store.Create(ctx, m)
	s.audit.Record(ctx, enums.ModuleDepartment, enums.OperationCreate, fmt.Sprintf("创建部门 %s", m.Name), err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DepartmentCreateFailed, "create department")
	}
	s.cache.Invalidate()
	return s.Get(ctx, m.ID)
}

// Update 改父部门时不能挂到自己或自己的后代下
func (s *DepartmentService) Update(ctx context.Context, req *params.UpdateDepartmentRequest) (*vo.Department, error) {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return nil, err
	}
	m, err := s.get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.ParentID != m.ParentID {
		if err := s.checkParent(ctx, m.ID, req.ParentID); err != nil {
			return nil, err
		}
	}
	level, err := s.levelUnder(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, req.ParentID, req.Name, m.ID); err != nil {
		return nil, err
	}

	moved := level != m.Level
	m.Name, m.ParentID, m.Level, m.Sort, m.Remark = req.Name, req.ParentID, level, req.Sort, req.Remark
	_, err = s.tx.Transaction(ctx, func(txCtx context.Context) (any, error) {
		if err := s.store.Update(txCtx, m, "name", "parent_id", "level", "sort", "remark"); err != nil {
			return nil, err
		}
		if !moved {
			return nil, nil
		}
		return nil, s.relevelDescendants(txCtx, m)
	})
	s.audit.Record(ctx, enums.ModuleDepartment, enums.OperationUpdate, fmt.Sprintf("修改部门 %s", m.Name), err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DepartmentUpdateFailed, "update department", zap.Uint64("id", m.ID))
	}
	s.cache.Invalidate()
	return s.Get(ctx, m.ID)
}

// Delete 有子部门或仍有用户时拒绝，且不做任何修改
func (s *DepartmentService) Delete(ctx context.Context, id uint64) error {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return err
	}
	m, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	children, err := s.store.CountChildren(ctx, id)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "count child departments")
	}
	if children > 0 {
		return errcode.DepartmentHasChildren
	}
	users, err := s.users.CountByDepartment(ctx, id)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "count department users")
	}
	if users > 0 {
		return errcode.DepartmentHasUsers
	}

	err = s.store.Delete(ctx, id)
	s.audit.Record(ctx, enums.ModuleDepartment, enums.OperationDelete, fmt.Sprintf("删除部门 %s", m.Name), err)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DepartmentDeleteFailed, "delete department", zap.Uint64("id", id))
	}
	s.cache.Invalidate()
	return nil
}

// relevelDescendants 按新层级逐层重算 root 所有后代的 level
func (s *DepartmentService) relevelDescendants(ctx context.Context, root *models.Department) error {
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return err
	}
	byID := lo.SliceToMap(rows, func(d models.Department) (uint64, models.Department) { return d.ID, d })
	children := lo.GroupBy(rows, func(d models.Department) uint64 { return d.ParentID })
	childrenOf := func(id uint64) []uint64 {
		return lo.Map(children[id], func(d models.Department, _ int) uint64 { return d.ID })
	}
	levels := map[uint64]int{root.ID: root.Level}
	for _, id := range tree.Descendants(childrenOf, root.ID) {
		d := byID[id]
		d.Level = levels[d.ParentID] + 1
		levels[id] = d.Level
		if err := s.store.Update(ctx, &d, "level"); err != nil {
			return err
		}
	}
	return nil
}

// levelUnder 父部门为 0 时为第一级
func (s *DepartmentService) levelUnder(ctx context.Context, parentID uint64) (int, error) {
	if parentID == 0 {
		return 1, nil
	}
	parent, err := s.store.Get(ctx, parentID)
	if err != nil {
		return 0, wrapFailure(ctx, err, errcode.DatabaseError, "get parent department")
	}
	if parent == nil {
		return 0, errcode.DepartmentParentInvalid.WithMessage("parent department does not exist")
	}
	return parent.Level + 1, nil
}

func (s *DepartmentService) checkParent(ctx context.Context, id, parentID uint64) error {
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "list departments")
	}
	parents := lo.SliceToMap(rows, func(d models.Department) (uint64, uint64) { return d.ID, d.ParentID })
	parentOf := func(k uint64) (uint64, bool) {
		p, ok := parents[k]
		return p, ok
	}
	if tree.WouldCreateCycle(parentOf, id, parentID) {
		return errcode.DepartmentParentInvalid.WithMessage("department cannot move under itself or its descendants")
	}
	return nil
}

func (s *DepartmentService) checkName(ctx context.Context, parentID uint64, name string, excludeID uint64) error {
	exists, err := s.store.ExistsName(ctx, parentID, name, excludeID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "check department name")
	}
	if exists {
		return errcode.DepartmentNameExists
	}
	return nil
}
