package repository

import (
	"context"
)

// Op 条件操作符，也用于请求结构体的 xorm:"col op=xx" 标签
type Op string

func (op Op) String() string {
	return string(op)
}

const (
	OpLike       Op = "like"
	OpStartsWith Op = "startswith"
	OpEndsWith   Op = "endswith"
	OpEq         Op = "eq"
	OpNe         Op = "ne"
	OpGt         Op = "gt"
	OpLt         Op = "lt"
	OpGe         Op = "ge"
	OpLe         Op = "le"
	OpIn         Op = "in"
	OpNotIn      Op = "notin"
	OpNull       Op = "null"
	OpNotNull    Op = "notnull"
)

// Condition 查询条件
type Condition struct {
	Field string
	Op    Op
	Value any
}

// QueryBuilder 链式查询构建器，条件之间为 AND
type QueryBuilder[T any] struct {
	processor  ORMProcessor
	conditions []Condition
	orderBy    string
	limit      int
	offset     int
	lock       bool
}

// NewQueryBuilder 创建链式查询构建器
func NewQueryBuilder[T any](processor ORMProcessor) *QueryBuilder[T] {
	return &QueryBuilder[T]{processor: processor}
}

func (qb *QueryBuilder[T]) where(field string, op Op, value any) *QueryBuilder[T] {
	qb.conditions = append(qb.conditions, Condition{Field: field, Op: op, Value: value})
	return qb
}

func (qb *QueryBuilder[T]) Eq(field string, value any) *QueryBuilder[T] {
	return qb.where(field, OpEq, value)
}

func (qb *QueryBuilder[T]) Ne(field string, value any) *QueryBuilder[T] {
	return qb.where(field, OpNe, value)
}

func (qb *QueryBuilder[T]) Gt(field string, value any) *QueryBuilder[T] {
	return qb.where(field, OpGt, value)
}

func (qb *QueryBuilder[T]) Lt(field string, value any) *QueryBuilder[T] {
	return qb.where(field, OpLt, value)
}

func (qb *QueryBuilder[T]) Gte(field string, value any) *QueryBuilder[T] {
	return qb.where(field, OpGe, value)
}

func (qb *QueryBuilder[T]) Lte(field string, value any) *QueryBuilder[T] {
	return qb.where(field, OpLe, value)
}

func (qb *QueryBuilder[T]) Like(field string, value any) *QueryBuilder[T] {
	return qb.where(field, OpLike, value)
}

// In value 为空切片时不匹配任何记录
func (qb *QueryBuilder[T]) In(field string, value any) *QueryBuilder[T] {
	return qb.where(field, OpIn, value)
}

func (qb *QueryBuilder[T]) NotIn(field string, value any) *QueryBuilder[T] {
	return qb.where(field, OpNotIn, value)
}

func (qb *QueryBuilder[T]) IsNull(field string) *QueryBuilder[T] {
	return qb.where(field, OpNull, nil)
}

func (qb *QueryBuilder[T]) IsNotNull(field string) *QueryBuilder[T] {
	return qb.where(field, OpNotNull, nil)
}

// Filters 追加一组条件，通常来自 BuildFiltersFromModel
func (qb *QueryBuilder[T]) Filters(conds ...Condition) *QueryBuilder[T] {
	qb.conditions = append(qb.conditions, conds...)
	return qb
}

// Match 追加查询结构体非零字段生成的条件
func (qb *QueryBuilder[T]) Match(query any) *QueryBuilder[T] {
	return qb.Filters(qb.processor.BuildFiltersFromModel(query)...)
}

// When cond 为真时才应用 fn
func (qb *QueryBuilder[T]) When(cond bool, fn func(*QueryBuilder[T]) *QueryBuilder[T]) *QueryBuilder[T] {
	if cond {
		return fn(qb)
	}
	return qb
}

func (qb *QueryBuilder[T]) OrderBy(fields string) *QueryBuilder[T] {
	qb.orderBy = fields
	return qb
}

func (qb *QueryBuilder[T]) Limit(limit int) *QueryBuilder[T] {
	qb.limit = limit
	return qb
}

func (qb *QueryBuilder[T]) Offset(offset int) *QueryBuilder[T] {
	qb.offset = offset
	return qb
}

// ForUpdate 添加行锁，需在事务中使用
func (qb *QueryBuilder[T]) ForUpdate() *QueryBuilder[T] {
	qb.lock = true
	return qb
}

// GetOptions 导出当前条件
func (qb *QueryBuilder[T]) GetOptions() *QueryOption {
	return &QueryOption{
		OrderBy: qb.orderBy,
		Limit:   qb.limit,
		Offset:  qb.offset,
		Lock:    qb.lock,
		Filters: qb.conditions,
	}
}

// Find 执行查询并返回列表
func (qb *QueryBuilder[T]) Find(ctx context.Context) ([]T, error) {
	result, err := qb.processor.Query(ctx, new(T), qb.GetOptions())
	if err != nil {
		return nil, err
	}
	data, _ := result.Data.([]T)
	return data, nil
}

// Page 分页查询并返回总数
func (qb *QueryBuilder[T]) Page(ctx context.Context, limit, offset int) ([]T, int64, error) {
	opts := qb.GetOptions()
	opts.Limit, opts.Offset, opts.WithCount = limit, offset, true
	result, err := qb.processor.Query(ctx, new(T), opts)
	if err != nil {
		return nil, 0, err
	}
	data, _ := result.Data.([]T)
	return data, result.Total, nil
}

// First 返回第一条记录，不存在时返回 ErrRecordNotFound
func (qb *QueryBuilder[T]) First(ctx context.Context) (*T, error) {
	result, err := qb.Limit(1).Find(ctx)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, ErrRecordNotFound
	}
	return &result[0], nil
}

// Count 返回满足条件的记录数
func (qb *QueryBuilder[T]) Count(ctx context.Context) (int64, error) {
	return qb.processor.Count(ctx, new(T), qb.GetOptions())
}

// Exists 是否存在满足条件的记录
func (qb *QueryBuilder[T]) Exists(ctx context.Context) (bool, error) {
	n, err := qb.Count(ctx)
	return n > 0, err
}

// Delete 按条件删除，至少需要一个条件
func (qb *QueryBuilder[T]) Delete(ctx context.Context) (int64, error) {
	return qb.processor.DeleteByOption(ctx, new(T), qb.GetOptions())
}

// Update 按条件更新 cols 指定的列
func (qb *QueryBuilder[T]) Update(ctx context.Context, model *T, cols ...string) (int64, error) {
	return qb.processor.UpdateByOption(ctx, model, qb.GetOptions(), cols...)
}
