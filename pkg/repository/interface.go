package repository

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// IsRecordSQLEvent 是否把 SQL 记录为 span 事件
var IsRecordSQLEvent = true

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrMultipleRecord = errors.New("multiple records found")
	ErrNoPrimaryKey   = errors.New("model does not have a primary key field")
	ErrNoTransaction  = errors.New("transaction session not found in context")
)

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// QueryOption 查询选项
type QueryOption struct {
	OrderBy   string
	Limit     int
	Offset    int
	Lock      bool
	Filters   []Condition
	WithCount bool // 同时返回满足条件的总数
}

// TransactionFunc 在事务内执行的函数，ctx 中携带事务会话
type TransactionFunc func(ctx context.Context) (any, error)

// TransactionExecutor 定义事务执行接口
type TransactionExecutor interface {
	// Begin 开始事务，返回携带事务会话的 ctx
	Begin(ctx context.Context) (context.Context, error)
	Commit(tx context.Context) error
	Rollback(tx context.Context) error

	// Transaction 自动管理事务生命周期，fn 返回错误或 panic 时回滚。
	// ctx 已在事务中时直接复用外层事务。
	Transaction(ctx context.Context, fn TransactionFunc) (any, error)
}

// ORMProcessor 通用 ORM 操作，具体实现负责映射到底层 ORM
type ORMProcessor interface {
	Create(ctx context.Context, model any) error

	// Update 按主键更新。cols 为空时只更新非零字段，否则强制更新 cols 指定的列
	Update(ctx context.Context, model any, cols ...string) error
	UpdateByOption(ctx context.Context, model any, opts *QueryOption, cols ...string) (int64, error)

	Delete(ctx context.Context, model any) error
	DeleteByOption(ctx context.Context, model any, opts *QueryOption) (int64, error)

	// Query model 为元素类型指针，Data 为对应的切片
	Query(ctx context.Context, model any, opts *QueryOption) (*QueryResult, error)
	Count(ctx context.Context, model any, opts *QueryOption) (int64, error)

	BatchCreate(ctx context.Context, models []any) error

	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	QueryRows(ctx context.Context, sql string, args ...any) ([]map[string]any, error)

	// BuildFiltersFromModel 按 xorm:"col op=xx" 标签从非零字段生成条件
	BuildFiltersFromModel(model any) []Condition

	TransactionExecutor
}

// QueryResult 查询结果
type QueryResult struct {
	Data  any
	Total int64
}

type transactionKey struct{}

// TransactionKeyInstance 事务会话在 context 中的键
var TransactionKeyInstance = transactionKey{}

// RecordDbEvent 在当前 span 上记录一次数据库执行
func RecordDbEvent(ctx context.Context, info map[string]any) {
	if !IsRecordSQLEvent {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	attributes := make([]attribute.KeyValue, 0, len(info))
	for k, v := range info {
		attributes = append(attributes, attribute.String(k, fmt.Sprintf("%v", v)))
	}
	span.AddEvent("db_execute_info", trace.WithAttributes(attributes...))
}
