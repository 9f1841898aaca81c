package repository

import (
	"context"
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Repository 通用仓储接口
type Repository[T any] interface {
	TransactionExecutor
	Create(ctx context.Context, model *T) error
	Update(ctx context.Context, model *T, cols ...string) error
	UpdateByOption(ctx context.Context, model *T, opts *QueryOption, cols ...string) (int64, error)
	Delete(ctx context.Context, model *T) error
	DeleteByID(ctx context.Context, id uint64) error
	DeleteByOption(ctx context.Context, opts *QueryOption) (int64, error)
	Find(ctx context.Context, model *T) (*T, error)
	FindByID(ctx context.Context, id uint64) (*T, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]T, error)
	FindByKey(ctx context.Context, key string, value any) (*T, error)
	FindAll(ctx context.Context, model *T) ([]T, error)
	FindPage(ctx context.Context, query any, orderBy string, limit, offset int) ([]T, int64, error)
	BatchCreate(ctx context.Context, models []*T) error
	QueryBuilder() *QueryBuilder[T]
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Query(ctx context.Context, sql string, args ...any) ([]T, error)
	QueryRows(ctx context.Context, sql string, args ...any) ([]map[string]any, error)
}

// GenericRepository 通用仓储实现
type GenericRepository[T any] struct {
	processor ORMProcessor
}

// NewRepository 创建仓储实例
func NewRepository[T any](processor ORMProcessor) Repository[T] {
	return &GenericRepository[T]{processor: processor}
}

func (r *GenericRepository[T]) Create(ctx context.Context, model *T) error {
	return r.processor.Create(ctx, model)
}

// Update cols 非空时强制更新这些列（包括零值）
func (r *GenericRepository[T]) Update(ctx context.Context, model *T, cols ...string) error {
	return r.processor.Update(ctx, model, cols...)
}

func (r *GenericRepository[T]) UpdateByOption(ctx context.Context, model *T, opts *QueryOption, cols ...string) (int64, error) {
	return r.processor.UpdateByOption(ctx, model, opts, cols...)
}

func (r *GenericRepository[T]) Delete(ctx context.Context, model *T) error {
	return r.processor.Delete(ctx, model)
}

// DeleteByID 根据主键 id 删除
func (r *GenericRepository[T]) DeleteByID(ctx context.Context, id uint64) error {
	_, err := r.DeleteByOption(ctx, &QueryOption{Filters: []Condition{{Field: "id", Op: OpEq, Value: id}}})
	return err
}

func (r *GenericRepository[T]) DeleteByOption(ctx context.Context, opts *QueryOption) (int64, error) {
	return r.processor.DeleteByOption(ctx, new(T), opts)
}

// FindByID 不存在时返回 ErrRecordNotFound
func (r *GenericRepository[T]) FindByID(ctx context.Context, id uint64) (*T, error) {
	return r.FindByKey(ctx, "id", id)
}

// FindByIDs 顺序不保证与 ids 一致
func (r *GenericRepository[T]) FindByIDs(ctx context.Context, ids []uint64) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.QueryBuilder().In("id", ids).Find(ctx)
}

// FindByKey 按单列等值查询唯一记录
func (r *GenericRepository[T]) FindByKey(ctx context.Context, key string, value any) (*T, error) {
	return r.findOne(ctx, &QueryOption{Filters: []Condition{{Field: key, Op: OpEq, Value: value}}})
}

// Find 按模型非零字段查询唯一记录
func (r *GenericRepository[T]) Find(ctx context.Context, model *T) (*T, error) {
	if model == nil {
		return nil, errors.New("model cannot be nil")
	}
	return r.findOne(ctx, &QueryOption{Filters: r.processor.BuildFiltersFromModel(model)})
}

func (r *GenericRepository[T]) findOne(ctx context.Context, opts *QueryOption) (*T, error) {
	opts.Limit = 2
	result, err := r.processor.Query(ctx, new(T), opts)
	if err != nil {
		return nil, err
	}
	data, _ := result.Data.([]T)
	switch len(data) {
	case 0:
		return nil, ErrRecordNotFound
	case 1:
		return &data[0], nil
	default:
		return nil, ErrMultipleRecord
	}
}

// FindAll 按模型非零字段查询全部记录
func (r *GenericRepository[T]) FindAll(ctx context.Context, model *T) ([]T, error) {
	opts := &QueryOption{}
	if model != nil {
		opts.Filters = r.processor.BuildFiltersFromModel(model)
	}
	result, err := r.processor.Query(ctx, new(T), opts)
	if err != nil {
		return nil, err
	}
	data, _ := result.Data.([]T)
	return data, nil
}

// FindPage query 为带 xorm 条件标签的请求结构体
func (r *GenericRepository[T]) FindPage(ctx context.Context, query any, orderBy string, limit, offset int) ([]T, int64, error) {
	opts := &QueryOption{
		Filters:   r.processor.BuildFiltersFromModel(query),
		OrderBy:   orderBy,
		Limit:     limit,
		Offset:    offset,
		WithCount: true,
	}
	result, err := r.processor.Query(ctx, new(T), opts)
	if err != nil {
		return nil, 0, err
	}
	data, _ := result.Data.([]T)
	return data, result.Total, nil
}

func (r *GenericRepository[T]) BatchCreate(ctx context.Context, models []*T) error {
	items := make([]any, len(models))
	for i, m := range models {
		items[i] = m
	}
	return r.processor.BatchCreate(ctx, items)
}

// QueryBuilder 获取链式查询构建器
func (r *GenericRepository[T]) QueryBuilder() *QueryBuilder[T] {
	return NewQueryBuilder[T](r.processor)
}

func (r *GenericRepository[T]) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return r.processor.Exec(ctx, sql, args...)
}

// Query 原生 SQL 查询并按 json 标签映射为 T
func (r *GenericRepository[T]) Query(ctx context.Context, sql string, args ...any) ([]T, error) {
	rows, err := r.processor.QueryRows(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	result := make([]T, 0, len(rows))
	for _, row := range rows {
		var item T
		if err := MapToStruct(row, &item); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

func (r *GenericRepository[T]) QueryRows(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	return r.processor.QueryRows(ctx, sql, args...)
}

func (r *GenericRepository[T]) Transaction(ctx context.Context, fn TransactionFunc) (any, error) {
	return r.processor.Transaction(ctx, fn)
}

func (r *GenericRepository[T]) Begin(ctx context.Context) (context.Context, error) {
	return r.processor.Begin(ctx)
}

func (r *GenericRepository[T]) Commit(ctx context.Context) error {
	return r.processor.Commit(ctx)
}

func (r *GenericRepository[T]) Rollback(ctx context.Context) error {
	return r.processor.Rollback(ctx)
}

// MapToStruct 将原生查询行映射为结构体，使用 json 标签
func MapToStruct(src map[string]any, dst any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       byteSliceHook(),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(src)
}

// byteSliceHook 驱动返回的 []byte 按目标类型转换
func byteSliceHook() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.Slice || f.Elem().Kind() != reflect.Uint8 {
			return data, nil
		}
		str := string(data.([]byte))
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if str == "" {
				return int64(0), nil
			}
			return strconv.ParseInt(str, 10, 64)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if str == "" {
				return uint64(0), nil
			}
			return strconv.ParseUint(str, 10, 64)
		case reflect.Float32, reflect.Float64:
			if str == "" {
				return float64(0), nil
			}
			return strconv.ParseFloat(str, 64)
		case reflect.Bool:
			return strconv.ParseBool(str)
		case reflect.String:
			return str, nil
		case reflect.Struct:
			if t == reflect.TypeOf(time.Time{}) {
				return parseTime(str)
			}
		}
		return str, nil
	}
}

var timeLayouts = []string{
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
	"2006/01/02 15:04:05",
	"2006/01/02",
}

func parseTime(str string) (time.Time, error) {
	if str == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, str, time.Local); err == nil {
			return t, nil
		}
	}
	if sec, err := strconv.ParseInt(str, 10, 64); err == nil {
		return time.Unix(sec, 0), nil
	}
	return time.Time{}, errors.Errorf("unrecognized time format: %s", str)
}
