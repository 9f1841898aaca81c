package repository

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/ettle/strcase"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"xorm.io/xorm"
)

// XormProcessor xorm 实现
type XormProcessor struct {
	engine *xorm.Engine
}

// NewXormProcessor 创建xorm处理器
func NewXormProcessor(engine *xorm.Engine) *XormProcessor {
	return &XormProcessor{engine: engine}
}

func txSession(ctx context.Context) (*xorm.Session, bool) {
	session, ok := ctx.Value(TransactionKeyInstance).(*xorm.Session)
	return session, ok && session != nil
}

// withSession 有事务时复用事务会话，否则创建一次性会话并在结束后关闭
func (p *XormProcessor) withSession(ctx context.Context, fn func(*xorm.Session) (any, error)) (any, error) {
	session, inTx := txSession(ctx)
	if !inTx {
		session = p.engine.NewSession()
		defer session.Close()
	}
	session = session.Context(ctx)

	start := time.Now()
	result, err := fn(session)
	sql, args := session.LastSQL()
	info := map[string]any{"sql": sql, "duration": time.Since(start)}
	if len(args) > 0 {
		info["args"] = args
	}
	RecordDbEvent(ctx, info)
	if err != nil {
		logger.Debug(ctx, "sql failed", zap.String("sql", sql), zap.Error(err))
	}
	return result, err
}

// Create 插入单条记录
func (p *XormProcessor) Create(ctx context.Context, model any) error {
	_, err := p.withSession(ctx, func(session *xorm.Session) (any, error) {
		return session.Insert(model)
	})
	return errors.Wrap(err, "insert")
}

// Update 按主键更新
func (p *XormProcessor) Update(ctx context.Context, model any, cols ...string) error {
	id, err := primaryKeyValue(model)
	if err != nil {
		return err
	}
	_, err = p.withSession(ctx, func(session *xorm.Session) (any, error) {
		session = session.ID(id)
		if len(cols) > 0 {
			session = session.Cols(cols...)
		}
		return session.Update(model)
	})
	return errors.Wrap(err, "update")
}

// UpdateByOption 按条件更新，返回受影响行数
func (p *XormProcessor) UpdateByOption(ctx context.Context, model any, opts *QueryOption, cols ...string) (int64, error) {
	affected, err := p.withSession(ctx, func(session *xorm.Session) (any, error) {
		session = applyOptions(session, opts, false)
		if len(cols) > 0 {
			session = session.Cols(cols...)
		}
		return session.Update(model)
	})
	if err != nil {
		return 0, errors.Wrap(err, "update by option")
	}
	return affected.(int64), nil
}

// Delete 按主键删除，带 deleted 标签的模型为软删除
func (p *XormProcessor) Delete(ctx context.Context, model any) error {
	id, err := primaryKeyValue(model)
	if err != nil {
		return err
	}
	_, err = p.withSession(ctx, func(session *xorm.Session) (any, error) {
		return session.ID(id).Delete(model)
	})
	return errors.Wrap(err, "delete")
}

// DeleteByOption 按条件删除
func (p *XormProcessor) DeleteByOption(ctx context.Context, model any, opts *QueryOption) (int64, error) {
	if opts == nil || len(opts.Filters) == 0 {
		return 0, errors.New("delete without condition is not allowed")
	}
	affected, err := p.withSession(ctx, func(session *xorm.Session) (any, error) {
		return applyOptions(session, opts, false).Delete(model)
	})
	if err != nil {
		return 0, errors.Wrap(err, "delete by option")
	}
	return affected.(int64), nil
}

// Query 条件查询，WithCount 时额外用独立会话统计总数
func (p *XormProcessor) Query(ctx context.Context, model any, opts *QueryOption) (*QueryResult, error) {
	if opts == nil {
		opts = &QueryOption{}
	}
	slicePtr := reflect.New(reflect.SliceOf(reflect.TypeOf(model).Elem()))
	_, err := p.withSession(ctx, func(session *xorm.Session) (any, error) {
		return nil, applyOptions(session, opts, true).Find(slicePtr.Interface())
	})
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}

	res := &QueryResult{Data: slicePtr.Elem().Interface()}
	if opts.WithCount {
		if res.Total, err = p.Count(ctx, model, opts); err != nil {
			return nil, err
		}
	} else {
		res.Total = int64(slicePtr.Elem().Len())
	}
	return res, nil
}

// Count 统计满足条件的记录数，忽略分页与排序
func (p *XormProcessor) Count(ctx context.Context, model any, opts *QueryOption) (int64, error) {
	var filters []Condition
	if opts != nil {
		filters = opts.Filters
	}
	total, err := p.withSession(ctx, func(session *xorm.Session) (any, error) {
		return applyOptions(session, &QueryOption{Filters: filters}, false).Count(model)
	})
	if err != nil {
		return 0, errors.Wrap(err, "count")
	}
	return total.(int64), nil
}

// BatchCreate 批量插入，未在事务中时自动开启事务
func (p *XormProcessor) BatchCreate(ctx context.Context, models []any) error {
	if len(models) == 0 {
		return nil
	}
	_, err := p.Transaction(ctx, func(txCtx context.Context) (any, error) {
		return p.withSession(txCtx, func(session *xorm.Session) (any, error) {
			for _, model := range models {
				if _, err := session.Insert(model); err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
	})
	return errors.Wrap(err, "batch insert")
}

// Exec 执行SQL语句，返回受影响行数
func (p *XormProcessor) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	affected, err := p.withSession(ctx, func(session *xorm.Session) (any, error) {
		result, err := session.Exec(append([]any{sql}, args...)...)
		if err != nil {
			return int64(0), err
		}
		return result.RowsAffected()
	})
	if err != nil {
		return 0, errors.Wrap(err, "exec")
	}
	return affected.(int64), nil
}

// QueryRows 原生查询，值为 []byte
func (p *XormProcessor) QueryRows(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	data, err := p.withSession(ctx, func(session *xorm.Session) (any, error) {
		return session.Query(append([]any{sql}, args...)...)
	})
	if err != nil {
		return nil, errors.Wrap(err, "query rows")
	}
	rows, _ := data.([]map[string][]byte)
	result := make([]map[string]any, len(rows))
	for i, row := range rows {
		result[i] = make(map[string]any, len(row))
		for k, v := range row {
			result[i][k] = v
		}
	}
	return result, nil
}

func applyOptions(session *xorm.Session, opts *QueryOption, paging bool) *xorm.Session {
	if opts == nil {
		return session
	}
	for _, filter := range opts.Filters {
		session = applyCondition(session, filter)
	}
	if !paging {
		return session
	}
	if opts.OrderBy != "" {
		session = session.OrderBy(opts.OrderBy)
	}
	if opts.Limit > 0 {
		session = session.Limit(opts.Limit, opts.Offset)
	}
	if opts.Lock {
		session = session.ForUpdate()
	}
	return session
}

// applyCondition 将单个条件应用到会话
func applyCondition(session *xorm.Session, cond Condition) *xorm.Session {
	switch cond.Op {
	case OpIn, OpNotIn:
		values := toAnySlice(cond.Value)
		if len(values) == 0 {
			if cond.Op == OpIn {
				// 空集合不匹配任何记录
				return session.Where("1 = 0")
			}
			return session
		}
		if cond.Op == OpIn {
			return session.In(cond.Field, values...)
		}
		return session.NotIn(cond.Field, values...)
	case OpEq:
		return session.Where(cond.Field+" = ?", cond.Value)
	case OpNe:
		return session.Where(cond.Field+" != ?", cond.Value)
	case OpGt:
		return session.Where(cond.Field+" > ?", cond.Value)
	case OpLt:
		return session.Where(cond.Field+" < ?", cond.Value)
	case OpGe:
		return session.Where(cond.Field+" >= ?", cond.Value)
	case OpLe:
		return session.Where(cond.Field+" <= ?", cond.Value)
	case OpLike:
		return session.Where(cond.Field+" LIKE ?", fmt.Sprintf("%%%v%%", cond.Value))
	case OpStartsWith:
		return session.Where(cond.Field+" LIKE ?", fmt.Sprintf("%v%%", cond.Value))
	case OpEndsWith:
		return session.Where(cond.Field+" LIKE ?", fmt.Sprintf("%%%v", cond.Value))
	case OpNull:
		return session.Where(cond.Field + " IS NULL")
	case OpNotNull:
		return session.Where(cond.Field + " IS NOT NULL")
	default:
		return session
	}
}

func toAnySlice(value any) []any {
	if values, ok := value.([]any); ok {
		return values
	}
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice {
		return []any{value}
	}
	out := make([]any, v.Len())
	for i := range out {
		out[i] = v.Index(i).Interface()
	}
	return out
}

// primaryKeyValue 取带 pk 标签字段的值
func primaryKeyValue(model any) (any, error) {
	v := reflect.ValueOf(model)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, errors.Errorf("model must be a struct pointer, got %T", model)
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		for _, part := range strings.Fields(t.Field(i).Tag.Get("xorm")) {
			if part == "pk" {
				field := v.Field(i)
				if field.IsZero() {
					return nil, errors.Errorf("%s: primary key is zero", t.Name())
				}
				return field.Interface(), nil
			}
		}
	}
	return nil, errors.Wrap(ErrNoPrimaryKey, t.Name())
}

// BuildFiltersFromModel 从模型中提取带 xorm 标签的非零字段作为查询条件，嵌入结构体会被展开
func (p *XormProcessor) BuildFiltersFromModel(model any) []Condition {
	val := reflect.ValueOf(model)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	var filters []Condition
	for i := 0; i < val.NumField(); i++ {
		field := val.Type().Field(i)
		value := val.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Anonymous && value.Kind() == reflect.Struct {
			filters = append(filters, p.BuildFiltersFromModel(value.Interface())...)
			continue
		}
		if value.IsZero() || value.Kind() == reflect.Struct {
			continue
		}
		if value.Kind() == reflect.Ptr {
			value = value.Elem()
		}
		tag, tagged := field.Tag.Lookup("xorm")
		if !tagged {
			continue
		}
		dbField, op := parseXormTag(tag)
		if dbField == "-" {
			continue
		}
		if dbField == "" {
			// 只写了 op=xx 时列名按 xorm 默认映射
			dbField = strcase.ToSnake(field.Name)
		}
		filters = append(filters, Condition{Field: dbField, Op: op, Value: value.Interface()})
	}
	return filters
}

// parseXormTag 解析 `xorm:"col op=like"` 或 `xorm:"varchar(50) 'col'"`
func parseXormTag(tag string) (string, Op) {
	if tag == "" {
		return "", OpEq
	}
	var fieldName string
	op := OpEq
	for _, part := range strings.Fields(tag) {
		switch {
		case strings.HasPrefix(part, "op="):
			op = Op(strings.TrimPrefix(part, "op="))
		case len(part) >= 2 && (part[0] == '\'' || part[0] == '`'):
			fieldName = strings.Trim(part, "'`")
		case fieldName == "" && !strings.ContainsAny(part, "()"):
			fieldName = part
		}
	}
	return fieldName, op
}

// Begin 开始一个数据库事务
func (p *XormProcessor) Begin(ctx context.Context) (context.Context, error) {
	session := p.engine.NewSession()
	if err := session.Begin(); err != nil {
		session.Close()
		return ctx, errors.Wrap(err, "begin transaction")
	}
	return context.WithValue(ctx, TransactionKeyInstance, session), nil
}

// Commit 提交事务
func (p *XormProcessor) Commit(ctx context.Context) error {
	session, ok := txSession(ctx)
	if !ok {
		return ErrNoTransaction
	}
	defer session.Close()
	return session.Commit()
}

// Rollback 回滚事务
func (p *XormProcessor) Rollback(ctx context.Context) error {
	session, ok := txSession(ctx)
	if !ok {
		return ErrNoTransaction
	}
	defer session.Close()
	return session.Rollback()
}

// Transaction 执行事务，已在事务中时直接复用
func (p *XormProcessor) Transaction(ctx context.Context, fn TransactionFunc) (result any, err error) {
	if _, inTx := txSession(ctx); inTx {
		return fn(ctx)
	}

	txCtx, err := p.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = p.Rollback(txCtx)
			panic(r)
		}
	}()

	result, err = fn(txCtx)
	if err != nil {
		if rbErr := p.Rollback(txCtx); rbErr != nil {
			logger.Error(ctx, "rollback failed", zap.Error(rbErr))
		}
		return nil, err
	}
	if err := p.Commit(txCtx); err != nil {
		return nil, errors.Wrap(err, "commit transaction")
	}
	return result, nil
}
