// Package validator 在 hertz 默认绑定之后补充 decimal 字段的范围校验。
package validator

import (
	"io"
	"reflect"
	"strings"

	"github.com/cloudwego/hertz/pkg/app/server/binding"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/route/param"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// TagName decimal 字段的校验标签，如 `decimal:"$>=0&&$<=24"`
const TagName = "decimal"

var (
	decimalType    = reflect.TypeOf(decimal.Decimal{})
	decimalPtrType = reflect.TypeOf((*decimal.Decimal)(nil))
)

type DecimalBinder struct{}

func NewDecimalBinder() *DecimalBinder {
	return &DecimalBinder{}
}

func (d *DecimalBinder) Name() string {
	return "decimal"
}

func (d *DecimalBinder) Bind(req *protocol.Request, v any, params param.Params) error {
	if err := binding.DefaultBinder().Bind(req, v, params); err != nil {
		return err
	}
	return d.handleDecimalFields(v)
}

func (d *DecimalBinder) BindAndValidate(req *protocol.Request, v any, params param.Params) error {
	if err := binding.DefaultBinder().BindAndValidate(req, v, params); err != nil {
		// 空请求体按空 JSON 处理
		if !errors.Is(err, io.EOF) {
			return err
		}
	}
	return d.handleDecimalFields(v)
}

func (d *DecimalBinder) BindQuery(req *protocol.Request, v any) error {
	if err := binding.DefaultBinder().BindQuery(req, v); err != nil {
		return err
	}
	return d.handleDecimalFields(v)
}

func (d *DecimalBinder) BindHeader(req *protocol.Request, v any) error {
	if err := binding.DefaultBinder().BindHeader(req, v); err != nil {
		return err
	}
	return d.handleDecimalFields(v)
}

func (d *DecimalBinder) BindPath(req *protocol.Request, v any, params param.Params) error {
	if err := binding.DefaultBinder().BindPath(req, v, params); err != nil {
		return err
	}
	return d.handleDecimalFields(v)
}

func (d *DecimalBinder) BindForm(req *protocol.Request, v any) error {
	if err := binding.DefaultBinder().BindForm(req, v); err != nil {
		return err
	}
	return d.handleDecimalFields(v)
}

func (d *DecimalBinder) BindJSON(req *protocol.Request, v any) error {
	if err := binding.DefaultBinder().BindJSON(req, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return d.handleDecimalFields(v)
}

func (d *DecimalBinder) BindProtobuf(req *protocol.Request, v any) error {
	return binding.DefaultBinder().BindProtobuf(req, v)
}

// handleDecimalFields 校验所有带 decimal 标签的字段，错误合并返回
func (d *DecimalBinder) handleDecimalFields(v any) error {
	var result *multierror.Error
	d.walk(reflect.ValueOf(v), &result)
	return result.ErrorOrNil()
}

func (d *DecimalBinder) walk(value reflect.Value, result **multierror.Error) {
	if value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		structField := value.Type().Field(i)
		if !structField.IsExported() {
			continue
		}

		switch {
		case field.Type() == decimalType:
			if err := validateDecimalField(field.Interface().(decimal.Decimal), structField); err != nil {
				*result = multierror.Append(*result, err)
			}
		case field.Type() == decimalPtrType:
			if !field.IsNil() {
				if err := validateDecimalField(*field.Interface().(*decimal.Decimal), structField); err != nil {
					*result = multierror.Append(*result, err)
				}
			}
		case field.Kind() == reflect.Struct, field.Kind() == reflect.Ptr:
			d.walk(field, result)
		case field.Kind() == reflect.Slice:
			for j := 0; j < field.Len(); j++ {
				d.walk(field.Index(j), result)
			}
		}
	}
}

func validateDecimalField(field decimal.Decimal, structField reflect.StructField) error {
	tag := structField.Tag.Get(TagName)
	if tag == "" {
		return nil
	}

	for _, part := range strings.Split(tag, "&&") {
		part = strings.TrimSpace(part)
		op, valStr := extractOperatorAndValue(part)
		if op == "" {
			return errors.Errorf("unsupported validation rule for field %s: %s", structField.Name, part)
		}

		val, err := decimal.NewFromString(valStr)
		if err != nil {
			return errors.Wrapf(err, "invalid validation tag for field %s", structField.Name)
		}

		if !compareDecimal(field, val, op) {
			return errors.Errorf("field %s must be %s %s", structField.Name, getOperatorDescription(op), valStr)
		}
	}
	return nil
}

func extractOperatorAndValue(part string) (string, string) {
	for _, op := range []string{"$>=", "$<=", "$>", "$<", "$="} {
		if strings.HasPrefix(part, op) {
			return op, strings.TrimSpace(strings.TrimPrefix(part, op))
		}
	}
	return "", ""
}

func compareDecimal(field, val decimal.Decimal, op string) bool {
	switch op {
	case "$>=":
		return field.GreaterThanOrEqual(val)
	case "$<=":
		return field.LessThanOrEqual(val)
	case "$>":
		return field.GreaterThan(val)
	case "$<":
		return field.LessThan(val)
	case "$=":
		return field.Equal(val)
	}
	return false
}

func getOperatorDescription(op string) string {
	switch op {
	case "$>=":
		return "greater than or equal to"
	case "$<=":
		return "less than or equal to"
	case "$>":
		return "greater than"
	case "$<":
		return "less than"
	case "$=":
		return "equal to"
	}
	return ""
}
