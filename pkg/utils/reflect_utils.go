package utils

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// FuncInvoker 封装函数值的反射调用，签名在创建时检查一次
type FuncInvoker struct {
	fn     reflect.Value
	fnType reflect.Type
	name   string
}

// NewFuncInvoker fn 必须是非 nil 的函数
func NewFuncInvoker(fn any) (*FuncInvoker, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("expected a function, got %T", fn)
	}
	return &FuncInvoker{fn: v, fnType: v.Type(), name: FuncName(fn)}, nil
}

func (f *FuncInvoker) Name() string {
	return f.name
}

func (f *FuncInvoker) NumIn() int {
	return f.fnType.NumIn()
}

func (f *FuncInvoker) In(i int) reflect.Type {
	return f.fnType.In(i)
}

// NumOut 返回值个数
func (f *FuncInvoker) NumOut() int {
	return f.fnType.NumOut()
}

func (f *FuncInvoker) Out(i int) reflect.Type {
	return f.fnType.Out(i)
}

// NewArg 为第 i 个参数分配零值；指针参数分配其指向的类型
func (f *FuncInvoker) NewArg(i int) any {
	t := f.fnType.In(i)
	if t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface()
	}
	return reflect.New(t).Elem().Interface()
}

// Call 调用并返回接口形式的结果，nil 指针/接口结果返回 nil
func (f *FuncInvoker) Call(args ...any) ([]any, error) {
	if len(args) != f.fnType.NumIn() {
		return nil, fmt.Errorf("%s expects %d args, got %d", f.name, f.fnType.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := f.fnType.In(i)
		if arg == nil {
			in[i] = reflect.Zero(want)
			continue
		}
		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(want) {
			return nil, fmt.Errorf("%s arg %d: %s is not assignable to %s", f.name, i, v.Type(), want)
		}
		in[i] = v
	}

	out := f.fn.Call(in)
	results := make([]any, len(out))
	for i, v := range out {
		switch v.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			if v.IsNil() {
				continue
			}
		}
		results[i] = v.Interface()
	}
	return results, nil
}

// ReturnsError 最后一个返回值是否为 error
func (f *FuncInvoker) ReturnsError() bool {
	n := f.fnType.NumOut()
	return n > 0 && f.fnType.Out(n-1) == errorType
}

// FuncName 去掉包路径和方法值后缀 -fm 的函数名
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return ""
	}
	full := runtime.FuncForPC(v.Pointer()).Name()
	if i := strings.LastIndex(full, "."); i >= 0 {
		full = full[i+1:]
	}
	return strings.TrimSuffix(full, "-fm")
}
