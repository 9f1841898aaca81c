package enums

import (
	"fmt"
	"net/http"
	"sort"
)

// UnknownCodeError 枚举编码不在映射表中
type UnknownCodeError struct {
	Enum string
	Code any
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("unknown %s code: %v", e.Enum, e.Code)
}

// ErrorCode 与 errcode.EnumCodeUnknown 保持一致
func (e *UnknownCodeError) ErrorCode() int { return 1005 }

func (e *UnknownCodeError) HTTPStatus() int { return http.StatusBadRequest }

func (e *UnknownCodeError) ErrorMessage() string { return e.Error() }

// Option 下拉选项
type Option struct {
	Code int    `json:"code"`
	Desc string `json:"desc"`
}

// table 编码到描述的封闭映射表
type table[T ~int] struct {
	name    string
	entries map[T]string
}

func newTable[T ~int](name string, entries map[T]string) table[T] {
	return table[T]{name: name, entries: entries}
}

func (t table[T]) parse(code int) (T, error) {
	v := T(code)
	if _, ok := t.entries[v]; !ok {
		return 0, &UnknownCodeError{Enum: t.name, Code: code}
	}
	return v, nil
}

func (t table[T]) valid(v T) bool {
	_, ok := t.entries[v]
	return ok
}

func (t table[T]) desc(v T) string {
	if d, ok := t.entries[v]; ok {
		return d
	}
	return fmt.Sprintf("%s(%d)", t.name, int(v))
}

func (t table[T]) options() []Option {
	opts := make([]Option, 0, len(t.entries))
	for code, d := range t.entries {
		opts = append(opts, Option{Code: int(code), Desc: d})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Code < opts[j].Code })
	return opts
}
