// Package vo 接口响应的视图对象。
package vo

import (
	"time"

	"github.com/ayxworxfr/gsms/internal/domain/types"
	"github.com/jinzhu/copier"
)

var copyOption = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: time.Time{},
			DstType: types.Date{},
			Fn: func(src any) (any, error) {
				return types.FromTime(src.(time.Time)), nil
			},
		},
		{
			SrcType: types.Date{},
			DstType: time.Time{},
			Fn: func(src any) (any, error) {
				return src.(types.Date).ToTime(), nil
			},
		},
	},
}

// Copy 按字段名复制，time.Time 与 types.Date 互转
func Copy(dst, src any) error {
	return copier.CopyWithOption(dst, src, copyOption)
}

// CopySlice 将实体切片转换为 VO 指针切片
func CopySlice[S any, D any](src []S) ([]*D, error) {
	out := make([]*D, 0, len(src))
	for i := range src {
		d := new(D)
		if err := Copy(d, &src[i]); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// TimePtr 零值时间返回 nil，序列化为 null
func TimePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
