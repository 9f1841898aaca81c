package params

import "errors"

// ResponseFlags 控制详情接口附带哪些关联数据
type ResponseFlags struct {
	flags int
}

const (
	IncludeRoles       = 1 << iota // 角色
	IncludePermissions             // 权限编码
	IncludeDepartment              // 部门名称
	IncludeMembers                 // 项目成员
)

const AllUserFlags = IncludeRoles | IncludePermissions | IncludeDepartment

const AllProjectFlags = IncludeMembers

func NewResponseFlags(initialFlags ...int) *ResponseFlags {
	flags := 0
	for _, flag := range initialFlags {
		flags |= flag
	}
	return &ResponseFlags{flags: flags}
}

func (f *ResponseFlags) Add(flag int) {
	f.flags |= flag
}

func (f *ResponseFlags) Remove(flag int) {
	f.flags &^= flag
}

func (f *ResponseFlags) Has(flag int) bool {
	return f.flags&flag != 0
}

// Validate 出现 allowed 之外的位即报错
func (f *ResponseFlags) Validate(allowedFlags int) error {
	if f.flags&^allowedFlags != 0 {
		return errors.New("invalid flags detected")
	}
	return nil
}
