package authz

import (
	"fmt"
	"slices"
)

// ProjectScope 用户可见的项目范围。
// 零值表示无任何项目可见；Unrestricted 表示不做项目过滤，两者不可混淆。
type ProjectScope struct {
	unrestricted bool
	ids          []uint64
}

// Unrestricted 可见全部项目
func Unrestricted() ProjectScope {
	return ProjectScope{unrestricted: true}
}

// Restricted 仅可见给定项目，重复 id 会被去除
func Restricted(ids ...uint64) ProjectScope {
	out := slices.Clone(ids)
	slices.Sort(out)
	return ProjectScope{ids: slices.Compact(out)}
}

func (s ProjectScope) IsUnrestricted() bool {
	return s.unrestricted
}

// IsEmpty 受限且没有任何项目
func (s ProjectScope) IsEmpty() bool {
	return !s.unrestricted && len(s.ids) == 0
}

func (s ProjectScope) Contains(projectID uint64) bool {
	if s.unrestricted {
		return true
	}
	_, ok := slices.BinarySearch(s.ids, projectID)
	return ok
}

// IDs 受限时的项目 id（升序）；不受限时返回 nil
func (s ProjectScope) IDs() []uint64 {
	if s.unrestricted {
		return nil
	}
	return slices.Clone(s.ids)
}

// Narrow 与单个项目求交，projectID 为 0 时不收窄
func (s ProjectScope) Narrow(projectID uint64) ProjectScope {
	if projectID == 0 {
		return s
	}
	if s.Contains(projectID) {
		return Restricted(projectID)
	}
	return Restricted()
}

func (s ProjectScope) String() string {
	if s.unrestricted {
		return "unrestricted"
	}
	return fmt.Sprintf("projects%v", s.ids)
}
