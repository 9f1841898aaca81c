package models

import (
	"time"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
)

// User 用户
type User struct {
	ID            uint64           `xorm:"pk autoincr bigint unsigned 'id'" json:"id"`
	Username      string           `xorm:"varchar(50) notnull unique 'username'" json:"username"`
	Password      string           `xorm:"varchar(100) notnull 'password'" json:"-"`
	Nickname      string           `xorm:"varchar(50) 'nickname'" json:"nickname"`
	Email         string           `xorm:"varchar(100) 'email'" json:"email"`
	Phone         string           `xorm:"varchar(20) 'phone'" json:"phone"`
	DepartmentID  uint64           `xorm:"bigint unsigned index 'department_id'" json:"department_id"`
	Status        enums.UserStatus `xorm:"tinyint notnull default 1 'status'" json:"status"`
	LastLoginTime time.Time        `xorm:"datetime 'last_login_time'" json:"last_login_time"`
	CreateUserID  uint64           `xorm:"bigint unsigned 'create_user_id'" json:"create_user_id"`
	CreateTime    time.Time        `xorm:"created 'create_time'" json:"create_time"`
	UpdateTime    time.Time        `xorm:"updated 'update_time'" json:"update_time"`
}

func (User) TableName() string { return "sys_user" }

// Enabled 是否可登录
func (u *User) Enabled() bool {
	return u.Status != enums.UserStatusDisabled
}

// UserRole 用户角色关联
type UserRole struct {
	ID     uint64 `xorm:"pk autoincr bigint unsigned 'id'" json:"id"`
	UserID uint64 `xorm:"bigint unsigned notnull index unique(uk_user_role) 'user_id'" json:"user_id"`
	RoleID uint64 `xorm:"bigint unsigned notnull index unique(uk_user_role) 'role_id'" json:"role_id"`
}

func (UserRole) TableName() string { return "sys_user_role" }
