package models

import "time"

// Department 部门，ParentID 为 0 表示根
type Department struct {
	ID           uint64    `xorm:"pk autoincr bigint unsigned 'id'" json:"id"`
	Name         string    `xorm:"varchar(50) notnull 'name'" json:"name"`
	ParentID     uint64    `xorm:"bigint unsigned notnull default 0 index 'parent_id'" json:"parent_id"`
	Level        int       `xorm:"int notnull default 1 'level'" json:"level"`
	Sort         int       `xorm:"int notnull default 0 'sort'" json:"sort"`
	Remark       string    `xorm:"varchar(255) 'remark'" json:"remark"`
	CreateUserID uint64    `xorm:"bigint unsigned 'create_user_id'" json:"create_user_id"`
	CreateTime   time.Time `xorm:"created 'create_time'" json:"create_time"`
	UpdateTime   time.Time `xorm:"updated 'update_time'" json:"update_time"`
}

func (Department) TableName() string { return "sys_department" }
