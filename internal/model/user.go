package model

import (
	"time"
)

// User 组织人员参考数据（管理员维护）
//
// 升级矩阵固化时按工号批量加载姓名/邮箱，并按 ManagerName 解析审批人的上级经理。
type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	EmpCode     string `gorm:"type:varchar(50);uniqueIndex;not null" json:"emp_code"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Email       string `gorm:"type:varchar(100)" json:"email"`
	ManagerName string `gorm:"type:varchar(100)" json:"manager_name"` // 上级经理姓名（按姓名匹配用户表）
	Department  string `gorm:"type:varchar(100)" json:"department"`
	Location    string `gorm:"type:varchar(100)" json:"location"`
	Status      string `gorm:"type:varchar(20);default:active" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
