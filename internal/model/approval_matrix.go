package model

import (
	"time"
)

// ApprovalMatrix 审批矩阵（按申请人工号配置的固定审批链）
//
// approver_1 -> approver_2 -> approver_3a / approver_3b（三级为并行，任一人批准即生效）。
// 管理员维护的只读参考数据，工作流本身只查询不修改。
type ApprovalMatrix struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	RequesterEmpCode string `gorm:"type:varchar(50);uniqueIndex;not null" json:"requester_emp_code"`

	Approver1EmpCode string `gorm:"type:varchar(50)" json:"approver_1_emp_code"`
	Approver1Name    string `gorm:"type:varchar(100)" json:"approver_1_name"`
	Approver1Email   string `gorm:"type:varchar(100)" json:"approver_1_email"`

	Approver2EmpCode string `gorm:"type:varchar(50)" json:"approver_2_emp_code"`
	Approver2Name    string `gorm:"type:varchar(100)" json:"approver_2_name"`
	Approver2Email   string `gorm:"type:varchar(100)" json:"approver_2_email"`

	Approver3AEmpCode string `gorm:"type:varchar(50)" json:"approver_3a_emp_code"`
	Approver3AName    string `gorm:"type:varchar(100)" json:"approver_3a_name"`
	Approver3AEmail   string `gorm:"type:varchar(100)" json:"approver_3a_email"`

	Approver3BEmpCode string `gorm:"type:varchar(50)" json:"approver_3b_emp_code"`
	Approver3BName    string `gorm:"type:varchar(100)" json:"approver_3b_name"`
	Approver3BEmail   string `gorm:"type:varchar(100)" json:"approver_3b_email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ApprovalMatrix) TableName() string {
	return "approval_matrices"
}

// HasParallelFinalLevel 三级是否配置为并行审批（3a 和 3b 都存在）
func (m *ApprovalMatrix) HasParallelFinalLevel() bool {
	return m.Approver3AEmpCode != "" && m.Approver3BEmpCode != ""
}
