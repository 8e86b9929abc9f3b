package model

import (
	"time"
)

// 升级日志状态
const (
	EscalationStatusEscalated = "escalated" // 已升级给上级经理
	EscalationStatusRejected  = "rejected"  // 三级超时自动拒绝
)

// EscalationMatrix 升级矩阵（每个申请单创建时固化一份审批人/经理快照）
//
// 创建后不可变。后续组织架构或审批矩阵的变更不影响已创建申请单的升级目标。
// 每个申请单最多一行；缺失该行时该申请单不参与升级（告警日志，不是错误）。
// Manager 字段为空表示对应审批人未配置经理，该级升级自动跳过。
type EscalationMatrix struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PRNumber string `gorm:"type:varchar(50);uniqueIndex;not null" json:"pr_number"`

	RequesterEmpCode string `gorm:"type:varchar(50)" json:"requester_emp_code"`
	RequesterName    string `gorm:"type:varchar(100)" json:"requester_name"`
	RequesterEmail   string `gorm:"type:varchar(100)" json:"requester_email"`

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

	// Manager1 是 approver_1 的经理（按 manager_name 从用户表解析）
	Manager1EmpCode string `gorm:"type:varchar(50)" json:"manager_1_emp_code"`
	Manager1Name    string `gorm:"type:varchar(100)" json:"manager_1_name"`
	Manager1Email   string `gorm:"type:varchar(100)" json:"manager_1_email"`

	// Manager2 是 approver_2 的经理
	Manager2EmpCode string `gorm:"type:varchar(50)" json:"manager_2_emp_code"`
	Manager2Name    string `gorm:"type:varchar(100)" json:"manager_2_name"`
	Manager2Email   string `gorm:"type:varchar(100)" json:"manager_2_email"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (EscalationMatrix) TableName() string {
	return "escalation_matrices"
}

// EscalationLog 升级日志（仅追加，每个申请单可有多条）
//
// 既是审计记录，也是调度器的幂等依据：同一(申请单, 级别)已有日志则不再重复升级。
type EscalationLog struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	PRNumber    string    `gorm:"type:varchar(50);not null;index" json:"pr_number"`
	Level       int       `gorm:"not null" json:"level"`
	Status      string    `gorm:"type:varchar(20);not null" json:"status"` // escalated / rejected
	EscalatedAt time.Time `json:"escalated_at"`
	EmailSentTo string    `gorm:"type:varchar(500)" json:"email_sent_to"`
	Comment     string    `gorm:"type:text" json:"comment"`
}

// TableName 指定表名
func (EscalationLog) TableName() string {
	return "escalation_logs"
}
