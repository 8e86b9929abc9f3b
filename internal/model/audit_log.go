package model

import (
	"time"
)

// 审批动作
const (
	AuditActionSubmitted = "submitted" // 提交 / 重新提交
	AuditActionApproved  = "approved"
	AuditActionRejected  = "rejected"
	AuditActionReturned  = "returned"
)

// AuditLog 审批操作日志（仅追加）
//
// 每次审批动作记录一条。状态机用它判断三级并行审批中是否已有人批准：
// 扫描范围是"当前周期"，即最近一条 returned/rejected 之后的记录。
type AuditLog struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	PRNumber        string    `gorm:"type:varchar(50);not null;index" json:"pr_number"`
	ApproverEmpCode string    `gorm:"type:varchar(50);not null" json:"approver_emp_code"`
	ApprovalLevel   int       `gorm:"not null" json:"approval_level"`
	Action          string    `gorm:"type:varchar(20);not null" json:"action"` // submitted / approved / rejected / returned
	Comment         string    `gorm:"type:text" json:"comment"`
	ActedAt         time.Time `gorm:"index" json:"acted_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string {
	return "audit_logs"
}
