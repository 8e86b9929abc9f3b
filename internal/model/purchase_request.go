package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// 采购申请状态
const (
	PRStatusPending  = "pending"  // 审批中
	PRStatusApproved = "approved" // 已批准
	PRStatusRejected = "rejected" // 已拒绝
	PRStatusReturned = "returned" // 已退回（可重新提交）
)

// PurchaseRequest 采购申请单
//
// 不变式: status == pending 时 CurrentApprovalLevel 必须在 1-3 之间；
// 进入终态（approved/rejected）或被退回后，级别和当前审批人都置空。
// 申请单创建后永不删除（审计要求）。
type PurchaseRequest struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PRNumber string `gorm:"type:varchar(50);uniqueIndex" json:"pr_number"` // 申请单号: {entity}-{yy}-{序号}

	Title      string `gorm:"type:varchar(200);not null" json:"title"`
	Entity     string `gorm:"type:varchar(20);not null" json:"entity"` // 单号前缀使用的实体代码
	Department string `gorm:"type:varchar(100)" json:"department"`
	Location   string `gorm:"type:varchar(100)" json:"location"`

	RequesterEmpCode string `gorm:"type:varchar(50);not null;index" json:"requester_emp_code"`
	RequesterName    string `gorm:"type:varchar(100)" json:"requester_name"`

	BusinessJustificationCode    string `gorm:"type:varchar(50)" json:"business_justification_code"`
	BusinessJustificationDetails string `gorm:"type:text" json:"business_justification_details"`

	LineItems          datatypes.JSON  `gorm:"type:json" json:"line_items"`
	TotalEstimatedCost decimal.Decimal `gorm:"type:decimal(18,2)" json:"total_estimated_cost"`

	Status string `gorm:"type:varchar(20);default:pending;index" json:"status"`

	// CurrentApprovalLevel 当前审批级别（1-3），终态时为 null
	CurrentApprovalLevel *int `json:"current_approval_level"`

	// CurrentApproverEmpCode 当前审批人工号。
	// null 表示当前级别的任何授权人都可以审批（升级后或三级并行审批时）
	CurrentApproverEmpCode *string `gorm:"type:varchar(50)" json:"current_approver_emp_code"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (PurchaseRequest) TableName() string {
	return "purchase_requests"
}

// IsPending 是否仍在审批中
func (pr *PurchaseRequest) IsPending() bool {
	return pr.Status == PRStatusPending
}

// LineItem 采购明细行（序列化到 LineItems JSON 列）
type LineItem struct {
	ItemName      string          `json:"item_name"`
	Description   string          `json:"description"`
	Quantity      int             `json:"quantity"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}
