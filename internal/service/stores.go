package service

import (
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
)

// 服务依赖的存储接口，由 repository 包的具体类型实现。
// 以接口注入，核心审批逻辑可以用内存实现单测，不依赖数据库。

// PurchaseRequestStore 申请单存取
type PurchaseRequestStore interface {
	Create(pr *model.PurchaseRequest) error
	FindByPRNumber(prNumber string) (*model.PurchaseRequest, error)
	MaxSequence(prefix string) (int, error)
	Transition(prNumber string, expectLevel int, updates map[string]interface{}) (bool, error)
	Reactivate(prNumber string, firstApprover string) (bool, error)
}

// ApprovalMatrixStore 审批矩阵查询
type ApprovalMatrixStore interface {
	FindByRequester(empCode string) (*model.ApprovalMatrix, error)
}

// EscalationStore 升级矩阵快照与升级日志
type EscalationStore interface {
	CreateMatrix(matrix *model.EscalationMatrix) error
	FindMatrixByPRNumber(prNumber string) (*model.EscalationMatrix, error)
	FindLogsByPRNumber(prNumber string) ([]model.EscalationLog, error)
	DeleteLogsByPRNumber(prNumber string) error
}

// AuditLogStore 审批操作日志
type AuditLogStore interface {
	Create(log *model.AuditLog) error
	FindByPRNumber(prNumber string) ([]model.AuditLog, error)
}

// UserStore 组织人员查询
type UserStore interface {
	FindByEmpCodes(empCodes []string) ([]model.User, error)
	FindByName(name string) (*model.User, error)
}

// Notifier 邮件通知（fire-and-forget）
type Notifier interface {
	SendAsync(to []string, subject, body string)
}
