package app

import (
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/api/handler"
)

// Handlers 包含所有 Handler 实例
type Handlers struct {
	PurchaseRequest *handler.PurchaseRequestHandler
	ApprovalMatrix  *handler.ApprovalMatrixHandler
	User            *handler.UserHandler
}

// InitializeHandlers 初始化所有 Handler
func InitializeHandlers(repos *Repositories, services *Services) *Handlers {
	return &Handlers{
		PurchaseRequest: handler.NewPurchaseRequestHandler(
			services.PurchaseRequest,
			repos.PurchaseRequest,
			repos.ApprovalMatrix,
			repos.Escalation,
			repos.AuditLog,
		),
		ApprovalMatrix: handler.NewApprovalMatrixHandler(repos.ApprovalMatrix),
		User:           handler.NewUserHandler(repos.User),
	}
}
