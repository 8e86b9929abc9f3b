package app

import (
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/repository"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/database"
)

// Repositories 包含所有 Repository 实例
type Repositories struct {
	PurchaseRequest *repository.PurchaseRequestRepository
	ApprovalMatrix  *repository.ApprovalMatrixRepository
	Escalation      *repository.EscalationRepository
	AuditLog        *repository.AuditLogRepository
	User            *repository.UserRepository
}

// InitializeRepositories 初始化所有 Repository
func InitializeRepositories() *Repositories {
	return &Repositories{
		PurchaseRequest: repository.NewPurchaseRequestRepository(database.DB),
		ApprovalMatrix:  repository.NewApprovalMatrixRepository(database.DB),
		Escalation:      repository.NewEscalationRepository(database.DB),
		AuditLog:        repository.NewAuditLogRepository(database.DB),
		User:            repository.NewUserRepository(database.DB),
	}
}
