package app

import (
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/notification"
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/scheduler"
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/service"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/config"
)

// Services 包含所有 Service 实例
type Services struct {
	PurchaseRequest  *service.PurchaseRequestService
	EscalationMatrix *service.EscalationMatrixService
	Mailer           *notification.Mailer
}

// BackgroundServices 包含所有后台服务实例
type BackgroundServices struct {
	EscalationScheduler *scheduler.EscalationScheduler
}

// InitializeServices 初始化所有 Service
func InitializeServices(repos *Repositories, cfg *config.Config) *Services {
	mailer := notification.NewMailer(&cfg.SMTP)

	escalationMatrixService := service.NewEscalationMatrixService(
		repos.PurchaseRequest,
		repos.ApprovalMatrix,
		repos.Escalation,
		repos.User,
	)

	purchaseRequestService := service.NewPurchaseRequestService(
		repos.PurchaseRequest,
		repos.ApprovalMatrix,
		repos.Escalation,
		repos.AuditLog,
		escalationMatrixService,
		mailer,
	)

	return &Services{
		PurchaseRequest:  purchaseRequestService,
		EscalationMatrix: escalationMatrixService,
		Mailer:           mailer,
	}
}

// InitializeBackgroundServices 初始化后台服务
func InitializeBackgroundServices(repos *Repositories, cfg *config.Config, services *Services) *BackgroundServices {
	escalationScheduler := scheduler.NewEscalationScheduler(
		repos.PurchaseRequest,
		repos.Escalation,
		repos.AuditLog,
		services.Mailer,
		&cfg.Escalation,
	)

	return &BackgroundServices{
		EscalationScheduler: escalationScheduler,
	}
}
