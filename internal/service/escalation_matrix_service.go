package service

import (
	"fmt"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/logger"
)

// EscalationMatrixService 升级矩阵固化服务
//
// 申请单创建时把解析出的审批人/经理身份（工号、姓名、邮箱）固化成
// 一份不可变快照，后续升级决策不再依赖可能已变更的组织数据。
type EscalationMatrixService struct {
	prStore     PurchaseRequestStore
	matrixStore ApprovalMatrixStore
	escStore    EscalationStore
	userStore   UserStore
}

func NewEscalationMatrixService(
	prStore PurchaseRequestStore,
	matrixStore ApprovalMatrixStore,
	escStore EscalationStore,
	userStore UserStore,
) *EscalationMatrixService {
	return &EscalationMatrixService{
		prStore:     prStore,
		matrixStore: matrixStore,
		escStore:    escStore,
		userStore:   userStore,
	}
}

// Materialize 为申请单固化升级矩阵快照
//
// 失败返回错误，由调用方记录日志后继续。固化失败绝不回滚
// 外层的申请单创建事务，该申请单只是不再参与升级（降级，不是故障）。
func (s *EscalationMatrixService) Materialize(prNumber string) (*model.EscalationMatrix, error) {
	pr, err := s.prStore.FindByPRNumber(prNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase request %s: %w", prNumber, err)
	}
	if pr.RequesterEmpCode == "" {
		return nil, fmt.Errorf("purchase request %s has no requester emp code", prNumber)
	}

	matrix, err := s.matrixStore.FindByRequester(pr.RequesterEmpCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve approval matrix for %s: %w", pr.RequesterEmpCode, err)
	}
	if matrix == nil {
		return nil, fmt.Errorf("no approval matrix configured for requester %s", pr.RequesterEmpCode)
	}

	// 收集涉及的工号（申请人 + 最多4个审批人），批量加载用户记录
	codes := distinctNonEmpty(
		pr.RequesterEmpCode,
		matrix.Approver1EmpCode,
		matrix.Approver2EmpCode,
		matrix.Approver3AEmpCode,
		matrix.Approver3BEmpCode,
	)
	users, err := s.userStore.FindByEmpCodes(codes)
	if err != nil {
		return nil, fmt.Errorf("failed to load users for %s: %w", prNumber, err)
	}
	byCode := make(map[string]model.User, len(users))
	for _, u := range users {
		byCode[u.EmpCode] = u
	}

	snapshot := &model.EscalationMatrix{
		PRNumber:         prNumber,
		RequesterEmpCode: pr.RequesterEmpCode,
	}
	if u, ok := byCode[pr.RequesterEmpCode]; ok {
		snapshot.RequesterName = u.Name
		snapshot.RequesterEmail = u.Email
	}

	snapshot.Approver1EmpCode, snapshot.Approver1Name, snapshot.Approver1Email =
		approverIdentity(matrix.Approver1EmpCode, matrix.Approver1Name, matrix.Approver1Email, byCode)
	snapshot.Approver2EmpCode, snapshot.Approver2Name, snapshot.Approver2Email =
		approverIdentity(matrix.Approver2EmpCode, matrix.Approver2Name, matrix.Approver2Email, byCode)
	snapshot.Approver3AEmpCode, snapshot.Approver3AName, snapshot.Approver3AEmail =
		approverIdentity(matrix.Approver3AEmpCode, matrix.Approver3AName, matrix.Approver3AEmail, byCode)
	snapshot.Approver3BEmpCode, snapshot.Approver3BName, snapshot.Approver3BEmail =
		approverIdentity(matrix.Approver3BEmpCode, matrix.Approver3BName, matrix.Approver3BEmail, byCode)

	// 按 manager_name 逐级解析一、二级审批人的上级经理。
	// 审批人没有配置经理时，对应级别的升级自动跳过（不是错误）
	snapshot.Manager1EmpCode, snapshot.Manager1Name, snapshot.Manager1Email =
		s.resolveManager(matrix.Approver1EmpCode, byCode)
	snapshot.Manager2EmpCode, snapshot.Manager2Name, snapshot.Manager2Email =
		s.resolveManager(matrix.Approver2EmpCode, byCode)

	if err := s.escStore.CreateMatrix(snapshot); err != nil {
		return nil, fmt.Errorf("failed to persist escalation matrix for %s: %w", prNumber, err)
	}

	logger.Infof("Escalation matrix materialized for %s (manager_1: %s, manager_2: %s)",
		prNumber, orNone(snapshot.Manager1EmpCode), orNone(snapshot.Manager2EmpCode))
	return snapshot, nil
}

// resolveManager 解析审批人的上级经理身份，未配置或找不到时返回空
func (s *EscalationMatrixService) resolveManager(approverCode string, byCode map[string]model.User) (string, string, string) {
	approver, ok := byCode[approverCode]
	if !ok || approver.ManagerName == "" {
		return "", "", ""
	}

	manager, err := s.userStore.FindByName(approver.ManagerName)
	if err != nil {
		logger.Warnf("Failed to look up manager %q of approver %s: %v", approver.ManagerName, approverCode, err)
		return "", "", ""
	}
	if manager == nil {
		logger.Warnf("Manager %q of approver %s not found in user records, escalation tier disabled",
			approver.ManagerName, approverCode)
		return "", "", ""
	}
	return manager.EmpCode, manager.Name, manager.Email
}

// approverIdentity 审批人身份以用户表为准，矩阵中的姓名/邮箱作为回退
func approverIdentity(code, fallbackName, fallbackEmail string, byCode map[string]model.User) (string, string, string) {
	if code == "" {
		return "", "", ""
	}
	if u, ok := byCode[code]; ok {
		name, email := u.Name, u.Email
		if name == "" {
			name = fallbackName
		}
		if email == "" {
			email = fallbackEmail
		}
		return code, name, email
	}
	return code, fallbackName, fallbackEmail
}

func distinctNonEmpty(codes ...string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
