package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/workflow"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/logger"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseRequestService 采购申请工作流服务
//
// 驱动申请单的提交、逐级审批和退回重提。状态推进使用条件更新
// （仍处于 pending 且停留在期望级别），并发操作先到者生效，
// 后到者收到 ErrInvalidState。
type PurchaseRequestService struct {
	prStore      PurchaseRequestStore
	matrixStore  ApprovalMatrixStore
	escStore     EscalationStore
	auditStore   AuditLogStore
	materializer *EscalationMatrixService
	notifier     Notifier

	// now 可注入的时钟，测试时模拟时间
	now func() time.Time
}

func NewPurchaseRequestService(
	prStore PurchaseRequestStore,
	matrixStore ApprovalMatrixStore,
	escStore EscalationStore,
	auditStore AuditLogStore,
	materializer *EscalationMatrixService,
	notifier Notifier,
) *PurchaseRequestService {
	return &PurchaseRequestService{
		prStore:      prStore,
		matrixStore:  matrixStore,
		escStore:     escStore,
		auditStore:   auditStore,
		materializer: materializer,
		notifier:     notifier,
		now:          time.Now,
	}
}

// SubmitInput 提交申请的输入
type SubmitInput struct {
	Title                        string
	Entity                       string
	Department                   string
	Location                     string
	RequesterEmpCode             string
	RequesterName                string
	BusinessJustificationCode    string
	BusinessJustificationDetails string
	LineItems                    []model.LineItem
	TotalEstimatedCost           decimal.Decimal
}

// Submit 提交采购申请
//
// 解析申请人的审批矩阵（未配置则拒绝提交），生成申请单号，
// 以一级/approver_1 创建申请单，随后尽力而为地固化升级矩阵快照。
func (s *PurchaseRequestService) Submit(input SubmitInput) (*model.PurchaseRequest, error) {
	matrix, err := s.matrixStore.FindByRequester(input.RequesterEmpCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve approval matrix: %w", err)
	}
	if matrix == nil || matrix.Approver1EmpCode == "" {
		return nil, workflow.ErrNoApprovalMatrix
	}

	prNumber, err := s.nextPRNumber(input.Entity)
	if err != nil {
		return nil, fmt.Errorf("failed to generate pr number: %w", err)
	}

	lineItems, err := json.Marshal(input.LineItems)
	if err != nil {
		return nil, fmt.Errorf("failed to encode line items: %w", err)
	}

	level := 1
	approver := matrix.Approver1EmpCode
	pr := &model.PurchaseRequest{
		PRNumber:                     prNumber,
		Title:                        input.Title,
		Entity:                       input.Entity,
		Department:                   input.Department,
		Location:                     input.Location,
		RequesterEmpCode:             input.RequesterEmpCode,
		RequesterName:                input.RequesterName,
		BusinessJustificationCode:    input.BusinessJustificationCode,
		BusinessJustificationDetails: input.BusinessJustificationDetails,
		LineItems:                    lineItems,
		TotalEstimatedCost:           input.TotalEstimatedCost,
		Status:                       model.PRStatusPending,
		CurrentApprovalLevel:         &level,
		CurrentApproverEmpCode:       &approver,
	}

	if err := s.prStore.Create(pr); err != nil {
		return nil, fmt.Errorf("failed to create purchase request: %w", err)
	}

	s.appendAudit(prNumber, input.RequesterEmpCode, 1, model.AuditActionSubmitted, "")

	// 固化升级矩阵（尽力而为，失败不影响申请单创建）
	if _, err := s.materializer.Materialize(prNumber); err != nil {
		logger.Warnf("Escalation disabled for %s: %v", prNumber, err)
	}

	s.notifier.SendAsync([]string{matrix.Approver1Email},
		fmt.Sprintf("采购申请 %s 待您审批", prNumber),
		fmt.Sprintf("%s 提交了采购申请 %s（%s），请及时审批。", input.RequesterName, prNumber, input.Title))

	metrics.PendingRequests.Inc()
	logger.Infof("Purchase request %s submitted by %s (level 1, approver %s)",
		prNumber, input.RequesterEmpCode, approver)
	return pr, nil
}

// Act 执行审批动作（approve / reject / return）
func (s *PurchaseRequestService) Act(prNumber, empCode, actionStr, comment string) (*model.PurchaseRequest, error) {
	action, err := workflow.ParseAction(actionStr)
	if err != nil {
		return nil, err
	}

	pr, err := s.prStore.FindByPRNumber(prNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load purchase request %s: %w", prNumber, err)
	}
	if !pr.IsPending() || pr.CurrentApprovalLevel == nil {
		return nil, workflow.ErrInvalidState
	}
	level := *pr.CurrentApprovalLevel

	matrix, err := s.matrixStore.FindByRequester(pr.RequesterEmpCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve approval matrix: %w", err)
	}
	if matrix == nil {
		return nil, workflow.ErrNoApprovalMatrix
	}

	snapshot, err := s.escStore.FindMatrixByPRNumber(prNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load escalation matrix: %w", err)
	}
	escLogs, err := s.escStore.FindLogsByPRNumber(prNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load escalation logs: %w", err)
	}
	history, err := s.auditStore.FindByPRNumber(prNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit history: %w", err)
	}

	if !workflow.CanAct(pr, snapshot, matrix, escLogs, empCode) {
		return nil, workflow.ErrNotAuthorized
	}

	transition := workflow.NextStep(matrix, level, action, history)

	updates := map[string]interface{}{}
	var terminalStatus string
	switch {
	case action == workflow.ActionApprove && transition.NextLevel != nil:
		updates["status"] = model.PRStatusPending
		updates["current_approval_level"] = *transition.NextLevel
		if len(transition.NextApprovers) == 1 {
			updates["current_approver_emp_code"] = transition.NextApprovers[0]
		} else {
			// 并行审批：审批人记为 null，任一方先批准者生效
			updates["current_approver_emp_code"] = nil
		}
	case action == workflow.ActionApprove:
		terminalStatus = model.PRStatusApproved
	case action == workflow.ActionReject:
		terminalStatus = model.PRStatusRejected
	default:
		terminalStatus = model.PRStatusReturned
	}
	if terminalStatus != "" {
		updates["status"] = terminalStatus
		updates["current_approval_level"] = nil
		updates["current_approver_emp_code"] = nil
	}

	// 条件提交：先到者生效，竞争失败说明申请单已被他人推进
	ok, err := s.prStore.Transition(prNumber, level, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to commit transition for %s: %w", prNumber, err)
	}
	if !ok {
		return nil, workflow.ErrInvalidState
	}

	s.appendAudit(prNumber, empCode, level, auditAction(action), comment)
	s.notifyTransition(pr, matrix, snapshot, action, transition, terminalStatus)

	metrics.ApprovalActionsTotal.WithLabelValues(string(action), strconv.Itoa(level)).Inc()
	if terminalStatus != "" {
		metrics.PendingRequests.Dec()
	}

	// 返回更新后的状态
	applyTransition(pr, updates)
	logger.Infof("Purchase request %s: %s by %s at level %d -> status=%s",
		prNumber, action, empCode, level, pr.Status)
	return pr, nil
}

// Resubmit 重新提交被退回的申请单
//
// 级别重置回一级 / approver_1，并清空全部升级日志，升级历史
// 不能泄漏到新的审批周期。
func (s *PurchaseRequestService) Resubmit(prNumber, empCode, comment string) (*model.PurchaseRequest, error) {
	pr, err := s.prStore.FindByPRNumber(prNumber)
	if err != nil {
		return nil, err
	}
	if pr.Status != model.PRStatusReturned {
		return nil, workflow.ErrInvalidState
	}
	if pr.RequesterEmpCode != empCode {
		return nil, workflow.ErrNotAuthorized
	}

	matrix, err := s.matrixStore.FindByRequester(pr.RequesterEmpCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve approval matrix: %w", err)
	}
	if matrix == nil || matrix.Approver1EmpCode == "" {
		return nil, workflow.ErrNoApprovalMatrix
	}

	// 先清升级日志再激活，调度器不会把新周期当作已升级过
	if err := s.escStore.DeleteLogsByPRNumber(prNumber); err != nil {
		return nil, fmt.Errorf("failed to clear escalation logs for %s: %w", prNumber, err)
	}

	ok, err := s.prStore.Reactivate(prNumber, matrix.Approver1EmpCode)
	if err != nil {
		return nil, fmt.Errorf("failed to reactivate %s: %w", prNumber, err)
	}
	if !ok {
		return nil, workflow.ErrInvalidState
	}

	s.appendAudit(prNumber, empCode, 1, model.AuditActionSubmitted, comment)

	s.notifier.SendAsync([]string{matrix.Approver1Email},
		fmt.Sprintf("采购申请 %s 重新提交，待您审批", prNumber),
		fmt.Sprintf("%s 重新提交了采购申请 %s（%s），请及时审批。", pr.RequesterName, prNumber, pr.Title))

	metrics.PendingRequests.Inc()

	level := 1
	approver := matrix.Approver1EmpCode
	pr.Status = model.PRStatusPending
	pr.CurrentApprovalLevel = &level
	pr.CurrentApproverEmpCode = &approver
	logger.Infof("Purchase request %s resubmitted by %s", prNumber, empCode)
	return pr, nil
}

// nextPRNumber 生成申请单号: {entity}-{yy}-{序号}，
// 序号为该实体+年份前缀下已有最大序号加一
func (s *PurchaseRequestService) nextPRNumber(entity string) (string, error) {
	prefix := fmt.Sprintf("%s-%02d-", entity, s.now().Year()%100)
	max, err := s.prStore.MaxSequence(prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, max+1), nil
}

func (s *PurchaseRequestService) appendAudit(prNumber, empCode string, level int, action, comment string) {
	entry := &model.AuditLog{
		ID:              uuid.New().String(),
		PRNumber:        prNumber,
		ApproverEmpCode: empCode,
		ApprovalLevel:   level,
		Action:          action,
		Comment:         comment,
		ActedAt:         s.now(),
	}
	if err := s.auditStore.Create(entry); err != nil {
		// 审计写入失败不阻断主流程，但必须留下痕迹
		logger.Errorf("Failed to write audit log for %s (%s by %s): %v", prNumber, action, empCode, err)
	}
}

// notifyTransition 按推进结果发送通知邮件（尽力而为）
func (s *PurchaseRequestService) notifyTransition(
	pr *model.PurchaseRequest,
	matrix *model.ApprovalMatrix,
	snapshot *model.EscalationMatrix,
	action workflow.Action,
	transition workflow.Transition,
	terminalStatus string,
) {
	switch {
	case terminalStatus == model.PRStatusApproved:
		s.notifier.SendAsync([]string{requesterEmail(pr, snapshot)},
			fmt.Sprintf("采购申请 %s 已批准", pr.PRNumber),
			fmt.Sprintf("您的采购申请 %s（%s）已完成全部审批。", pr.PRNumber, pr.Title))
	case terminalStatus == model.PRStatusRejected:
		s.notifier.SendAsync([]string{requesterEmail(pr, snapshot)},
			fmt.Sprintf("采购申请 %s 被拒绝", pr.PRNumber),
			fmt.Sprintf("您的采购申请 %s（%s）已被拒绝。", pr.PRNumber, pr.Title))
	case terminalStatus == model.PRStatusReturned:
		s.notifier.SendAsync([]string{requesterEmail(pr, snapshot)},
			fmt.Sprintf("采购申请 %s 被退回", pr.PRNumber),
			fmt.Sprintf("您的采购申请 %s（%s）被退回，修改后可重新提交。", pr.PRNumber, pr.Title))
	case action == workflow.ActionApprove && transition.NextLevel != nil:
		s.notifier.SendAsync(approverEmails(matrix, transition.NextApprovers),
			fmt.Sprintf("采购申请 %s 待您审批", pr.PRNumber),
			fmt.Sprintf("采购申请 %s（%s）已进入第 %d 级审批，请及时处理。",
				pr.PRNumber, pr.Title, *transition.NextLevel))
	}
}

func requesterEmail(pr *model.PurchaseRequest, snapshot *model.EscalationMatrix) string {
	if snapshot != nil {
		return snapshot.RequesterEmail
	}
	return ""
}

// approverEmails 按工号从矩阵里取邮箱
func approverEmails(matrix *model.ApprovalMatrix, empCodes []string) []string {
	emails := make([]string, 0, len(empCodes))
	for _, code := range empCodes {
		switch code {
		case matrix.Approver1EmpCode:
			emails = append(emails, matrix.Approver1Email)
		case matrix.Approver2EmpCode:
			emails = append(emails, matrix.Approver2Email)
		case matrix.Approver3AEmpCode:
			emails = append(emails, matrix.Approver3AEmail)
		case matrix.Approver3BEmpCode:
			emails = append(emails, matrix.Approver3BEmail)
		}
	}
	return emails
}

func auditAction(action workflow.Action) string {
	switch action {
	case workflow.ActionApprove:
		return model.AuditActionApproved
	case workflow.ActionReject:
		return model.AuditActionRejected
	default:
		return model.AuditActionReturned
	}
}

// applyTransition 把条件更新的字段回填到内存中的申请单
func applyTransition(pr *model.PurchaseRequest, updates map[string]interface{}) {
	if status, ok := updates["status"].(string); ok {
		pr.Status = status
	}
	if level, ok := updates["current_approval_level"]; ok {
		if v, isInt := level.(int); isInt {
			pr.CurrentApprovalLevel = &v
		} else {
			pr.CurrentApprovalLevel = nil
		}
	}
	if approver, ok := updates["current_approver_emp_code"]; ok {
		if v, isStr := approver.(string); isStr {
			pr.CurrentApproverEmpCode = &v
		} else {
			pr.CurrentApproverEmpCode = nil
		}
	}
}
