package workflow

import (
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
)

// CanAct 审批授权判定
//
// 用户可以操作一个 pending 申请单，当且仅当满足以下任一条件:
//
//	(a) 与 current_approver_emp_code 完全相等；
//	(b) current_approver_emp_code 为 null（升级扩大了授权范围），当前级别
//	    存在 escalated 升级日志，且用户是升级矩阵快照中该级别的审批人或经理；
//	(c) 申请单在三级且当前审批人为 null，用户是审批矩阵中的 3a 或 3b。
//
// 升级后原审批人与升级目标经理同时保持授权，先操作者生效。
func CanAct(
	pr *model.PurchaseRequest,
	snapshot *model.EscalationMatrix,
	matrix *model.ApprovalMatrix,
	escLogs []model.EscalationLog,
	empCode string,
) bool {
	if pr == nil || empCode == "" || !pr.IsPending() || pr.CurrentApprovalLevel == nil {
		return false
	}
	level := *pr.CurrentApprovalLevel

	// (a) 精确匹配当前审批人
	if pr.CurrentApproverEmpCode != nil {
		return *pr.CurrentApproverEmpCode == empCode
	}

	// 当前审批人为 null：升级或三级并行扩大了授权范围

	// (b) 该级别已升级，审批人或经理均可操作
	if snapshot != nil && hasEscalatedLog(escLogs, level) {
		for _, code := range tierEligible(snapshot, level) {
			if code != "" && code == empCode {
				return true
			}
		}
	}

	// (c) 三级并行：矩阵中的 3a / 3b 任一人可操作
	if level == 3 && matrix != nil {
		if empCode == matrix.Approver3AEmpCode || empCode == matrix.Approver3BEmpCode {
			return true
		}
	}

	return false
}

// hasEscalatedLog 指定级别是否存在 escalated 升级日志
func hasEscalatedLog(escLogs []model.EscalationLog, level int) bool {
	for _, log := range escLogs {
		if log.Level == level && log.Status == model.EscalationStatusEscalated {
			return true
		}
	}
	return false
}

// tierEligible 升级后该级别的授权人集合（原审批人 + 对应经理）
func tierEligible(snapshot *model.EscalationMatrix, level int) []string {
	switch level {
	case 1:
		return []string{snapshot.Approver1EmpCode, snapshot.Manager1EmpCode}
	case 2:
		return []string{snapshot.Approver2EmpCode, snapshot.Manager2EmpCode}
	case 3:
		// 三级没有经理升级，只有并行审批人
		return []string{snapshot.Approver3AEmpCode, snapshot.Approver3BEmpCode}
	default:
		return nil
	}
}
