package workflow

import (
	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
)

// Action 审批动作
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionReturn  Action = "return"
)

// ParseAction 解析审批动作
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionApprove, ActionReject, ActionReturn:
		return Action(s), nil
	default:
		return "", ErrInvalidAction
	}
}

// Transition 状态机一次推进的结果
//
// NextLevel == nil 表示不再路由：reject/return 直接终结，
// approve 时表示申请单最终批准。NextLevel != nil 时申请单停留在
// pending，进入 NextLevel 级别。
type Transition struct {
	// NextLevel 下一审批级别（1-3），nil 表示无后续路由
	NextLevel *int

	// NextApprovers 下一级别的授权审批人工号。
	// 三级并行时包含 3a 和 3b 两个工号（数据库中当前审批人记为 null，任一人可批）
	NextApprovers []string

	// IsFinal 为 true 表示 NextLevel（或当前级别）已是最后一级，
	// 其上的批准即最终批准
	IsFinal bool

	// IsParallel 三级并行审批语义是否生效
	IsParallel bool
}

// NextStep 计算审批状态机的下一步
//
// 规则:
//   - reject/return 立即终结，无后续路由
//   - 一级批准且配置了 approver_2 -> 进入二级
//   - 二级批准且配置了 3a/3b -> 进入三级；3a 和 3b 都配置时为并行语义，
//     若当前周期内 3a/3b 已有人批准过（防御性重入），直接视为最终批准
//   - 其余情况（没有更多审批人）-> 最终批准
//
// history 是该申请单的完整审批日志（按时间升序）；并行判定只扫描当前周期，
// 即最近一条 returned/rejected 之后的记录（每次重新提交都会开启新周期）。
func NextStep(m *model.ApprovalMatrix, currentLevel int, action Action, history []model.AuditLog) Transition {
	if action == ActionReject || action == ActionReturn {
		return Transition{}
	}

	switch currentLevel {
	case 1:
		if m.Approver2EmpCode != "" {
			level := 2
			return Transition{
				NextLevel:     &level,
				NextApprovers: []string{m.Approver2EmpCode},
			}
		}

	case 2:
		if m.HasParallelFinalLevel() {
			// 并行审批：当前周期内任一方已批准则本次调用不再路由（幂等保护）
			if cycleHasApprovalBy(history, m.Approver3AEmpCode, m.Approver3BEmpCode) {
				return Transition{IsFinal: true, IsParallel: true}
			}
			level := 3
			return Transition{
				NextLevel:     &level,
				NextApprovers: []string{m.Approver3AEmpCode, m.Approver3BEmpCode},
				IsFinal:       true,
				IsParallel:    true,
			}
		}
		if single := m.Approver3AEmpCode + m.Approver3BEmpCode; single != "" {
			// 只配置了 3a 或 3b 其中一个，该审批人在三级是最后一环
			level := 3
			return Transition{
				NextLevel:     &level,
				NextApprovers: []string{single},
				IsFinal:       true,
			}
		}
	}

	// 没有更多已配置的审批人，本次批准即最终批准
	return Transition{IsFinal: true}
}

// CurrentCycle 返回当前审批周期的日志，即最近一条 returned/rejected
// 之后的记录。申请单被退回重新提交后，旧周期的批准记录不再生效。
func CurrentCycle(history []model.AuditLog) []model.AuditLog {
	start := 0
	for i, entry := range history {
		if entry.Action == model.AuditActionReturned || entry.Action == model.AuditActionRejected {
			start = i + 1
		}
	}
	return history[start:]
}

// cycleHasApprovalBy 当前周期内是否存在指定工号之一的批准记录
func cycleHasApprovalBy(history []model.AuditLog, empCodes ...string) bool {
	for _, entry := range CurrentCycle(history) {
		if entry.Action != model.AuditActionApproved {
			continue
		}
		for _, code := range empCodes {
			if code != "" && entry.ApproverEmpCode == code {
				return true
			}
		}
	}
	return false
}
