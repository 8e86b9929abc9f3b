package workflow

import (
	"testing"
	"time"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
)

func fullMatrix() *model.ApprovalMatrix {
	return &model.ApprovalMatrix{
		RequesterEmpCode:  "E100",
		Approver1EmpCode:  "A1",
		Approver2EmpCode:  "A2",
		Approver3AEmpCode: "A3A",
		Approver3BEmpCode: "A3B",
	}
}

func auditEntry(empCode, action string, offset time.Duration) model.AuditLog {
	return model.AuditLog{
		PRNumber:        "KB-26-0001",
		ApproverEmpCode: empCode,
		Action:          action,
		ActedAt:         time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC).Add(offset),
	}
}

// TestNextStepRouting 测试各级别批准后的路由
func TestNextStepRouting(t *testing.T) {
	tests := []struct {
		name          string
		matrix        *model.ApprovalMatrix
		currentLevel  int
		action        Action
		history       []model.AuditLog
		wantNextLevel int // 0 表示 nil
		wantApprovers []string
		wantFinal     bool
		wantParallel  bool
	}{
		{
			name:          "一级批准进入二级",
			matrix:        fullMatrix(),
			currentLevel:  1,
			action:        ActionApprove,
			wantNextLevel: 2,
			wantApprovers: []string{"A2"},
		},
		{
			name:          "二级批准进入三级并行",
			matrix:        fullMatrix(),
			currentLevel:  2,
			action:        ActionApprove,
			wantNextLevel: 3,
			wantApprovers: []string{"A3A", "A3B"},
			wantFinal:     true,
			wantParallel:  true,
		},
		{
			name: "只配置3a时三级为单人终审",
			matrix: &model.ApprovalMatrix{
				Approver1EmpCode:  "A1",
				Approver2EmpCode:  "A2",
				Approver3AEmpCode: "A3A",
			},
			currentLevel:  2,
			action:        ActionApprove,
			wantNextLevel: 3,
			wantApprovers: []string{"A3A"},
			wantFinal:     true,
		},
		{
			name: "只配置3b时三级为单人终审",
			matrix: &model.ApprovalMatrix{
				Approver1EmpCode:  "A1",
				Approver2EmpCode:  "A2",
				Approver3BEmpCode: "A3B",
			},
			currentLevel:  2,
			action:        ActionApprove,
			wantNextLevel: 3,
			wantApprovers: []string{"A3B"},
			wantFinal:     true,
		},
		{
			name: "二级之后无审批人则最终批准",
			matrix: &model.ApprovalMatrix{
				Approver1EmpCode: "A1",
				Approver2EmpCode: "A2",
			},
			currentLevel: 2,
			action:       ActionApprove,
			wantFinal:    true,
		},
		{
			name: "一级之后无审批人则最终批准",
			matrix: &model.ApprovalMatrix{
				Approver1EmpCode: "A1",
			},
			currentLevel: 1,
			action:       ActionApprove,
			wantFinal:    true,
		},
		{
			name:         "三级批准即最终批准",
			matrix:       fullMatrix(),
			currentLevel: 3,
			action:       ActionApprove,
			wantFinal:    true,
		},
		{
			name:         "拒绝立即终结",
			matrix:       fullMatrix(),
			currentLevel: 2,
			action:       ActionReject,
		},
		{
			name:         "退回立即终结",
			matrix:       fullMatrix(),
			currentLevel: 1,
			action:       ActionReturn,
		},
		{
			name:         "当前周期内3a已批准时不再路由",
			matrix:       fullMatrix(),
			currentLevel: 2,
			action:       ActionApprove,
			history: []model.AuditLog{
				auditEntry("E100", model.AuditActionSubmitted, 0),
				auditEntry("A1", model.AuditActionApproved, time.Hour),
				auditEntry("A2", model.AuditActionApproved, 2*time.Hour),
				auditEntry("A3A", model.AuditActionApproved, 3*time.Hour),
			},
			wantFinal:    true,
			wantParallel: true,
		},
		{
			name:         "上一周期的3a批准不影响新周期",
			matrix:       fullMatrix(),
			currentLevel: 2,
			action:       ActionApprove,
			history: []model.AuditLog{
				auditEntry("A3A", model.AuditActionApproved, 0),
				auditEntry("A3B", model.AuditActionReturned, time.Hour),
				auditEntry("E100", model.AuditActionSubmitted, 2*time.Hour),
				auditEntry("A1", model.AuditActionApproved, 3*time.Hour),
			},
			wantNextLevel: 3,
			wantApprovers: []string{"A3A", "A3B"},
			wantFinal:     true,
			wantParallel:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextStep(tt.matrix, tt.currentLevel, tt.action, tt.history)

			if tt.wantNextLevel == 0 {
				if got.NextLevel != nil {
					t.Errorf("NextLevel = %d, expected nil", *got.NextLevel)
				}
			} else {
				if got.NextLevel == nil {
					t.Fatalf("NextLevel = nil, expected %d", tt.wantNextLevel)
				}
				if *got.NextLevel != tt.wantNextLevel {
					t.Errorf("NextLevel = %d, expected %d", *got.NextLevel, tt.wantNextLevel)
				}
			}

			if len(got.NextApprovers) != len(tt.wantApprovers) {
				t.Fatalf("NextApprovers = %v, expected %v", got.NextApprovers, tt.wantApprovers)
			}
			for i, code := range tt.wantApprovers {
				if got.NextApprovers[i] != code {
					t.Errorf("NextApprovers[%d] = %s, expected %s", i, got.NextApprovers[i], code)
				}
			}

			if got.IsFinal != tt.wantFinal {
				t.Errorf("IsFinal = %v, expected %v", got.IsFinal, tt.wantFinal)
			}
			if got.IsParallel != tt.wantParallel {
				t.Errorf("IsParallel = %v, expected %v", got.IsParallel, tt.wantParallel)
			}
		})
	}
}

// TestCurrentCycle 测试审批周期切分
func TestCurrentCycle(t *testing.T) {
	history := []model.AuditLog{
		auditEntry("E100", model.AuditActionSubmitted, 0),
		auditEntry("A1", model.AuditActionApproved, time.Hour),
		auditEntry("A2", model.AuditActionReturned, 2*time.Hour),
		auditEntry("E100", model.AuditActionSubmitted, 3*time.Hour),
		auditEntry("A1", model.AuditActionApproved, 4*time.Hour),
	}

	cycle := CurrentCycle(history)
	if len(cycle) != 2 {
		t.Fatalf("CurrentCycle returned %d entries, expected 2", len(cycle))
	}
	if cycle[0].Action != model.AuditActionSubmitted || cycle[1].ApproverEmpCode != "A1" {
		t.Errorf("CurrentCycle returned wrong entries: %+v", cycle)
	}

	// 无退回/拒绝时整个历史都是当前周期
	if got := CurrentCycle(history[:2]); len(got) != 2 {
		t.Errorf("CurrentCycle without resets returned %d entries, expected 2", len(got))
	}

	// 空历史
	if got := CurrentCycle(nil); len(got) != 0 {
		t.Errorf("CurrentCycle(nil) returned %d entries, expected 0", len(got))
	}
}

// TestParseAction 测试动作解析
func TestParseAction(t *testing.T) {
	for _, valid := range []string{"approve", "reject", "return"} {
		if _, err := ParseAction(valid); err != nil {
			t.Errorf("ParseAction(%q) returned error: %v", valid, err)
		}
	}

	if _, err := ParseAction("cancel"); err != ErrInvalidAction {
		t.Errorf("ParseAction(\"cancel\") error = %v, expected ErrInvalidAction", err)
	}
}
