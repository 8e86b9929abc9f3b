package workflow

import (
	"testing"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
)

func pendingPR(level int, approver string) *model.PurchaseRequest {
	pr := &model.PurchaseRequest{
		PRNumber:             "KB-26-0001",
		Status:               model.PRStatusPending,
		CurrentApprovalLevel: &level,
	}
	if approver != "" {
		pr.CurrentApproverEmpCode = &approver
	}
	return pr
}

func snapshot() *model.EscalationMatrix {
	return &model.EscalationMatrix{
		PRNumber:          "KB-26-0001",
		RequesterEmpCode:  "E100",
		Approver1EmpCode:  "A1",
		Approver2EmpCode:  "A2",
		Approver3AEmpCode: "A3A",
		Approver3BEmpCode: "A3B",
		Manager1EmpCode:   "M1",
		Manager2EmpCode:   "M2",
	}
}

func escalatedAt(level int) []model.EscalationLog {
	return []model.EscalationLog{
		{PRNumber: "KB-26-0001", Level: level, Status: model.EscalationStatusEscalated},
	}
}

// TestCanAct 测试审批授权判定
func TestCanAct(t *testing.T) {
	matrix := fullMatrix()

	tests := []struct {
		name     string
		pr       *model.PurchaseRequest
		snapshot *model.EscalationMatrix
		escLogs  []model.EscalationLog
		empCode  string
		want     bool
	}{
		{
			name:    "当前审批人精确匹配",
			pr:      pendingPR(1, "A1"),
			empCode: "A1",
			want:    true,
		},
		{
			name:    "非当前审批人被拒绝",
			pr:      pendingPR(1, "A1"),
			empCode: "A2",
			want:    false,
		},
		{
			name:    "指定了审批人时经理也不能越级操作",
			pr:      pendingPR(1, "A1"),
			empCode: "M1",
			want:    false,
		},
		{
			name:     "一级升级后原审批人仍可操作",
			pr:       pendingPR(1, ""),
			snapshot: snapshot(),
			escLogs:  escalatedAt(1),
			empCode:  "A1",
			want:     true,
		},
		{
			name:     "一级升级后经理可操作",
			pr:       pendingPR(1, ""),
			snapshot: snapshot(),
			escLogs:  escalatedAt(1),
			empCode:  "M1",
			want:     true,
		},
		{
			name:     "一级升级不授权二级经理",
			pr:       pendingPR(1, ""),
			snapshot: snapshot(),
			escLogs:  escalatedAt(1),
			empCode:  "M2",
			want:     false,
		},
		{
			name:     "二级升级后经理可操作",
			pr:       pendingPR(2, ""),
			snapshot: snapshot(),
			escLogs:  escalatedAt(2),
			empCode:  "M2",
			want:     true,
		},
		{
			name:     "审批人为null但无升级日志时不授权",
			pr:       pendingPR(2, ""),
			snapshot: snapshot(),
			empCode:  "A2",
			want:     false,
		},
		{
			name:    "三级并行3a可操作",
			pr:      pendingPR(3, ""),
			empCode: "A3A",
			want:    true,
		},
		{
			name:    "三级并行3b可操作",
			pr:      pendingPR(3, ""),
			empCode: "A3B",
			want:    true,
		},
		{
			name:    "三级并行不授权其他人",
			pr:      pendingPR(3, ""),
			empCode: "A1",
			want:    false,
		},
		{
			name: "非pending状态不可操作",
			pr: &model.PurchaseRequest{
				PRNumber: "KB-26-0001",
				Status:   model.PRStatusApproved,
			},
			empCode: "A1",
			want:    false,
		},
		{
			name:    "空工号不授权",
			pr:      pendingPR(1, "A1"),
			empCode: "",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanAct(tt.pr, tt.snapshot, matrix, tt.escLogs, tt.empCode)
			if got != tt.want {
				t.Errorf("CanAct(%s) = %v, expected %v", tt.empCode, got, tt.want)
			}
		})
	}
}

// TestCanActWithoutSnapshot 升级矩阵缺失时条款(b)失效，但三级并行条款(c)仍然有效
func TestCanActWithoutSnapshot(t *testing.T) {
	matrix := fullMatrix()

	if CanAct(pendingPR(1, ""), nil, matrix, escalatedAt(1), "M1") {
		t.Error("manager should not be authorized without an escalation snapshot")
	}

	if !CanAct(pendingPR(3, ""), nil, matrix, nil, "A3B") {
		t.Error("approver_3b should be authorized at the parallel final level")
	}
}
