package service

import (
	"testing"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
)

func TestMaterialize(t *testing.T) {
	t.Run("固化快照并解析经理", func(t *testing.T) {
		f := newServiceFixture(standardMatrix("EMP001"))
		users := f.users
		users.users["A1"] = model.User{EmpCode: "A1", Name: "一级审批人", Email: "a1@corp.com", ManagerName: "一级经理"}
		users.users["A2"] = model.User{EmpCode: "A2", Name: "二级审批人", Email: "a2@corp.com", ManagerName: "二级经理"}
		users.users["M1"] = model.User{EmpCode: "M1", Name: "一级经理", Email: "m1@corp.com"}
		users.users["M2"] = model.User{EmpCode: "M2", Name: "二级经理", Email: "m2@corp.com"}
		users.users["EMP001"] = model.User{EmpCode: "EMP001", Name: "申请人", Email: "emp001@corp.com"}

		pr := f.submit(t)

		snapshot := f.escStore.snapshots[pr.PRNumber]
		if snapshot == nil {
			t.Fatal("snapshot not created")
		}
		if snapshot.RequesterEmail != "emp001@corp.com" {
			t.Errorf("RequesterEmail = %s, want emp001@corp.com", snapshot.RequesterEmail)
		}
		// 审批人身份以用户表为准
		if snapshot.Approver1Email != "a1@corp.com" {
			t.Errorf("Approver1Email = %s, want a1@corp.com", snapshot.Approver1Email)
		}
		// 经理按姓名从用户表逐级解析
		if snapshot.Manager1EmpCode != "M1" || snapshot.Manager1Email != "m1@corp.com" {
			t.Errorf("Manager1 = %s/%s, want M1/m1@corp.com", snapshot.Manager1EmpCode, snapshot.Manager1Email)
		}
		if snapshot.Manager2EmpCode != "M2" {
			t.Errorf("Manager2EmpCode = %s, want M2", snapshot.Manager2EmpCode)
		}
	})

	t.Run("审批人无经理_对应升级层禁用", func(t *testing.T) {
		f := newServiceFixture(standardMatrix("EMP001"))
		users := f.users
		// A1 没有配置 manager_name
		users.users["A1"] = model.User{EmpCode: "A1", Name: "一级审批人", Email: "a1@corp.com"}

		pr := f.submit(t)

		snapshot := f.escStore.snapshots[pr.PRNumber]
		if snapshot == nil {
			t.Fatal("snapshot not created")
		}
		if snapshot.Manager1EmpCode != "" {
			t.Errorf("Manager1EmpCode = %s, want empty (tier disabled)", snapshot.Manager1EmpCode)
		}
		// 用户表缺失的审批人回退到矩阵中的姓名邮箱
		if snapshot.Approver2Email != "a2@example.com" {
			t.Errorf("Approver2Email = %s, want matrix fallback a2@example.com", snapshot.Approver2Email)
		}
	})
}
