package scheduler

import (
	"testing"
	"time"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/config"
)

type fakePRStore struct {
	prs map[string]*model.PurchaseRequest
}

func (f *fakePRStore) FindAllPending() ([]model.PurchaseRequest, error) {
	var out []model.PurchaseRequest
	for _, pr := range f.prs {
		if pr.Status == model.PRStatusPending {
			out = append(out, *pr)
		}
	}
	return out, nil
}

func (f *fakePRStore) ClearCurrentApprover(prNumber string, level int) (bool, error) {
	pr, ok := f.prs[prNumber]
	if !ok || pr.Status != model.PRStatusPending ||
		pr.CurrentApprovalLevel == nil || *pr.CurrentApprovalLevel != level {
		return false, nil
	}
	pr.CurrentApproverEmpCode = nil
	return true, nil
}

func (f *fakePRStore) AutoReject(prNumber string, level int) (bool, error) {
	pr, ok := f.prs[prNumber]
	if !ok || pr.Status != model.PRStatusPending ||
		pr.CurrentApprovalLevel == nil || *pr.CurrentApprovalLevel != level {
		return false, nil
	}
	pr.Status = model.PRStatusRejected
	pr.CurrentApprovalLevel = nil
	pr.CurrentApproverEmpCode = nil
	return true, nil
}

type fakeEscStore struct {
	snapshots map[string]*model.EscalationMatrix
	logs      []model.EscalationLog
}

func (f *fakeEscStore) FindMatrixByPRNumber(prNumber string) (*model.EscalationMatrix, error) {
	return f.snapshots[prNumber], nil
}

func (f *fakeEscStore) HasLog(prNumber string, level int) (bool, error) {
	for _, l := range f.logs {
		if l.PRNumber == prNumber && l.Level == level {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEscStore) CreateLog(log *model.EscalationLog) error {
	f.logs = append(f.logs, *log)
	return nil
}

type fakeAuditStore struct {
	entries []model.AuditLog
}

func (f *fakeAuditStore) FindLatestApproval(prNumber string, empCodes []string) (*model.AuditLog, error) {
	var latest *model.AuditLog
	for i := range f.entries {
		e := &f.entries[i]
		if e.PRNumber != prNumber || e.Action != model.AuditActionApproved {
			continue
		}
		for _, code := range empCodes {
			if code != "" && code == e.ApproverEmpCode {
				if latest == nil || e.ActedAt.After(latest.ActedAt) {
					latest = e
				}
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeAuditStore) Create(log *model.AuditLog) error {
	f.entries = append(f.entries, *log)
	return nil
}

type fakeNotifier struct {
	sent [][]string
}

func (f *fakeNotifier) SendAsync(to []string, subject, body string) {
	f.sent = append(f.sent, to)
}

func testConfig() *config.EscalationConfig {
	exclude := false
	return &config.EscalationConfig{
		CheckIntervalMinutes: 5,
		Level1Hours:          24,
		Level2Hours:          24,
		Level3Hours:          48,
		ExcludeSundays:       &exclude,
	}
}

// 周一上午，避免周日扣除干扰非周日用例
var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func pendingPR(number string, level int, approver string, updatedAt time.Time) *model.PurchaseRequest {
	pr := &model.PurchaseRequest{
		PRNumber:             number,
		Title:                "测试采购",
		Status:               model.PRStatusPending,
		CurrentApprovalLevel: &level,
		UpdatedAt:            updatedAt,
	}
	if approver != "" {
		pr.CurrentApproverEmpCode = &approver
	}
	return pr
}

func snapshotFor(number string) *model.EscalationMatrix {
	return &model.EscalationMatrix{
		PRNumber:         number,
		RequesterEmpCode: "EMP001",
		RequesterEmail:   "emp001@example.com",
		Approver1EmpCode: "A1",
		Approver1Name:    "一级审批人",
		Approver2EmpCode: "A2",
		Approver2Name:    "二级审批人",
		Manager1EmpCode:  "M1",
		Manager1Name:     "一级经理",
		Manager1Email:    "m1@example.com",
		Manager2EmpCode:  "M2",
		Manager2Name:     "二级经理",
		Manager2Email:    "m2@example.com",
	}
}

type schedulerFixture struct {
	sched    *EscalationScheduler
	prStore  *fakePRStore
	escStore *fakeEscStore
	audit    *fakeAuditStore
	notifier *fakeNotifier
}

func newSchedulerFixture(cfg *config.EscalationConfig, clock time.Time) *schedulerFixture {
	prStore := &fakePRStore{prs: map[string]*model.PurchaseRequest{}}
	escStore := &fakeEscStore{snapshots: map[string]*model.EscalationMatrix{}}
	audit := &fakeAuditStore{}
	notifier := &fakeNotifier{}
	sched := NewEscalationScheduler(prStore, escStore, audit, notifier, cfg)
	sched.now = func() time.Time { return clock }
	return &schedulerFixture{sched: sched, prStore: prStore, escStore: escStore, audit: audit, notifier: notifier}
}

func TestLevel1Escalation(t *testing.T) {
	t.Run("超时升级给一级经理并清空审批人", func(t *testing.T) {
		f := newSchedulerFixture(testConfig(), baseTime)
		f.prStore.prs["PR-1"] = pendingPR("PR-1", 1, "A1", baseTime.Add(-25*time.Hour))
		f.escStore.snapshots["PR-1"] = snapshotFor("PR-1")

		f.sched.RunOnce()

		pr := f.prStore.prs["PR-1"]
		if pr.CurrentApproverEmpCode != nil {
			t.Errorf("CurrentApproverEmpCode = %v, want nil", *pr.CurrentApproverEmpCode)
		}
		if pr.CurrentApprovalLevel == nil || *pr.CurrentApprovalLevel != 1 {
			t.Errorf("CurrentApprovalLevel = %v, want 1 (escalation keeps the level)", pr.CurrentApprovalLevel)
		}
		if len(f.escStore.logs) != 1 || f.escStore.logs[0].Level != 1 ||
			f.escStore.logs[0].Status != model.EscalationStatusEscalated {
			t.Fatalf("escalation logs = %+v, want one escalated entry at level 1", f.escStore.logs)
		}
		if len(f.notifier.sent) != 1 || f.notifier.sent[0][0] != "m1@example.com" {
			t.Errorf("notifications = %v, want one mail to m1", f.notifier.sent)
		}
	})

	t.Run("未超时不升级", func(t *testing.T) {
		f := newSchedulerFixture(testConfig(), baseTime)
		f.prStore.prs["PR-1"] = pendingPR("PR-1", 1, "A1", baseTime.Add(-23*time.Hour))
		f.escStore.snapshots["PR-1"] = snapshotFor("PR-1")

		f.sched.RunOnce()

		if len(f.escStore.logs) != 0 {
			t.Errorf("escalation logs = %+v, want none", f.escStore.logs)
		}
	})

	t.Run("重复扫描幂等", func(t *testing.T) {
		f := newSchedulerFixture(testConfig(), baseTime)
		f.prStore.prs["PR-1"] = pendingPR("PR-1", 1, "A1", baseTime.Add(-25*time.Hour))
		f.escStore.snapshots["PR-1"] = snapshotFor("PR-1")

		f.sched.RunOnce()
		f.sched.RunOnce()
		f.sched.RunOnce()

		if len(f.escStore.logs) != 1 {
			t.Errorf("escalation logs = %d entries, want 1", len(f.escStore.logs))
		}
		if len(f.notifier.sent) != 1 {
			t.Errorf("notifications = %d, want 1", len(f.notifier.sent))
		}
	})

	t.Run("无快照的申请单跳过", func(t *testing.T) {
		f := newSchedulerFixture(testConfig(), baseTime)
		f.prStore.prs["PR-1"] = pendingPR("PR-1", 1, "A1", baseTime.Add(-100*time.Hour))

		f.sched.RunOnce()

		if len(f.escStore.logs) != 0 || len(f.notifier.sent) != 0 {
			t.Error("request without snapshot must not escalate")
		}
	})
}

func TestLevel2AnchorFromApprovalTime(t *testing.T) {
	// 二级的计时起点是一级批准时刻，不是申请单的 updated_at
	f := newSchedulerFixture(testConfig(), baseTime)
	f.prStore.prs["PR-1"] = pendingPR("PR-1", 2, "A2", baseTime.Add(-40*time.Hour))
	f.escStore.snapshots["PR-1"] = snapshotFor("PR-1")
	f.audit.entries = append(f.audit.entries, model.AuditLog{
		PRNumber:        "PR-1",
		ApproverEmpCode: "A1",
		ApprovalLevel:   1,
		Action:          model.AuditActionApproved,
		ActedAt:         baseTime.Add(-10 * time.Hour),
	})

	f.sched.RunOnce()

	if len(f.escStore.logs) != 0 {
		t.Fatalf("escalation logs = %+v, want none (only 10h at level 2)", f.escStore.logs)
	}

	// 把批准时刻拉到阈值之外再扫
	f.audit.entries[0].ActedAt = baseTime.Add(-25 * time.Hour)
	f.sched.RunOnce()

	if len(f.escStore.logs) != 1 || f.escStore.logs[0].Level != 2 {
		t.Fatalf("escalation logs = %+v, want one level-2 entry", f.escStore.logs)
	}
	if f.notifier.sent[0][0] != "m2@example.com" {
		t.Errorf("notification to %v, want m2", f.notifier.sent[0])
	}

	// 没有一级批准记录的二级申请单没有计时起点，跳过
	f2 := newSchedulerFixture(testConfig(), baseTime)
	f2.prStore.prs["PR-2"] = pendingPR("PR-2", 2, "A2", baseTime.Add(-40*time.Hour))
	f2.escStore.snapshots["PR-2"] = snapshotFor("PR-2")

	f2.sched.RunOnce()

	if len(f2.escStore.logs) != 0 || len(f2.notifier.sent) != 0 {
		t.Errorf("logs = %+v, mails = %v, want none without a level-1 approval",
			f2.escStore.logs, f2.notifier.sent)
	}
}

func TestLevel3AutoReject(t *testing.T) {
	t.Run("终审超时自动拒绝", func(t *testing.T) {
		f := newSchedulerFixture(testConfig(), baseTime)
		f.prStore.prs["PR-1"] = pendingPR("PR-1", 3, "", baseTime)
		f.escStore.snapshots["PR-1"] = snapshotFor("PR-1")
		f.audit.entries = append(f.audit.entries, model.AuditLog{
			PRNumber:        "PR-1",
			ApproverEmpCode: "A2",
			Action:          model.AuditActionApproved,
			ActedAt:         baseTime.Add(-49 * time.Hour),
		})

		f.sched.RunOnce()

		pr := f.prStore.prs["PR-1"]
		if pr.Status != model.PRStatusRejected {
			t.Errorf("Status = %s, want rejected", pr.Status)
		}
		if len(f.escStore.logs) != 1 || f.escStore.logs[0].Status != model.EscalationStatusRejected {
			t.Fatalf("escalation logs = %+v, want one rejected entry", f.escStore.logs)
		}
		last := f.audit.entries[len(f.audit.entries)-1]
		if last.Action != model.AuditActionRejected || last.ApproverEmpCode != "system" {
			t.Errorf("audit entry = %+v, want system rejected", last)
		}
		if len(f.notifier.sent) != 1 || f.notifier.sent[0][0] != "emp001@example.com" {
			t.Errorf("notifications = %v, want one mail to requester", f.notifier.sent)
		}
	})

	t.Run("无上一级批准记录时不处理", func(t *testing.T) {
		// 批准记录缺失（未落库或数据不一致）时没有可靠的计时起点，
		// 不能按 updated_at 计时做出终审拒绝
		f := newSchedulerFixture(testConfig(), baseTime)
		f.prStore.prs["PR-1"] = pendingPR("PR-1", 3, "", baseTime.Add(-49*time.Hour))
		f.escStore.snapshots["PR-1"] = snapshotFor("PR-1")

		f.sched.RunOnce()

		if f.prStore.prs["PR-1"].Status != model.PRStatusPending {
			t.Errorf("Status = %s, want pending (no level-2 approval on record)", f.prStore.prs["PR-1"].Status)
		}
		if len(f.escStore.logs) != 0 || len(f.audit.entries) != 0 || len(f.notifier.sent) != 0 {
			t.Errorf("logs=%d audit=%d mails=%d, want no side effects",
				len(f.escStore.logs), len(f.audit.entries), len(f.notifier.sent))
		}
	})

	t.Run("升级经理批准过的按经理时刻计时", func(t *testing.T) {
		// 二级曾升级给 M2，由 M2 批准进入三级：起点取 M2 的批准时刻
		f := newSchedulerFixture(testConfig(), baseTime)
		f.prStore.prs["PR-1"] = pendingPR("PR-1", 3, "", baseTime)
		f.escStore.snapshots["PR-1"] = snapshotFor("PR-1")
		f.audit.entries = append(f.audit.entries,
			model.AuditLog{PRNumber: "PR-1", ApproverEmpCode: "A2",
				Action: model.AuditActionApproved, ActedAt: baseTime.Add(-100 * time.Hour)},
			model.AuditLog{PRNumber: "PR-1", ApproverEmpCode: "M2",
				Action: model.AuditActionApproved, ActedAt: baseTime.Add(-10 * time.Hour)},
		)

		f.sched.RunOnce()

		if f.prStore.prs["PR-1"].Status != model.PRStatusPending {
			t.Error("request should still be pending, only 10h since M2 approved")
		}
	})
}

func TestElapsedHours(t *testing.T) {
	// 2026-03-07 是周六，03-08 是周日
	saturday := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		from, to       time.Time
		excludeSundays bool
		want           float64
	}{
		{"不排除周日", saturday, saturday.Add(48 * time.Hour), false, 48},
		{"跨整个周日扣除24小时", saturday, saturday.Add(48 * time.Hour), true, 24},
		{"周日内的区间计零", saturday.Add(14 * time.Hour), saturday.Add(20 * time.Hour), true, 0},
		{"不含周日不扣除", saturday.Add(36 * time.Hour), saturday.Add(40 * time.Hour), true, 4},
		{"终点早于起点计零", saturday, saturday.Add(-time.Hour), true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := elapsedHours(tt.from, tt.to, tt.excludeSundays)
			if got != tt.want {
				t.Errorf("elapsedHours() = %v, want %v", got, tt.want)
			}
		})
	}
}
