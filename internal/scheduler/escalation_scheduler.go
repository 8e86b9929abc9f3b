package scheduler

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/config"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/distributed"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/logger"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/metrics"
	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/redis"
	"github.com/google/uuid"
)

// 调度器依赖的存储接口，由 repository 包实现

// PendingRequestStore 待审批申请单的扫描与超时处置
type PendingRequestStore interface {
	FindAllPending() ([]model.PurchaseRequest, error)
	ClearCurrentApprover(prNumber string, level int) (bool, error)
	AutoReject(prNumber string, level int) (bool, error)
}

// EscalationStore 升级快照查询与升级日志写入
type EscalationStore interface {
	FindMatrixByPRNumber(prNumber string) (*model.EscalationMatrix, error)
	HasLog(prNumber string, level int) (bool, error)
	CreateLog(log *model.EscalationLog) error
}

// AuditStore 审批历史（定位级别起点、记录自动拒绝）
type AuditStore interface {
	FindLatestApproval(prNumber string, empCodes []string) (*model.AuditLog, error)
	Create(log *model.AuditLog) error
}

// Notifier 邮件通知
type Notifier interface {
	SendAsync(to []string, subject, body string)
}

// EscalationScheduler 审批超时升级调度器
//
// 周期性扫描所有 pending 申请单：一、二级超时升级给对应经理
// （清空当前审批人，经理与原审批人均可操作），三级超时自动拒绝。
// 升级按 (申请单, 级别) 幂等，依据 escalation_logs 已有记录判定。
type EscalationScheduler struct {
	prStore    PendingRequestStore
	escStore   EscalationStore
	auditStore AuditStore
	notifier   Notifier
	cfg        *config.EscalationConfig

	stopChan chan struct{}
	wg       sync.WaitGroup

	// now 可注入的时钟，测试时模拟时间
	now func() time.Time
}

// NewEscalationScheduler 创建升级调度器
func NewEscalationScheduler(
	prStore PendingRequestStore,
	escStore EscalationStore,
	auditStore AuditStore,
	notifier Notifier,
	cfg *config.EscalationConfig,
) *EscalationScheduler {
	return &EscalationScheduler{
		prStore:    prStore,
		escStore:   escStore,
		auditStore: auditStore,
		notifier:   notifier,
		cfg:        cfg,
		stopChan:   make(chan struct{}),
		now:        time.Now,
	}
}

// Start 启动调度器
func (s *EscalationScheduler) Start() {
	interval := time.Duration(s.cfg.CheckIntervalMinutes) * time.Minute
	logger.Infof("📅 Escalation scheduler started, interval=%s, thresholds=%dh/%dh/%dh, exclude_sundays=%v",
		interval, s.cfg.Level1Hours, s.cfg.Level2Hours, s.cfg.Level3Hours, s.cfg.SundaysExcluded())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunOnce()
			case <-s.stopChan:
				logger.Infof("Escalation scheduler stopped")
				return
			}
		}
	}()
}

// Stop 停止调度器并等待当前扫描结束
func (s *EscalationScheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

// RunOnce 执行一轮扫描
//
// 多实例部署时用分布式锁保证同一时刻只有一个实例在扫描；
// Redis 不可用则直接执行（升级本身幂等，重复扫描只是浪费）。
func (s *EscalationScheduler) RunOnce() {
	if redis.IsEnabled() {
		lock := distributed.NewRedisLock(redis.GetClient(), "escalation:scheduler", 2*time.Minute)
		ok, err := lock.TryLock()
		if err != nil {
			logger.Warnf("Escalation scheduler lock error: %v", err)
		}
		if !ok {
			logger.Debugf("Escalation scan skipped, another instance holds the lock")
			return
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logger.Warnf("Escalation scheduler unlock error: %v", err)
			}
		}()
	}

	start := s.now()
	defer func() {
		metrics.SchedulerTickDuration.Observe(time.Since(start).Seconds())
	}()

	pending, err := s.prStore.FindAllPending()
	if err != nil {
		logger.Errorf("Escalation scan failed to list pending requests: %v", err)
		metrics.SchedulerErrorsTotal.Inc()
		return
	}

	var escalated, rejected int
	for i := range pending {
		action, err := s.checkRequest(&pending[i])
		if err != nil {
			// 单个申请单出错不影响本轮其余申请单
			logger.Errorf("Escalation check failed for %s: %v", pending[i].PRNumber, err)
			metrics.SchedulerErrorsTotal.Inc()
			continue
		}
		switch action {
		case "escalated":
			escalated++
		case "rejected":
			rejected++
		}
	}

	if escalated > 0 || rejected > 0 {
		logger.Infof("✅ Escalation scan done: %d scanned, %d escalated, %d auto-rejected",
			len(pending), escalated, rejected)
	}
}

// checkRequest 检查单个申请单是否超时，返回 ""/"escalated"/"rejected"
func (s *EscalationScheduler) checkRequest(pr *model.PurchaseRequest) (string, error) {
	if pr.CurrentApprovalLevel == nil {
		return "", nil
	}
	level := *pr.CurrentApprovalLevel

	var threshold int
	switch level {
	case 1:
		threshold = s.cfg.Level1Hours
	case 2:
		threshold = s.cfg.Level2Hours
	case 3:
		threshold = s.cfg.Level3Hours
	default:
		return "", nil
	}
	if threshold <= 0 {
		return "", nil
	}

	// 已升级过的级别不再处理
	done, err := s.escStore.HasLog(pr.PRNumber, level)
	if err != nil {
		return "", err
	}
	if done {
		return "", nil
	}

	snapshot, err := s.escStore.FindMatrixByPRNumber(pr.PRNumber)
	if err != nil {
		return "", err
	}
	if snapshot == nil {
		// 提交时快照固化失败的申请单不参与升级
		return "", nil
	}

	anchor, ok, err := s.levelAnchor(pr, snapshot, level)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}

	elapsed := elapsedHours(anchor, s.now(), s.cfg.SundaysExcluded())
	if elapsed < float64(threshold) {
		return "", nil
	}

	if level == 3 {
		return s.autoReject(pr, snapshot, elapsed)
	}
	return s.escalate(pr, snapshot, level, elapsed)
}

// levelAnchor 当前级别的计时起点
//
// 二、三级以上一级（审批人或其升级经理）最近一次批准的时刻为起点，
// 一级以申请单最近一次状态变更（提交/重新提交）为起点。
//
// 二、三级找不到上一级的批准记录时返回 ok=false：
// 批准尚未落库或数据不一致，本轮不处理，等记录补齐后再计时。
func (s *EscalationScheduler) levelAnchor(pr *model.PurchaseRequest, snapshot *model.EscalationMatrix, level int) (time.Time, bool, error) {
	var previous []string
	switch level {
	case 2:
		previous = []string{snapshot.Approver1EmpCode, snapshot.Manager1EmpCode}
	case 3:
		previous = []string{snapshot.Approver2EmpCode, snapshot.Manager2EmpCode}
	default:
		return pr.UpdatedAt, true, nil
	}

	last, err := s.auditStore.FindLatestApproval(pr.PRNumber, previous)
	if err != nil {
		return time.Time{}, false, err
	}
	if last == nil {
		return time.Time{}, false, nil
	}
	return last.ActedAt, true, nil
}

// escalate 一、二级超时，升级给对应经理
func (s *EscalationScheduler) escalate(pr *model.PurchaseRequest, snapshot *model.EscalationMatrix, level int, elapsed float64) (string, error) {
	var managerName, managerEmail, approverName string
	if level == 1 {
		managerName, managerEmail = snapshot.Manager1Name, snapshot.Manager1Email
		approverName = snapshot.Approver1Name
	} else {
		managerName, managerEmail = snapshot.Manager2Name, snapshot.Manager2Email
		approverName = snapshot.Approver2Name
	}
	if managerEmail == "" && managerName == "" {
		// 快照中没有经理（组织数据缺失），无处可升
		logger.Warnf("Purchase request %s level %d timed out but no manager in snapshot", pr.PRNumber, level)
		return "", nil
	}

	// 清空当前审批人：经理与原审批人此后均可操作
	ok, err := s.prStore.ClearCurrentApprover(pr.PRNumber, level)
	if err != nil {
		return "", err
	}
	if !ok {
		// 扫描期间申请单已被推进，放弃本次升级
		return "", nil
	}

	// 日志写入失败时不发通知：下一轮会重试整个升级
	if err := s.escStore.CreateLog(&model.EscalationLog{
		ID:          uuid.New().String(),
		PRNumber:    pr.PRNumber,
		Level:       level,
		Status:      model.EscalationStatusEscalated,
		EscalatedAt: s.now(),
		EmailSentTo: managerEmail,
		Comment:     fmt.Sprintf("level %d pending for %.1f hours, escalated to %s", level, elapsed, managerName),
	}); err != nil {
		return "", err
	}

	s.notifier.SendAsync([]string{managerEmail},
		fmt.Sprintf("采购申请 %s 审批超时，已升级给您", pr.PRNumber),
		fmt.Sprintf("采购申请 %s（%s）在第 %d 级停留已超过时限，原审批人 %s 未处理，现升级给您审批。",
			pr.PRNumber, pr.Title, level, approverName))

	metrics.EscalationsTotal.WithLabelValues(strconv.Itoa(level)).Inc()
	logger.Infof("⬆️ Purchase request %s escalated at level %d to %s (%.1fh elapsed)",
		pr.PRNumber, level, managerName, elapsed)
	return "escalated", nil
}

// autoReject 三级超时，自动拒绝
func (s *EscalationScheduler) autoReject(pr *model.PurchaseRequest, snapshot *model.EscalationMatrix, elapsed float64) (string, error) {
	ok, err := s.prStore.AutoReject(pr.PRNumber, 3)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}

	if err := s.escStore.CreateLog(&model.EscalationLog{
		ID:          uuid.New().String(),
		PRNumber:    pr.PRNumber,
		Level:       3,
		Status:      model.EscalationStatusRejected,
		EscalatedAt: s.now(),
		EmailSentTo: snapshot.RequesterEmail,
		Comment:     fmt.Sprintf("level 3 pending for %.1f hours, auto-rejected", elapsed),
	}); err != nil {
		return "", err
	}

	if err := s.auditStore.Create(&model.AuditLog{
		ID:              uuid.New().String(),
		PRNumber:        pr.PRNumber,
		ApproverEmpCode: "system",
		ApprovalLevel:   3,
		Action:          model.AuditActionRejected,
		Comment:         "final approval timed out, rejected automatically",
		ActedAt:         s.now(),
	}); err != nil {
		logger.Errorf("Failed to write audit log for auto-reject of %s: %v", pr.PRNumber, err)
	}

	s.notifier.SendAsync([]string{snapshot.RequesterEmail},
		fmt.Sprintf("采购申请 %s 已自动拒绝", pr.PRNumber),
		fmt.Sprintf("您的采购申请 %s（%s）在终审阶段停留超过时限，系统已自动拒绝。", pr.PRNumber, pr.Title))

	metrics.AutoRejectsTotal.Inc()
	metrics.PendingRequests.Dec()
	logger.Infof("⛔ Purchase request %s auto-rejected at level 3 (%.1fh elapsed)", pr.PRNumber, elapsed)
	return "rejected", nil
}

// elapsedHours from 到 to 的小时数，excludeSundays 时扣除落在周日的部分
func elapsedHours(from, to time.Time, excludeSundays bool) float64 {
	if !to.After(from) {
		return 0
	}
	if !excludeSundays {
		return to.Sub(from).Hours()
	}

	elapsed := to.Sub(from)
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for ; day.Before(to); day = day.AddDate(0, 0, 1) {
		if day.Weekday() != time.Sunday {
			continue
		}
		start, end := day, day.AddDate(0, 0, 1)
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		if end.After(start) {
			elapsed -= end.Sub(start)
		}
	}
	return elapsed.Hours()
}
