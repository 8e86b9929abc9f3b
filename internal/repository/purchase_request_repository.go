package repository

import (
	"strconv"
	"strings"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
	"gorm.io/gorm"
)

type PurchaseRequestRepository struct {
	db *gorm.DB
}

func NewPurchaseRequestRepository(db *gorm.DB) *PurchaseRequestRepository {
	return &PurchaseRequestRepository{db: db}
}

func (r *PurchaseRequestRepository) Create(pr *model.PurchaseRequest) error {
	return r.db.Create(pr).Error
}

func (r *PurchaseRequestRepository) FindByPRNumber(prNumber string) (*model.PurchaseRequest, error) {
	var pr model.PurchaseRequest
	err := r.db.Where("pr_number = ?", prNumber).First(&pr).Error
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

// MaxSequence 返回指定前缀（如 "KB-26-"）下已存在的最大序号，没有时返回0
func (r *PurchaseRequestRepository) MaxSequence(prefix string) (int, error) {
	var numbers []string
	err := r.db.Model(&model.PurchaseRequest{}).
		Where("pr_number LIKE ?", prefix+"%").
		Pluck("pr_number", &numbers).Error
	if err != nil {
		return 0, err
	}

	max := 0
	for _, number := range numbers {
		seq, err := strconv.Atoi(strings.TrimPrefix(number, prefix))
		if err != nil {
			continue // 前缀碰撞产生的异常单号，忽略
		}
		if seq > max {
			max = seq
		}
	}
	return max, nil
}

// FindAllPending 返回所有审批中的申请单（调度器每轮扫描的输入）
func (r *PurchaseRequestRepository) FindAllPending() ([]model.PurchaseRequest, error) {
	var requests []model.PurchaseRequest
	err := r.db.Where("status = ?", model.PRStatusPending).Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// CountPending 审批中的申请单数量（指标上报用）
func (r *PurchaseRequestRepository) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&model.PurchaseRequest{}).
		Where("status = ?", model.PRStatusPending).
		Count(&count).Error
	return count, err
}

// Transition 条件更新：只有申请单仍处于 pending 且停留在期望级别时才提交变更。
// 返回 false 表示并发竞争中已被其他操作推进（后到者失败）。
func (r *PurchaseRequestRepository) Transition(prNumber string, expectLevel int, updates map[string]interface{}) (bool, error) {
	result := r.db.Model(&model.PurchaseRequest{}).
		Where("pr_number = ? AND status = ? AND current_approval_level = ?",
			prNumber, model.PRStatusPending, expectLevel).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Reactivate 将已退回的申请单重置回审批链起点（重新提交）
func (r *PurchaseRequestRepository) Reactivate(prNumber string, firstApprover string) (bool, error) {
	level := 1
	result := r.db.Model(&model.PurchaseRequest{}).
		Where("pr_number = ? AND status = ?", prNumber, model.PRStatusReturned).
		Updates(map[string]interface{}{
			"status":                    model.PRStatusPending,
			"current_approval_level":    level,
			"current_approver_emp_code": firstApprover,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ClearCurrentApprover 升级后将当前审批人置空（扩大授权范围），级别保持不变
func (r *PurchaseRequestRepository) ClearCurrentApprover(prNumber string, level int) (bool, error) {
	result := r.db.Model(&model.PurchaseRequest{}).
		Where("pr_number = ? AND status = ? AND current_approval_level = ?",
			prNumber, model.PRStatusPending, level).
		Update("current_approver_emp_code", nil)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AutoReject 三级超时自动拒绝：置为 rejected 并清空级别和审批人
func (r *PurchaseRequestRepository) AutoReject(prNumber string, level int) (bool, error) {
	result := r.db.Model(&model.PurchaseRequest{}).
		Where("pr_number = ? AND status = ? AND current_approval_level = ?",
			prNumber, model.PRStatusPending, level).
		Updates(map[string]interface{}{
			"status":                    model.PRStatusRejected,
			"current_approval_level":    nil,
			"current_approver_emp_code": nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindPendingForApprover 返回 empCode 可能待审批的申请单全集：
// 当前审批人是本人的，加上升级后审批人为 null 的。
// null 审批人的单是否真正可操作由调用方按授权谓词过滤，
// 所以这里不分页，过滤后的分页在调用方做。
func (r *PurchaseRequestRepository) FindPendingForApprover(empCode string) ([]model.PurchaseRequest, error) {
	var requests []model.PurchaseRequest
	err := r.db.
		Where("status = ? AND (current_approver_emp_code = ? OR current_approver_emp_code IS NULL)",
			model.PRStatusPending, empCode).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// List 分页列表
//
// role 取值:
//   - my: 我提交的申请
//   - all 或空: 全部
func (r *PurchaseRequestRepository) List(page, pageSize int, role, empCode, status string) ([]model.PurchaseRequest, int64, error) {
	var requests []model.PurchaseRequest
	var total int64

	query := r.db.Model(&model.PurchaseRequest{})

	if role == "my" {
		query = query.Where("requester_emp_code = ?", empCode)
	}

	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&requests).Error

	return requests, total, err
}

func (r *PurchaseRequestRepository) GetDB() *gorm.DB {
	return r.db
}
