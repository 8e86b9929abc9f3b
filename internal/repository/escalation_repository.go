package repository

import (
	"errors"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
	"gorm.io/gorm"
)

// EscalationRepository 升级矩阵快照与升级日志的存取
type EscalationRepository struct {
	db *gorm.DB
}

func NewEscalationRepository(db *gorm.DB) *EscalationRepository {
	return &EscalationRepository{db: db}
}

// ===== Escalation Matrix Methods =====

func (r *EscalationRepository) CreateMatrix(matrix *model.EscalationMatrix) error {
	return r.db.Create(matrix).Error
}

// FindMatrixByPRNumber 查询申请单的升级矩阵快照，缺失时返回 (nil, nil)。
// 快照缺失意味着该申请单不参与升级（降级运行，不是错误）。
func (r *EscalationRepository) FindMatrixByPRNumber(prNumber string) (*model.EscalationMatrix, error) {
	var matrix model.EscalationMatrix
	err := r.db.Where("pr_number = ?", prNumber).First(&matrix).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &matrix, nil
}

// ===== Escalation Log Methods =====

func (r *EscalationRepository) CreateLog(log *model.EscalationLog) error {
	return r.db.Create(log).Error
}

// HasLog 指定(申请单, 级别)是否已有升级日志。
// 调度器的幂等依据：已有日志的级别不再重复升级/拒绝。
func (r *EscalationRepository) HasLog(prNumber string, level int) (bool, error) {
	var count int64
	err := r.db.Model(&model.EscalationLog{}).
		Where("pr_number = ? AND level = ?", prNumber, level).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindLogsByPRNumber 申请单的全部升级日志（按时间升序）
func (r *EscalationRepository) FindLogsByPRNumber(prNumber string) ([]model.EscalationLog, error) {
	var logs []model.EscalationLog
	err := r.db.Where("pr_number = ?", prNumber).
		Order("escalated_at ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// DeleteLogsByPRNumber 清空申请单的升级日志。
// 仅在退回后重新提交时调用：升级历史不能泄漏到新的审批周期，
// 否则调度器会把新周期当作已升级过而跳过。
func (r *EscalationRepository) DeleteLogsByPRNumber(prNumber string) error {
	return r.db.Where("pr_number = ?", prNumber).Delete(&model.EscalationLog{}).Error
}
