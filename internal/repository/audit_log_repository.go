package repository

import (
	"errors"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(log *model.AuditLog) error {
	return r.db.Create(log).Error
}

// FindByPRNumber 申请单的完整审批历史（按时间升序）
func (r *AuditLogRepository) FindByPRNumber(prNumber string) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := r.db.Where("pr_number = ?", prNumber).
		Order("acted_at ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// FindLatestApproval 指定工号集合中最近一条批准记录，没有时返回 (nil, nil)。
// 调度器用它定位"上一级实际是谁在什么时候批准的"（审批人或其升级经理）。
func (r *AuditLogRepository) FindLatestApproval(prNumber string, empCodes []string) (*model.AuditLog, error) {
	codes := make([]string, 0, len(empCodes))
	for _, code := range empCodes {
		if code != "" {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return nil, nil
	}

	var log model.AuditLog
	err := r.db.Where("pr_number = ? AND action = ? AND approver_emp_code IN ?",
		prNumber, model.AuditActionApproved, codes).
		Order("acted_at DESC").
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}
