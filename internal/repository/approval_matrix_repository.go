package repository

import (
	"errors"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApprovalMatrixRepository struct {
	db *gorm.DB
}

func NewApprovalMatrixRepository(db *gorm.DB) *ApprovalMatrixRepository {
	return &ApprovalMatrixRepository{db: db}
}

// FindByRequester 查询申请人的审批矩阵，未配置时返回 (nil, nil)。
// 调用方必须把 nil 当作"不能提交申请"处理，这不是可重试错误。
func (r *ApprovalMatrixRepository) FindByRequester(empCode string) (*model.ApprovalMatrix, error) {
	var matrix model.ApprovalMatrix
	err := r.db.Where("requester_emp_code = ?", empCode).First(&matrix).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &matrix, nil
}

// Upsert 创建或按申请人工号覆盖审批矩阵（管理员维护入口）
func (r *ApprovalMatrixRepository) Upsert(matrix *model.ApprovalMatrix) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "requester_emp_code"}},
		UpdateAll: true,
	}).Create(matrix).Error
}

func (r *ApprovalMatrixRepository) FindAll(page, pageSize int) ([]model.ApprovalMatrix, int64, error) {
	var matrices []model.ApprovalMatrix
	var total int64

	query := r.db.Model(&model.ApprovalMatrix{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("requester_emp_code ASC").Find(&matrices).Error

	return matrices, total, err
}

func (r *ApprovalMatrixRepository) DeleteByRequester(empCode string) error {
	return r.db.Where("requester_emp_code = ?", empCode).Delete(&model.ApprovalMatrix{}).Error
}
