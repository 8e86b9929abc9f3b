package repository

import (
	"errors"

	"github.com/AdityaDodda/purchasekandhari-sub000/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmpCode(empCode string) (*model.User, error) {
	var user model.User
	err := r.db.Where("emp_code = ?", empCode).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmpCodes 按工号批量加载用户（升级矩阵固化时使用）
func (r *UserRepository) FindByEmpCodes(empCodes []string) ([]model.User, error) {
	if len(empCodes) == 0 {
		return nil, nil
	}
	var users []model.User
	err := r.db.Where("emp_code IN ?", empCodes).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// FindByName 按姓名查询用户（解析审批人的 manager_name 时使用），
// 未找到时返回 (nil, nil)
func (r *UserRepository) FindByName(name string) (*model.User, error) {
	if name == "" {
		return nil, nil
	}
	var user model.User
	err := r.db.Where("name = ?", name).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Upsert 创建或按工号覆盖用户（管理员维护入口）
func (r *UserRepository) Upsert(user *model.User) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "emp_code"}},
		UpdateAll: true,
	}).Create(user).Error
}

func (r *UserRepository) FindAll(page, pageSize int, keyword string) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := r.db.Model(&model.User{})

	if keyword != "" {
		query = query.Where("emp_code LIKE ? OR name LIKE ? OR email LIKE ?",
			"%"+keyword+"%", "%"+keyword+"%", "%"+keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("emp_code ASC").Find(&users).Error

	return users, total, err
}
