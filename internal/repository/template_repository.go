package repository

import (
	"gorm.io/gorm"
	"nova-chat-go/internal/model"
)

// TemplateRepository 接口定义了应答模板的读取与使用计数操作。
// 模板本身由外部管理端创建和编辑，核心系统只读取并递增使用计数。
type TemplateRepository interface {
	// FindActive 返回所有启用的模板，按 (priority DESC, usage_count ASC) 排序。
	FindActive() ([]model.Template, error)
	// IncrementUsage 将指定模板的使用计数加一。
	IncrementUsage(templateID uint) error
}

// templateRepository 是 TemplateRepository 接口的 GORM 实现。
type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository 创建一个新的 TemplateRepository 实例。
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

// FindActive 从数据库中检索所有启用的模板。
// 同优先级下低使用量的模板排在前面，让较少被命中的模板有机会被验证。
func (r *templateRepository) FindActive() ([]model.Template, error) {
	var templates []model.Template
	err := r.db.Where("active = ?", true).
		Order("priority DESC").Order("usage_count ASC").
		Find(&templates).Error
	return templates, err
}

// IncrementUsage 递增模板的使用计数。
func (r *templateRepository) IncrementUsage(templateID uint) error {
	return r.db.Model(&model.Template{}).Where("id = ?", templateID).
		Update("usage_count", gorm.Expr("usage_count + 1")).Error
}
