// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// 模板分类。name_collection 类模板在命中时会额外做姓名提取。
const (
	CategoryNameCollection = "name_collection"
)

// Template 对应于数据库中的 'templates' 表。
// 触发模式是一个正则表达式，由应用层（matcher）编译并求值，
// 不依赖存储引擎的 REGEXP 能力。
type Template struct {
	// ID 是模板的唯一标识符，作为主键。
	ID uint `gorm:"primaryKey" json:"id"`
	// Pattern 是触发模式（正则表达式），对小写化后的输入求值。
	Pattern string `gorm:"type:varchar(255);not null" json:"pattern"`
	// ResponseText 是应答文本，可以包含 {name} 占位符。
	ResponseText string `gorm:"type:text;not null" json:"responseText"`
	// Category 是模板分类，如 greeting、name_collection。
	Category string `gorm:"type:varchar(64)" json:"category"`
	// Priority 越大越先被尝试。
	Priority int `gorm:"not null;default:0;index" json:"priority"`
	// Active 为 false 的模板不参与匹配。
	Active bool `gorm:"not null;default:true" json:"active"`
	// UsageCount 在每次命中时单调递增，同优先级下低使用量者优先。
	UsageCount int64 `gorm:"not null;default:0" json:"usageCount"`
	// CreatedAt/UpdatedAt 由 GORM 自动管理。
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Template) TableName() string {
	return "templates"
}
