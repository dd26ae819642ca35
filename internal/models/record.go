package models

import "time"

// Record 数据库后端中的加密记录
type Record struct {
	Kind      string    `gorm:"primaryKey;size:32"`
	ID        int       `gorm:"primaryKey;autoIncrement:false"`
	Payload   string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"index"`
}

// TableName 指定表名
func (Record) TableName() string {
	return "records"
}
