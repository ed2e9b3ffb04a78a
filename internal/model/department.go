package model

import "time"

// Department 院系表 — 对应 departments（目录服务维护，本服务只读）
type Department struct {
	DepartmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	Name         string    `gorm:"type:varchar(100);not null"                     json:"name"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }

// Program 专业表 — 对应 programs，归属于某个院系
type Program struct {
	ProgramID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"program_id"`
	Name         string    `gorm:"type:varchar(150);not null"                     json:"name"`
	DepartmentID string    `gorm:"type:uuid;not null"                             json:"department_id"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (Program) TableName() string { return "programs" }
