package model

import "time"

// Subject 课程表 — 对应 subjects（目录服务维护，本服务只读）
type Subject struct {
	SubjectID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	Code      string    `gorm:"type:varchar(30);not null"                      json:"code"`
	Name      string    `gorm:"type:varchar(150);not null"                     json:"name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }

// TeacherSubject 教师可授课程 — 对应 teacher_subjects
type TeacherSubject struct {
	TeacherID string `gorm:"type:uuid;primaryKey" json:"teacher_id"`
	SubjectID string `gorm:"type:uuid;primaryKey" json:"subject_id"`
}

// TableName 指定表名
func (TeacherSubject) TableName() string { return "teacher_subjects" }
