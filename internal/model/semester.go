package model

import "github.com/Monopich/AIST-Backend-sub000/internal/calendar"

// Semester 学期表 — 对应 semesters
// 起止日期构成排课窗口，所有课时日期必须落在其中
type Semester struct {
	SemesterID string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"semester_id"`
	ProgramID  *string       `gorm:"type:uuid"                                      json:"program_id,omitempty"`
	Name       string        `gorm:"type:varchar(100);not null"                     json:"name"`
	StartDate  calendar.Date `gorm:"type:date;not null"                             json:"start_date"`
	EndDate    calendar.Date `gorm:"type:date;not null"                             json:"end_date"`
	IsActive   bool          `gorm:"not null;default:false"                         json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Semester) TableName() string { return "semesters" }

// Window 学期窗口
func (s *Semester) Window() (calendar.Window, error) {
	return calendar.NewWindow(s.StartDate, s.EndDate)
}
