package model

import (
	"gorm.io/gorm"

	"github.com/Monopich/AIST-Backend-sub000/internal/calendar"
)

// TimeSlot 课时 — 对应 time_slots
// DayOfWeek 始终由 Date 推导，不接受外部输入
type TimeSlot struct {
	TimeSlotID  string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"time_slot_id"`
	TimetableID string            `gorm:"type:uuid;not null"                             json:"timetable_id"`
	Date        calendar.Date     `gorm:"column:time_slot_date;type:date;not null"       json:"time_slot_date"`
	Interval    calendar.Interval `gorm:"embedded"                                       json:"time_slot"`
	DayOfWeek   string            `gorm:"type:varchar(10);not null"                      json:"day_of_week"`
	TeacherID   *string           `gorm:"type:uuid"                                      json:"teacher_id,omitempty"`
	SubjectID   *string           `gorm:"type:uuid"                                      json:"subject_id,omitempty"`
	LocationID  *string           `gorm:"type:uuid"                                      json:"location_id,omitempty"`
	Remark      string            `gorm:"type:varchar(500)"                              json:"remark,omitempty"`
	VersionedModel

	// 关联
	Timetable *Timetable `gorm:"foreignKey:TimetableID;references:TimetableID" json:"-"`
	Teacher   *User      `gorm:"foreignKey:TeacherID;references:UserID"        json:"teacher,omitempty"`
	Subject   *Subject   `gorm:"foreignKey:SubjectID;references:SubjectID"     json:"subject,omitempty"`
	Location  *Location  `gorm:"foreignKey:LocationID;references:LocationID"   json:"location,omitempty"`
}

// TableName 指定表名
func (TimeSlot) TableName() string { return "time_slots" }

// SyncDayOfWeek 按日期重算星期
func (s *TimeSlot) SyncDayOfWeek() {
	s.DayOfWeek = calendar.WeekdayName(s.Date)
}

// BeforeSave 写入前统一推导 day_of_week
func (s *TimeSlot) BeforeSave(_ *gorm.DB) error {
	s.SyncDayOfWeek()
	return nil
}

// TeacherName 关联教师姓名，未加载时为空
func (s *TimeSlot) TeacherName() string {
	if s.Teacher == nil {
		return ""
	}
	return s.Teacher.Name
}

// SubjectName 关联课程名称，未加载时为空
func (s *TimeSlot) SubjectName() string {
	if s.Subject == nil {
		return ""
	}
	return s.Subject.Name
}

// LocationName 关联地点名称，未加载时为空
func (s *TimeSlot) LocationName() string {
	if s.Location == nil {
		return ""
	}
	return s.Location.Name
}
