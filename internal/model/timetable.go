package model

// Timetable 班级课表 — 对应 timetables，group_id 唯一
type Timetable struct {
	TimetableID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"timetable_id"`
	GroupID     string `gorm:"type:uuid;not null;uniqueIndex:uk_timetables_group" json:"group_id"`
	BaseModel

	// 关联
	Group *Group `gorm:"foreignKey:GroupID;references:GroupID" json:"group,omitempty"`
}

// TableName 指定表名
func (Timetable) TableName() string { return "timetables" }
