package dto

// ── 课表模块 DTO ──

// CreateTimetableRequest 为班级创建课表
type CreateTimetableRequest struct {
	GroupID string `json:"group_id" binding:"required,uuid"`
}

// TimetableResponse 课表信息响应
type TimetableResponse struct {
	ID           string `json:"id"`
	GroupID      string `json:"group_id"`
	GroupName    string `json:"group_name,omitempty"`
	SemesterID   string `json:"semester_id,omitempty"`
	SemesterName string `json:"semester_name,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	TotalWeeks   int    `json:"total_weeks"`
	CreatedAt    string `json:"created_at"`
}

// CloneWeekRequest 复制一段日期内的课时到目标起始日
type CloneWeekRequest struct {
	FromStart string `json:"from_start" binding:"required"` // YYYY-MM-DD
	FromEnd   string `json:"from_end"   binding:"required"`
	ToStart   string `json:"to_start"   binding:"required"`
}

// CloneWeekResponse 复制结果，仅包含实际新建的课时
type CloneWeekResponse struct {
	Created int                `json:"created"`
	Skipped int                `json:"skipped"`
	Slots   []TimeSlotResponse `json:"slots"`
}

// ── 周视图 ──

// WeekViewResponse 课表周视图
type WeekViewResponse struct {
	TimetableID string       `json:"timetable_id"`
	TotalWeeks  int          `json:"total_weeks"`
	Weeks       []WeekDetail `json:"weeks"`
}

// WeekDetail 单周详情
type WeekDetail struct {
	WeekNumber int         `json:"week_number"`
	WeekStart  string      `json:"week_start"`
	WeekEnd    string      `json:"week_end"`
	Days       []DayDetail `json:"days"`
}

// DayDetail 单日课时，按开始时间升序
type DayDetail struct {
	Date       string             `json:"date"`
	DayOfWeek  string             `json:"day_of_week"`
	InSemester bool               `json:"in_semester"`
	Slots      []TimeSlotResponse `json:"slots"`
}
