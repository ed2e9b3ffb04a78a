package dto

// ── 校验失败的结构化返回（422 data） ──

// SlotConflict 冲突课时的展示信息
type SlotConflict struct {
	SlotID       string `json:"slot_id"`
	TimeSlotDate string `json:"time_slot_date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	TeacherName  string `json:"teacher_name,omitempty"`
	SubjectName  string `json:"subject_name,omitempty"`
	LocationName string `json:"location_name,omitempty"`
}

// SlotErrorData 课时校验失败详情
// Index 为批量请求中失败课时的下标（从 0 开始），单条操作时省略
type SlotErrorData struct {
	Index          *int           `json:"index,omitempty"`
	Reason         string         `json:"reason"`
	Dimension      string         `json:"dimension,omitempty"`
	Conflicts      []SlotConflict `json:"conflicts,omitempty"`
	InvalidSlotIDs []string       `json:"invalid_slot_ids,omitempty"`
	ValidRange     *WeekBounds    `json:"valid_range,omitempty"`
}

// WeekBounds 合法周次范围
type WeekBounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}
