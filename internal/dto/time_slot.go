package dto

// ── 课时模块 DTO ──

// TimeRangeInput 课时时间区间（HH:MM:SS，亦接受 HH:MM）
type TimeRangeInput struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// TimeSlotInput 单个课时的提交内容
// day_of_week 由服务端根据 time_slot_date 推导，不接受输入
type TimeSlotInput struct {
	TimeSlot     TimeRangeInput `json:"time_slot"`
	TeacherID    *string        `json:"teacher_id"     binding:"omitempty,uuid"`
	SubjectID    *string        `json:"subject_id"     binding:"omitempty,uuid"`
	LocationID   *string        `json:"location_id"    binding:"omitempty,uuid"`
	Remark       string         `json:"remark"         binding:"omitempty,max=500"`
	TimeSlotDate string         `json:"time_slot_date"` // YYYY-MM-DD
}

// CreateTimeSlotsRequest 批量创建课时请求（整体成功或整体失败）
type CreateTimeSlotsRequest struct {
	Slots []TimeSlotInput `json:"slots" binding:"required,min=1,dive"`
}

// UpdateTimeSlotRequest 更新课时请求，省略的字段保持原值
type UpdateTimeSlotRequest struct {
	TimeSlot     *TimeRangeInput `json:"time_slot"`
	TeacherID    *string         `json:"teacher_id"     binding:"omitempty,uuid"`
	SubjectID    *string         `json:"subject_id"     binding:"omitempty,uuid"`
	LocationID   *string         `json:"location_id"    binding:"omitempty,uuid"`
	Remark       *string         `json:"remark"         binding:"omitempty,max=500"`
	TimeSlotDate *string         `json:"time_slot_date"`
	Version      int             `json:"version"        binding:"omitempty,min=1"` // 非零时做乐观锁校验
}

// BulkDeleteTimeSlotsRequest 批量删除课时请求
type BulkDeleteTimeSlotsRequest struct {
	TimeTableID string   `json:"time_table_id" binding:"required,uuid"`
	SlotIDs     []string `json:"slot_ids"      binding:"required,min=1"`
}

// TimeSlotRangeQuery 日期范围查询参数（YYYY-MM-DD，可省略）
type TimeSlotRangeQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// TimeRangeResponse 课时时间区间
type TimeRangeResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// TimeSlotResponse 课时信息响应
type TimeSlotResponse struct {
	ID           string            `json:"id"`
	TimetableID  string            `json:"timetable_id"`
	TimeSlotDate string            `json:"time_slot_date"`
	DayOfWeek    string            `json:"day_of_week"`
	TimeSlot     TimeRangeResponse `json:"time_slot"`
	TeacherID    *string           `json:"teacher_id,omitempty"`
	TeacherName  string            `json:"teacher_name,omitempty"`
	SubjectID    *string           `json:"subject_id,omitempty"`
	SubjectName  string            `json:"subject_name,omitempty"`
	LocationID   *string           `json:"location_id,omitempty"`
	LocationName string            `json:"location_name,omitempty"`
	Remark       string            `json:"remark,omitempty"`
	Version      int               `json:"version"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
}

// CreateTimeSlotsResponse 批量创建结果
type CreateTimeSlotsResponse struct {
	TimetableID string             `json:"timetable_id"`
	Created     int                `json:"created"`
	Slots       []TimeSlotResponse `json:"slots"`
}

// BulkDeleteTimeSlotsResponse 批量删除结果
type BulkDeleteTimeSlotsResponse struct {
	Deleted int `json:"deleted"`
}
