package dto

// ── 学期模块 DTO ──

// CreateSemesterRequest 创建学期请求
type CreateSemesterRequest struct {
	Name      string  `json:"name"       binding:"required,min=2,max=100"`
	ProgramID *string `json:"program_id" binding:"omitempty,uuid"`
	StartDate string  `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate   string  `json:"end_date"   binding:"required"`
	IsActive  bool    `json:"is_active"`
}

// UpdateSemesterRequest 更新学期请求
type UpdateSemesterRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=2,max=100"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	IsActive  *bool   `json:"is_active"`
	Version   int     `json:"version"    binding:"omitempty,min=1"`
}

// SemesterListRequest 学期列表查询参数
type SemesterListRequest struct {
	ProgramID string `form:"program_id" binding:"omitempty,uuid"`
}

// SemesterResponse 学期信息响应
type SemesterResponse struct {
	ID           string  `json:"id"`
	ProgramID    *string `json:"program_id,omitempty"`
	Name         string  `json:"name"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	DurationDays int     `json:"duration_days"`
	TotalWeeks   int     `json:"total_weeks"`
	IsActive     bool    `json:"is_active"`
	Version      int     `json:"version"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// WeekRangeResponse 教学周区间
type WeekRangeResponse struct {
	WeekNumber     int    `json:"week_number"`
	WeekStart      string `json:"week_start"`
	WeekEnd        string `json:"week_end"`
	DaysInSemester int    `json:"days_in_semester"`
}
