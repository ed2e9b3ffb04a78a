package dto

// ── 教室模块 DTO ──

// CreateLocationRequest 创建教室请求
type CreateLocationRequest struct {
	Name     string `json:"name"     binding:"required,min=1,max=100"`
	Building string `json:"building" binding:"omitempty,max=100"`
	Capacity int    `json:"capacity" binding:"omitempty,min=0,max=10000"`
}

// UpdateLocationRequest 更新教室请求
type UpdateLocationRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=1,max=100"`
	Building *string `json:"building"  binding:"omitempty,max=100"`
	Capacity *int    `json:"capacity"  binding:"omitempty,min=0,max=10000"`
	IsActive *bool   `json:"is_active"`
}

// LocationListRequest 教室列表查询参数
type LocationListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// LocationResponse 教室信息响应
type LocationResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Building  string `json:"building,omitempty"`
	Capacity  int    `json:"capacity"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
